package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/render"
	"go.uber.org/zap"
)

func holidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Inspect and refresh bank holiday tables",
	}

	cmd.AddCommand(holidaysListCmd(), holidaysFetchCmd())
	return cmd
}

func holidaysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the bank holidays of the modeled year",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			region := cfg.Planner.GetRegion()
			var holidays []calendar.BankHoliday
			for _, h := range newRegistry(cfg).Table(region).Holidays() {
				if h.Date.Year() == cfg.Planner.Year {
					holidays = append(holidays, h)
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Bank holidays in %s, %d\n\n", region.DisplayName(), cfg.Planner.Year)
			return render.Holidays(w, holidays)
		},
	}
}

func holidaysFetchCmd() *cobra.Command {
	var output string
	var year int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the official tables and write them as a holiday file",
		Long: "Download bank holidays for every region from gov.uk and write them in the holiday file format. " +
			"Point calendar.holidays_file at the result to use it instead of the built-in tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			source := calendar.NewGovUKSource(cfg.Calendar.SourceURL, cfg.Calendar.GetCacheTTL(), logger)
			all, err := source.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch bank holidays: %w", err)
			}

			holidays := all
			if year != 0 {
				holidays = make(map[calendar.Region][]calendar.BankHoliday, len(all))
				for _, region := range calendar.Regions() {
					list, err := source.Holidays(cmd.Context(), region, year)
					if err != nil {
						return fmt.Errorf("failed to fetch bank holidays: %w", err)
					}
					if len(list) > 0 {
						holidays[region] = list
					}
				}
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create holiday file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := calendar.WriteHolidayFile(w, holidays); err != nil {
				return fmt.Errorf("failed to write holiday file: %w", err)
			}

			count := 0
			for _, list := range holidays {
				count += len(list)
			}
			logger.Info("Bank holidays fetched",
				zap.String("url", cfg.Calendar.SourceURL),
				zap.String("output", output),
				zap.Int("holidays", count))

			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d holidays to %s\n", count, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVar(&year, "year", 0, "Only write holidays of this year")
	return cmd
}
