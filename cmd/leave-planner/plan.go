package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/leave-planner/internal/planner"
	"github.com/username/leave-planner/internal/render"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// withApp opens the app for the duration of one command
func withApp(fn func(ctx context.Context, a *app, w io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(ctx, a, cmd.OutOrStdout(), args)
	}
}

func parseDates(args []string) ([]time.Time, error) {
	dates := make([]time.Time, len(args))
	for i, arg := range args {
		d, err := dateutil.ParseDate(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", arg, err)
		}
		dates[i] = d
	}
	return dates, nil
}

func showCmd() *cobra.Command {
	var month int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the calendar with leave, holidays and streaks",
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			snap := a.controller.Snapshot()

			if month != 0 {
				if month < 1 || month > 12 {
					return fmt.Errorf("month must be between 1 and 12, got %d", month)
				}
				if err := render.Month(w, snap, time.Month(month)); err != nil {
					return err
				}
				fmt.Fprintln(w, render.Legend)
			} else if err := render.Year(w, snap); err != nil {
				return err
			}

			fmt.Fprintln(w)
			return render.Summary(w, snap)
		}),
	}

	cmd.Flags().IntVarP(&month, "month", "m", 0, "Show a single month (1-12)")
	return cmd
}

func dragCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drag FROM TO",
		Short: "Select or deselect a range of workdays as one drag gesture",
		Long: "Press on FROM, drag to TO and release. The gesture adds the range when FROM is not booked " +
			"and removes it when FROM is booked. Weekends and bank holidays in the range are skipped.",
		Args: cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			dates, err := parseDates(args)
			if err != nil {
				return err
			}

			if !a.controller.Press(dates[0]).Dragging() {
				return fmt.Errorf("%s is not a workday or leave day", args[0])
			}
			preview := a.controller.Enter(dates[1])
			mode := preview.Overlay.Mode

			snap := a.controller.Release(ctx)
			logger.Info("Drag applied",
				zap.String("from", args[0]),
				zap.String("to", args[1]),
				zap.Stringer("mode", mode))

			fmt.Fprintf(w, "Range %s .. %s: %s\n", args[0], args[1], mode)
			return render.Summary(w, snap)
		}),
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle DATE...",
		Short: "Toggle leave on single days",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			dates, err := parseDates(args)
			if err != nil {
				return err
			}

			for i, d := range dates {
				if !a.controller.Press(d).Dragging() {
					fmt.Fprintf(w, "%s skipped (not a workday)\n", args[i])
					continue
				}
				a.controller.Release(ctx)
			}

			return render.Summary(w, a.controller.Snapshot())
		}),
	}
}

func strategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List suggested leave strategies for the region",
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			snap := a.controller.Snapshot()
			fmt.Fprintf(w, "Suggestions for %s %d\n\n", snap.Region.DisplayName(), snap.Year)
			return render.Strategies(w, snap.Strategies())
		}),
	}
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply STRATEGY",
		Short: "Add the dates of a suggested strategy to the plan",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			snap, err := a.controller.ApplyStrategy(ctx, args[0])
			if err != nil {
				return err
			}
			return render.Summary(w, snap)
		}),
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every leave day from the plan",
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			a.controller.ClearAll(ctx)
			_, err := fmt.Fprintln(w, "All leave cleared.")
			return err
		}),
	}
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the current plan",
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			if err := a.controller.Save(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w, "Plan Saved Locally!")
			return err
		}),
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Replace the current plan with the saved one",
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			snap, err := a.controller.Load(ctx)
			if errors.Is(err, planner.ErrNoSavedPlan) {
				_, err = fmt.Fprintln(w, "No saved plan found.")
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(w, "Plan Loaded!")
			return render.Summary(w, snap)
		}),
	}
}

func streaksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streaks",
		Short: "List runs of consecutive days off that include leave",
		RunE: withApp(func(ctx context.Context, a *app, w io.Writer, args []string) error {
			snap := a.controller.Snapshot()
			fmt.Fprintf(w, "Longest streak: %d days\n\n", snap.MaxConsecutive())
			return render.Streaks(w, snap.Streaks())
		}),
	}
}
