package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// FileTable holds per-region holiday tables loaded from a local text file
type FileTable struct {
	filePath string
	logger   *zap.Logger
	data     map[Region][]BankHoliday
}

// NewFileTable creates a new FileTable instance
func NewFileTable(filePath string, logger *zap.Logger) *FileTable {
	return &FileTable{
		filePath: filePath,
		logger:   logger,
		data:     make(map[Region][]BankHoliday),
	}
}

// Load loads holiday data from file
func (ft *FileTable) Load() error {
	file, err := os.Open(ft.filePath)
	if err != nil {
		return fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	if err := ft.read(file); err != nil {
		return err
	}

	ft.logger.Info("Holiday file loaded",
		zap.String("file", ft.filePath),
		zap.Int("regions", len(ft.data)))

	return nil
}

func (ft *FileTable) read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	data := make(map[Region][]BankHoliday)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD region name
		// Example: 2026-04-03 england-wales Good Friday
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			ft.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		date, err := time.Parse(dateutil.Layout, parts[0])
		if err != nil {
			ft.logger.Warn("Failed to parse date", zap.String("date", parts[0]), zap.Error(err))
			continue
		}

		region, err := ParseRegion(parts[1])
		if err != nil {
			ft.logger.Warn("Unknown region", zap.String("region", parts[1]))
			continue
		}

		data[region] = append(data[region], BankHoliday{
			Date: date,
			Name: strings.TrimSpace(parts[2]),
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading holiday file: %w", err)
	}

	ft.data = data
	return nil
}

// Has reports whether the file defines any holiday for the region
func (ft *FileTable) Has(region Region) bool {
	return len(ft.data[region]) > 0
}

// Table returns the loaded holidays of a region as a table
func (ft *FileTable) Table(region Region) *Table {
	return NewTable(ft.data[region])
}

// WriteHolidayFile writes holidays in the format read by FileTable
func WriteHolidayFile(w io.Writer, holidays map[Region][]BankHoliday) error {
	if _, err := fmt.Fprintln(w, "# date region name"); err != nil {
		return err
	}

	for _, region := range Regions() {
		for _, h := range NewTable(holidays[region]).Holidays() {
			if _, err := fmt.Fprintf(w, "%s %s %s\n", dateutil.Format(h.Date), region, h.Name); err != nil {
				return err
			}
		}
	}

	return nil
}
