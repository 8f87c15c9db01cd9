// Package render draws plans for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/planner"
	"github.com/username/leave-planner/pkg/dateutil"
)

const weekHeader = " Mo   Tu   We   Th   Fr   Sa   Su"

// Legend explains the cell markers
const Legend = "Legend: * leave, H bank holiday, . weekend, [ ] streak, ( ) drag preview"

// Cell renders one day as a five character cell
func Cell(day planner.DayView) string {
	open, close := " ", " "
	switch {
	case day.InPreview:
		open, close = "(", ")"
	case day.InStreak:
		open, close = "[", "]"
	}

	marker := " "
	switch {
	case day.InPreview && day.PreviewSelected:
		marker = "*"
	case day.InPreview:
		marker = " "
	case day.Type == calendar.DayTypeLeave:
		marker = "*"
	case day.Type == calendar.DayTypeBankHoliday:
		marker = "H"
	case day.Type == calendar.DayTypeWeekend:
		marker = "."
	}

	return fmt.Sprintf("%s%2d%s%s", open, day.Date.Day(), marker, close)
}

// Month writes a Monday-first grid of one month
func Month(w io.Writer, snap planner.Snapshot, month time.Month) error {
	days := snap.Month(month)
	info := snap.MonthInfo(month)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d  (%d workdays, %d leave, %d holidays)\n",
		month, snap.Year, info.WorkDays, info.Leave, info.Holidays)
	b.WriteString(weekHeader + "\n")

	offset := dateutil.WeekdayIndex(days[0].Date)
	b.WriteString(strings.Repeat("     ", offset))

	for i, day := range days {
		b.WriteString(Cell(day))
		if (offset+i)%7 == 6 {
			b.WriteString("\n")
		}
	}
	if (offset+len(days))%7 != 0 {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Year writes every month of the modeled year followed by the legend
func Year(w io.Writer, snap planner.Snapshot) error {
	for m := time.January; m <= time.December; m++ {
		if err := Month(w, snap, m); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintln(w, Legend)
	return err
}

// Summary writes the plan totals and the streak list
func Summary(w io.Writer, snap planner.Snapshot) error {
	fmt.Fprintf(w, "Region:          %s\n", snap.Region.DisplayName())
	fmt.Fprintf(w, "Leave days:      %d\n", snap.LeaveCount())
	fmt.Fprintf(w, "Longest streak:  %d days\n", snap.MaxConsecutive())
	return Streaks(w, snap.Streaks())
}

// Streaks writes one line per streak
func Streaks(w io.Writer, streaks []planner.StreakRecord) error {
	if len(streaks) == 0 {
		_, err := fmt.Fprintln(w, "No streaks yet. Add leave next to weekends or bank holidays.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Start\tEnd\tDays")
	for _, s := range streaks {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Start.Format("Mon 02 Jan 2006"), s.End.Format("Mon 02 Jan 2006"), s.Length)
	}
	return tw.Flush()
}

// Strategies writes the suggestion list of a region
func Strategies(w io.Writer, strategies []planner.Strategy) error {
	if len(strategies) == 0 {
		_, err := fmt.Fprintln(w, "No suggestions for this year.")
		return err
	}

	for _, s := range strategies {
		booked := make([]string, len(s.Dates))
		for i, d := range s.Dates {
			booked[i] = d.Format("02 Jan")
		}

		fmt.Fprintf(w, "%s  %s (%d days off)\n", s.ID, s.Name, s.TotalDaysOff)
		fmt.Fprintf(w, "    %s\n", s.Description)
		fmt.Fprintf(w, "    Book: %s\n", strings.Join(booked, ", "))
		if _, err := fmt.Fprintf(w, "    Uses: %s\n", strings.Join(s.BankHolidays, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// Holidays writes a date-ordered holiday list
func Holidays(w io.Writer, holidays []calendar.BankHoliday) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, h := range holidays {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", dateutil.Format(h.Date), h.Date.Format("Mon"), h.Name)
	}
	return tw.Flush()
}
