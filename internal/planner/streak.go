package planner

import (
	"sort"
	"time"

	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
)

// DefaultMinStreakLength is the shortest run reported in a summary
const DefaultMinStreakLength = 3

// Window is the inclusive date range walked by Analyze
type Window struct {
	Start time.Time
	End   time.Time
}

// YearWindow covers a whole year plus lookaheadDays of the next one,
// so runs spanning New Year are closed inside the window
func YearWindow(year, lookaheadDays int) Window {
	return Window{
		Start: dateutil.Date(year, time.January, 1),
		End:   dateutil.Date(year+1, time.January, lookaheadDays),
	}
}

// StreakRecord describes one reported run of days off
type StreakRecord struct {
	Start  time.Time
	End    time.Time
	Length int
}

// Analysis is the derived streak state of a selection
type Analysis struct {
	StreakDates    map[string]bool
	MaxConsecutive int
	Summary        []StreakRecord
}

// InStreak reports whether date belongs to a run that contains leave
func (a Analysis) InStreak(date time.Time) bool {
	return a.StreakDates[dateutil.Format(date)]
}

// Analyze finds the maximal runs of consecutive days off inside window that
// contain at least one leave day. Every such run marks its dates and counts
// towards MaxConsecutive; only runs of at least minLength days are listed in
// Summary. A run still open at the end of the window is dropped.
func Analyze(leave calendar.LeaveSet, table calendar.HolidayTable, window Window, minLength int) Analysis {
	result := Analysis{StreakDates: make(map[string]bool)}

	var run []time.Time
	hasLeave := false

	for d := window.Start; !d.After(window.End); d = d.AddDate(0, 0, 1) {
		dayType := calendar.Classify(d, table, leave)
		if dayType.IsOff() {
			run = append(run, d)
			if dayType == calendar.DayTypeLeave {
				hasLeave = true
			}
			continue
		}

		if len(run) > 0 && hasLeave {
			for _, member := range run {
				result.StreakDates[dateutil.Format(member)] = true
			}
			if len(run) > result.MaxConsecutive {
				result.MaxConsecutive = len(run)
			}
			if len(run) >= minLength {
				result.Summary = append(result.Summary, StreakRecord{
					Start:  run[0],
					End:    run[len(run)-1],
					Length: len(run),
				})
			}
		}

		run = nil
		hasLeave = false
	}

	sort.SliceStable(result.Summary, func(i, j int) bool {
		return result.Summary[i].Start.Before(result.Summary[j].Start)
	})

	return result
}
