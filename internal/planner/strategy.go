package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
)

// ErrUnknownStrategy is returned when a strategy id does not exist in a region
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy is a precomputed booking suggestion
type Strategy struct {
	ID           string
	Name         string
	Description  string
	Dates        []time.Time
	TotalDaysOff int
	BankHolidays []string
}

func dates(values ...string) []time.Time {
	out := make([]time.Time, len(values))
	for i, v := range values {
		out[i] = dateutil.MustParse(v)
	}
	return out
}

var (
	easter10 = Strategy{
		ID:           "easter-10",
		Name:         "Easter 10-Day Break",
		Description:  "Book 4 days, get 10 consecutive days off.",
		Dates:        dates("2026-04-01", "2026-04-02", "2026-04-07", "2026-04-08"),
		TotalDaysOff: 10,
		BankHolidays: []string{"Good Friday", "Easter Monday"},
	}
	august9 = Strategy{
		ID:           "august-9",
		Name:         "Late Summer 9-Day Break",
		Description:  "Book 4 days, get 9 days off (Sat 29 Aug - Sun 6 Sep).",
		Dates:        dates("2026-09-01", "2026-09-02", "2026-09-03", "2026-09-04"),
		TotalDaysOff: 9,
		BankHolidays: []string{"Summer Bank Holiday"},
	}
	christmas10 = Strategy{
		ID:           "christmas-10",
		Name:         "Christmas 10-Day Bridge",
		Description:  "Book 3 days, get 10 days off (Fri 25 Dec - Sun 3 Jan).",
		Dates:        dates("2026-12-29", "2026-12-30", "2026-12-31"),
		TotalDaysOff: 10,
		BankHolidays: []string{"Christmas Day", "Boxing Day (Sub)", "New Year"},
	}
)

var strategies = map[calendar.Region][]Strategy{
	calendar.RegionEnglandWales: {
		easter10,
		{
			ID:           "easter-16",
			Name:         "Easter 16-Day Mega Break",
			Description:  "Book 8 days, get 16 consecutive days off.",
			Dates:        dates("2026-03-30", "2026-03-31", "2026-04-01", "2026-04-02", "2026-04-07", "2026-04-08", "2026-04-09", "2026-04-10"),
			TotalDaysOff: 16,
			BankHolidays: []string{"Good Friday", "Easter Monday"},
		},
		{
			ID:           "may-double",
			Name:         "Double May 18-Day Special",
			Description:  "Book 8 days across both May holidays for two 9-day breaks.",
			Dates:        dates("2026-05-05", "2026-05-06", "2026-05-07", "2026-05-08", "2026-05-26", "2026-05-27", "2026-05-28", "2026-05-29"),
			TotalDaysOff: 18,
			BankHolidays: []string{"Early May", "Spring Bank Holiday"},
		},
		august9,
		christmas10,
	},
	calendar.RegionScotland: {
		{
			ID:           "new-year-11",
			Name:         "New Year 11-Day Start",
			Description:  "Book 5 days (Jan 5-9), get 11 days off (Jan 1 - Jan 11).",
			Dates:        dates("2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09"),
			TotalDaysOff: 11,
			BankHolidays: []string{"New Year", "2nd Jan"},
		},
		{
			ID:           "scot-august-9",
			Name:         "Scottish Summer 9-Day",
			Description:  "Book 4 days (Aug 4-7) around the early August Bank Holiday.",
			Dates:        dates("2026-08-04", "2026-08-05", "2026-08-06", "2026-08-07"),
			TotalDaysOff: 9,
			BankHolidays: []string{"Summer Bank Holiday (Scot)"},
		},
		{
			ID:           "st-andrews-9",
			Name:         "St Andrew's 9-Day Break",
			Description:  "Book 4 days (Dec 1-4), get 9 days off.",
			Dates:        dates("2026-12-01", "2026-12-02", "2026-12-03", "2026-12-04"),
			TotalDaysOff: 9,
			BankHolidays: []string{"St Andrew's Day"},
		},
		christmas10,
	},
	calendar.RegionNorthernIreland: {
		{
			ID:           "st-patricks-9",
			Name:         "St Patrick's 9-Day Week",
			Description:  "Book 4 days (Mar 16, 18-20), get 9 days off.",
			Dates:        dates("2026-03-16", "2026-03-18", "2026-03-19", "2026-03-20"),
			TotalDaysOff: 9,
			BankHolidays: []string{"St Patrick's Day"},
		},
		easter10,
		{
			ID:           "boyne-9",
			Name:         "Battle of the Boyne 9-Day",
			Description:  "Book 4 days (Jul 14-17), get 9 days off (Jul 11 - Jul 19).",
			Dates:        dates("2026-07-14", "2026-07-15", "2026-07-16", "2026-07-17"),
			TotalDaysOff: 9,
			BankHolidays: []string{"Battle of the Boyne"},
		},
		august9,
		{
			ID:           "christmas-10",
			Name:         "Christmas 10-Day Bridge",
			Description:  "Book 3 days, get 10 days off.",
			Dates:        christmas10.Dates,
			TotalDaysOff: 10,
			BankHolidays: []string{"Christmas Day", "Boxing Day (Sub)"},
		},
	},
}

// Strategies returns the suggestions of a region for a year. Suggestions
// exist only for the built-in holiday year; unknown regions fall back to
// the default region.
func Strategies(region calendar.Region, year int) []Strategy {
	if year != calendar.StaticYear {
		return nil
	}
	src := strategies[region.OrDefault()]
	out := make([]Strategy, len(src))
	for i, s := range src {
		out[i] = s.clone()
	}
	return out
}

func (s Strategy) clone() Strategy {
	s.Dates = append([]time.Time(nil), s.Dates...)
	s.BankHolidays = append([]string(nil), s.BankHolidays...)
	return s
}

// FindStrategy looks up a strategy by id within a region
func FindStrategy(region calendar.Region, year int, id string) (Strategy, error) {
	for _, s := range Strategies(region, year) {
		if s.ID == id {
			return s, nil
		}
	}
	return Strategy{}, fmt.Errorf("%w: %q in %s", ErrUnknownStrategy, id, region.OrDefault())
}
