package calendar

import (
	"sort"
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
)

// StaticYear is the year covered by the built-in holiday tables
const StaticYear = 2026

// Table is an in-memory HolidayTable
type Table struct {
	byDate   map[string]BankHoliday
	holidays []BankHoliday
}

// NewTable builds a table from holidays in any order.
// When two entries share a date the first one wins.
func NewTable(holidays []BankHoliday) *Table {
	t := &Table{
		byDate:   make(map[string]BankHoliday, len(holidays)),
		holidays: make([]BankHoliday, 0, len(holidays)),
	}

	for _, h := range holidays {
		key := dateutil.Format(h.Date)
		if _, exists := t.byDate[key]; exists {
			continue
		}
		h.Date = dateutil.StartOfDay(h.Date)
		t.byDate[key] = h
		t.holidays = append(t.holidays, h)
	}

	sort.Slice(t.holidays, func(i, j int) bool {
		return t.holidays[i].Date.Before(t.holidays[j].Date)
	})

	return t
}

// Lookup returns the holiday observed on date
func (t *Table) Lookup(date time.Time) (BankHoliday, bool) {
	h, ok := t.byDate[dateutil.Format(date)]
	return h, ok
}

// Holidays returns a copy of the holidays ordered by date
func (t *Table) Holidays() []BankHoliday {
	out := make([]BankHoliday, len(t.holidays))
	copy(out, t.holidays)
	return out
}

// Len returns the number of holidays in the table
func (t *Table) Len() int {
	return len(t.holidays)
}

func bh(date, name string) BankHoliday {
	return BankHoliday{Date: dateutil.MustParse(date), Name: name}
}

var staticHolidays = map[Region][]BankHoliday{
	RegionEnglandWales: {
		bh("2026-01-01", "New Year's Day"),
		bh("2026-04-03", "Good Friday"),
		bh("2026-04-06", "Easter Monday"),
		bh("2026-05-04", "Early May Bank Holiday"),
		bh("2026-05-25", "Spring Bank Holiday"),
		bh("2026-08-31", "Summer Bank Holiday"),
		bh("2026-12-25", "Christmas Day"),
		bh("2026-12-28", "Boxing Day (Substitute)"),
	},
	RegionScotland: {
		bh("2026-01-01", "New Year's Day"),
		bh("2026-01-02", "2nd January"),
		bh("2026-04-03", "Good Friday"),
		bh("2026-05-04", "Early May Bank Holiday"),
		bh("2026-05-25", "Spring Bank Holiday"),
		bh("2026-08-03", "Summer Bank Holiday"),
		bh("2026-11-30", "St Andrew's Day"),
		bh("2026-12-25", "Christmas Day"),
		bh("2026-12-28", "Boxing Day (Substitute)"),
	},
	RegionNorthernIreland: {
		bh("2026-01-01", "New Year's Day"),
		bh("2026-03-17", "St Patrick's Day"),
		bh("2026-04-03", "Good Friday"),
		bh("2026-04-06", "Easter Monday"),
		bh("2026-05-04", "Early May Bank Holiday"),
		bh("2026-05-25", "Spring Bank Holiday"),
		bh("2026-07-13", "Battle of the Boyne (Substitute)"),
		bh("2026-08-31", "Summer Bank Holiday"),
		bh("2026-12-25", "Christmas Day"),
		bh("2026-12-28", "Boxing Day (Substitute)"),
	},
}

// StaticHolidays returns the built-in holiday list for a region.
// Unknown regions fall back to the default region.
func StaticHolidays(region Region) []BankHoliday {
	src := staticHolidays[region.OrDefault()]
	out := make([]BankHoliday, len(src))
	copy(out, src)
	return out
}

// HolidaysForYear returns the built-in list for StaticYear and the
// rule-generated list for any other year.
func HolidaysForYear(region Region, year int) []BankHoliday {
	if year == StaticYear {
		return StaticHolidays(region)
	}
	return GenerateHolidays(region, year)
}
