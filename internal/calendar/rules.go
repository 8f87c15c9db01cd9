package calendar

import (
	"sort"
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
)

type ruleKind int

const (
	ruleFixed ruleKind = iota
	ruleEaster
	ruleFirstMonday
	ruleLastMonday
)

// holidayRule describes how a holiday's date is derived for a year
type holidayRule struct {
	kind   ruleKind
	name   string
	month  time.Month
	day    int // ruleFixed only
	offset int // days from Easter Sunday, ruleEaster only
}

var (
	ruleNewYear      = holidayRule{kind: ruleFixed, name: "New Year's Day", month: time.January, day: 1}
	ruleGoodFriday   = holidayRule{kind: ruleEaster, name: "Good Friday", offset: -2}
	ruleEasterMonday = holidayRule{kind: ruleEaster, name: "Easter Monday", offset: 1}
	ruleEarlyMay     = holidayRule{kind: ruleFirstMonday, name: "Early May Bank Holiday", month: time.May}
	ruleSpring       = holidayRule{kind: ruleLastMonday, name: "Spring Bank Holiday", month: time.May}
	ruleChristmas    = holidayRule{kind: ruleFixed, name: "Christmas Day", month: time.December, day: 25}
	ruleBoxingDay    = holidayRule{kind: ruleFixed, name: "Boxing Day", month: time.December, day: 26}
)

var regionRules = map[Region][]holidayRule{
	RegionEnglandWales: {
		ruleNewYear,
		ruleGoodFriday,
		ruleEasterMonday,
		ruleEarlyMay,
		ruleSpring,
		{kind: ruleLastMonday, name: "Summer Bank Holiday", month: time.August},
		ruleChristmas,
		ruleBoxingDay,
	},
	RegionScotland: {
		ruleNewYear,
		{kind: ruleFixed, name: "2nd January", month: time.January, day: 2},
		ruleGoodFriday,
		ruleEarlyMay,
		ruleSpring,
		{kind: ruleFirstMonday, name: "Summer Bank Holiday", month: time.August},
		{kind: ruleFixed, name: "St Andrew's Day", month: time.November, day: 30},
		ruleChristmas,
		ruleBoxingDay,
	},
	RegionNorthernIreland: {
		ruleNewYear,
		{kind: ruleFixed, name: "St Patrick's Day", month: time.March, day: 17},
		ruleGoodFriday,
		ruleEasterMonday,
		ruleEarlyMay,
		ruleSpring,
		{kind: ruleFixed, name: "Battle of the Boyne", month: time.July, day: 12},
		{kind: ruleLastMonday, name: "Summer Bank Holiday", month: time.August},
		ruleChristmas,
		ruleBoxingDay,
	},
}

// GenerateHolidays derives a region's bank holidays for a year from the
// statutory rules. Fixed-date holidays falling on a weekend move to the
// next weekday that is not already a holiday and get a "(Substitute)" suffix.
// Royal and one-off proclamations are not covered.
func GenerateHolidays(region Region, year int) []BankHoliday {
	rules := regionRules[region.OrDefault()]
	easter := calculateEaster(year)

	taken := make(map[string]bool)
	holidays := make([]BankHoliday, 0, len(rules))
	var weekendFixed []holidayRule

	for _, rule := range rules {
		date := rule.date(year, easter)
		if rule.kind == ruleFixed && dateutil.IsWeekend(date) {
			weekendFixed = append(weekendFixed, rule)
			continue
		}
		taken[dateutil.Format(date)] = true
		holidays = append(holidays, BankHoliday{Date: date, Name: rule.name})
	}

	for _, rule := range weekendFixed {
		date := rule.date(year, easter)
		for dateutil.IsWeekend(date) || taken[dateutil.Format(date)] {
			date = date.AddDate(0, 0, 1)
		}
		taken[dateutil.Format(date)] = true
		holidays = append(holidays, BankHoliday{Date: date, Name: rule.name + " (Substitute)"})
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})

	return holidays
}

func (r holidayRule) date(year int, easter time.Time) time.Time {
	switch r.kind {
	case ruleEaster:
		return easter.AddDate(0, 0, r.offset)
	case ruleFirstMonday:
		first := dateutil.Date(year, r.month, 1)
		return first.AddDate(0, 0, (7-dateutil.WeekdayIndex(first))%7)
	case ruleLastMonday:
		last := dateutil.Date(year, r.month, dateutil.DaysInMonth(year, r.month))
		return last.AddDate(0, 0, -dateutil.WeekdayIndex(last))
	default:
		return dateutil.Date(year, r.month, r.day)
	}
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return dateutil.Date(year, time.Month(month), day)
}
