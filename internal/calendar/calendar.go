package calendar

import (
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeBankHoliday
	DayTypeLeave
)

// String returns the lowercase name used in logs and the API
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeBankHoliday:
		return "bank_holiday"
	case DayTypeLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// IsOff reports whether the day counts towards a streak of days off
func (t DayType) IsOff() bool {
	return t == DayTypeWeekend || t == DayTypeBankHoliday || t == DayTypeLeave
}

// Interactable reports whether the user may select or deselect the day
func (t DayType) Interactable() bool {
	return t != DayTypeWeekend && t != DayTypeBankHoliday
}

// BankHoliday is a public holiday observed on a date
type BankHoliday struct {
	Date time.Time
	Name string
}

// HolidayTable is an immutable, date-ordered set of bank holidays
type HolidayTable interface {
	// Lookup returns the holiday observed on date, if any
	Lookup(date time.Time) (BankHoliday, bool)

	// Holidays returns all holidays ordered by date
	Holidays() []BankHoliday
}

// LeaveSet answers whether a date was chosen as leave
type LeaveSet interface {
	Contains(date time.Time) bool
}

// Classify maps a date to its day type.
// Precedence is BankHoliday > Weekend > Leave > Workday. A nil table or
// leave set simply never matches.
func Classify(date time.Time, table HolidayTable, leave LeaveSet) DayType {
	if table != nil {
		if _, ok := table.Lookup(date); ok {
			return DayTypeBankHoliday
		}
	}
	if dateutil.IsWeekend(date) {
		return DayTypeWeekend
	}
	if leave != nil && leave.Contains(date) {
		return DayTypeLeave
	}
	return DayTypeWorkday
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date        time.Time
	Type        DayType
	HolidayName string
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year     int
	Month    time.Month
	WorkDays int
	Weekends int
	Holidays int
	Leave    int
	Days     []DayInfo
}

// BuildMonth classifies every day of a month and counts each type
func BuildMonth(year int, month time.Month, table HolidayTable, leave LeaveSet) MonthInfo {
	daysInMonth := dateutil.DaysInMonth(year, month)

	monthInfo := MonthInfo{
		Year:  year,
		Month: month,
		Days:  make([]DayInfo, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		date := dateutil.Date(year, month, day)
		info := DayInfo{
			Date: date,
			Type: Classify(date, table, leave),
		}

		switch info.Type {
		case DayTypeBankHoliday:
			holiday, _ := table.Lookup(date)
			info.HolidayName = holiday.Name
			monthInfo.Holidays++
		case DayTypeWeekend:
			monthInfo.Weekends++
		case DayTypeLeave:
			monthInfo.Leave++
		default:
			monthInfo.WorkDays++
		}

		monthInfo.Days = append(monthInfo.Days, info)
	}

	return monthInfo
}
