package calendar

import (
	"time"

	"go.uber.org/zap"
)

// CompositeTable implements HolidayTable with fallback strategy
// Primary: holidays from the override file
// Fallback: built-in or rule-generated holidays
type CompositeTable struct {
	primary  HolidayTable
	fallback HolidayTable
	logger   *zap.Logger
}

// NewCompositeTable creates a new CompositeTable
func NewCompositeTable(primary, fallback HolidayTable, logger *zap.Logger) *CompositeTable {
	return &CompositeTable{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Lookup checks the primary table first, then the fallback
func (ct *CompositeTable) Lookup(date time.Time) (BankHoliday, bool) {
	if h, ok := ct.primary.Lookup(date); ok {
		return h, true
	}
	return ct.fallback.Lookup(date)
}

// Holidays returns the union of both tables; the primary name wins on a shared date
func (ct *CompositeTable) Holidays() []BankHoliday {
	merged := append(ct.primary.Holidays(), ct.fallback.Holidays()...)
	return NewTable(merged).Holidays()
}
