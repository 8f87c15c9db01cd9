package calendar

import (
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// Registry resolves the holiday table of each region for one modeled year.
// Dates past the end of the year are plain weekdays unless lookahead
// holidays are enabled, in which case the following year's holidays up to
// the lookahead boundary are added too.
type Registry struct {
	year              int
	lookaheadDays     int
	lookaheadHolidays bool
	tables            map[Region]HolidayTable
	logger            *zap.Logger
}

// NewRegistry builds the tables of every region. overrides may be nil;
// when it defines holidays for a region they take precedence over the
// built-in ones.
func NewRegistry(year, lookaheadDays int, lookaheadHolidays bool, overrides *FileTable, logger *zap.Logger) *Registry {
	r := &Registry{
		year:              year,
		lookaheadDays:     lookaheadDays,
		lookaheadHolidays: lookaheadHolidays,
		tables:            make(map[Region]HolidayTable, len(Regions())),
		logger:            logger,
	}

	boundary := r.Boundary()

	for _, region := range Regions() {
		holidays := HolidaysForYear(region, year)
		if lookaheadHolidays {
			for _, h := range HolidaysForYear(region, year+1) {
				if h.Date.After(boundary) {
					break
				}
				holidays = append(holidays, h)
			}
		}

		var table HolidayTable = NewTable(holidays)
		if overrides != nil && overrides.Has(region) {
			logger.Info("Using holiday overrides",
				zap.String("region", string(region)),
				zap.Int("holidays", overrides.Table(region).Len()))
			table = NewCompositeTable(overrides.Table(region), table, logger)
		}
		r.tables[region] = table
	}

	return r
}

// Year returns the modeled year
func (r *Registry) Year() int {
	return r.year
}

// Boundary returns the last date covered by the lookahead, inclusive
func (r *Registry) Boundary() time.Time {
	return dateutil.Date(r.year+1, time.January, r.lookaheadDays)
}

// Table returns the holiday table of a region. Unknown regions fall back
// to the default region.
func (r *Registry) Table(region Region) HolidayTable {
	if !region.Valid() {
		r.logger.Warn("Unknown region, falling back to default",
			zap.String("region", string(region)),
			zap.String("default", string(DefaultRegion)))
		region = DefaultRegion
	}
	return r.tables[region]
}
