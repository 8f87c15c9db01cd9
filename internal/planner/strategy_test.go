package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

func TestStrategies_PerRegion(t *testing.T) {
	tests := []struct {
		region calendar.Region
		want   []string
	}{
		{calendar.RegionEnglandWales, []string{"easter-10", "easter-16", "may-double", "august-9", "christmas-10"}},
		{calendar.RegionScotland, []string{"new-year-11", "scot-august-9", "st-andrews-9", "christmas-10"}},
		{calendar.RegionNorthernIreland, []string{"st-patricks-9", "easter-10", "boyne-9", "august-9", "christmas-10"}},
		{calendar.Region("unknown"), []string{"easter-10", "easter-16", "may-double", "august-9", "christmas-10"}},
	}

	for _, tt := range tests {
		var ids []string
		for _, s := range Strategies(tt.region, calendar.StaticYear) {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, tt.want, ids, string(tt.region))
	}

	assert.Empty(t, Strategies(calendar.RegionEnglandWales, 2027))
}

func TestStrategies_DatesAreWorkdays(t *testing.T) {
	registry := calendar.NewRegistry(calendar.StaticYear, 5, false, nil, zap.NewNop())

	for _, region := range calendar.Regions() {
		table := registry.Table(region)
		for _, s := range Strategies(region, calendar.StaticYear) {
			for _, d := range s.Dates {
				assert.Equal(t, calendar.DayTypeWorkday, calendar.Classify(d, table, nil),
					"%s %s %s", region, s.ID, dateutil.Format(d))
			}
		}
	}
}

func TestFindStrategy(t *testing.T) {
	s, err := FindStrategy(calendar.RegionScotland, 2026, "st-andrews-9")
	require.NoError(t, err)
	assert.Equal(t, 9, s.TotalDaysOff)
	assert.Len(t, s.Dates, 4)

	_, err = FindStrategy(calendar.RegionScotland, 2026, "easter-10")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestStrategies_ReturnsCopies(t *testing.T) {
	first := Strategies(calendar.RegionEnglandWales, calendar.StaticYear)
	first[0].Dates[0] = dateutil.MustParse("2026-01-01")
	first[0].BankHolidays[0] = "changed"
	last := first[len(first)-1]
	last.Dates[0] = dateutil.MustParse("2026-01-01")

	again := Strategies(calendar.RegionEnglandWales, calendar.StaticYear)
	assert.Equal(t, "2026-04-01", dateutil.Format(again[0].Dates[0]))
	assert.Equal(t, "Good Friday", again[0].BankHolidays[0])

	scotland, err := FindStrategy(calendar.RegionScotland, calendar.StaticYear, "christmas-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-29", dateutil.Format(scotland.Dates[0]))
}
