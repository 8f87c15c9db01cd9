package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/leave-planner/pkg/dateutil"
)

func TestPlan_MutationsReturnNewSnapshots(t *testing.T) {
	base := NewPlan(dateutil.MustParse("2026-04-01"))

	added := base.With(dateutil.MustParse("2026-04-02"))
	removed := added.Without(dateutil.MustParse("2026-04-01"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, added.Len())
	assert.Equal(t, []string{"2026-04-02"}, removed.Strings())
	assert.True(t, base.Contains(dateutil.MustParse("2026-04-01")))
	assert.False(t, base.Contains(dateutil.MustParse("2026-04-02")))
}

func TestPlan_ZeroValue(t *testing.T) {
	var plan Plan

	assert.Equal(t, 0, plan.Len())
	assert.Empty(t, plan.Dates())
	assert.False(t, plan.Contains(dateutil.MustParse("2026-01-01")))
	assert.Equal(t, 0, plan.Without(dateutil.MustParse("2026-01-01")).Len())
}

func TestPlan_DatesSorted(t *testing.T) {
	plan := NewPlan(
		dateutil.MustParse("2026-12-30"),
		dateutil.MustParse("2026-01-05"),
		dateutil.MustParse("2026-06-15"),
		dateutil.MustParse("2026-01-05"),
	)

	assert.Equal(t, []string{"2026-01-05", "2026-06-15", "2026-12-30"}, plan.Strings())
	dates := plan.Dates()
	require.Len(t, dates, 3)
	assert.True(t, dates[0].Before(dates[1]))
	assert.True(t, dates[1].Before(dates[2]))
}

func TestPlan_Equal(t *testing.T) {
	a := NewPlan(dateutil.MustParse("2026-04-01"), dateutil.MustParse("2026-04-02"))
	b := NewPlan(dateutil.MustParse("2026-04-02"), dateutil.MustParse("2026-04-01"))
	c := NewPlan(dateutil.MustParse("2026-04-02"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
}

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan([]string{"2026-04-08", "2026-04-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-04-01", "2026-04-08"}, plan.Strings())

	_, err = ParsePlan([]string{"2026-04-01", "tomorrow"})
	assert.Error(t, err)
}
