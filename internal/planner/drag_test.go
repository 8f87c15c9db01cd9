package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

func englandWales() calendar.HolidayTable {
	return calendar.NewRegistry(2026, 5, false, nil, zap.NewNop()).Table(calendar.RegionEnglandWales)
}

func formatAll(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = dateutil.Format(d)
	}
	return out
}

func TestDragEngine_CommitSkipsWeekendsAndHolidays(t *testing.T) {
	table := englandWales()

	tests := []struct {
		name    string
		anchor  string
		current string
	}{
		{"forward", "2026-04-01", "2026-04-08"},
		{"reversed", "2026-04-08", "2026-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var engine DragEngine
			require.True(t, engine.Press(dateutil.MustParse(tt.anchor), Plan{}, table))
			require.True(t, engine.Enter(dateutil.MustParse(tt.current)))

			commit, ok := engine.Release(table)
			require.True(t, ok)
			assert.Equal(t, ModeAdd, commit.Mode)
			assert.Equal(t, []string{"2026-04-01", "2026-04-02", "2026-04-07", "2026-04-08"}, formatAll(commit.Dates))

			plan := commit.Apply(Plan{})
			assert.Equal(t, []string{"2026-04-01", "2026-04-02", "2026-04-07", "2026-04-08"}, plan.Strings())
			assert.False(t, engine.Dragging())
		})
	}
}

func TestDragEngine_ModeFixedAtPress(t *testing.T) {
	table := englandWales()
	plan := NewPlan(dateutil.MustParse("2026-04-01"), dateutil.MustParse("2026-04-02"), dateutil.MustParse("2026-04-07"))

	var engine DragEngine
	require.True(t, engine.Press(dateutil.MustParse("2026-04-01"), plan, table))
	engine.Enter(dateutil.MustParse("2026-04-09"))
	engine.Enter(dateutil.MustParse("2026-04-02"))

	overlay, ok := engine.Overlay()
	require.True(t, ok)
	assert.Equal(t, ModeRemove, overlay.Mode)
	assert.Equal(t, "2026-04-01", dateutil.Format(overlay.Anchor))
	assert.Equal(t, "2026-04-02", dateutil.Format(overlay.Current))

	commit, ok := engine.Release(table)
	require.True(t, ok)
	assert.Equal(t, []string{"2026-04-07"}, commit.Apply(plan).Strings())
}

func TestDragEngine_PressIgnoresNonInteractableDays(t *testing.T) {
	table := englandWales()

	var engine DragEngine
	assert.False(t, engine.Press(dateutil.MustParse("2026-04-03"), Plan{}, table), "bank holiday")
	assert.False(t, engine.Press(dateutil.MustParse("2026-04-04"), Plan{}, table), "weekend")
	assert.False(t, engine.Dragging())

	_, ok := engine.Overlay()
	assert.False(t, ok)
}

func TestDragEngine_IdleEventsAreNoOps(t *testing.T) {
	table := englandWales()

	var engine DragEngine
	assert.False(t, engine.Enter(dateutil.MustParse("2026-04-01")))

	_, ok := engine.Release(table)
	assert.False(t, ok)

	require.True(t, engine.Press(dateutil.MustParse("2026-04-01"), Plan{}, table))
	_, ok = engine.Release(table)
	require.True(t, ok)

	assert.False(t, engine.Enter(dateutil.MustParse("2026-04-08")), "enter after release")
	_, ok = engine.Release(table)
	assert.False(t, ok, "second release")
}

func TestOverlay_PreviewIsUnfiltered(t *testing.T) {
	table := englandWales()

	var engine DragEngine
	engine.Press(dateutil.MustParse("2026-04-02"), Plan{}, table)
	engine.Enter(dateutil.MustParse("2026-04-06"))

	overlay, ok := engine.Overlay()
	require.True(t, ok)
	assert.Len(t, overlay.Dates(), 5)
	assert.True(t, overlay.Contains(dateutil.MustParse("2026-04-04")))
	assert.False(t, overlay.Contains(dateutil.MustParse("2026-04-07")))
}

func TestOverlay_Apply(t *testing.T) {
	plan := NewPlan(dateutil.MustParse("2026-04-01"), dateutil.MustParse("2026-04-10"))

	add := newOverlay(dateutil.MustParse("2026-04-08"), dateutil.MustParse("2026-04-09"), ModeAdd)
	assert.Equal(t, []string{"2026-04-01", "2026-04-08", "2026-04-09", "2026-04-10"}, add.Apply(plan).Strings())

	remove := newOverlay(dateutil.MustParse("2026-04-10"), dateutil.MustParse("2026-04-01"), ModeRemove)
	assert.Equal(t, 0, remove.Apply(plan).Len())

	assert.Equal(t, 2, plan.Len(), "plan untouched")
}
