package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

type fakeStorage struct {
	mu    sync.Mutex
	slots map[Slot][]time.Time
	errs  map[Slot]error
	saves map[Slot]int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		slots: make(map[Slot][]time.Time),
		errs:  make(map[Slot]error),
		saves: make(map[Slot]int),
	}
}

func (f *fakeStorage) LoadPlan(ctx context.Context, slot Slot) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[slot]; err != nil {
		return nil, err
	}
	dates, ok := f.slots[slot]
	if !ok {
		return nil, ErrNoSavedPlan
	}
	return dates, nil
}

func (f *fakeStorage) SavePlan(ctx context.Context, slot Slot, dates []time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot] = dates
	f.saves[slot]++
	return nil
}

func (f *fakeStorage) saved(slot Slot) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return formatAll(f.slots[slot])
}

func newTestController(t *testing.T, storage Storage) *Controller {
	t.Helper()
	registry := calendar.NewRegistry(2026, 5, false, nil, zap.NewNop())
	return NewController(registry, storage, Options{Region: calendar.RegionEnglandWales, LookaheadDays: 5}, zap.NewNop())
}

func TestController_DragLifecycle(t *testing.T) {
	storage := newFakeStorage()
	c := newTestController(t, storage)
	ctx := context.Background()

	snap := c.Press(dateutil.MustParse("2026-04-01"))
	assert.True(t, snap.Dragging())

	snap = c.Enter(dateutil.MustParse("2026-04-08"))
	assert.Equal(t, 0, snap.LeaveCount(), "plan untouched while dragging")
	assert.Equal(t, 8, snap.MaxConsecutive(), "live preview")

	snap = c.Release(ctx)
	assert.False(t, snap.Dragging())
	assert.Equal(t, []string{"2026-04-01", "2026-04-02", "2026-04-07", "2026-04-08"}, snap.Plan.Strings())
	assert.Equal(t, 8, snap.MaxConsecutive())
	assert.Equal(t, snap.Plan.Strings(), storage.saved(SlotAuto))
	assert.Empty(t, storage.saved(SlotSaved))
}

func TestController_ReleaseCommitsInOneBatch(t *testing.T) {
	storage := newFakeStorage()
	c := newTestController(t, storage)

	var snaps []Snapshot
	c.Subscribe(func(s Snapshot) {
		snaps = append(snaps, s)
	})

	c.Press(dateutil.MustParse("2026-04-01"))
	c.Enter(dateutil.MustParse("2026-04-08"))
	c.Release(context.Background())

	require.Len(t, snaps, 3)
	for _, s := range snaps[:2] {
		assert.NotNil(t, s.Overlay)
		assert.Equal(t, 0, s.LeaveCount(), "plan untouched before release")
	}

	var committed []Snapshot
	for _, s := range snaps {
		if s.Overlay == nil {
			committed = append(committed, s)
		}
		assert.Contains(t, []int{0, 4}, s.LeaveCount(), "no partial range is ever published")
	}
	require.Len(t, committed, 1)
	assert.Equal(t, []string{"2026-04-01", "2026-04-02", "2026-04-07", "2026-04-08"}, committed[0].Plan.Strings())
	assert.Equal(t, 1, storage.saves[SlotAuto])
}

func TestController_ApplyDatesDropsUnbookableDays(t *testing.T) {
	storage := newFakeStorage()
	c := newTestController(t, storage)

	snap := c.ApplyDates(context.Background(), []time.Time{
		dateutil.MustParse("2026-04-04"), // Saturday
		dateutil.MustParse("2026-04-03"), // Good Friday
		dateutil.MustParse("2031-06-02"),
		dateutil.MustParse("2026-04-01"),
	})

	assert.Equal(t, []string{"2026-04-01"}, snap.Plan.Strings())
	assert.Equal(t, 1, snap.LeaveCount())
	assert.Equal(t, []string{"2026-04-01"}, storage.saved(SlotAuto))
}

func TestController_AutosaveKeepsLatestPlan(t *testing.T) {
	storage := newFakeStorage()
	c := newTestController(t, storage)
	ctx := context.Background()

	var workdays []time.Time
	for _, d := range dateutil.Range(dateutil.MustParse("2026-06-01"), dateutil.MustParse("2026-06-30")) {
		if !dateutil.IsWeekend(d) {
			workdays = append(workdays, d)
		}
	}

	var wg sync.WaitGroup
	for _, d := range workdays {
		wg.Add(1)
		go func(d time.Time) {
			defer wg.Done()
			c.ApplyDates(ctx, []time.Time{d})
		}(d)
	}
	wg.Wait()

	final := c.Snapshot().Plan
	assert.Equal(t, len(workdays), final.Len())
	assert.Equal(t, final.Strings(), storage.saved(SlotAuto))
}

func TestController_ReleaseWithoutPressIsNoOp(t *testing.T) {
	storage := newFakeStorage()
	c := newTestController(t, storage)

	snap := c.Release(context.Background())
	assert.Equal(t, 0, snap.LeaveCount())
	assert.Equal(t, 0, storage.saves[SlotAuto])

	snap = c.Press(dateutil.MustParse("2026-04-04"))
	assert.False(t, snap.Dragging(), "weekend press ignored")
}

func TestController_RemoveDragPreview(t *testing.T) {
	c := newTestController(t, newFakeStorage())
	ctx := context.Background()

	c.ApplyDates(ctx, []time.Time{dateutil.MustParse("2026-04-01"), dateutil.MustParse("2026-04-02")})

	snap := c.Press(dateutil.MustParse("2026-04-02"))
	require.NotNil(t, snap.Overlay)
	assert.Equal(t, ModeRemove, snap.Overlay.Mode)

	day := snap.Day(dateutil.MustParse("2026-04-02"))
	assert.True(t, day.Selected)
	assert.True(t, day.InPreview)
	assert.False(t, day.PreviewSelected)
	assert.Equal(t, calendar.DayTypeLeave, day.Type)

	snap = c.Enter(dateutil.MustParse("2026-04-03"))
	holiday := snap.Day(dateutil.MustParse("2026-04-03"))
	assert.False(t, holiday.InPreview, "bank holiday never previewed")
	assert.Equal(t, "Good Friday", holiday.HolidayName)

	snap = c.Release(ctx)
	assert.Equal(t, []string{"2026-04-01"}, snap.Plan.Strings())
}

func TestController_ApplyStrategyIdempotent(t *testing.T) {
	c := newTestController(t, newFakeStorage())
	ctx := context.Background()

	once, err := c.ApplyStrategy(ctx, "easter-10")
	require.NoError(t, err)
	twice, err := c.ApplyStrategy(ctx, "easter-10")
	require.NoError(t, err)

	assert.True(t, once.Plan.Equal(twice.Plan))
	assert.Equal(t, 4, twice.LeaveCount())

	_, err = c.ApplyStrategy(ctx, "st-andrews-9")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
	assert.Equal(t, 4, c.Snapshot().LeaveCount())
}

func TestController_RegionSwitchKeepsPlan(t *testing.T) {
	c := newTestController(t, newFakeStorage())
	ctx := context.Background()

	before, err := c.ApplyStrategy(ctx, "easter-10")
	require.NoError(t, err)
	assert.Equal(t, 8, before.MaxConsecutive())

	after := c.SetRegion(calendar.RegionScotland)
	assert.True(t, before.Plan.Equal(after.Plan))
	assert.Equal(t, calendar.RegionScotland, after.Region)
	assert.Equal(t, calendar.DayTypeWorkday, after.Day(dateutil.MustParse("2026-04-06")).Type)
	assert.Equal(t, 5, after.MaxConsecutive())

	fallback := c.SetRegion(calendar.Region("atlantis"))
	assert.Equal(t, calendar.RegionEnglandWales, fallback.Region)
	assert.True(t, before.Plan.Equal(fallback.Plan))
}

func TestController_SaveLoadRoundTrip(t *testing.T) {
	storage := newFakeStorage()
	c := newTestController(t, storage)
	ctx := context.Background()

	_, err := c.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoSavedPlan))

	original := c.ApplyDates(ctx, []time.Time{dateutil.MustParse("2026-12-31"), dateutil.MustParse("2026-05-26")})
	require.NoError(t, c.Save(ctx))

	c.ClearAll(ctx)
	assert.Equal(t, 0, c.Snapshot().LeaveCount())
	assert.Empty(t, storage.saved(SlotAuto))

	loaded, err := c.Load(ctx)
	require.NoError(t, err)
	assert.True(t, original.Plan.Equal(loaded.Plan))
	assert.Equal(t, original.Plan.Strings(), storage.saved(SlotAuto))
}

func TestController_LoadMalformedKeepsPlan(t *testing.T) {
	storage := newFakeStorage()
	storage.errs[SlotSaved] = fmt.Errorf("slot saved: %w", ErrMalformedPlan)
	c := newTestController(t, storage)
	ctx := context.Background()

	c.ApplyDates(ctx, []time.Time{dateutil.MustParse("2026-04-01")})

	snap, err := c.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoSavedPlan))
	assert.Equal(t, []string{"2026-04-01"}, snap.Plan.Strings())
}

func TestController_Init(t *testing.T) {
	auto := []time.Time{dateutil.MustParse("2026-06-01")}
	saved := []time.Time{dateutil.MustParse("2026-07-01"), dateutil.MustParse("2026-07-02")}

	tests := []struct {
		name  string
		setup func(*fakeStorage)
		want  []string
	}{
		{
			name: "auto slot wins",
			setup: func(s *fakeStorage) {
				s.slots[SlotAuto] = auto
				s.slots[SlotSaved] = saved
			},
			want: []string{"2026-06-01"},
		},
		{
			name: "saved slot when no auto-save",
			setup: func(s *fakeStorage) {
				s.slots[SlotSaved] = saved
			},
			want: []string{"2026-07-01", "2026-07-02"},
		},
		{
			name: "malformed auto-save falls through",
			setup: func(s *fakeStorage) {
				s.errs[SlotAuto] = ErrMalformedPlan
				s.slots[SlotSaved] = saved
			},
			want: []string{"2026-07-01", "2026-07-02"},
		},
		{
			name: "everything malformed gives empty plan",
			setup: func(s *fakeStorage) {
				s.errs[SlotAuto] = ErrMalformedPlan
				s.errs[SlotSaved] = ErrMalformedPlan
			},
			want: []string{},
		},
		{
			name:  "nothing stored",
			setup: func(s *fakeStorage) {},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newFakeStorage()
			tt.setup(storage)
			c := newTestController(t, storage)

			require.NoError(t, c.Init(context.Background()))
			assert.Equal(t, tt.want, c.Snapshot().Plan.Strings())
			assert.Equal(t, 0, storage.saves[SlotAuto], "init does not auto-save")
		})
	}
}

func TestController_Subscribe(t *testing.T) {
	c := newTestController(t, newFakeStorage())
	ctx := context.Background()

	var got []int
	cancel := c.Subscribe(func(s Snapshot) {
		got = append(got, s.LeaveCount())
	})

	c.ApplyDates(ctx, []time.Time{dateutil.MustParse("2026-04-01")})
	c.Enter(dateutil.MustParse("2026-04-02"))
	c.ApplyDates(ctx, []time.Time{dateutil.MustParse("2026-04-02")})
	cancel()
	c.ClearAll(ctx)

	assert.Equal(t, []int{1, 2}, got)
}

func TestSnapshot_MonthViews(t *testing.T) {
	c := newTestController(t, newFakeStorage())
	snap := c.ApplyDates(context.Background(), []time.Time{dateutil.MustParse("2026-12-29")})

	days := snap.Month(time.December)
	require.Len(t, days, 31)
	assert.Equal(t, calendar.DayTypeBankHoliday, days[24].Type)
	assert.True(t, days[24].InStreak)
	assert.Equal(t, calendar.DayTypeLeave, days[28].Type)

	info := snap.MonthInfo(time.December)
	assert.Equal(t, 1, info.Leave)
	assert.Equal(t, 2, info.Holidays)

	assert.Len(t, snap.Holidays(), 8, "lookahead holidays are not listed")
	assert.Len(t, snap.Strategies(), 5)
}
