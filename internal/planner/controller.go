package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

var (
	// ErrNoSavedPlan is returned when a storage slot is empty or unreadable
	ErrNoSavedPlan = errors.New("no saved plan found")

	// ErrMalformedPlan is returned by storage when a slot holds invalid data
	ErrMalformedPlan = errors.New("malformed saved plan")
)

// Slot selects one of the persisted copies of a plan
type Slot int

const (
	// SlotSaved is written only by an explicit save
	SlotSaved Slot = iota + 1
	// SlotAuto is written after every change to the plan
	SlotAuto
)

func (s Slot) String() string {
	if s == SlotAuto {
		return "auto"
	}
	return "saved"
}

// Storage persists plans. LoadPlan returns an error wrapping ErrNoSavedPlan
// for an empty slot and ErrMalformedPlan for undecodable data.
type Storage interface {
	LoadPlan(ctx context.Context, slot Slot) ([]time.Time, error)
	SavePlan(ctx context.Context, slot Slot, dates []time.Time) error
}

// Options configures a Controller
type Options struct {
	Year            int
	Region          calendar.Region
	LookaheadDays   int
	MinStreakLength int
}

// Controller owns the plan of one user. Every event recomputes the derived
// state, auto-saves changed plans and notifies subscribers.
type Controller struct {
	mu sync.Mutex

	registry  *calendar.Registry
	storage   Storage
	logger    *zap.Logger
	year      int
	window    Window
	minStreak int

	region   calendar.Region
	plan     Plan
	drag     DragEngine
	snapshot Snapshot

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewController creates a controller with an empty plan. Call Init to
// restore a persisted plan.
func NewController(registry *calendar.Registry, storage Storage, opts Options, logger *zap.Logger) *Controller {
	if opts.MinStreakLength <= 0 {
		opts.MinStreakLength = DefaultMinStreakLength
	}

	c := &Controller{
		registry:    registry,
		storage:     storage,
		logger:      logger,
		year:        registry.Year(),
		window:      YearWindow(registry.Year(), opts.LookaheadDays),
		minStreak:   opts.MinStreakLength,
		region:      opts.Region.OrDefault(),
		subscribers: make(map[int]func(Snapshot)),
	}
	c.snapshot = c.recompute()
	return c
}

// Init restores the auto-saved plan, or the explicitly saved one when no
// auto-save exists. Unreadable data leaves the plan empty.
// The auto slot wins over the saved slot, so unsaved edits survive a restart.
func (c *Controller) Init(ctx context.Context) error {
	var restored []time.Time
	var source Slot

	for _, slot := range []Slot{SlotAuto, SlotSaved} {
		dates, err := c.storage.LoadPlan(ctx, slot)
		if err == nil {
			restored, source = dates, slot
			break
		}
		if errors.Is(err, ErrNoSavedPlan) {
			continue
		}
		if errors.Is(err, ErrMalformedPlan) {
			c.logger.Warn("Ignoring malformed plan", zap.Stringer("slot", slot), zap.Error(err))
			continue
		}
		c.logger.Error("Failed to restore plan", zap.Stringer("slot", slot), zap.Error(err))
	}

	c.mu.Lock()
	c.plan = NewPlan(restored...)
	c.drag = DragEngine{}
	snap := c.refresh()
	subs := c.subscriberList()
	c.mu.Unlock()

	if source != 0 {
		c.logger.Info("Plan restored",
			zap.Stringer("slot", source),
			zap.Int("dates", snap.Plan.Len()))
	}

	notify(subs, snap)
	return nil
}

// Snapshot returns the current derived state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Press starts a drag gesture on date
func (c *Controller) Press(date time.Time) Snapshot {
	return c.update(func() bool {
		return c.drag.Press(date, c.plan, c.table())
	})
}

// Enter moves an active drag gesture to date
func (c *Controller) Enter(date time.Time) Snapshot {
	return c.update(func() bool {
		return c.drag.Enter(date)
	})
}

// Release ends the drag gesture and commits it to the plan in one batch
func (c *Controller) Release(ctx context.Context) Snapshot {
	var commit Commit
	var committed bool

	snap := c.apply(ctx, func() (bool, bool) {
		wasDragging := c.drag.Dragging()
		commit, committed = c.drag.Release(c.table())
		if committed {
			c.plan = commit.Apply(c.plan)
		}
		return wasDragging, committed
	})

	if committed {
		c.logger.Info("Drag committed",
			zap.Stringer("mode", commit.Mode),
			zap.Int("dates", len(commit.Dates)),
			zap.Int("leave", snap.Plan.Len()))
	}
	return snap
}

// ApplyStrategy adds the dates of a strategy of the current region
func (c *Controller) ApplyStrategy(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	region := c.region
	c.mu.Unlock()

	strategy, err := FindStrategy(region, c.year, id)
	if err != nil {
		return c.Snapshot(), err
	}

	c.logger.Info("Applying strategy",
		zap.String("strategy", strategy.ID),
		zap.Int("dates", len(strategy.Dates)))

	// Strategy dates are trusted as shipped.
	return c.apply(ctx, func() (bool, bool) {
		c.plan = c.plan.With(strategy.Dates...)
		return true, true
	}), nil
}

// ApplyDates adds the workdays of the modeled year among dates to the plan.
// Weekends, bank holidays and dates of other years are dropped.
func (c *Controller) ApplyDates(ctx context.Context, dates []time.Time) Snapshot {
	var accepted []time.Time

	snap := c.apply(ctx, func() (bool, bool) {
		table := c.table()
		accepted = make([]time.Time, 0, len(dates))
		for _, d := range dates {
			if d.Year() != c.year || !calendar.Classify(d, table, nil).Interactable() {
				continue
			}
			accepted = append(accepted, d)
		}
		c.plan = c.plan.With(accepted...)
		return true, true
	})

	if dropped := len(dates) - len(accepted); dropped > 0 {
		c.logger.Info("Dropped dates that cannot be booked",
			zap.Int("dropped", dropped),
			zap.Int("accepted", len(accepted)))
	}
	return snap
}

// ClearAll empties the plan
func (c *Controller) ClearAll(ctx context.Context) Snapshot {
	snap := c.apply(ctx, func() (bool, bool) {
		c.plan = Plan{}
		return true, true
	})
	c.logger.Info("Plan cleared")
	return snap
}

// Save writes the plan to the saved slot
func (c *Controller) Save(ctx context.Context) error {
	plan := c.Snapshot().Plan
	if err := c.storage.SavePlan(ctx, SlotSaved, plan.Dates()); err != nil {
		c.logger.Error("Failed to save plan", zap.Error(err))
		return fmt.Errorf("failed to save plan: %w", err)
	}

	c.logger.Info("Plan saved", zap.Int("dates", plan.Len()))
	return nil
}

// Load replaces the plan with the saved slot. An empty or malformed slot
// leaves the plan unchanged and returns ErrNoSavedPlan.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	dates, err := c.storage.LoadPlan(ctx, SlotSaved)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoSavedPlan):
			return c.Snapshot(), ErrNoSavedPlan
		case errors.Is(err, ErrMalformedPlan):
			c.logger.Warn("Ignoring malformed plan", zap.Stringer("slot", SlotSaved), zap.Error(err))
			return c.Snapshot(), ErrNoSavedPlan
		default:
			c.logger.Error("Failed to load plan", zap.Error(err))
			return c.Snapshot(), fmt.Errorf("failed to load plan: %w", err)
		}
	}

	snap := c.apply(ctx, func() (bool, bool) {
		c.plan = NewPlan(dates...)
		return true, true
	})
	c.logger.Info("Plan loaded", zap.Int("dates", snap.Plan.Len()))
	return snap, nil
}

// SetRegion switches the holiday table. The plan is kept as is.
func (c *Controller) SetRegion(region calendar.Region) Snapshot {
	return c.update(func() bool {
		region = region.OrDefault()
		if region == c.region {
			return false
		}
		c.logger.Info("Region changed",
			zap.String("from", string(c.region)),
			zap.String("to", string(region)))
		c.region = region
		return true
	})
}

// Subscribe registers fn to receive every new snapshot. The returned func
// removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// update runs mutate under the lock and, when it reports a change,
// recomputes the snapshot and notifies subscribers outside the lock
func (c *Controller) update(mutate func() bool) Snapshot {
	return c.apply(context.Background(), func() (bool, bool) {
		return mutate(), false
	})
}

// apply is update for mutations that may also persist the plan. The
// auto-save runs inside the critical section so the auto slot always
// holds the latest plan.
func (c *Controller) apply(ctx context.Context, mutate func() (changed, persist bool)) Snapshot {
	c.mu.Lock()
	changed, persist := mutate()
	if !changed {
		snap := c.snapshot
		c.mu.Unlock()
		return snap
	}
	snap := c.refresh()
	if persist {
		c.autosave(ctx, snap.Plan)
	}
	subs := c.subscriberList()
	c.mu.Unlock()

	notify(subs, snap)
	return snap
}

func (c *Controller) refresh() Snapshot {
	c.snapshot = c.recompute()
	return c.snapshot
}

func (c *Controller) recompute() Snapshot {
	table := c.table()
	snap := Snapshot{
		Year:   c.year,
		Region: c.region,
		Plan:   c.plan,
		table:  table,
	}

	effective := c.plan
	if overlay, ok := c.drag.Overlay(); ok {
		snap.Overlay = &overlay
		effective = overlay.Apply(c.plan)
	}
	snap.Analysis = Analyze(effective, table, c.window, c.minStreak)

	return snap
}

func (c *Controller) table() calendar.HolidayTable {
	return c.registry.Table(c.region)
}

func (c *Controller) subscriberList() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Controller) autosave(ctx context.Context, plan Plan) {
	if err := c.storage.SavePlan(ctx, SlotAuto, plan.Dates()); err != nil {
		c.logger.Error("Auto-save failed", zap.Error(err))
		return
	}
	c.logger.Debug("Plan auto-saved", zap.Int("dates", plan.Len()))
}

// Snapshot is an immutable view of the controller state
type Snapshot struct {
	Year     int
	Region   calendar.Region
	Plan     Plan
	Overlay  *Overlay
	Analysis Analysis

	table calendar.HolidayTable
}

// DayView is everything a renderer needs to draw one day
type DayView struct {
	Date        time.Time
	Type        calendar.DayType
	HolidayName string
	Selected    bool
	InStreak    bool
	// InPreview is set for interactable days inside an active drag range
	InPreview bool
	// PreviewSelected is the selection the day will have after release
	PreviewSelected bool
}

// Day returns the view of one date
func (s Snapshot) Day(date time.Time) DayView {
	date = dateutil.StartOfDay(date)
	dayType := calendar.Classify(date, s.table, s.Plan)

	view := DayView{
		Date:     date,
		Type:     dayType,
		Selected: s.Plan.Contains(date),
		InStreak: s.Analysis.InStreak(date),
	}
	if dayType == calendar.DayTypeBankHoliday {
		h, _ := s.table.Lookup(date)
		view.HolidayName = h.Name
	}
	if s.Overlay != nil && dayType.Interactable() && s.Overlay.Contains(date) {
		view.InPreview = true
		view.PreviewSelected = s.Overlay.Mode == ModeAdd
	}
	return view
}

// Month returns the views of every day of a month of the modeled year
func (s Snapshot) Month(month time.Month) []DayView {
	days := make([]DayView, 0, 31)
	for day := 1; day <= dateutil.DaysInMonth(s.Year, month); day++ {
		days = append(days, s.Day(dateutil.Date(s.Year, month, day)))
	}
	return days
}

// MonthInfo returns the per-type day counts of a month of the modeled year
func (s Snapshot) MonthInfo(month time.Month) calendar.MonthInfo {
	return calendar.BuildMonth(s.Year, month, s.table, s.Plan)
}

// Holidays returns the bank holidays of the modeled year for the region
func (s Snapshot) Holidays() []calendar.BankHoliday {
	var out []calendar.BankHoliday
	for _, h := range s.table.Holidays() {
		if h.Date.Year() == s.Year {
			out = append(out, h)
		}
	}
	return out
}

// Strategies returns the suggestions available in the snapshot's region
func (s Snapshot) Strategies() []Strategy {
	return Strategies(s.Region, s.Year)
}

// Dragging reports whether a drag gesture is active
func (s Snapshot) Dragging() bool {
	return s.Overlay != nil
}

// LeaveCount returns the number of chosen leave days
func (s Snapshot) LeaveCount() int {
	return s.Plan.Len()
}

// MaxConsecutive returns the longest run of days off containing leave
func (s Snapshot) MaxConsecutive() int {
	return s.Analysis.MaxConsecutive
}

// Streaks returns the reported runs ordered by start date
func (s Snapshot) Streaks() []StreakRecord {
	return s.Analysis.Summary
}
