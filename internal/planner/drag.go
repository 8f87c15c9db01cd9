package planner

import (
	"time"

	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/pkg/dateutil"
)

// Mode is the action a drag gesture applies on release
type Mode int

const (
	ModeAdd Mode = iota + 1
	ModeRemove
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeRemove:
		return "remove"
	default:
		return "none"
	}
}

// Overlay is the transient preview of an active drag gesture
type Overlay struct {
	Anchor  time.Time
	Current time.Time
	Mode    Mode
	dates   map[string]bool
}

func newOverlay(anchor, current time.Time, mode Mode) Overlay {
	o := Overlay{Anchor: anchor, Current: current, Mode: mode}
	o.dates = make(map[string]bool)
	for _, d := range dateutil.Range(anchor, current) {
		o.dates[dateutil.Format(d)] = true
	}
	return o
}

// Contains reports whether date lies between anchor and current, inclusive.
// The preview set is not filtered for interactability.
func (o Overlay) Contains(date time.Time) bool {
	return o.dates[dateutil.Format(date)]
}

// Dates returns every date of the preview range in ascending order
func (o Overlay) Dates() []time.Time {
	return dateutil.Range(o.Anchor, o.Current)
}

// Apply returns the effective selection: the union with plan in add mode,
// the difference in remove mode
func (o Overlay) Apply(plan Plan) Plan {
	if o.Mode == ModeRemove {
		return plan.Without(o.Dates()...)
	}
	return plan.With(o.Dates()...)
}

// Commit is the batch a released gesture applies to the plan
type Commit struct {
	Mode  Mode
	Dates []time.Time
}

// Apply returns plan with the whole batch applied at once
func (c Commit) Apply(plan Plan) Plan {
	if c.Mode == ModeRemove {
		return plan.Without(c.Dates...)
	}
	return plan.With(c.Dates...)
}

// DragEngine tracks a press-move-release selection gesture.
// It is Idle when no gesture is active and Dragging otherwise.
type DragEngine struct {
	active  bool
	anchor  time.Time
	current time.Time
	mode    Mode
}

// Dragging reports whether a gesture is in progress
func (e *DragEngine) Dragging() bool {
	return e.active
}

// Press starts a gesture on an interactable date. The mode is Remove when
// the date is already in plan and Add otherwise. Presses on weekends and
// bank holidays are ignored and report false.
func (e *DragEngine) Press(date time.Time, plan Plan, table calendar.HolidayTable) bool {
	if !calendar.Classify(date, table, plan).Interactable() {
		return false
	}

	date = dateutil.StartOfDay(date)
	e.active = true
	e.anchor = date
	e.current = date
	e.mode = ModeAdd
	if plan.Contains(date) {
		e.mode = ModeRemove
	}
	return true
}

// Enter moves the gesture's current end. It is ignored while Idle.
func (e *DragEngine) Enter(date time.Time) bool {
	if !e.active {
		return false
	}
	e.current = dateutil.StartOfDay(date)
	return true
}

// Overlay returns the preview of the active gesture
func (e *DragEngine) Overlay() (Overlay, bool) {
	if !e.active {
		return Overlay{}, false
	}
	return newOverlay(e.anchor, e.current, e.mode), true
}

// Release ends the gesture and returns the commit it produces: every date
// between anchor and current except weekends and bank holidays. A release
// while Idle or with an unset end is a no-op.
func (e *DragEngine) Release(table calendar.HolidayTable) (Commit, bool) {
	if !e.active {
		return Commit{}, false
	}

	anchor, current, mode := e.anchor, e.current, e.mode
	*e = DragEngine{}

	if anchor.IsZero() || current.IsZero() {
		return Commit{}, false
	}

	commit := Commit{Mode: mode}
	for _, d := range dateutil.Range(anchor, current) {
		if calendar.Classify(d, table, nil).Interactable() {
			commit.Dates = append(commit.Dates, d)
		}
	}
	return commit, true
}
