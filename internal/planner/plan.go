package planner

import (
	"sort"
	"time"

	"github.com/username/leave-planner/pkg/dateutil"
)

// Plan is an immutable set of leave dates. The zero value is an empty plan.
// Every mutation returns a new Plan and leaves the receiver untouched.
type Plan struct {
	dates map[string]time.Time
}

// NewPlan creates a plan holding the given dates
func NewPlan(dates ...time.Time) Plan {
	return Plan{}.With(dates...)
}

// ParsePlan creates a plan from ISO date strings
func ParsePlan(values []string) (Plan, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		date, err := dateutil.ParseDate(v)
		if err != nil {
			return Plan{}, err
		}
		dates = append(dates, date)
	}
	return NewPlan(dates...), nil
}

// Contains reports whether date is chosen as leave
func (p Plan) Contains(date time.Time) bool {
	_, ok := p.dates[dateutil.Format(date)]
	return ok
}

// Len returns the number of leave dates
func (p Plan) Len() int {
	return len(p.dates)
}

// Dates returns the leave dates in ascending order
func (p Plan) Dates() []time.Time {
	out := make([]time.Time, 0, len(p.dates))
	for _, d := range p.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the leave dates as sorted ISO strings
func (p Plan) Strings() []string {
	out := make([]string, 0, len(p.dates))
	for key := range p.dates {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// With returns a plan that also holds dates
func (p Plan) With(dates ...time.Time) Plan {
	next := p.clone(len(dates))
	for _, d := range dates {
		d = dateutil.StartOfDay(d)
		next.dates[dateutil.Format(d)] = d
	}
	return next
}

// Without returns a plan that no longer holds dates
func (p Plan) Without(dates ...time.Time) Plan {
	next := p.clone(0)
	for _, d := range dates {
		delete(next.dates, dateutil.Format(d))
	}
	return next
}

// Equal reports whether both plans hold the same dates
func (p Plan) Equal(other Plan) bool {
	if p.Len() != other.Len() {
		return false
	}
	for key := range p.dates {
		if _, ok := other.dates[key]; !ok {
			return false
		}
	}
	return true
}

func (p Plan) clone(extra int) Plan {
	dates := make(map[string]time.Time, len(p.dates)+extra)
	for k, v := range p.dates {
		dates[k] = v
	}
	return Plan{dates: dates}
}
