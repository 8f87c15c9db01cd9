package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/leave-planner/internal/planner"
	"github.com/username/leave-planner/pkg/dateutil"
	"go.uber.org/zap"
)

// Default key templates; {year} is replaced by the modeled year
const (
	DefaultSavedKey    = "uk_leave_{year}_v1"
	DefaultAutosaveKey = "uk_leave_{year}_auto"
)

// PlanRepository stores plans in a KV as JSON arrays of ISO date strings
type PlanRepository struct {
	kv       KV
	savedKey string
	autoKey  string
	logger   *zap.Logger
}

// NewPlanRepository creates a repository using the given key templates
func NewPlanRepository(kv KV, year int, savedKey, autoKey string, logger *zap.Logger) *PlanRepository {
	if savedKey == "" {
		savedKey = DefaultSavedKey
	}
	if autoKey == "" {
		autoKey = DefaultAutosaveKey
	}

	return &PlanRepository{
		kv:       kv,
		savedKey: expandKey(savedKey, year),
		autoKey:  expandKey(autoKey, year),
		logger:   logger,
	}
}

func expandKey(template string, year int) string {
	return strings.ReplaceAll(template, "{year}", strconv.Itoa(year))
}

// Scoped returns a repository whose keys are prefixed with scope
func (r *PlanRepository) Scoped(scope string) *PlanRepository {
	return &PlanRepository{
		kv:       r.kv,
		savedKey: scope + ":" + r.savedKey,
		autoKey:  scope + ":" + r.autoKey,
		logger:   r.logger,
	}
}

// Key returns the storage key of a slot
func (r *PlanRepository) Key(slot planner.Slot) string {
	if slot == planner.SlotAuto {
		return r.autoKey
	}
	return r.savedKey
}

// LoadPlan implements planner.Storage
func (r *PlanRepository) LoadPlan(ctx context.Context, slot planner.Slot) ([]time.Time, error) {
	key := r.Key(slot)

	data, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, planner.ErrNoSavedPlan)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", key, planner.ErrMalformedPlan, err)
	}

	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		date, err := dateutil.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", key, planner.ErrMalformedPlan, err)
		}
		dates = append(dates, date)
	}

	r.logger.Debug("Plan read", zap.String("key", key), zap.Int("dates", len(dates)))
	return dates, nil
}

// SavePlan implements planner.Storage
func (r *PlanRepository) SavePlan(ctx context.Context, slot planner.Slot, dates []time.Time) error {
	key := r.Key(slot)

	values := make([]string, len(dates))
	for i, d := range dates {
		values[i] = dateutil.Format(d)
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := r.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// DeletePlans removes both slots
func (r *PlanRepository) DeletePlans(ctx context.Context) error {
	for _, key := range []string{r.savedKey, r.autoKey} {
		if err := r.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}
