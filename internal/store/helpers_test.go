package store

import (
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/planner"
	"go.uber.org/zap"
)

func newController(storage planner.Storage) *planner.Controller {
	registry := calendar.NewRegistry(2026, 5, false, nil, zap.NewNop())
	return planner.NewController(registry, storage, planner.Options{LookaheadDays: 5}, zap.NewNop())
}
