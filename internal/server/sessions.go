package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/planner"
	"github.com/username/leave-planner/internal/store"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

const evictTimeout = 5 * time.Second

// Session is one user's planning state
type Session struct {
	ID         string
	CreatedAt  time.Time
	Controller *planner.Controller

	repo        *store.PlanRepository
	unsubscribe func()
}

// Sessions keeps live sessions in an expiring cache. Each session persists
// its plan under its own key scope, which is deleted when the session expires.
type Sessions struct {
	cache    *cache.Cache
	ttl      time.Duration
	registry *calendar.Registry
	repo     *store.PlanRepository
	opts     planner.Options
	metrics  *Metrics
	logger   *zap.Logger
}

// NewSessions creates an empty session registry
func NewSessions(
	registry *calendar.Registry,
	repo *store.PlanRepository,
	opts planner.Options,
	ttl, cleanupInterval time.Duration,
	metrics *Metrics,
	logger *zap.Logger,
) *Sessions {
	s := &Sessions{
		cache:    cache.New(ttl, cleanupInterval),
		ttl:      ttl,
		registry: registry,
		repo:     repo,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}

	s.cache.OnEvicted(func(id string, v interface{}) {
		session, ok := v.(*Session)
		if !ok {
			return
		}
		if session.unsubscribe != nil {
			session.unsubscribe()
		}

		ctx, cancel := context.WithTimeout(context.Background(), evictTimeout)
		defer cancel()
		if err := session.repo.DeletePlans(ctx); err != nil {
			logger.Warn("Failed to delete session plans",
				zap.String("session_id", id),
				zap.Error(err))
		}
		logger.Debug("Session evicted", zap.String("session_id", id))
	})

	return s
}

// Create starts a session and restores its persisted plan
func (s *Sessions) Create(ctx context.Context, region calendar.Region) (*Session, error) {
	id := uuid.New().String()

	opts := s.opts
	if region != "" {
		opts.Region = region
	}

	repo := s.repo.Scoped(id)
	controller := planner.NewController(s.registry, repo, opts, s.logger.With(zap.String("session_id", id)))
	if err := controller.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialise session: %w", err)
	}

	session := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		Controller: controller,
		repo:       repo,
	}
	session.unsubscribe = controller.Subscribe(func(snap planner.Snapshot) {
		s.metrics.planUpdates.WithLabelValues(string(snap.Region)).Inc()
	})

	s.cache.Set(id, session, cache.DefaultExpiration)
	s.metrics.sessionsActive.Set(float64(s.cache.ItemCount()))

	s.logger.Info("Session created",
		zap.String("session_id", id),
		zap.String("region", string(controller.Snapshot().Region)))

	return session, nil
}

// Get returns a live session and extends its lifetime
func (s *Sessions) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session := v.(*Session)
	s.cache.Set(id, session, cache.DefaultExpiration)
	return session, nil
}

// Count returns the number of cached sessions, expired ones included until purged
func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}

// Purge removes expired sessions and returns how many remain
func (s *Sessions) Purge() int {
	s.cache.DeleteExpired()
	count := s.cache.ItemCount()
	s.metrics.sessionsActive.Set(float64(count))
	return count
}
