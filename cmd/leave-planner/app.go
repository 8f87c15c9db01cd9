package main

import (
	"context"
	"fmt"

	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/config"
	"github.com/username/leave-planner/internal/planner"
	"github.com/username/leave-planner/internal/store"
	"go.uber.org/zap"
)

// app bundles the components shared by every command
type app struct {
	cfg        *config.Config
	registry   *calendar.Registry
	kv         store.KV
	repo       *store.PlanRepository
	controller *planner.Controller
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if regionOverride != "" {
		region, err := calendar.ParseRegion(regionOverride)
		if err != nil {
			return nil, err
		}
		cfg.Planner.Region = string(region)
	}

	return cfg, nil
}

// newRegistry builds the holiday tables, applying the override file when configured
func newRegistry(cfg *config.Config) *calendar.Registry {
	var overrides *calendar.FileTable
	if cfg.Calendar.HolidaysFile != "" {
		overrides = calendar.NewFileTable(cfg.Calendar.HolidaysFile, logger)
		if err := overrides.Load(); err != nil {
			logger.Warn("Failed to load holiday overrides, using built-in tables",
				zap.String("file", cfg.Calendar.HolidaysFile),
				zap.Error(err))
			overrides = nil
		}
	}

	return calendar.NewRegistry(cfg.Planner.Year, cfg.Planner.LookaheadDays, cfg.Planner.LookaheadHolidays, overrides, logger)
}

func plannerOptions(cfg *config.Config) planner.Options {
	return planner.Options{
		Year:            cfg.Planner.Year,
		Region:          cfg.Planner.GetRegion(),
		LookaheadDays:   cfg.Planner.LookaheadDays,
		MinStreakLength: cfg.Planner.MinStreakLength,
	}
}

// openApp loads config, opens storage and restores the persisted plan
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	kv, err := store.Open(ctx, cfg.Storage.StoreOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	registry := newRegistry(cfg)
	repo := store.NewPlanRepository(kv, cfg.Planner.Year, cfg.Storage.SavedKey, cfg.Storage.AutosaveKey, logger)
	controller := planner.NewController(registry, repo, plannerOptions(cfg), logger)

	if err := controller.Init(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to restore plan: %w", err)
	}

	return &app{
		cfg:        cfg,
		registry:   registry,
		kv:         kv,
		repo:       repo,
		controller: controller,
	}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		logger.Warn("Failed to close storage", zap.Error(err))
	}
}
