package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/username/leave-planner/internal/daemon"
	"github.com/username/leave-planner/internal/server"
	"github.com/username/leave-planner/internal/store"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planner HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			kv, err := store.Open(cmd.Context(), cfg.Storage.StoreOptions(), logger)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer kv.Close()

			gin.SetMode(gin.ReleaseMode)

			registry := newRegistry(cfg)
			repo := store.NewPlanRepository(kv, cfg.Planner.Year, cfg.Storage.SavedKey, cfg.Storage.AutosaveKey, logger)
			srv := server.New(registry, repo, server.Options{
				Planner:         plannerOptions(cfg),
				SessionTTL:      cfg.Server.GetSessionTTL(),
				CleanupInterval: cfg.Server.GetCleanupInterval(),
				RateLimit:       cfg.Server.RateLimit,
				RateBurst:       cfg.Server.RateBurst,
			}, logger)

			logger.Info("Starting server",
				zap.String("addr", cfg.Server.Addr),
				zap.Int("year", cfg.Planner.Year),
				zap.String("storage", cfg.Storage.Backend))

			d := daemon.NewDaemon(cfg.Server.Addr, srv.Handler(), srv.Housekeeping,
				cfg.Server.GetHousekeepingInterval(), logger)
			srv.SetStatus(d.GetStatus)
			return d.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
