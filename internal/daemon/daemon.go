package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Daemon runs the HTTP API and periodic session housekeeping
type Daemon struct {
	server               *http.Server
	housekeeping         func()
	housekeepingInterval time.Duration
	logger               *zap.Logger
	ctx                  context.Context
	cancel               context.CancelFunc

	mu        sync.Mutex // protects the fields below
	listening string
	lastSweep time.Time
	sweeps    int
}

// NewDaemon creates a daemon serving handler on addr. housekeeping is called
// every interval while the daemon runs.
func NewDaemon(addr string, handler http.Handler, housekeeping func(), interval time.Duration, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		housekeeping:         housekeeping,
		housekeepingInterval: interval,
		logger:               logger,
		ctx:                  ctx,
		cancel:               cancel,
	}
}

// Start serves until SIGINT/SIGTERM or Stop
func (d *Daemon) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	return d.run(d.ctx)
}

// RunWithTimeout serves until the timeout elapses or Stop is called
func (d *Daemon) RunWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()

	return d.run(ctx)
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Addr returns the address the server listens on once started
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"running":               d.ctx.Err() == nil,
		"addr":                  d.listening,
		"housekeeping_interval": d.housekeepingInterval.String(),
		"sweeps":                d.sweeps,
	}
	if !d.lastSweep.IsZero() {
		status["last_sweep"] = d.lastSweep.Format(time.RFC3339)
	}
	return status
}

func (d *Daemon) run(ctx context.Context) error {
	listener, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.server.Addr, err)
	}

	d.mu.Lock()
	d.listening = listener.Addr().String()
	d.mu.Unlock()

	d.logger.Info("Daemon started",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("housekeeping_interval", d.housekeepingInterval))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- d.server.Serve(listener)
	}()

	ticker := time.NewTicker(d.housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return d.shutdown()

		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server failed: %w", err)

		case <-ticker.C:
			d.sweep()
		}
	}
}

func (d *Daemon) sweep() {
	if d.housekeeping != nil {
		d.housekeeping()
	}

	d.mu.Lock()
	d.lastSweep = time.Now()
	d.sweeps++
	d.mu.Unlock()
}

func (d *Daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := d.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	d.logger.Info("Daemon stopped")
	return nil
}
