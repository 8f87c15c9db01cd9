package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a key holds no value
var ErrNotFound = errors.New("key not found")

// KV is a string-keyed byte store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Backends returns every supported backend name
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendPostgres, BackendRedis, BackendMemory}
}

// Options selects and configures a backend
type Options struct {
	Backend  string
	Path     string // file and sqlite
	DSN      string // postgres
	RedisURL string // redis
}

// Open connects to the configured backend
func Open(ctx context.Context, opts Options, logger *zap.Logger) (KV, error) {
	logger.Info("Opening storage", zap.String("backend", opts.Backend))

	switch opts.Backend {
	case BackendFile, "":
		return NewFileKV(opts.Path, logger), nil
	case BackendSQLite:
		return NewSQLiteKV(ctx, opts.Path, logger)
	case BackendPostgres:
		return NewPostgresKV(ctx, opts.DSN, logger)
	case BackendRedis:
		return NewRedisKV(ctx, opts.RedisURL, logger)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
