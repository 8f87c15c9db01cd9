package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/username/leave-planner/internal/calendar"
	"github.com/username/leave-planner/internal/store"
)

// Config represents application configuration
type Config struct {
	Planner  PlannerConfig  `mapstructure:"planner"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// PlannerConfig represents the modeled year and streak rules
type PlannerConfig struct {
	Year              int    `mapstructure:"year"`
	Region            string `mapstructure:"region"`
	LookaheadDays     int    `mapstructure:"lookahead_days"`     // days of the next year walked by the streak analyzer
	LookaheadHolidays bool   `mapstructure:"lookahead_holidays"` // classify next year's bank holidays inside the lookahead
	MinStreakLength   int    `mapstructure:"min_streak_length"`
}

// CalendarConfig represents holiday table sources
type CalendarConfig struct {
	HolidaysFile string `mapstructure:"holidays_file"` // optional overrides, "YYYY-MM-DD region Name" per line
	SourceURL    string `mapstructure:"source_url"`
	CacheTTL     string `mapstructure:"cache_ttl"`
}

// StorageConfig represents plan persistence
type StorageConfig struct {
	Backend     string `mapstructure:"backend"` // file, sqlite, postgres, redis or memory
	Path        string `mapstructure:"path"`
	DSN         string `mapstructure:"dsn"`
	RedisURL    string `mapstructure:"redis_url"`
	SavedKey    string `mapstructure:"saved_key"`
	AutosaveKey string `mapstructure:"autosave_key"`
}

// ServerConfig represents the HTTP API
type ServerConfig struct {
	Addr                 string  `mapstructure:"addr"`
	SessionTTL           string  `mapstructure:"session_ttl"`
	CleanupInterval      string  `mapstructure:"cleanup_interval"`
	RateLimit            float64 `mapstructure:"rate_limit"` // requests per second
	RateBurst            int     `mapstructure:"rate_burst"`
	HousekeepingInterval string  `mapstructure:"housekeeping_interval"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("planner.year", calendar.StaticYear)
	v.SetDefault("planner.region", string(calendar.DefaultRegion))
	v.SetDefault("planner.lookahead_days", 5)
	v.SetDefault("planner.lookahead_holidays", false)
	v.SetDefault("planner.min_streak_length", 3)

	v.SetDefault("calendar.holidays_file", "")
	v.SetDefault("calendar.source_url", calendar.DefaultGovUKURL)
	v.SetDefault("calendar.cache_ttl", "24h")

	v.SetDefault("storage.backend", store.BackendFile)
	v.SetDefault("storage.path", "leave-plan.json")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.saved_key", store.DefaultSavedKey)
	v.SetDefault("storage.autosave_key", store.DefaultAutosaveKey)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", "12h")
	v.SetDefault("server.cleanup_interval", "1h")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.housekeeping_interval", "1m")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file. A missing file leaves the defaults
// in place; LEAVE_PLANNER_* environment variables override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read environment variables, e.g. LEAVE_PLANNER_STORAGE_BACKEND
	v.SetEnvPrefix("LEAVE_PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.leave-planner")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Planner.Year < 1900 || c.Planner.Year > 2200 {
		return fmt.Errorf("planner.year must be between 1900 and 2200, got %d", c.Planner.Year)
	}
	if _, err := calendar.ParseRegion(c.Planner.Region); err != nil {
		return fmt.Errorf("planner.region: %w", err)
	}
	if c.Planner.LookaheadDays < 0 || c.Planner.LookaheadDays > 31 {
		return fmt.Errorf("planner.lookahead_days must be between 0 and 31")
	}
	if c.Planner.MinStreakLength < 1 {
		return fmt.Errorf("planner.min_streak_length must be positive")
	}

	switch c.Storage.Backend {
	case store.BackendFile, store.BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s backend", c.Storage.Backend)
		}
	case store.BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for postgres backend")
		}
	case store.BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for redis backend")
		}
	case store.BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of %s, got '%s'",
			strings.Join(store.Backends(), ", "), c.Storage.Backend)
	}

	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must be positive")
	}

	return nil
}

// GetRegion returns the configured region
func (c *PlannerConfig) GetRegion() calendar.Region {
	region, err := calendar.ParseRegion(c.Region)
	if err != nil {
		return calendar.DefaultRegion
	}
	return region
}

// StoreOptions returns the options for store.Open
func (c *StorageConfig) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.Backend,
		Path:     c.Path,
		DSN:      c.DSN,
		RedisURL: c.RedisURL,
	}
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 24*time.Hour)
}

// GetSessionTTL returns how long an idle API session is kept
func (c *ServerConfig) GetSessionTTL() time.Duration {
	return parseDuration(c.SessionTTL, 12*time.Hour)
}

// GetCleanupInterval returns how often expired sessions are purged
func (c *ServerConfig) GetCleanupInterval() time.Duration {
	return parseDuration(c.CleanupInterval, time.Hour)
}

// GetHousekeepingInterval returns the daemon ticker interval
func (c *ServerConfig) GetHousekeepingInterval() time.Duration {
	return parseDuration(c.HousekeepingInterval, time.Minute)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
	c.Storage.RedisURL = os.ExpandEnv(c.Storage.RedisURL)
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
	c.Calendar.HolidaysFile = os.ExpandEnv(c.Calendar.HolidaysFile)
}
