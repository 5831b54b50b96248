// Package config resolves runtime settings: built-in defaults, then an
// optional YAML file, then STUDYFOCUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/studyfocus/internal/persistence"
	"github.com/alexanderramin/studyfocus/internal/timer"
	"gopkg.in/yaml.v3"
)

// Store names a key-value backend.
type Store string

const (
	StoreSQLite   Store = "sqlite"
	StoreRedis    Store = "redis"
	StorePostgres Store = "postgres"
	StoreMemory   Store = "memory"
)

const (
	dateLayout      = "2006-01-02"
	defaultExamDate = "2027-01-01"
)

// Config holds all runtime settings.
type Config struct {
	Store       Store  `yaml:"store"`
	DBPath      string `yaml:"db_path"`
	RedisURL    string `yaml:"redis_url"`
	PostgresURL string `yaml:"postgres_url"`
	StateKey    string `yaml:"state_key"`

	ExamDate string `yaml:"exam_date"` // YYYY-MM-DD
	Timezone string `yaml:"timezone"`  // IANA name, "Local" or "UTC"
	LogLevel string `yaml:"log_level"`

	CheckpointTicks int `yaml:"checkpoint_ticks"`
	TickMs          int `yaml:"tick_ms"`
}

// Dir returns the per-user settings directory, ~/.studyfocus.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".studyfocus"), nil
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	dbPath := "studyfocus.db"
	if dir, err := Dir(); err == nil {
		dbPath = filepath.Join(dir, "studyfocus.db")
	}
	return Config{
		Store:           StoreSQLite,
		DBPath:          dbPath,
		RedisURL:        "redis://localhost:6379/0",
		StateKey:        persistence.DefaultKey,
		ExamDate:        defaultExamDate,
		Timezone:        "Local",
		LogLevel:        "warn",
		CheckpointTicks: timer.DefaultCheckpointEvery,
		TickMs:          int(timer.DefaultInterval / time.Millisecond),
	}
}

// Load layers the config file and the environment over the defaults.
// The file named by STUDYFOCUS_CONFIG must exist; the default
// ~/.studyfocus/config.yaml is optional.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, required := os.Getenv("STUDYFOCUS_CONFIG"), true
	if path == "" {
		required = false
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" {
		if err := cfg.mergeFile(path, required); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Store = Store(strings.ToLower(envStr("STUDYFOCUS_STORE", string(c.Store))))
	c.DBPath = envStr("STUDYFOCUS_DB", c.DBPath)
	c.RedisURL = envStr("STUDYFOCUS_REDIS_URL", c.RedisURL)
	c.PostgresURL = envStr("STUDYFOCUS_POSTGRES_URL", c.PostgresURL)
	c.StateKey = envStr("STUDYFOCUS_STATE_KEY", c.StateKey)
	c.ExamDate = envStr("STUDYFOCUS_EXAM_DATE", c.ExamDate)
	c.Timezone = envStr("STUDYFOCUS_TIMEZONE", c.Timezone)
	c.LogLevel = envStr("STUDYFOCUS_LOG_LEVEL", c.LogLevel)
	c.CheckpointTicks = envInt("STUDYFOCUS_CHECKPOINT_TICKS", c.CheckpointTicks)
	c.TickMs = envInt("STUDYFOCUS_TICK_MS", c.TickMs)
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("STUDYFOCUS_DB must not be empty for the sqlite store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("STUDYFOCUS_REDIS_URL must not be empty for the redis store")
		}
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("STUDYFOCUS_POSTGRES_URL must not be empty for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STUDYFOCUS_STORE must be one of sqlite, redis, postgres, memory, got %q", c.Store)
	}
	if c.StateKey == "" {
		return fmt.Errorf("STUDYFOCUS_STATE_KEY must not be empty")
	}
	if c.CheckpointTicks < 1 {
		return fmt.Errorf("STUDYFOCUS_CHECKPOINT_TICKS must be positive, got %d", c.CheckpointTicks)
	}
	if c.TickMs < 1 {
		return fmt.Errorf("STUDYFOCUS_TICK_MS must be positive, got %d", c.TickMs)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := time.Parse(dateLayout, c.ExamDate); err != nil {
		return fmt.Errorf("STUDYFOCUS_EXAM_DATE must be YYYY-MM-DD, got %q", c.ExamDate)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Location returns the zone calendar statistics are computed in.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("STUDYFOCUS_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ExamTime returns midnight of the exam date in loc.
func (c Config) ExamTime(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, c.ExamDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("STUDYFOCUS_EXAM_DATE: %w", err)
	}
	return t, nil
}

// TickInterval returns the wall-clock length of one timer tick.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// SlogLevel returns the configured log level, warn when unparsable.
func (c Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("STUDYFOCUS_LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
	return lvl, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
