package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/studyfocus/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory and clears every variable Load
// reads, so the developer's own settings never leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"STUDYFOCUS_CONFIG", "STUDYFOCUS_STORE", "STUDYFOCUS_DB", "STUDYFOCUS_REDIS_URL",
		"STUDYFOCUS_POSTGRES_URL", "STUDYFOCUS_STATE_KEY", "STUDYFOCUS_EXAM_DATE",
		"STUDYFOCUS_TIMEZONE", "STUDYFOCUS_LOG_LEVEL", "STUDYFOCUS_CHECKPOINT_TICKS",
		"STUDYFOCUS_TICK_MS",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestDefaultConfig(t *testing.T) {
	home := isolate(t)
	cfg := DefaultConfig()

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, filepath.Join(home, ".studyfocus", "studyfocus.db"), cfg.DBPath)
	assert.Equal(t, persistence.DefaultKey, cfg.StateKey)
	assert.Equal(t, "2027-01-01", cfg.ExamDate)
	assert.Equal(t, 60, cfg.CheckpointTicks)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileNoEnv(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".studyfocus")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"store: memory\nexam_date: 2026-12-01\ncheckpoint_ticks: 30\ntimezone: UTC\n"), 0o644))
	t.Setenv("STUDYFOCUS_CHECKPOINT_TICKS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "2026-12-01", cfg.ExamDate)
	assert.Equal(t, 10, cfg.CheckpointTicks, "env wins over the file")

	loc, err := cfg.Location()
	require.NoError(t, err)
	exam, err := cfg.ExamTime(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), exam)
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYFOCUS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))
	t.Setenv("STUDYFOCUS_CONFIG", path)
	_, err := Load()
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYFOCUS_STORE", "Redis")
	t.Setenv("STUDYFOCUS_REDIS_URL", "redis://cache:6380/2")
	t.Setenv("STUDYFOCUS_STATE_KEY", "other-key")
	t.Setenv("STUDYFOCUS_LOG_LEVEL", "debug")
	t.Setenv("STUDYFOCUS_TICK_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis://cache:6380/2", cfg.RedisURL)
	assert.Equal(t, "other-key", cfg.StateKey)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "etcd" }},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }},
		{"empty key", func(c *Config) { c.StateKey = "" }},
		{"zero cadence", func(c *Config) { c.CheckpointTicks = 0 }},
		{"negative tick", func(c *Config) { c.TickMs = -1 }},
		{"bad exam date", func(c *Config) { c.ExamDate = "01/01/2027" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
