package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(cfg.Storage.Dir, "tm.db"), cfg.GetDatabasePath())
	assert.Equal(t, 0, cfg.History.Limit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "tape" }, "storage.backend"},
		{"empty sqlite dir", func(c *Config) { c.Storage.Dir = "" }, "storage.dir"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, "storage.postgres_dsn"},
		{"zero query timeout", func(c *Config) { c.Storage.QueryTimeout = 0 }, "storage.query_timeout"},
		{"kv without url", func(c *Config) { c.Storage.Backend = BackendKV; c.KV.URL = "" }, "kv.url"},
		{"negative history limit", func(c *Config) { c.History.Limit = -1 }, "history.limit"},
		{"name max below min", func(c *Config) { c.Validation.NameMaxLength = 0 }, "validation.name_max_length"},
		{"negative max duration", func(c *Config) { c.Validation.MaxDuration = -time.Minute }, "validation.max_duration"},
		{"bad cron schedule", func(c *Config) { c.Autosave.Enabled = true; c.Autosave.Schedule = "every so often" }, "autosave.schedule"},
		{"bad log level", func(c *Config) { c.Application.LogLevel = "loud" }, "application.log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidate_DisabledAutosaveIgnoresSchedule(t *testing.T) {
	cfg := NewConfig()
	cfg.Autosave.Schedule = "nonsense"
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TM_STORAGE_BACKEND", "memory")
	t.Setenv("TM_HISTORY_LIMIT", "10")
	t.Setenv("TM_VALIDATION_MAX_DURATION", "8h")
	t.Setenv("TM_AUTOSAVE_ENABLED", "true")
	t.Setenv("TM_DB_DIR_PERMISSIONS", "700")
	t.Setenv("TM_KV_TIMEOUT", "not-a-duration")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 10, cfg.History.Limit)
	assert.Equal(t, 8*time.Hour, cfg.Validation.MaxDuration)
	assert.True(t, cfg.Autosave.Enabled)
	assert.Equal(t, uint32(0700), cfg.Storage.DirPermissions)
	assert.Equal(t, 5*time.Second, cfg.KV.Timeout, "malformed values keep the default")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tm.yaml")
	content := `
storage:
  backend: kv
kv:
  url: http://kv.local:8078
  timeout: 2s
history:
  limit: 5
validation:
  max_duration: 90m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, BackendKV, cfg.Storage.Backend)
	assert.Equal(t, "http://kv.local:8078", cfg.KV.URL)
	assert.Equal(t, 2*time.Second, cfg.KV.Timeout)
	assert.Equal(t, 5, cfg.History.Limit)
	assert.Equal(t, 90*time.Minute, cfg.Validation.MaxDuration)
	assert.Equal(t, "tm.db", cfg.Storage.Filename, "keys absent from the file keep defaults")
}

func TestLoadFromFile_Broken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0600))

	err := NewConfig().LoadFromFile(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidationConfig_Limits(t *testing.T) {
	v := ValidationConfig{NameMinLength: 2, NameMaxLength: 20, DescriptionMaxLength: 100, MaxDuration: time.Hour}
	limits := v.Limits()
	assert.Equal(t, 2, limits.NameMinLength)
	assert.Equal(t, 20, limits.NameMaxLength)
	assert.Equal(t, 100, limits.DescriptionMaxLength)
	assert.Equal(t, time.Hour, limits.MaxDuration)
}

func TestParseWithFallback(t *testing.T) {
	assert.Equal(t, 3*time.Second, ParseDurationWithFallback("3s", time.Second))
	assert.Equal(t, time.Second, ParseDurationWithFallback("x", time.Second))
	assert.Equal(t, 4, ParseIntWithFallback("4", 1))
	assert.Equal(t, 1, ParseIntWithFallback("four", 1))
	assert.True(t, ParseBoolWithFallback("yes?", true))
	assert.Equal(t, uint32(0755), ParseUint32WithFallback("0755", 8, 0))
}
