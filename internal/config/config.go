package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"task-tracker/internal/validation"
)

// Storage backends understood by CreateBackend.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendKV       = "kv"
)

// Config holds all configuration options for the task tracker
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	HTTP        HTTPConfig        `yaml:"http"`
	KV          KVConfig          `yaml:"kv"`
	History     HistoryConfig     `yaml:"history"`
	Validation  ValidationConfig  `yaml:"validation"`
	Autosave    AutosaveConfig    `yaml:"autosave"`
	Display     DisplayConfig     `yaml:"display"`
	Application ApplicationConfig `yaml:"application"`
}

// StorageConfig selects and tunes the persistence backend
type StorageConfig struct {
	Backend        string        `yaml:"backend" env:"TM_STORAGE_BACKEND"`
	Dir            string        `yaml:"dir" env:"TM_DB_DIR"`
	Filename       string        `yaml:"filename" env:"TM_DB_FILENAME"`
	PostgresDSN    string        `yaml:"postgres_dsn" env:"TM_POSTGRES_DSN"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"TM_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"TM_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"TM_DB_DIR_PERMISSIONS"`
}

// HTTPConfig holds settings for the task API server
type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"TM_HTTP_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TM_HTTP_SHUTDOWN_TIMEOUT"`
}

// KVConfig holds settings for the key-value server and its client
type KVConfig struct {
	URL     string        `yaml:"url" env:"TM_KV_URL"`
	Addr    string        `yaml:"addr" env:"TM_KV_ADDR"`
	Timeout time.Duration `yaml:"timeout" env:"TM_KV_TIMEOUT"`
}

// HistoryConfig bounds the view history
type HistoryConfig struct {
	// Limit of zero keeps the history unbounded.
	Limit int `yaml:"limit" env:"TM_HISTORY_LIMIT"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	NameMinLength        int           `yaml:"name_min_length" env:"TM_VALIDATION_NAME_MIN"`
	NameMaxLength        int           `yaml:"name_max_length" env:"TM_VALIDATION_NAME_MAX"`
	DescriptionMaxLength int           `yaml:"description_max_length" env:"TM_VALIDATION_DESCRIPTION_MAX"`
	MaxDuration          time.Duration `yaml:"max_duration" env:"TM_VALIDATION_MAX_DURATION"`
}

// AutosaveConfig controls the periodic snapshot job used by the server
type AutosaveConfig struct {
	Enabled  bool   `yaml:"enabled" env:"TM_AUTOSAVE_ENABLED"`
	Schedule string `yaml:"schedule" env:"TM_AUTOSAVE_SCHEDULE"`
}

// DisplayConfig holds CLI output configuration
type DisplayConfig struct {
	TimeFormat string `yaml:"time_format" env:"TM_TIME_FORMAT"`
	Relative   bool   `yaml:"relative" env:"TM_DISPLAY_RELATIVE"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout    time.Duration `yaml:"timeout" env:"TM_APP_TIMEOUT"`
	Verbose    bool          `yaml:"verbose" env:"TM_APP_VERBOSE"`
	LogLevel   string        `yaml:"log_level" env:"TM_LOG_LEVEL"`
	LogConsole bool          `yaml:"log_console" env:"TM_LOG_CONSOLE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			Dir:            filepath.Join(homeDir, ".tm"),
			Filename:       "tm.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		KV: KVConfig{
			URL:     "http://localhost:8078",
			Addr:    ":8078",
			Timeout: 5 * time.Second,
		},
		Validation: ValidationConfig{
			NameMinLength:        1,
			NameMaxLength:        255,
			DescriptionMaxLength: 4096,
		},
		Autosave: AutosaveConfig{
			Enabled:  false,
			Schedule: "@every 1m",
		},
		Display: DisplayConfig{
			TimeFormat: "2006-01-02 15:04",
		},
		Application: ApplicationConfig{
			Timeout:  60 * time.Second,
			LogLevel: "info",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.Filename)
}

// Limits converts the validation section into store limits
func (v ValidationConfig) Limits() validation.Limits {
	return validation.Limits{
		NameMinLength:        v.NameMinLength,
		NameMaxLength:        v.NameMaxLength,
		DescriptionMaxLength: v.DescriptionMaxLength,
		MaxDuration:          v.MaxDuration,
	}
}

// LoadFromFile overlays the YAML file at path onto c. Keys missing from the
// file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &ConfigError{Field: "file", Message: fmt.Sprintf("cannot parse %s: %v", path, err)}
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables.
// Malformed values are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	setString(&c.Storage.Backend, "TM_STORAGE_BACKEND")
	setString(&c.Storage.Dir, "TM_DB_DIR")
	setString(&c.Storage.Filename, "TM_DB_FILENAME")
	setString(&c.Storage.PostgresDSN, "TM_POSTGRES_DSN")
	setDuration(&c.Storage.QueryTimeout, "TM_DB_QUERY_TIMEOUT")
	setDuration(&c.Storage.WriteTimeout, "TM_DB_WRITE_TIMEOUT")
	if perms := os.Getenv("TM_DB_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Servers
	setString(&c.HTTP.Addr, "TM_HTTP_ADDR")
	setDuration(&c.HTTP.ShutdownTimeout, "TM_HTTP_SHUTDOWN_TIMEOUT")
	setString(&c.KV.URL, "TM_KV_URL")
	setString(&c.KV.Addr, "TM_KV_ADDR")
	setDuration(&c.KV.Timeout, "TM_KV_TIMEOUT")

	// Store behaviour
	setInt(&c.History.Limit, "TM_HISTORY_LIMIT")
	setInt(&c.Validation.NameMinLength, "TM_VALIDATION_NAME_MIN")
	setInt(&c.Validation.NameMaxLength, "TM_VALIDATION_NAME_MAX")
	setInt(&c.Validation.DescriptionMaxLength, "TM_VALIDATION_DESCRIPTION_MAX")
	setDuration(&c.Validation.MaxDuration, "TM_VALIDATION_MAX_DURATION")
	setBool(&c.Autosave.Enabled, "TM_AUTOSAVE_ENABLED")
	setString(&c.Autosave.Schedule, "TM_AUTOSAVE_SCHEDULE")

	// Output and application
	setString(&c.Display.TimeFormat, "TM_TIME_FORMAT")
	setBool(&c.Display.Relative, "TM_DISPLAY_RELATIVE")
	setDuration(&c.Application.Timeout, "TM_APP_TIMEOUT")
	setBool(&c.Application.Verbose, "TM_APP_VERBOSE")
	setString(&c.Application.LogLevel, "TM_LOG_LEVEL")
	setBool(&c.Application.LogConsole, "TM_LOG_CONSOLE")

	return nil
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	// Storage
	backends := []string{BackendMemory, BackendSQLite, BackendPostgres, BackendKV}
	if !slices.Contains(backends, c.Storage.Backend) {
		return &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q, expected one of %v", c.Storage.Backend, backends)}
	}
	if c.Storage.Backend == BackendSQLite {
		if c.Storage.Dir == "" {
			return &ConfigError{Field: "storage.dir", Message: "database directory cannot be empty"}
		}
		if c.Storage.Filename == "" {
			return &ConfigError{Field: "storage.filename", Message: "database filename cannot be empty"}
		}
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresDSN == "" {
		return &ConfigError{Field: "storage.postgres_dsn", Message: "postgres backend needs a DSN"}
	}
	if c.Storage.QueryTimeout <= 0 {
		return &ConfigError{Field: "storage.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Storage.WriteTimeout <= 0 {
		return &ConfigError{Field: "storage.write_timeout", Message: "write timeout must be positive"}
	}

	// Servers
	if c.Storage.Backend == BackendKV && c.KV.URL == "" {
		return &ConfigError{Field: "kv.url", Message: "kv backend needs a server URL"}
	}
	if c.KV.Timeout <= 0 {
		return &ConfigError{Field: "kv.timeout", Message: "kv timeout must be positive"}
	}

	// Store behaviour
	if c.History.Limit < 0 {
		return &ConfigError{Field: "history.limit", Message: "history limit cannot be negative"}
	}
	if c.Validation.NameMinLength < 1 {
		return &ConfigError{Field: "validation.name_min_length", Message: "name minimum length must be at least 1"}
	}
	if c.Validation.NameMaxLength < c.Validation.NameMinLength {
		return &ConfigError{Field: "validation.name_max_length", Message: "name maximum length must be greater than minimum length"}
	}
	if c.Validation.MaxDuration < 0 {
		return &ConfigError{Field: "validation.max_duration", Message: "max duration cannot be negative"}
	}
	if c.Autosave.Enabled {
		if _, err := cron.ParseStandard(c.Autosave.Schedule); err != nil {
			return &ConfigError{Field: "autosave.schedule", Message: err.Error()}
		}
	}

	// Output and application
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	if _, err := zerolog.ParseLevel(c.Application.LogLevel); err != nil {
		return &ConfigError{Field: "application.log_level", Message: err.Error()}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseDurationWithFallback(v, *dst)
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseIntWithFallback(v, *dst)
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseBoolWithFallback(v, *dst)
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
