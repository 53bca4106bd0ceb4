package config

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader. The config file path is
// taken from TM_CONFIG when set.
func NewLoader() *Loader {
	return &Loader{
		config:   NewConfig(),
		filePath: os.Getenv("TM_CONFIG"),
	}
}

// WithFile sets the YAML file to read. An empty path skips the file.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, if any
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if l.filePath != "" {
		err := l.config.LoadFromFile(l.filePath)
		// A missing file at the default location is fine; a broken one is not.
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides. Nil fields are left alone.
type ConfigOverrides struct {
	// Storage overrides
	Backend      *string
	DBDir        *string
	DBFilename   *string
	PostgresDSN  *string
	QueryTimeout *time.Duration

	// Server overrides
	HTTPAddr *string
	KVURL    *string
	KVAddr   *string

	// Store overrides
	HistoryLimit *int
	MaxDuration  *time.Duration

	// Output and application overrides
	TimeFormat *string
	Relative   *bool
	Verbose    *bool
	LogLevel   *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	apply(&config.Storage.Backend, overrides.Backend)
	apply(&config.Storage.Dir, overrides.DBDir)
	apply(&config.Storage.Filename, overrides.DBFilename)
	apply(&config.Storage.PostgresDSN, overrides.PostgresDSN)
	apply(&config.Storage.QueryTimeout, overrides.QueryTimeout)

	apply(&config.HTTP.Addr, overrides.HTTPAddr)
	apply(&config.KV.URL, overrides.KVURL)
	apply(&config.KV.Addr, overrides.KVAddr)

	apply(&config.History.Limit, overrides.HistoryLimit)
	apply(&config.Validation.MaxDuration, overrides.MaxDuration)

	apply(&config.Display.TimeFormat, overrides.TimeFormat)
	apply(&config.Display.Relative, overrides.Relative)
	apply(&config.Application.Verbose, overrides.Verbose)
	apply(&config.Application.LogLevel, overrides.LogLevel)
}

func apply[T any](dst *T, override *T) {
	if override != nil {
		*dst = *override
	}
}
