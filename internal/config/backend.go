package config

import (
	"context"
	"fmt"
	"os"

	"task-tracker/internal/kv"
	"task-tracker/internal/persist"
	"task-tracker/internal/repository/postgres"
	"task-tracker/internal/repository/sqlite"
)

// CreateBackend opens the storage backend selected by config.Storage.Backend
func CreateBackend(ctx context.Context, config *Config) (persist.Backend, error) {
	switch config.Storage.Backend {
	case BackendMemory:
		return persist.NewMemory(), nil

	case BackendSQLite:
		repo, err := sqlite.NewWithOptions(config.GetDatabasePath(), sqlite.Options{
			QueryTimeout:   config.Storage.QueryTimeout,
			WriteTimeout:   config.Storage.WriteTimeout,
			DirPermissions: os.FileMode(config.Storage.DirPermissions),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil

	case BackendPostgres:
		store, err := postgres.Connect(ctx, config.Storage.PostgresDSN, config.Storage.QueryTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, nil

	case BackendKV:
		client := kv.NewClient(config.KV.URL, config.KV.Timeout)
		if err := client.Register(ctx); err != nil {
			return nil, fmt.Errorf("failed to register with kv server: %w", err)
		}
		return kv.NewBackend(client), nil
	}

	return nil, &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", config.Storage.Backend)}
}

// CreateTestBackend creates an in-memory backend for testing
func CreateTestBackend() persist.Backend {
	return persist.NewMemory()
}
