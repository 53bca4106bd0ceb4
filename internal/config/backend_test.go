package config

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/domain"
	"task-tracker/internal/kv"
	"task-tracker/internal/persist"
	"task-tracker/internal/repository/sqlite"
)

func TestCreateBackend_SQLite(t *testing.T) {
	// Use a temporary directory to avoid touching the home directory
	t.Setenv("TM_DB_DIR", t.TempDir())
	t.Setenv("TM_STORAGE_BACKEND", "")

	cfg, err := NewLoader().WithFile("").Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	backend, err := CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer backend.Close()

	if _, ok := backend.(*sqlite.Repository); !ok {
		t.Fatalf("CreateBackend() returned %T, want *sqlite.Repository", backend)
	}

	snap := domain.NewSnapshot()
	snap.NextID = 7
	if err := backend.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := backend.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.NextID != 7 {
		t.Errorf("Load().NextID = %d, want 7", got.NextID)
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Backend = BackendMemory

	backend, err := CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if _, ok := backend.(*persist.Memory); !ok {
		t.Errorf("CreateBackend() returned %T, want *persist.Memory", backend)
	}
}

func TestCreateBackend_KV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(kv.NewServer().Handler())
	defer srv.Close()

	cfg := NewConfig()
	cfg.Storage.Backend = BackendKV
	cfg.KV.URL = srv.URL

	backend, err := CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if _, ok := backend.(*kv.Backend); !ok {
		t.Errorf("CreateBackend() returned %T, want *kv.Backend", backend)
	}
}

func TestCreateBackend_KVUnreachable(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Backend = BackendKV
	cfg.KV.URL = "http://127.0.0.1:1"

	if _, err := CreateBackend(context.Background(), cfg); err == nil {
		t.Error("CreateBackend() expected error for unreachable kv server")
	}
}

func TestCreateBackend_Unknown(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Backend = "floppy"

	_, err := CreateBackend(context.Background(), cfg)
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("CreateBackend() error = %v, want *ConfigError", err)
	}
}

func TestCreateTestBackend(t *testing.T) {
	backend := CreateTestBackend()
	defer backend.Close()

	snap := domain.NewSnapshot()
	snap.NextID = 3
	if err := backend.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := backend.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.NextID != 3 {
		t.Errorf("Load().NextID = %d, want 3", got.NextID)
	}
}
