package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"multipark/backoffice/internal/constants"

	"github.com/jmoiron/sqlx"
)

func setupKeysDB(t *testing.T) *sqlx.DB {
	t.Helper()
	sdb, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })

	_, err = sdb.Exec(`CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		key_hash TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'anon',
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		t.Fatalf("Failed to create api_keys: %v", err)
	}
	return sdb
}

func TestKeysRepo_CreateAndLookup(t *testing.T) {
	repo := NewApiKeysRepo(setupKeysDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, "raw-secret", "ops dashboard", constants.RoleService)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	key, err := repo.GetByKey(ctx, "raw-secret")
	if err != nil || key == nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if key.ID != id || key.Role != constants.RoleService || !key.Status {
		t.Errorf("Unexpected key %+v", key)
	}

	missing, err := repo.GetByKey(ctx, "other")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for unknown key; got %v, %v", missing, err)
	}
}

func TestHashKey(t *testing.T) {
	if HashKey("a") == HashKey("b") {
		t.Error("Expected different hashes")
	}
	if len(HashKey("a")) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(HashKey("a")))
	}
}
