package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"multipark/backoffice/internal/db"
	gormModels "multipark/backoffice/internal/models/gorm"
	"multipark/backoffice/migrations"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// setupTestDB creates an in-memory gorm database with the Dashboard tables
func setupTestDB(t *testing.T) *gormlib.DB {
	t.Helper()
	gdb, err := gormlib.Open(sqlite.Open(":memory:"), &gormlib.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := gdb.AutoMigrate(&gormModels.Reservation{}, &gormModels.SyncLog{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return gdb
}

// setupFerramentasDB creates a file-backed sqlite database migrated with the Ferramentas migrations
func setupFerramentasDB(t *testing.T) *sqlx.DB {
	t.Helper()
	sdb, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "ferramentas.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sdb.SetMaxOpenConns(1)
	t.Cleanup(func() { sdb.Close() })

	if err := db.RunMigrations(sdb.DB, "sqlite3", migrations.FerramentasDir); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return sdb
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}
