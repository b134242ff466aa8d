package db

import (
	"database/sql"
	"fmt"

	"multipark/backoffice/internal/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitPostgresORM opens gorm on top of an existing pool so both access layers share connections.
// No ping: a store that is down at boot is reported by health checks and sync ticks.
func InitPostgresORM(conn *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres via GORM: %w", err)
	}

	logging.Info("Opened Postgres via GORM")
	return db, nil
}
