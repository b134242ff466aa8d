package repositories

import (
	"context"
	"errors"

	"multipark/backoffice/internal/constants"
	gormModels "multipark/backoffice/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// SyncLogRepo handles the append-only sync_logs table
type SyncLogRepo struct {
	db *gormlib.DB
}

// NewSyncLogRepo creates a new sync log repository
func NewSyncLogRepo(db *gormlib.DB) *SyncLogRepo {
	return &SyncLogRepo{db: db}
}

// Append inserts a log entry. Entries are never updated.
func (r *SyncLogRepo) Append(ctx context.Context, entry *gormModels.SyncLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the latest entries, optionally only those of one operation
func (r *SyncLogRepo) Recent(ctx context.Context, limit int, operation string) ([]gormModels.SyncLog, error) {
	var logs []gormModels.SyncLog

	q := r.db.WithContext(ctx)
	if operation != "" {
		q = q.Where("operation = ?", operation)
	}

	err := q.Order("id DESC").
		Limit(clampLimit(limit, defaultListLimit, maxListLimit)).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// LastStats returns the summary row of the latest completed tick, or nil when no tick has run
func (r *SyncLogRepo) LastStats(ctx context.Context) (*gormModels.SyncLog, error) {
	var entry gormModels.SyncLog

	err := r.db.WithContext(ctx).
		Where("operation = ?", constants.SyncOpStats).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}
