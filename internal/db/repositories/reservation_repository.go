package repositories

import (
	"context"
	"errors"
	"time"

	"multipark/backoffice/internal/constants"
	gormModels "multipark/backoffice/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ReservationRepo handles the Dashboard reservations table
type ReservationRepo struct {
	db *gormlib.DB
}

// NewReservationRepo creates a new reservation repository
func NewReservationRepo(db *gormlib.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

func (r *ReservationRepo) Name() string {
	return gormModels.Reservation{}.TableName()
}

// FindByExternalID finds a reservation by its legacy client id
func (r *ReservationRepo) FindByExternalID(ctx context.Context, externalID string) (*gormModels.Reservation, error) {
	var res gormModels.Reservation

	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&res).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

// Upsert inserts or updates a reservation coming from the legacy store
// ON CONFLICT (external_id) DO UPDATE ... WHERE sync_status = 'synced'.
// A row with a local change not yet pushed keeps its values.
func (r *ReservationRepo) Upsert(ctx context.Context, res *gormModels.Reservation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(gormModels.UpsertColumns),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{
					Column: clause.Column{Table: r.Name(), Name: "sync_status"},
					Value:  constants.SyncStatusSynced,
				},
			}},
		}).
		Create(res).Error
}

// FindBySyncStatus returns rows waiting to be pushed, oldest change first
func (r *ReservationRepo) FindBySyncStatus(ctx context.Context, statuses []string, limit int) ([]gormModels.Reservation, error) {
	var rows []gormModels.Reservation

	err := r.db.WithContext(ctx).
		Where("sync_status IN ?", statuses).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

// MarkSyncStatus records a push outcome
func (r *ReservationRepo) MarkSyncStatus(ctx context.Context, id string, status string, syncErr *string) error {
	updates := map[string]interface{}{
		"sync_status": status,
		"sync_error":  syncErr,
	}
	if status == constants.SyncStatusSynced {
		updates["last_synced_at"] = time.Now().UTC()
	}

	return r.db.WithContext(ctx).
		Model(&gormModels.Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountBySyncStatus returns the number of rows per sync_status
func (r *ReservationRepo) CountBySyncStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		SyncStatus string
		Count      int64
	}

	err := r.db.WithContext(ctx).
		Model(&gormModels.Reservation{}).
		Select("sync_status, COUNT(*) AS count").
		Group("sync_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SyncStatus] = row.Count
	}
	return counts, nil
}

// Ping checks the underlying connection
func (r *ReservationRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// List returns reservations matching the filter, most recently updated first
func (r *ReservationRepo) List(ctx context.Context, filter ReservationFilter) ([]gormModels.Reservation, error) {
	var rows []gormModels.Reservation

	q := r.db.WithContext(ctx).Model(&gormModels.Reservation{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SyncStatus != "" {
		q = q.Where("sync_status = ?", filter.SyncStatus)
	}
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}

	err := q.Order("updated_at DESC").
		Limit(clampLimit(filter.Limit, defaultListLimit, maxListLimit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// GetByID finds a reservation by primary key
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*gormModels.Reservation, error) {
	var res gormModels.Reservation

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &res, nil
}

// ApplyPatch updates the editable fields and flags the row for the next push
func (r *ReservationRepo) ApplyPatch(ctx context.Context, id string, patch ReservationPatch) (*gormModels.Reservation, error) {
	cols, vals := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrEmptyPatch
	}

	updates := make(map[string]interface{}, len(cols)+2)
	for i, col := range cols {
		updates[col] = vals[i]
	}
	updates["sync_status"] = constants.SyncStatusPending
	updates["sync_error"] = nil

	result := r.db.WithContext(ctx).
		Model(&gormModels.Reservation{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}
