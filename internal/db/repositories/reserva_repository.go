package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"multipark/backoffice/internal/constants"
	gormModels "multipark/backoffice/internal/models/gorm"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const reservasTable = "reservas"

// ReservaRepo handles the Ferramentas reservas table through sqlx
type ReservaRepo struct {
	db *sqlx.DB
}

// NewReservaRepo creates a new reservas repository
func NewReservaRepo(db *sqlx.DB) *ReservaRepo {
	return &ReservaRepo{db: db}
}

func (r *ReservaRepo) Name() string {
	return reservasTable
}

func (r *ReservaRepo) FindByExternalID(ctx context.Context, externalID string) (*gormModels.Reservation, error) {
	var res gormModels.Reservation

	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM reservas WHERE external_id = ?", constants.ReservaColumns))
	if err := r.db.GetContext(ctx, &res, query, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

func (r *ReservaRepo) Upsert(ctx context.Context, res *gormModels.Reservation) error {
	now := time.Now().UTC()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now
	if res.SyncStatus == "" {
		res.SyncStatus = constants.SyncStatusSynced
	}

	_, err := r.db.NamedExecContext(ctx, constants.UpsertReserva, res)
	return err
}

func (r *ReservaRepo) FindBySyncStatus(ctx context.Context, statuses []string, limit int) ([]gormModels.Reservation, error) {
	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM reservas WHERE sync_status IN (?) ORDER BY updated_at ASC LIMIT ?", constants.ReservaColumns),
		statuses, limit,
	)
	if err != nil {
		return nil, err
	}

	var rows []gormModels.Reservation
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReservaRepo) MarkSyncStatus(ctx context.Context, id string, status string, syncErr *string) error {
	now := time.Now().UTC()
	var syncedAt *time.Time
	if status == constants.SyncStatusSynced {
		syncedAt = &now
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(constants.UpdateReservaSyncStatus), status, syncErr, syncedAt, now, id)
	return err
}

func (r *ReservaRepo) CountBySyncStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		SyncStatus string `db:"sync_status"`
		Count      int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, constants.CountReservasBySyncStatus); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SyncStatus] = row.Count
	}
	return counts, nil
}

func (r *ReservaRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ReservaRepo) List(ctx context.Context, filter ReservationFilter) ([]gormModels.Reservation, error) {
	var (
		where []string
		args  []interface{}
	)
	for col, val := range map[string]string{
		"status":      filter.Status,
		"sync_status": filter.SyncStatus,
		"city":        filter.City,
		"brand":       filter.Brand,
	} {
		if val != "" {
			where = append(where, col+" = ?")
			args = append(args, val)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM reservas", constants.ReservaColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, clampLimit(filter.Limit, defaultListLimit, maxListLimit))

	var rows []gormModels.Reservation
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReservaRepo) GetByID(ctx context.Context, id string) (*gormModels.Reservation, error) {
	var res gormModels.Reservation

	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM reservas WHERE id = ?", constants.ReservaColumns))
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *ReservaRepo) ApplyPatch(ctx context.Context, id string, patch ReservationPatch) (*gormModels.Reservation, error) {
	cols, vals := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrEmptyPatch
	}

	sets := make([]string, 0, len(cols)+3)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "sync_status = ?", "sync_error = NULL", "updated_at = ?")
	args := append(vals, constants.SyncStatusPending, time.Now().UTC(), id)

	query := fmt.Sprintf("UPDATE reservas SET %s WHERE id = ?", strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}
