package repositories

import (
	"context"
	"errors"
	"time"

	gormModels "multipark/backoffice/internal/models/gorm"
)

var (
	// ErrNotFound is returned by lookups that the API turns into a 404
	ErrNotFound = errors.New("record not found")
	// ErrEmptyPatch is returned when a patch carries no field to change
	ErrEmptyPatch = errors.New("patch has no fields to update")
)

// ReservationStore is a relational destination of the sync.
// Both the Dashboard (gorm) and the Ferramentas (sqlx) stores implement it.
type ReservationStore interface {
	// Name is the table name recorded in sync_logs
	Name() string
	// FindByExternalID returns nil, nil when no row carries the id
	FindByExternalID(ctx context.Context, externalID string) (*gormModels.Reservation, error)
	// Upsert inserts or updates on external_id, leaving the outbound sync fields of an existing row alone
	Upsert(ctx context.Context, res *gormModels.Reservation) error
	// FindBySyncStatus returns the oldest rows in any of the given states
	FindBySyncStatus(ctx context.Context, statuses []string, limit int) ([]gormModels.Reservation, error)
	// MarkSyncStatus records the outcome of a push; synced also stamps last_synced_at
	MarkSyncStatus(ctx context.Context, id string, status string, syncErr *string) error
	CountBySyncStatus(ctx context.Context) (map[string]int64, error)
	Ping(ctx context.Context) error
}

// ReservationFilter narrows a reservation listing. Empty fields are ignored.
type ReservationFilter struct {
	Limit      int
	Status     string
	SyncStatus string
	City       string
	Brand      string
}

// ReservationPatch holds the locally editable fields. Nil fields are left untouched.
type ReservationPatch struct {
	Status           *string    `json:"status,omitempty"`
	PickupDriver     *string    `json:"pickup_driver,omitempty"`
	DeliveryDriver   *string    `json:"delivery_driver,omitempty"`
	ActionUser       *string    `json:"action_user,omitempty"`
	CheckInDatetime  *time.Time `json:"check_in_datetime,omitempty"`
	CheckOutDatetime *time.Time `json:"check_out_datetime,omitempty"`
	ActionDate       *time.Time `json:"action_date,omitempty"`
}

// Columns returns the patched columns with their values, in a stable order.
func (p ReservationPatch) Columns() ([]string, []interface{}) {
	var cols []string
	var vals []interface{}
	add := func(col string, set bool, v interface{}) {
		if set {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	add("status", p.Status != nil, deref(p.Status))
	add("pickup_driver", p.PickupDriver != nil, deref(p.PickupDriver))
	add("delivery_driver", p.DeliveryDriver != nil, deref(p.DeliveryDriver))
	add("action_user", p.ActionUser != nil, deref(p.ActionUser))
	add("check_in_datetime", p.CheckInDatetime != nil, utcPtr(p.CheckInDatetime))
	add("check_out_datetime", p.CheckOutDatetime != nil, utcPtr(p.CheckOutDatetime))
	add("action_date", p.ActionDate != nil, utcPtr(p.ActionDate))
	return cols, vals
}

// ReservationBrowser backs the reservation API
type ReservationBrowser interface {
	List(ctx context.Context, filter ReservationFilter) ([]gormModels.Reservation, error)
	// GetByID returns ErrNotFound when the row does not exist
	GetByID(ctx context.Context, id string) (*gormModels.Reservation, error)
	// ApplyPatch updates the given fields and flags the row pending
	ApplyPatch(ctx context.Context, id string, patch ReservationPatch) (*gormModels.Reservation, error)
}

// SyncLogWriter appends to sync_logs
type SyncLogWriter interface {
	Append(ctx context.Context, entry *gormModels.SyncLog) error
}

// SyncLogReader reads sync_logs for the status endpoints
type SyncLogReader interface {
	Recent(ctx context.Context, limit int, operation string) ([]gormModels.SyncLog, error)
	LastStats(ctx context.Context) (*gormModels.SyncLog, error)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
