package services

import (
	"context"
	"fmt"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"
	gormModels "multipark/backoffice/internal/models/gorm"
	"multipark/backoffice/internal/transform"

	"go.uber.org/zap"
)

// UpsertResult is the stored row and whether it was created or updated
type UpsertResult struct {
	Record    *gormModels.Reservation
	Operation string
}

// UpsertGateway writes transformed legacy records into one relational store.
// Every call appends exactly one sync_logs row, whatever the outcome.
type UpsertGateway struct {
	store       repositories.ReservationStore
	logs        repositories.SyncLogWriter
	callTimeout time.Duration
	metrics     *metrics.MetricsRegistry
	log         *zap.SugaredLogger
}

// NewUpsertGateway creates a gateway. m may be nil.
func NewUpsertGateway(store repositories.ReservationStore, logs repositories.SyncLogWriter, callTimeout time.Duration, m *metrics.MetricsRegistry) *UpsertGateway {
	return &UpsertGateway{
		store:       store,
		logs:        logs,
		callTimeout: callTimeout,
		metrics:     m,
		log:         logging.WithComponent("upsert_gateway"),
	}
}

// Store returns the destination store
func (g *UpsertGateway) Store() repositories.ReservationStore {
	return g.store
}

// Upsert looks the record up by external id, inserts or updates it, and returns the stored row.
// A row whose sync_status is not synced is left untouched and reported as a skip.
// Store errors are returned after being logged; the caller decides whether to continue.
func (g *UpsertGateway) Upsert(ctx context.Context, runID string, rec *gormModels.Reservation, report transform.Report) (*UpsertResult, error) {
	start := time.Now()
	operation := constants.SyncOpUpsert

	result, err := g.upsert(ctx, rec, &operation)

	entry := &gormModels.SyncLog{
		RunID:     runID,
		Direction: constants.DirectionLegacyToRelational,
		Target:    g.store.Name(),
		RecordID:  rec.ExternalID,
		Operation: operation,
		Success:   err == nil,
	}
	if err != nil {
		entry.ErrorMessage = strPtr(err.Error())
	}
	if !report.Clean() {
		entry.Details = strPtr(report.String())
	}
	if err == nil && result.Operation == constants.SyncOpSkip {
		entry.Details = strPtr(fmt.Sprintf("local change %s, legacy update not applied", result.Record.SyncStatus))
	}
	durationMs := time.Since(start).Milliseconds()
	entry.DurationMs = &durationMs
	g.appendLog(ctx, entry)

	if err != nil {
		g.log.Warnw("Upsert failed",
			"run_id", runID,
			"external_id", rec.ExternalID,
			"operation", operation,
			"error", err,
		)
		return nil, err
	}
	return result, nil
}

func (g *UpsertGateway) upsert(ctx context.Context, rec *gormModels.Reservation, operation *string) (*UpsertResult, error) {
	var existing *gormModels.Reservation
	err := CallWithTimeout(ctx, g.callTimeout, g.metrics, g.store.Name(), "find", func(ctx context.Context) error {
		var err error
		existing, err = g.store.FindByExternalID(ctx, rec.ExternalID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", rec.ExternalID, err)
	}

	*operation = constants.SyncOpInsert
	if existing != nil {
		*operation = constants.SyncOpUpdate
		// The push owns the row until its local change reaches the legacy store
		if existing.SyncStatus != constants.SyncStatusSynced {
			*operation = constants.SyncOpSkip
			return &UpsertResult{Record: existing, Operation: *operation}, nil
		}
	}

	err = CallWithTimeout(ctx, g.callTimeout, g.metrics, g.store.Name(), *operation, func(ctx context.Context) error {
		return g.store.Upsert(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", *operation, rec.ExternalID, err)
	}

	var stored *gormModels.Reservation
	err = CallWithTimeout(ctx, g.callTimeout, g.metrics, g.store.Name(), "find", func(ctx context.Context) error {
		var err error
		stored, err = g.store.FindByExternalID(ctx, rec.ExternalID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reload %s: %w", rec.ExternalID, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("reload %s: %w", rec.ExternalID, repositories.ErrNotFound)
	}

	return &UpsertResult{Record: stored, Operation: *operation}, nil
}

// appendLog never fails the caller; a lost log row is reported through zap instead
func (g *UpsertGateway) appendLog(ctx context.Context, entry *gormModels.SyncLog) {
	err := CallWithTimeout(ctx, g.callTimeout, g.metrics, constants.StoreDashboard, "sync_log", func(ctx context.Context) error {
		return g.logs.Append(ctx, entry)
	})
	if err != nil {
		g.log.Errorw("Failed to append sync log",
			"record_id", entry.RecordID,
			"operation", entry.Operation,
			"error", err,
		)
	}
}
