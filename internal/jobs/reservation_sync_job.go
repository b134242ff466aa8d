package jobs

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/models/entities"
	gormModels "multipark/backoffice/internal/models/gorm"
	"multipark/backoffice/internal/providers"
	"multipark/backoffice/internal/services"
	"multipark/backoffice/internal/transform"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TickOptions controls one run of the sync
type TickOptions struct {
	// Full ignores the trailing window and pulls every legacy document
	Full    bool
	Trigger string
}

// DirectionStats counts the records handled in one direction
type DirectionStats struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Inserted  int `json:"inserted,omitempty"`
	Updated   int `json:"updated,omitempty"`
	Skipped   int `json:"skipped,omitempty"`
}

// TickStats is the outcome of one tick, written as the aggregate sync_logs row
type TickStats struct {
	RunID      string         `json:"run_id"`
	Trigger    string         `json:"trigger"`
	Full       bool           `json:"full"`
	Since      *time.Time     `json:"since,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Push       DirectionStats `json:"push"`
	Pull       DirectionStats `json:"pull"`
	// Failures are direction or partition level errors, not per-record ones
	Failures []string `json:"failures,omitempty"`
}

// Processed is the number of records looked at in both directions
func (s *TickStats) Processed() int { return s.Push.Processed + s.Pull.Processed }

// Succeeded is the number of records written in both directions
func (s *TickStats) Succeeded() int { return s.Push.Succeeded + s.Pull.Succeeded }

// Failed is the number of records that failed in both directions
func (s *TickStats) Failed() int { return s.Push.Failed + s.Pull.Failed }

// Duration of the tick
func (s *TickStats) Duration() time.Duration { return s.FinishedAt.Sub(s.StartedAt) }

// ReservationSyncJob runs one bidirectional sync between the legacy store and a relational store
type ReservationSyncJob struct {
	poller      *Poller
	gateway     *services.UpsertGateway
	legacy      providers.LegacyStore
	store       repositories.ReservationStore
	logs        repositories.SyncLogWriter
	window      time.Duration
	callTimeout time.Duration
	metrics     *metrics.MetricsRegistry
	clock       Clock
	log         *zap.SugaredLogger
}

// NewReservationSyncJob creates a new reservation sync job instance
func NewReservationSyncJob(
	poller *Poller,
	gateway *services.UpsertGateway,
	legacy providers.LegacyStore,
	logs repositories.SyncLogWriter,
	window time.Duration,
	callTimeout time.Duration,
	m *metrics.MetricsRegistry,
	clock Clock,
) *ReservationSyncJob {
	if clock == nil {
		clock = RealClock{}
	}
	return &ReservationSyncJob{
		poller:      poller,
		gateway:     gateway,
		legacy:      legacy,
		store:       gateway.Store(),
		logs:        logs,
		window:      window,
		callTimeout: callTimeout,
		metrics:     m,
		clock:       clock,
		log:         logging.WithComponent("reservation_sync"),
	}
}

// RunTick pushes local changes first so a pull of the same document cannot overwrite them,
// then pulls legacy changes, then appends the aggregate stats row.
// Failures never abort the tick; they are counted, logged and recorded in sync_logs.
func (j *ReservationSyncJob) RunTick(ctx context.Context, opts TickOptions) *TickStats {
	if opts.Trigger == "" {
		opts.Trigger = constants.TriggerSchedule
	}
	now := j.clock.Now().UTC()
	stats := &TickStats{
		RunID:     ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Trigger:   opts.Trigger,
		Full:      opts.Full,
		StartedAt: now,
	}
	if !opts.Full {
		since := now.Add(-j.window)
		stats.Since = &since
	}

	j.log.Infow("Starting sync tick",
		"run_id", stats.RunID,
		"trigger", stats.Trigger,
		"full", stats.Full,
		"target", j.store.Name(),
	)

	j.push(ctx, stats)
	j.pull(ctx, stats)

	stats.FinishedAt = j.clock.Now().UTC()
	j.writeStats(ctx, stats)

	if j.metrics != nil {
		j.metrics.SyncTickDuration.WithLabelValues(stats.Trigger).Observe(stats.Duration().Seconds())
		if len(stats.Failures) == 0 {
			j.metrics.SyncLastSuccess.Set(float64(stats.FinishedAt.Unix()))
		}
	}

	j.log.Infow("Completed sync tick",
		"run_id", stats.RunID,
		"duration", stats.Duration().Truncate(time.Millisecond).String(),
		"pushed", stats.Push.Succeeded,
		"push_failed", stats.Push.Failed,
		"inserted", stats.Pull.Inserted,
		"updated", stats.Pull.Updated,
		"pull_failed", stats.Pull.Failed,
		"failures", len(stats.Failures),
	)
	return stats
}

// push sends rows flagged pending or error back to the legacy store
func (j *ReservationSyncJob) push(ctx context.Context, stats *TickStats) {
	rows, err := j.poller.PollPending(ctx)
	if err != nil {
		j.directionFailure(ctx, stats, constants.DirectionRelationalToLegacy, err)
		return
	}

	for i := range rows {
		row := &rows[i]
		stats.Push.Processed++

		partition := entities.Partition{City: row.City, Brand: row.Brand}
		update := transform.ToLegacyUpdate(row)
		err := services.CallWithTimeout(ctx, j.callTimeout, j.metrics, constants.StoreLegacy, "update", func(ctx context.Context) error {
			return j.legacy.UpdateReservation(ctx, partition, row.ExternalID, update)
		})

		status, syncErr := constants.SyncStatusSynced, (*string)(nil)
		if err != nil {
			status, syncErr = constants.SyncStatusError, strPtr(err.Error())
		}
		markErr := services.CallWithTimeout(ctx, j.callTimeout, j.metrics, j.store.Name(), "mark", func(ctx context.Context) error {
			return j.store.MarkSyncStatus(ctx, row.ID, status, syncErr)
		})
		if err == nil && markErr != nil {
			err = fmt.Errorf("pushed but could not mark synced: %w", markErr)
		}

		j.appendLog(ctx, &gormModels.SyncLog{
			RunID:        stats.RunID,
			Direction:    constants.DirectionRelationalToLegacy,
			Target:       j.store.Name(),
			RecordID:     row.ExternalID,
			Operation:    constants.SyncOpPush,
			Success:      err == nil,
			ErrorMessage: errPtr(err),
		})

		if err != nil {
			stats.Push.Failed++
			j.countRecord(constants.DirectionRelationalToLegacy, "failed")
			j.log.Warnw("Push failed",
				"run_id", stats.RunID,
				"external_id", row.ExternalID,
				"partition", partition.String(),
				"error", err,
			)
			continue
		}
		stats.Push.Succeeded++
		j.countRecord(constants.DirectionRelationalToLegacy, "pushed")
	}
}

// pull fetches changed legacy documents and upserts them through the gateway
func (j *ReservationSyncJob) pull(ctx context.Context, stats *TickStats) {
	results := j.poller.PollLegacy(ctx, stats.Since, func(ctx context.Context, partition entities.Partition, records []entities.ExternalReservation) {
		for i := range records {
			j.pullRecord(ctx, stats, &records[i])
		}
	})

	for _, result := range results {
		if result.Err != nil {
			j.directionFailure(ctx, stats, constants.DirectionLegacyToRelational, result.Err)
		}
	}
}

func (j *ReservationSyncJob) pullRecord(ctx context.Context, stats *TickStats, ext *entities.ExternalReservation) {
	stats.Pull.Processed++

	rec, report, err := transform.ToRelational(ext)
	if err != nil {
		stats.Pull.Failed++
		j.countRecord(constants.DirectionLegacyToRelational, "failed")
		j.appendLog(ctx, &gormModels.SyncLog{
			RunID:        stats.RunID,
			Direction:    constants.DirectionLegacyToRelational,
			Target:       j.store.Name(),
			RecordID:     fmt.Sprintf("%s/%s", ext.City, ext.Brand),
			Operation:    constants.SyncOpTransform,
			Success:      false,
			ErrorMessage: errPtr(err),
		})
		return
	}

	result, err := j.gateway.Upsert(ctx, stats.RunID, rec, report)
	if err != nil {
		stats.Pull.Failed++
		j.countRecord(constants.DirectionLegacyToRelational, "failed")
		return
	}

	stats.Pull.Succeeded++
	switch result.Operation {
	case constants.SyncOpInsert:
		stats.Pull.Inserted++
		j.countRecord(constants.DirectionLegacyToRelational, "inserted")
	case constants.SyncOpSkip:
		stats.Pull.Skipped++
		j.countRecord(constants.DirectionLegacyToRelational, "skipped")
	default:
		stats.Pull.Updated++
		j.countRecord(constants.DirectionLegacyToRelational, "updated")
	}
}

func (j *ReservationSyncJob) directionFailure(ctx context.Context, stats *TickStats, direction string, err error) {
	stats.Failures = append(stats.Failures, fmt.Sprintf("%s: %v", direction, err))
	j.log.Errorw("Sync direction failed",
		"run_id", stats.RunID,
		"direction", direction,
		"error", err,
	)
	j.appendLog(ctx, &gormModels.SyncLog{
		RunID:        stats.RunID,
		Direction:    direction,
		Target:       j.store.Name(),
		RecordID:     constants.BatchRecordID,
		Operation:    constants.SyncOpFetch,
		Success:      false,
		ErrorMessage: errPtr(err),
	})
}

func (j *ReservationSyncJob) writeStats(ctx context.Context, stats *TickStats) {
	processed, succeeded, failed := stats.Processed(), stats.Succeeded(), stats.Failed()
	durationMs := stats.Duration().Milliseconds()

	entry := &gormModels.SyncLog{
		RunID:            stats.RunID,
		Direction:        constants.DirectionBoth,
		Target:           j.store.Name(),
		RecordID:         constants.BatchRecordID,
		Operation:        constants.SyncOpStats,
		Success:          len(stats.Failures) == 0 && failed == 0,
		RecordsProcessed: &processed,
		RecordsSucceeded: &succeeded,
		RecordsFailed:    &failed,
		DurationMs:       &durationMs,
	}
	if details, err := json.Marshal(stats); err == nil {
		entry.Details = strPtr(string(details))
	}
	if len(stats.Failures) > 0 {
		entry.ErrorMessage = strPtr(stats.Failures[0])
	}
	j.appendLog(ctx, entry)
}

func (j *ReservationSyncJob) appendLog(ctx context.Context, entry *gormModels.SyncLog) {
	err := services.CallWithTimeout(ctx, j.callTimeout, j.metrics, constants.StoreDashboard, "sync_log", func(ctx context.Context) error {
		return j.logs.Append(ctx, entry)
	})
	if err != nil {
		j.log.Errorw("Failed to append sync log",
			"run_id", entry.RunID,
			"record_id", entry.RecordID,
			"operation", entry.Operation,
			"error", err,
		)
	}
}

func (j *ReservationSyncJob) countRecord(direction, outcome string) {
	if j.metrics != nil {
		j.metrics.SyncRecordsTotal.WithLabelValues(direction, outcome).Inc()
	}
}

func strPtr(s string) *string {
	return &s
}

func errPtr(err error) *string {
	if err == nil {
		return nil
	}
	return strPtr(err.Error())
}
