package workers

import (
	"context"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/metrics"

	"go.uber.org/zap"
)

// Rows waiting for a push above these counts are logged as warnings
const (
	pendingAlertThreshold = 500
	errorAlertThreshold   = 50
)

// BacklogStats is the outbound backlog of one relational store
type BacklogStats struct {
	Store       string
	Pending     int64
	Errored     int64
	Synced      int64
	LastChecked time.Time
}

// BacklogMonitor reports how many rows still wait to be pushed to the legacy store
type BacklogMonitor struct {
	stores  map[string]repositories.ReservationStore
	metrics *metrics.MetricsRegistry
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewBacklogMonitor creates a new backlog monitor. m may be nil.
func NewBacklogMonitor(stores map[string]repositories.ReservationStore, m *metrics.MetricsRegistry, timeout time.Duration) *BacklogMonitor {
	return &BacklogMonitor{
		stores:  stores,
		metrics: m,
		timeout: timeout,
		log:     logging.WithComponent("backlog_monitor"),
	}
}

// Start checks every interval until ctx is done
func (m *BacklogMonitor) Start(ctx context.Context, interval time.Duration) {
	m.log.Infow("Starting backlog monitoring", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	m.CheckBacklog(ctx)

	for {
		select {
		case <-ctx.Done():
			m.log.Infow("Shutting down backlog monitor")
			return
		case <-ticker.C:
			m.CheckBacklog(ctx)
		}
	}
}

// CheckBacklog counts rows per sync_status in every store and updates the gauges.
// A store that cannot be counted is logged and skipped.
func (m *BacklogMonitor) CheckBacklog(ctx context.Context) []BacklogStats {
	var all []BacklogStats
	alerts := 0

	for name, store := range m.stores {
		stats, err := m.backlogStats(ctx, name, store)
		if err != nil {
			m.log.Warnw("Failed to count backlog", "store", name, "error", err)
			continue
		}
		all = append(all, *stats)

		if m.metrics != nil {
			m.metrics.SyncPendingRecords.WithLabelValues(name, constants.SyncStatusPending).Set(float64(stats.Pending))
			m.metrics.SyncPendingRecords.WithLabelValues(name, constants.SyncStatusError).Set(float64(stats.Errored))
			m.metrics.SyncPendingRecords.WithLabelValues(name, constants.SyncStatusSynced).Set(float64(stats.Synced))
		}

		if stats.Pending > pendingAlertThreshold || stats.Errored > errorAlertThreshold {
			alerts++
			m.log.Warnw("Outbound backlog is high",
				"store", name,
				"pending", stats.Pending,
				"error", stats.Errored,
			)
		}
	}

	if alerts == 0 {
		m.log.Debugw("Backlog check complete", "stores", len(all))
	}
	return all
}

func (m *BacklogMonitor) backlogStats(ctx context.Context, name string, store repositories.ReservationStore) (*BacklogStats, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	counts, err := store.CountBySyncStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &BacklogStats{
		Store:       name,
		Pending:     counts[constants.SyncStatusPending],
		Errored:     counts[constants.SyncStatusError],
		Synced:      counts[constants.SyncStatusSynced],
		LastChecked: time.Now(),
	}, nil
}
