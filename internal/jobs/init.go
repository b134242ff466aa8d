package jobs

import (
	"context"
	"time"

	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/providers"
	"multipark/backoffice/internal/services"
)

// SyncDependencies are the stores and settings the sync job is built from
type SyncDependencies struct {
	Config  config.SyncConfig
	Legacy  providers.LegacyStore
	Store   repositories.ReservationStore
	Logs    repositories.SyncLogWriter
	Metrics *metrics.MetricsRegistry
	Clock   Clock
}

// NewSyncScheduler wires poller, gateway and job into an idle scheduler
func NewSyncScheduler(deps SyncDependencies) *Scheduler {
	callTimeout := time.Duration(deps.Config.CallTimeout)

	poller := NewPoller(
		deps.Legacy,
		deps.Store,
		Partitions(deps.Config.Cities, deps.Config.Brands),
		deps.Config.PageSize,
		callTimeout,
		deps.Metrics,
	)
	gateway := services.NewUpsertGateway(deps.Store, deps.Logs, callTimeout, deps.Metrics)
	job := NewReservationSyncJob(
		poller,
		gateway,
		deps.Legacy,
		deps.Logs,
		time.Duration(deps.Config.Window),
		callTimeout,
		deps.Metrics,
		deps.Clock,
	)

	return NewScheduler(job, time.Duration(deps.Config.Interval), deps.Config.RunOnStart, deps.Clock, deps.Metrics)
}

// InitializeJobs builds the sync scheduler and starts it in the background when sync is enabled
func InitializeJobs(ctx context.Context, deps SyncDependencies) (*Scheduler, error) {
	scheduler := NewSyncScheduler(deps)
	if !deps.Config.Enabled {
		return scheduler, nil
	}

	if err := scheduler.Start(ctx); err != nil {
		return nil, err
	}
	return scheduler, nil
}
