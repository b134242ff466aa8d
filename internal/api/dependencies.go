package api

import (
	"context"
	"time"

	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/providers"

	"github.com/redis/go-redis/v9"
)

// SyncTrigger is the part of the scheduler the API drives
type SyncTrigger interface {
	TriggerAsync(ctx context.Context, opts jobs.TickOptions) error
	Status() jobs.SchedulerStatus
}

type Repositories struct {
	// Reservations is the configured sync target
	Reservations repositories.ReservationBrowser
	Dashboard    repositories.ReservationStore
	Ferramentas  repositories.ReservationStore
	SyncLogs     repositories.SyncLogReader
	Keys         *repositories.KeysRepo
}

type Services struct {
	Cache     common.CacheInterface
	Legacy    providers.LegacyStore
	Redis     *redis.Client // nil when Redis is not configured
	Scheduler SyncTrigger
	Metrics   *metrics.MetricsRegistry
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	UpSince  time.Time
}
