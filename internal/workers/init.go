package workers

import (
	"context"
	"time"

	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/metrics"
)

const backlogCheckInterval = time.Minute

type WorkersContainer struct {
	Backlog *BacklogMonitor
}

// InitWorkers starts the background workers. They stop when ctx is done.
func InitWorkers(
	ctx context.Context,
	stores map[string]repositories.ReservationStore,
	m *metrics.MetricsRegistry,
	callTimeout time.Duration,
) *WorkersContainer {
	monitor := NewBacklogMonitor(stores, m, callTimeout)

	go monitor.Start(ctx, backlogCheckInterval)

	return &WorkersContainer{
		Backlog: monitor,
	}
}
