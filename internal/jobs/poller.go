package jobs

import (
	"context"
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

	"go.uber.org/zap"
)

// PartitionResult summarises one partition of a legacy poll
type PartitionResult struct {
	Partition entities.Partition
	Pages     int
	Fetched   int
	Err       error
}

// PageHandler receives each fetched page in order
type PageHandler func(ctx context.Context, partition entities.Partition, records []entities.ExternalReservation)

// Poller finds the records that changed on either side
type Poller struct {
	legacy      providers.LegacyStore
	store       repositories.ReservationStore
	partitions  []entities.Partition
	pageSize    int
	callTimeout time.Duration
	metrics     *metrics.MetricsRegistry
	log         *zap.SugaredLogger
}

// NewPoller creates a poller over the given partitions
func NewPoller(
	legacy providers.LegacyStore,
	store repositories.ReservationStore,
	partitions []entities.Partition,
	pageSize int,
	callTimeout time.Duration,
	m *metrics.MetricsRegistry,
) *Poller {
	return &Poller{
		legacy:      legacy,
		store:       store,
		partitions:  partitions,
		pageSize:    pageSize,
		callTimeout: callTimeout,
		metrics:     m,
		log:         logging.WithComponent("poller"),
	}
}

// Partitions expands the configured cities and brands into the full (city, brand) matrix
func Partitions(cities, brands []string) []entities.Partition {
	out := make([]entities.Partition, 0, len(cities)*len(brands))
	for _, city := range cities {
		for _, brand := range brands {
			out = append(out, entities.Partition{City: city, Brand: brand})
		}
	}
	return out
}

// PollLegacy pages through every partition for documents changed since `since` (nil for everything).
// A failing partition is reported in its result and the remaining partitions are still polled.
func (p *Poller) PollLegacy(ctx context.Context, since *time.Time, handle PageHandler) []PartitionResult {
	results := make([]PartitionResult, 0, len(p.partitions))

	for _, partition := range p.partitions {
		result := PartitionResult{Partition: partition}
		offset := 0

		for {
			if err := ctx.Err(); err != nil {
				result.Err = err
				break
			}

			var set *providers.RecordSet
			err := services.CallWithTimeout(ctx, p.callTimeout, p.metrics, constants.StoreLegacy, "fetch", func(ctx context.Context) error {
				var err error
				set, err = p.legacy.FetchChanged(ctx, partition, &providers.SyncFilters{
					ModifiedSince: since,
					Offset:        offset,
					Limit:         p.pageSize,
				})
				return err
			})
			if err != nil {
				result.Err = fmt.Errorf("partition %s page %d: %w", partition, result.Pages+1, err)
				p.log.Warnw("Legacy fetch failed, moving to next partition",
					"partition", partition.String(),
					"page", result.Pages+1,
					"error", err,
				)
				break
			}

			result.Pages++
			result.Fetched += len(set.Records)
			if len(set.Records) > 0 {
				handle(ctx, partition, set.Records)
			}

			if !set.HasMore {
				break
			}
			offset = set.Offset
		}

		p.log.Debugw("Partition polled",
			"partition", partition.String(),
			"pages", result.Pages,
			"fetched", result.Fetched,
		)
		results = append(results, result)
	}

	return results
}

// PollPending returns relational rows waiting to be pushed back, at most one page of them
func (p *Poller) PollPending(ctx context.Context) ([]gormModels.Reservation, error) {
	var rows []gormModels.Reservation
	err := services.CallWithTimeout(ctx, p.callTimeout, p.metrics, p.store.Name(), "find_pending", func(ctx context.Context) error {
		var err error
		rows, err = p.store.FindBySyncStatus(ctx, []string{constants.SyncStatusPending, constants.SyncStatusError}, p.pageSize)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pending rows from %s: %w", p.store.Name(), err)
	}
	return rows, nil
}
