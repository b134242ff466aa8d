package providers

import (
	"context"
	"fmt"
	"time"

	"multipark/backoffice/internal/models/entities"
)

// LegacyStore is the legacy document store as seen by the sync job
type LegacyStore interface {
	// FetchChanged returns one page of documents of a partition changed since filters.ModifiedSince
	FetchChanged(ctx context.Context, partition entities.Partition, filters *SyncFilters) (*RecordSet, error)

	// UpdateReservation writes the status/action fields of one document back
	UpdateReservation(ctx context.Context, partition entities.Partition, externalID string, update entities.LegacyUpdate) error

	// Ping checks connectivity
	Ping(ctx context.Context) error

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// RecordSet represents a paginated set of records
type RecordSet struct {
	Records      []entities.ExternalReservation // Documents with City/Brand filled from the partition
	Offset       int                            // Offset to request the next page with
	HasMore      bool                           // Whether more records exist
	TotalFetched int                            // Number of records in this batch
}

// SyncFilters defines filters for fetching records
type SyncFilters struct {
	ModifiedSince *time.Time // nil fetches the whole partition
	Offset        int        // Pagination offset
	Limit         int        // Max records to fetch
}

// ProviderError is a legacy store failure tagged with one of the constants.ErrCode* codes
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
