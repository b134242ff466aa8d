package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/models/entities"
	gormModels "multipark/backoffice/internal/models/gorm"
	"multipark/backoffice/internal/providers"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeLegacy is an in-memory LegacyStore keyed by partition
type fakeLegacy struct {
	mu        sync.Mutex
	docs      map[string][]entities.ExternalReservation
	fetchErr  map[string]error
	updateErr map[string]error
	updates   map[string]entities.LegacyUpdate
	filters   []providers.SyncFilters
	calls     []string
}

func newFakeLegacy() *fakeLegacy {
	return &fakeLegacy{
		docs:      map[string][]entities.ExternalReservation{},
		fetchErr:  map[string]error{},
		updateErr: map[string]error{},
		updates:   map[string]entities.LegacyUpdate{},
	}
}

func (f *fakeLegacy) FetchChanged(ctx context.Context, partition entities.Partition, filters *providers.SyncFilters) (*providers.RecordSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "fetch:"+partition.String())
	f.filters = append(f.filters, *filters)

	if err := f.fetchErr[partition.String()]; err != nil {
		return nil, err
	}

	all := f.docs[partition.String()]
	start := filters.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + filters.Limit
	if end > len(all) {
		end = len(all)
	}
	page := make([]entities.ExternalReservation, end-start)
	copy(page, all[start:end])
	for i := range page {
		page[i].City, page[i].Brand = partition.City, partition.Brand
	}
	return &providers.RecordSet{Records: page, Offset: end, HasMore: end < len(all), TotalFetched: len(page)}, nil
}

func (f *fakeLegacy) UpdateReservation(ctx context.Context, partition entities.Partition, externalID string, update entities.LegacyUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update:"+externalID)
	if err := f.updateErr[externalID]; err != nil {
		return err
	}
	f.updates[externalID] = update
	return nil
}

func (f *fakeLegacy) Ping(ctx context.Context) error { return nil }

func (f *fakeLegacy) GetProviderType() string { return "fake" }

// fakeClock hands out manually driven tickers
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) ticker(t *testing.T) *fakeTicker {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.tickers) > 0 {
			tk := c.tickers[0]
			c.mu.Unlock()
			return tk
		}
		c.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no ticker created")
	return nil
}

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire delivers one tick; it fails the test if the loop is not listening
func (t *fakeTicker) fire(tb testing.TB) {
	tb.Helper()
	select {
	case t.c <- time.Now():
	case <-time.After(time.Second):
		tb.Fatal("scheduler loop did not receive the tick")
	}
}

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&gormModels.Reservation{}, &gormModels.SyncLog{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var _ repositories.ReservationStore = (*repositories.ReservationRepo)(nil)
