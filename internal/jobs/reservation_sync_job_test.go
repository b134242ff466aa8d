package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/models/entities"
	"multipark/backoffice/internal/transform"

	"github.com/prometheus/client_golang/prometheus"
)

type syncHarness struct {
	legacy *fakeLegacy
	store  *repositories.ReservationRepo
	logs   *repositories.SyncLogRepo
	clock  *fakeClock
	job    *ReservationSyncJob
}

func newSyncHarness(t *testing.T, cities, brands []string, pageSize int) *syncHarness {
	db := setupTestDB(t)
	h := &syncHarness{
		legacy: newFakeLegacy(),
		store:  repositories.NewReservationRepo(db),
		logs:   repositories.NewSyncLogRepo(db),
		clock:  newFakeClock(time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC)),
	}

	scheduler := NewSyncScheduler(SyncDependencies{
		Config: config.SyncConfig{
			Interval:    config.Duration(5 * time.Minute),
			Window:      config.Duration(2 * time.Hour),
			PageSize:    pageSize,
			CallTimeout: config.Duration(time.Second),
			Cities:      cities,
			Brands:      brands,
		},
		Legacy:  h.legacy,
		Store:   h.store,
		Logs:    h.logs,
		Metrics: metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		Clock:   h.clock,
	})
	h.job = scheduler.runner.(*ReservationSyncJob)
	return h
}

func TestRunTick_PullInsertsThenUpdates(t *testing.T) {
	h := newSyncHarness(t, []string{"lisbon"}, []string{"airpark"}, 100)
	h.legacy.docs["lisbon/airpark"] = []entities.ExternalReservation{
		{IDClient: "abc123", BookingPrice: "45,50€", CheckIn: "14/03/2024, 15:30", Stats: "recolhido"},
		{IDClient: "def456", BookingPrice: 30.0, Stats: "reservado"},
	}
	ctx := context.Background()

	stats := h.job.RunTick(ctx, TickOptions{Trigger: constants.TriggerManual})
	if stats.Pull.Inserted != 2 || stats.Pull.Failed != 0 {
		t.Fatalf("Expected 2 inserts, got %+v", stats.Pull)
	}

	row, err := h.store.FindByExternalID(ctx, "abc123")
	if err != nil || row == nil {
		t.Fatalf("Expected abc123 to be stored: %v", err)
	}
	if row.BookingPrice != 45.5 || transform.FormatISO(row.CheckInDatetime) != "2024-03-14T15:30:00.000Z" || row.Status != "recolhido" {
		t.Errorf("Unexpected stored row %+v", row)
	}
	if row.City != "lisbon" || row.Brand != "airpark" {
		t.Errorf("Expected partition lisbon/airpark, got %s/%s", row.City, row.Brand)
	}

	h.legacy.docs["lisbon/airpark"][0].Stats = "entregue"
	stats = h.job.RunTick(ctx, TickOptions{})
	if stats.Pull.Updated != 2 || stats.Pull.Inserted != 0 {
		t.Fatalf("Expected 2 updates, got %+v", stats.Pull)
	}
	row, _ = h.store.FindByExternalID(ctx, "abc123")
	if row.Status != "entregue" {
		t.Errorf("Expected status entregue, got %s", row.Status)
	}

	last, err := h.logs.LastStats(ctx)
	if err != nil || last == nil {
		t.Fatalf("Expected a stats row: %v", err)
	}
	if last.RunID != stats.RunID || *last.RecordsProcessed != 2 || !last.Success {
		t.Errorf("Unexpected stats row %+v", last)
	}
}

func TestRunTick_FailingRecordDoesNotAbortBatch(t *testing.T) {
	h := newSyncHarness(t, []string{"porto"}, []string{"redpark"}, 100)
	h.legacy.docs["porto/redpark"] = []entities.ExternalReservation{
		{IDClient: "first"},
		{IDClient: ""},
		{IDClient: "third"},
	}

	stats := h.job.RunTick(context.Background(), TickOptions{})

	if stats.Pull.Processed != 3 || stats.Pull.Succeeded != 2 || stats.Pull.Failed != 1 {
		t.Fatalf("Expected 3 processed / 2 ok / 1 failed, got %+v", stats.Pull)
	}
	if row, _ := h.store.FindByExternalID(context.Background(), "third"); row == nil {
		t.Error("Expected the record after the failing one to be stored")
	}

	logs, _ := h.logs.Recent(context.Background(), 10, constants.SyncOpTransform)
	if len(logs) != 1 || logs[0].Success {
		t.Errorf("Expected one failed transform log, got %+v", logs)
	}
}

func TestRunTick_PartitionFailureContinues(t *testing.T) {
	h := newSyncHarness(t, []string{"lisbon", "faro"}, []string{"skypark"}, 100)
	h.legacy.fetchErr["lisbon/skypark"] = errors.New("connection reset")
	h.legacy.docs["faro/skypark"] = []entities.ExternalReservation{{IDClient: "f1"}}

	stats := h.job.RunTick(context.Background(), TickOptions{})

	if len(stats.Failures) != 1 || !strings.Contains(stats.Failures[0], "lisbon/skypark") {
		t.Fatalf("Expected one partition failure, got %v", stats.Failures)
	}
	if stats.Pull.Inserted != 1 {
		t.Errorf("Expected faro record to be inserted, got %+v", stats.Pull)
	}

	last, _ := h.logs.LastStats(context.Background())
	if last == nil || last.Success {
		t.Errorf("Expected failed stats row, got %+v", last)
	}
}

func TestRunTick_Paging(t *testing.T) {
	h := newSyncHarness(t, []string{"lisbon"}, []string{"airpark"}, 2)
	for i := 0; i < 5; i++ {
		h.legacy.docs["lisbon/airpark"] = append(h.legacy.docs["lisbon/airpark"], entities.ExternalReservation{IDClient: fmt.Sprintf("p%d", i)})
	}

	stats := h.job.RunTick(context.Background(), TickOptions{})

	if stats.Pull.Inserted != 5 {
		t.Errorf("Expected 5 inserts across pages, got %+v", stats.Pull)
	}
	if len(h.legacy.filters) != 3 {
		t.Errorf("Expected 3 page requests, got %d", len(h.legacy.filters))
	}
}

func TestRunTick_TrailingWindowAndFullSync(t *testing.T) {
	h := newSyncHarness(t, []string{"lisbon"}, []string{"airpark"}, 100)

	h.job.RunTick(context.Background(), TickOptions{})
	want := h.clock.Now().Add(-2 * time.Hour)
	if got := h.legacy.filters[0].ModifiedSince; got == nil || !got.Equal(want) {
		t.Errorf("Expected ModifiedSince %v, got %v", want, got)
	}

	h.job.RunTick(context.Background(), TickOptions{Full: true})
	if got := h.legacy.filters[1].ModifiedSince; got != nil {
		t.Errorf("Expected no ModifiedSince on full sync, got %v", got)
	}
}

func TestRunTick_PushBeforePull(t *testing.T) {
	h := newSyncHarness(t, []string{"lisbon"}, []string{"airpark"}, 100)
	ctx := context.Background()
	h.legacy.docs["lisbon/airpark"] = []entities.ExternalReservation{
		{IDClient: "ok", Stats: "reservado"},
		{IDClient: "gone", Stats: "reservado"},
	}
	h.job.RunTick(ctx, TickOptions{})

	ok, _ := h.store.FindByExternalID(ctx, "ok")
	gone, _ := h.store.FindByExternalID(ctx, "gone")
	driver := "Rui"
	h.store.ApplyPatch(ctx, ok.ID, repositories.ReservationPatch{PickupDriver: &driver})
	h.store.ApplyPatch(ctx, gone.ID, repositories.ReservationPatch{PickupDriver: &driver})
	h.legacy.updateErr["gone"] = errors.New("DOCUMENT_NOT_FOUND")
	h.legacy.calls = nil

	stats := h.job.RunTick(ctx, TickOptions{})

	if stats.Push.Succeeded != 1 || stats.Push.Failed != 1 {
		t.Fatalf("Expected 1 pushed and 1 failed, got %+v", stats.Push)
	}
	if len(h.legacy.calls) == 0 || !strings.HasPrefix(h.legacy.calls[0], "update:") {
		t.Errorf("Expected push before pull, calls were %v", h.legacy.calls)
	}
	if h.legacy.updates["ok"].CondutorRecolha != "Rui" {
		t.Errorf("Expected driver pushed to legacy, got %+v", h.legacy.updates["ok"])
	}

	ok, _ = h.store.FindByExternalID(ctx, "ok")
	gone, _ = h.store.FindByExternalID(ctx, "gone")
	if ok.SyncStatus != constants.SyncStatusSynced || ok.LastSyncedAt == nil {
		t.Errorf("Expected ok synced, got %+v", ok)
	}
	if gone.SyncStatus != constants.SyncStatusError || gone.SyncError == nil {
		t.Errorf("Expected gone flagged error, got %+v", gone)
	}
	// The pull of the same tick must not replace the unpushed driver with the legacy value
	if gone.PickupDriver != "Rui" {
		t.Errorf("Expected pickup driver Rui to survive the pull, got %q", gone.PickupDriver)
	}
	if stats.Pull.Skipped != 1 {
		t.Errorf("Expected 1 skipped pull, got %+v", stats.Pull)
	}

	// The failed row is retried on the next tick with the local value
	delete(h.legacy.updateErr, "gone")
	stats = h.job.RunTick(ctx, TickOptions{})
	if stats.Push.Succeeded != 1 {
		t.Errorf("Expected retry of the errored row, got %+v", stats.Push)
	}
	if h.legacy.updates["gone"].CondutorRecolha != "Rui" {
		t.Errorf("Expected driver Rui pushed on retry, got %+v", h.legacy.updates["gone"])
	}
}
