package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/models/entities"
	gormModels "multipark/backoffice/internal/models/gorm"
	"multipark/backoffice/internal/providers"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

// mockStore overrides the ping and count calls of a ReservationStore
type mockStore struct {
	repositories.ReservationStore
	pingFunc  func(ctx context.Context) error
	countFunc func(ctx context.Context) (map[string]int64, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func (m *mockStore) CountBySyncStatus(ctx context.Context) (map[string]int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return map[string]int64{}, nil
}

type mockLegacy struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockLegacy) FetchChanged(ctx context.Context, p entities.Partition, f *providers.SyncFilters) (*providers.RecordSet, error) {
	return &providers.RecordSet{}, nil
}

func (m *mockLegacy) UpdateReservation(ctx context.Context, p entities.Partition, id string, u entities.LegacyUpdate) error {
	return nil
}

func (m *mockLegacy) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func (m *mockLegacy) GetProviderType() string { return "mock" }

type mockTrigger struct {
	triggerAsyncFunc func(ctx context.Context, opts jobs.TickOptions) error
	status           jobs.SchedulerStatus
}

func (m *mockTrigger) TriggerAsync(ctx context.Context, opts jobs.TickOptions) error {
	if m.triggerAsyncFunc != nil {
		return m.triggerAsyncFunc(ctx, opts)
	}
	return nil
}

func (m *mockTrigger) Status() jobs.SchedulerStatus { return m.status }

var errDown = errors.New("connection refused")

// newTestDeps wires a gorm-backed target store and healthy mocks for everything else
func newTestDeps(t *testing.T) (*Dependencies, *repositories.ReservationRepo, *repositories.SyncLogRepo) {
	db := setupTestDB(t)
	repo := repositories.NewReservationRepo(db)
	logs := repositories.NewSyncLogRepo(db)

	deps := &Dependencies{
		Repo: &Repositories{
			Reservations: repo,
			Dashboard:    repo,
			Ferramentas:  &mockStore{},
			SyncLogs:     logs,
		},
		Services: &Services{
			Cache:     common.NewCacheService(time.Minute, 2*time.Minute, nil),
			Legacy:    &mockLegacy{},
			Scheduler: &mockTrigger{},
		},
		UpSince: time.Now().Add(-time.Minute),
	}
	return deps, repo, logs
}

// serve routes one request through a chi router so URL params resolve
func serve(h *Handlers, method, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/healthCheck", h.HealthCheckHandler())
	r.Get("/reservations", h.ListReservations())
	r.Get("/reservations/{id}", h.GetReservation())
	r.Patch("/reservations/{id}", h.PatchReservation())
	r.Post("/sync/run", h.TriggerSync())
	r.Get("/sync/status", h.GetSyncStatus())
	r.Get("/sync/logs", h.GetSyncLogs())

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decodeData decodes the data field of the response envelope into out
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) common.APIResponse {
	t.Helper()
	var envelope struct {
		common.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
	return envelope.APIResponse
}
