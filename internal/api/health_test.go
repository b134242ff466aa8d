package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/metrics"
	"multipark/backoffice/internal/models/entities"
	gormModels "multipark/backoffice/internal/models/gorm"

	"github.com/prometheus/client_golang/prometheus"
)

func decodeHealth(t *testing.T, body []byte) entities.HealthCheckResponse {
	t.Helper()
	var resp entities.HealthCheckResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	return resp
}

func TestHealthCheck_Healthy(t *testing.T) {
	deps, repo, _ := newTestDeps(t)
	deps.Services.Metrics = metrics.NewMetricsRegistry(prometheus.NewRegistry())
	repo.Upsert(context.Background(), &gormModels.Reservation{ExternalID: "abc123", SyncStatus: constants.SyncStatusSynced})

	rec := serve(NewHandlers(deps), http.MethodGet, "/healthCheck", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	resp := decodeHealth(t, rec.Body.Bytes())
	if resp.SystemStatus != constants.SystemStatusHealthy {
		t.Errorf("Expected healthy, got %s", resp.SystemStatus)
	}
	dash := resp.Services[constants.StoreDashboard]
	if dash.Status != "ok" || dash.Counts[constants.SyncStatusSynced] != 1 {
		t.Errorf("Expected dashboard ok with 1 synced row, got %+v", dash)
	}
	if resp.Sync == nil {
		t.Error("Expected sync section")
	}
}

func TestHealthCheck_DegradedStillOK(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	deps.Services.Legacy = &mockLegacy{pingFunc: func(ctx context.Context) error { return errDown }}

	rec := serve(NewHandlers(deps), http.MethodGet, "/healthCheck", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	resp := decodeHealth(t, rec.Body.Bytes())
	if resp.SystemStatus != constants.SystemStatusDegraded {
		t.Errorf("Expected degraded, got %s", resp.SystemStatus)
	}
	if legacy := resp.Services[constants.StoreLegacy]; legacy.Status != "down" || legacy.Details != errDown.Error() {
		t.Errorf("Expected legacy down with details, got %+v", legacy)
	}
}

func TestHealthCheck_AllStoresDown(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	down := func(ctx context.Context) error { return errDown }
	deps.Repo.Dashboard = &mockStore{pingFunc: down}
	deps.Repo.Ferramentas = &mockStore{pingFunc: down}
	deps.Services.Legacy = &mockLegacy{pingFunc: down}

	rec := serve(NewHandlers(deps), http.MethodGet, "/healthCheck", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rec.Code)
	}
	if resp := decodeHealth(t, rec.Body.Bytes()); resp.SystemStatus != constants.SystemStatusUnhealthy {
		t.Errorf("Expected unhealthy, got %s", resp.SystemStatus)
	}
}

func TestHealthCheck_CountsAreCached(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	calls := 0
	deps.Repo.Ferramentas = &mockStore{countFunc: func(ctx context.Context) (map[string]int64, error) {
		calls++
		return map[string]int64{constants.SyncStatusPending: 4}, nil
	}}

	h := NewHandlers(deps)
	serve(h, http.MethodGet, "/healthCheck", "")
	rec := serve(h, http.MethodGet, "/healthCheck", "")

	resp := decodeHealth(t, rec.Body.Bytes())
	if resp.Services[constants.StoreFerramentas].Counts[constants.SyncStatusPending] != 4 {
		t.Errorf("Expected 4 pending, got %+v", resp.Services[constants.StoreFerramentas])
	}
	if calls != 1 {
		t.Errorf("Expected counts loaded once, got %d", calls)
	}
}

func TestHealthCheck_ReportsLastRun(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	deps.Services.Scheduler = &mockTrigger{status: jobs.SchedulerStatus{
		Started: true,
		LastRun: &jobs.TickStats{Failures: []string{"legacy_to_relational: timeout"}},
	}}

	rec := serve(NewHandlers(deps), http.MethodGet, "/healthCheck", "")
	resp := decodeHealth(t, rec.Body.Bytes())
	if resp.Sync == nil || !resp.Sync.Started || resp.Sync.LastError != "legacy_to_relational: timeout" {
		t.Errorf("Unexpected sync health %+v", resp.Sync)
	}
}

func TestSystemStatus(t *testing.T) {
	ok := entities.ServiceStatus{Status: "ok"}
	down := entities.ServiceStatus{Status: "down"}

	tests := []struct {
		name     string
		services map[string]entities.ServiceStatus
		want     string
	}{
		{"all up", map[string]entities.ServiceStatus{"dashboard": ok, "ferramentas": ok, "legacy": ok, "redis": ok}, constants.SystemStatusHealthy},
		{"redis down", map[string]entities.ServiceStatus{"dashboard": ok, "ferramentas": ok, "legacy": ok, "redis": down}, constants.SystemStatusDegraded},
		{"one store up", map[string]entities.ServiceStatus{"dashboard": down, "ferramentas": ok, "legacy": down}, constants.SystemStatusDegraded},
		{"data stores down, redis up", map[string]entities.ServiceStatus{"dashboard": down, "ferramentas": down, "legacy": down, "redis": ok}, constants.SystemStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := systemStatus(tt.services); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
