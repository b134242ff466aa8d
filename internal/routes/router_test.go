package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multipark/backoffice/internal/api"
	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type idleTrigger struct{}

func (idleTrigger) TriggerAsync(ctx context.Context, opts jobs.TickOptions) error { return nil }
func (idleTrigger) Status() jobs.SchedulerStatus                                  { return jobs.SchedulerStatus{} }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{Auth: config.AuthConfig{AnonKey: "anon-key", ServiceKey: "service-key"}}
	deps := &api.Dependencies{
		Repo: &api.Repositories{},
		Services: &api.Services{
			Cache:     common.NewCacheService(time.Minute, 2*time.Minute, nil),
			Scheduler: idleTrigger{},
			Metrics:   metrics.NewMetricsRegistry(reg),
		},
		UpSince: time.Now(),
	}
	return RegisterRoutes(cfg, deps, reg)
}

func do(h http.Handler, method, target, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.1.1.1:4000"
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	h := newTestRouter(t)

	if rec := do(h, http.MethodGet, "/healthCheck", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected healthCheck 200 with no stores configured, got %d", rec.Code)
	}

	rec := do(h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected /metrics 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "backoffice_http_requests_total") {
		t.Error("Expected HTTP metrics to be exposed")
	}
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	h := newTestRouter(t)

	if rec := do(h, http.MethodGet, "/api/v1/sync/status", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/v1/sync/run", "anon-key"); rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for anon trigger, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/v1/sync/run", "service-key"); rec.Code != http.StatusAccepted {
		t.Errorf("Expected 202 for service trigger, got %d", rec.Code)
	}
}

func TestRouter_SyncRunIsRateLimited(t *testing.T) {
	h := newTestRouter(t)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(h, http.MethodPost, "/api/v1/sync/run", "service-key").Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected third trigger to be limited, got %v", codes)
	}
}
