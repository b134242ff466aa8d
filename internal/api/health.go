package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/models/entities"

	"golang.org/x/sync/errgroup"
)

const (
	probeTimeout = 5 * time.Second
	countsTTL    = 30 * time.Second
)

// dataStores decide between degraded and unhealthy; Redis only ever degrades
var dataStores = []string{constants.StoreDashboard, constants.StoreFerramentas, constants.StoreLegacy}

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Probes every store concurrently. 200 while at least one data store answers, 503 otherwise.
// @Tags Misc
// @Success 200 {object} entities.HealthCheckResponse
// @Failure 503 {object} entities.HealthCheckResponse
// @Router /healthCheck [get]
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := h.probeAll(r.Context())
		status := systemStatus(services)

		resp := entities.HealthCheckResponse{
			SystemStatus: status,
			Services:     services,
			Sync:         h.syncHealth(),
			UpSince:      h.deps.UpSince,
			Uptime:       time.Since(h.deps.UpSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if status == constants.SystemStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *Handlers) probeAll(ctx context.Context) map[string]entities.ServiceStatus {
	var mu sync.Mutex
	services := make(map[string]entities.ServiceStatus)
	record := func(name string, st entities.ServiceStatus) {
		mu.Lock()
		services[name] = st
		mu.Unlock()
		if m := h.deps.Services.Metrics; m != nil {
			up := 0.0
			if st.Status == "ok" {
				up = 1
			}
			m.StoreUp.WithLabelValues(name).Set(up)
		}
	}

	// Probes never return an error so one slow store cannot cancel the others
	g, gctx := errgroup.WithContext(ctx)

	relational := map[string]repositories.ReservationStore{
		constants.StoreDashboard:   h.deps.Repo.Dashboard,
		constants.StoreFerramentas: h.deps.Repo.Ferramentas,
	}
	for name, store := range relational {
		if store == nil {
			continue
		}
		g.Go(func() error {
			record(name, h.probeRelational(gctx, name, store))
			return nil
		})
	}

	if legacy := h.deps.Services.Legacy; legacy != nil {
		g.Go(func() error {
			record(constants.StoreLegacy, probe(gctx, "Legacy store connected", legacy.Ping))
			return nil
		})
	}

	if client := h.deps.Services.Redis; client != nil {
		g.Go(func() error {
			record(constants.StoreRedis, probe(gctx, "Redis connected", func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}))
			return nil
		})
	}

	_ = g.Wait()
	return services
}

func (h *Handlers) probeRelational(ctx context.Context, name string, store repositories.ReservationStore) entities.ServiceStatus {
	st := probe(ctx, "Postgres connected", store.Ping)
	if st.Status != "ok" {
		return st
	}

	counts, err := common.GetOrLoad(h.deps.Services.Cache, h.deps.Services.Metrics,
		string(constants.CachePrefixHealthCounts), string(constants.CachePrefixHealthCounts)+name, countsTTL,
		func() (map[string]int64, error) {
			cctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			return store.CountBySyncStatus(cctx)
		})
	if err != nil {
		logging.Warn("Failed to count reservations", "store", name, "error", err)
		return st
	}

	st.Counts = counts
	if m := h.deps.Services.Metrics; m != nil {
		for _, syncStatus := range []string{constants.SyncStatusPending, constants.SyncStatusSynced, constants.SyncStatusError} {
			m.SyncPendingRecords.WithLabelValues(name, syncStatus).Set(float64(counts[syncStatus]))
		}
	}
	return st
}

func probe(ctx context.Context, okDetails string, ping func(ctx context.Context) error) entities.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	st := entities.ServiceStatus{
		Status:    "ok",
		Details:   okDetails,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		st.Status = "down"
		st.Details = err.Error()
	}
	return st
}

func systemStatus(services map[string]entities.ServiceStatus) string {
	dataUp, dataProbed := 0, 0
	for _, name := range dataStores {
		st, ok := services[name]
		if !ok {
			continue
		}
		dataProbed++
		if st.Status == "ok" {
			dataUp++
		}
	}
	if dataProbed > 0 && dataUp == 0 {
		return constants.SystemStatusUnhealthy
	}
	for _, st := range services {
		if st.Status != "ok" {
			return constants.SystemStatusDegraded
		}
	}
	return constants.SystemStatusHealthy
}

func (h *Handlers) syncHealth() *entities.SyncHealth {
	if h.deps.Services.Scheduler == nil {
		return nil
	}
	status := h.deps.Services.Scheduler.Status()
	sh := &entities.SyncHealth{
		Running: status.Running,
		Started: status.Started,
	}
	if last := status.LastRun; last != nil {
		finished := last.FinishedAt
		sh.LastRunAt = &finished
		if len(last.Failures) > 0 {
			sh.LastError = last.Failures[0]
		}
	}
	return sh
}
