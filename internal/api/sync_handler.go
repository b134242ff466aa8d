package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"multipark/backoffice/internal/auth"
	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/jobs"
	"multipark/backoffice/internal/logging"
	gormModels "multipark/backoffice/internal/models/gorm"
)

// TriggerSyncRequest is the optional body of POST /sync/run
type TriggerSyncRequest struct {
	Full bool `json:"full"`
}

// SyncStatusData is returned by GET /sync/status
type SyncStatusData struct {
	Scheduler jobs.SchedulerStatus `json:"scheduler"`
	LastStats *gormModels.SyncLog  `json:"last_stats,omitempty"`
}

// TriggerSync starts a one-off tick in the background
//
// @Summary Trigger a sync tick
// @Tags sync
// @Accept json
// @Produce json
// @Param body body TriggerSyncRequest false "full=true ignores the trailing window"
// @Success 202 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/sync/run [post]
func (h *Handlers) TriggerSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req TriggerSyncRequest
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				common.RespondError(w, initTime, nil, "Invalid request body", http.StatusBadRequest)
				return
			}
		}

		subject := ""
		if claims := auth.GetClaims(r.Context()); claims != nil {
			subject = claims.Subject
		}

		// The tick must outlive this request
		err := h.deps.Services.Scheduler.TriggerAsync(context.Background(), jobs.TickOptions{
			Full:    req.Full,
			Trigger: constants.TriggerManual,
		})
		if errors.Is(err, jobs.ErrTickInProgress) {
			common.RespondError(w, initTime, err, "", http.StatusConflict)
			return
		}
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to start sync", http.StatusInternalServerError)
			return
		}

		logging.Info("Manual sync triggered",
			"request_id", auth.GetRequestID(r.Context()),
			"triggered_by", subject,
			"full", req.Full,
		)
		common.RespondSuccess(w, initTime, "Sync started", req, http.StatusAccepted)
	}
}

// GetSyncStatus returns the scheduler state and the last tick summary
//
// @Summary Sync status
// @Tags sync
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /api/v1/sync/status [get]
func (h *Handlers) GetSyncStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		last, err := h.deps.Repo.SyncLogs.LastStats(r.Context())
		if err != nil {
			logging.Error("Failed to load last sync stats", "error", err)
			common.RespondError(w, initTime, nil, "Failed to load sync status", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Sync status retrieved", SyncStatusData{
			Scheduler: h.deps.Services.Scheduler.Status(),
			LastStats: last,
		})
	}
}

// GetSyncLogs lists recent sync_logs rows, newest first
//
// @Summary Recent sync logs
// @Tags sync
// @Produce json
// @Param limit query int false "max rows (default 50)"
// @Param operation query string false "insert, update, push, transform, fetch or stats"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/sync/logs [get]
func (h *Handlers) GetSyncLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit, ok := queryInt(r.URL.Query().Get("limit"), 50)
		if !ok {
			common.RespondError(w, initTime, nil, "limit must be a positive integer", http.StatusBadRequest)
			return
		}

		logs, err := h.deps.Repo.SyncLogs.Recent(r.Context(), limit, r.URL.Query().Get("operation"))
		if err != nil {
			logging.Error("Failed to load sync logs", "error", err)
			common.RespondError(w, initTime, nil, "Failed to load sync logs", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Sync logs retrieved", logs)
	}
}
