package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"multipark/backoffice/internal/common"
	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db/repositories"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/transform"

	"github.com/go-chi/chi/v5"
)

var validSyncStatuses = map[string]bool{
	constants.SyncStatusPending: true,
	constants.SyncStatusSynced:  true,
	constants.SyncStatusError:   true,
}

// ListReservations handles GET /reservations
//
// @Summary List reservations
// @Tags reservations
// @Produce json
// @Param limit query int false "max rows (default 50, max 500)"
// @Param status query string false "relational status"
// @Param sync_status query string false "pending, synced or error"
// @Param city query string false "city"
// @Param brand query string false "brand"
// @Success 200 {object} common.APIResponse
// @Router /api/v1/reservations [get]
func (h *Handlers) ListReservations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		q := r.URL.Query()

		limit, ok := queryInt(q.Get("limit"), 0)
		if !ok {
			common.RespondError(w, initTime, nil, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		syncStatus := q.Get("sync_status")
		if syncStatus != "" && !validSyncStatuses[syncStatus] {
			common.RespondError(w, initTime, nil, fmt.Sprintf("unknown sync_status %q", syncStatus), http.StatusBadRequest)
			return
		}

		rows, err := h.deps.Repo.Reservations.List(r.Context(), repositories.ReservationFilter{
			Limit:      limit,
			Status:     q.Get("status"),
			SyncStatus: syncStatus,
			City:       strings.ToLower(q.Get("city")),
			Brand:      strings.ToLower(q.Get("brand")),
		})
		if err != nil {
			logging.Error("Failed to list reservations", "error", err)
			common.RespondError(w, initTime, nil, "Failed to list reservations", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Reservations retrieved", rows)
	}
}

// GetReservation handles GET /reservations/{id}
//
// @Summary Get a reservation
// @Tags reservations
// @Produce json
// @Param id path string true "reservation id"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/reservations/{id} [get]
func (h *Handlers) GetReservation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		res, err := h.deps.Repo.Reservations.GetByID(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, repositories.ErrNotFound) {
			common.RespondError(w, initTime, nil, "Reservation not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logging.Error("Failed to load reservation", "error", err)
			common.RespondError(w, initTime, nil, "Failed to load reservation", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Reservation retrieved", res)
	}
}

// PatchReservation handles PATCH /reservations/{id}. The row is flagged pending and pushed on the next tick.
//
// @Summary Update a reservation locally
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "reservation id"
// @Param body body repositories.ReservationPatch true "fields to change"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/reservations/{id} [patch]
func (h *Handlers) PatchReservation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch repositories.ReservationPatch
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&patch); err != nil {
			common.RespondError(w, initTime, nil, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if patch.Status != nil && !transform.IsRelationalStatus(*patch.Status) {
			common.RespondError(w, initTime, nil, fmt.Sprintf("unknown status %q", *patch.Status), http.StatusBadRequest)
			return
		}

		res, err := h.deps.Repo.Reservations.ApplyPatch(r.Context(), chi.URLParam(r, "id"), patch)
		switch {
		case errors.Is(err, repositories.ErrEmptyPatch):
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		case errors.Is(err, repositories.ErrNotFound):
			common.RespondError(w, initTime, nil, "Reservation not found", http.StatusNotFound)
			return
		case err != nil:
			logging.Error("Failed to patch reservation", "error", err)
			common.RespondError(w, initTime, nil, "Failed to update reservation", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Reservation updated", res)
	}
}
