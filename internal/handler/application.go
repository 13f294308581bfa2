package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alternagen/api/internal/service"
)

// ApplicationHandler serves the caller's application funnel.
type ApplicationHandler struct {
	applications *service.ApplicationService
	logger       *slog.Logger
}

func NewApplicationHandler(applications *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

// HandleList returns the caller's applications, optionally filtered by
// status. GET /api/applications?status=
func (h *ApplicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	apps, err := h.applications.List(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, apps)
}

// HandleCreate tracks an application for a saved job. POST /api/applications
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		JobID     string     `json:"jobId"`
		Status    string     `json:"status"`
		Notes     string     `json:"notes"`
		AppliedAt *time.Time `json:"appliedAt"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	app, err := h.applications.Create(r.Context(), userID, service.ApplicationInput{
		JobID:     body.JobID,
		Status:    body.Status,
		Notes:     body.Notes,
		AppliedAt: body.AppliedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, app)
}

// HandleUpdate applies a partial update. PATCH /api/applications/{id}
func (h *ApplicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status    *string    `json:"status"`
		Notes     *string    `json:"notes"`
		AppliedAt *time.Time `json:"appliedAt"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	app, err := h.applications.Update(r.Context(), userID, r.PathValue("id"), service.ApplicationUpdate{
		Status:    body.Status,
		Notes:     body.Notes,
		AppliedAt: body.AppliedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, app)
}

// HandleDelete removes an application. DELETE /api/applications/{id}
func (h *ApplicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.applications.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
