package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alternagen/api/internal/repository"
	"github.com/alternagen/api/internal/service"
)

// JobHandler serves the caller's saved job postings.
type JobHandler struct {
	jobs   *service.JobService
	logger *slog.Logger
}

func NewJobHandler(jobs *service.JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// HandleList returns a page of jobs with optional location/company filters.
// GET /api/jobs?page=&limit=&location=&company=
func (h *JobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(q.Get("limit"), service.DefaultPageLimit)

	filter := repository.JobFilter{
		Location: q.Get("location"),
		Company:  q.Get("company"),
	}

	jobs, total, err := h.jobs.List(r.Context(), userID, filter, limit, (page-1)*limit)
	if err != nil {
		writeError(w, err)
		return
	}

	// The service clamps the limit; mirror that in the meta so totalPages
	// matches what was actually returned.
	if limit <= 0 {
		limit = service.DefaultPageLimit
	}
	if limit > service.MaxPageLimit {
		limit = service.MaxPageLimit
	}

	writePage(w, jobs, page, limit, total)
}

// HandleGet returns one saved job. GET /api/jobs/{id}
func (h *JobHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, job)
}

// HandleCreate saves a posting. POST /api/jobs
func (h *JobHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Title        string `json:"title"`
		Company      string `json:"company"`
		Location     string `json:"location"`
		Description  string `json:"description"`
		Requirements string `json:"requirements"`
		URL          string `json:"url"`
		Source       string `json:"source"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), userID, service.JobInput{
		Title:        body.Title,
		Company:      body.Company,
		Location:     body.Location,
		Description:  body.Description,
		Requirements: body.Requirements,
		URL:          body.URL,
		Source:       body.Source,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, job)
}

// HandleDelete removes a saved job and everything hanging off it.
// DELETE /api/jobs/{id}
func (h *JobHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.jobs.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses a query parameter, falling back on empty or junk input.
func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
