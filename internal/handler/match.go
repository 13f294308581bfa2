package handler

import (
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/service"
)

// MatchHandler serves match-score computation and listing.
type MatchHandler struct {
	matches *service.MatchService
	logger  *slog.Logger
}

func NewMatchHandler(matches *service.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

// HandleCalculate scores one job against the caller's profile and stores
// the result. POST /api/match/calculate {jobId}
func (h *MatchHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		JobID string `json:"jobId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	score, err := h.matches.Calculate(r.Context(), userID, body.JobID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, score)
}

// HandleScores returns the caller's match scores, best first.
// GET /api/match/scores?limit=
func (h *MatchHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := queryInt(r.URL.Query().Get("limit"), service.DefaultPageLimit)

	scores, err := h.matches.Scores(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, scores)
}
