package handler

import (
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/generator"
	"github.com/alternagen/api/internal/service"
)

const defaultHistoryLimit = 10

// AIHandler serves the credit-gated document generation endpoints.
type AIHandler struct {
	generations *service.GenerationService
	logger      *slog.Logger
}

func NewAIHandler(generations *service.GenerationService, logger *slog.Logger) *AIHandler {
	return &AIHandler{generations: generations, logger: logger}
}

// HandleGenerateCV generates a CV from the submitted profile data.
// POST /api/ai/cv — 402 when the caller is out of credits.
func (h *AIHandler) HandleGenerateCV(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input generator.CVInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	gen, err := h.generations.GenerateCV(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, gen)
}

// HandleGenerateCoverLetter generates a cover letter.
// POST /api/ai/cover-letter — same credit gate as the CV endpoint.
func (h *AIHandler) HandleGenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var input generator.CoverLetterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	gen, err := h.generations.GenerateCoverLetter(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, gen)
}

// HandleCredits returns the caller's allowance, creating the ledger on
// first read. GET /api/ai/credits
func (h *AIHandler) HandleCredits(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	credits, err := h.generations.Credits(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, credits)
}

// HandleHistory returns recent generations, newest first.
// GET /api/ai/history?limit=
func (h *AIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := queryInt(r.URL.Query().Get("limit"), defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	history, err := h.generations.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, history)
}
