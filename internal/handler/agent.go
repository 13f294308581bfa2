package handler

import (
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/service"
)

// AgentHandler serves the assistant endpoints: daily brief, recommended
// offers and manual task enqueueing.
type AgentHandler struct {
	agent  *service.AgentService
	logger *slog.Logger
}

func NewAgentHandler(agent *service.AgentService, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{agent: agent, logger: logger}
}

// HandleBrief returns the PRO daily brief. GET /api/agent/brief
func (h *AgentHandler) HandleBrief(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	brief, err := h.agent.DailyBrief(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, brief)
}

// HandleRecommendedOffers returns the caller's top matches; with no scores
// yet it kicks off a matching run and tells the client to poll.
// GET /api/agent/offers/recommended
func (h *AgentHandler) HandleRecommendedOffers(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	offers, inProgress, err := h.agent.RecommendedOffers(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"offers":             offers,
		"matchingInProgress": inProgress,
	})
}

// HandleRun enqueues a task for the poller. POST /api/agent/run {taskType, input?}
func (h *AgentHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		TaskType string `json:"taskType"`
		Input    string `json:"input"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.agent.Enqueue(r.Context(), userID, body.TaskType, body.Input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusAccepted, task)
}
