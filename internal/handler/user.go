package handler

import (
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/auth"
	"github.com/alternagen/api/internal/service"
)

// currentUser pulls the authenticated user id out of the request context.
// The auth middleware guarantees it on protected routes; a miss means the
// route was wired without RequireAuth.
func currentUser(r *http.Request) (string, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthorized("authentication required")
	}
	return userID, nil
}

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the caller's account. GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, user)
}

// HandleUpdateMe applies a partial update to the caller's account.
// PATCH /api/users/me
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateMe(r.Context(), userID, service.UserUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, user)
}
