package handler

import (
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/service"
)

// ProfileHandler serves the caller's job-search profile.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns the caller's profile. GET /api/profiles/me
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}

type profileBody struct {
	EducationLevel     *string  `json:"educationLevel"`
	FieldOfStudy       *string  `json:"fieldOfStudy"`
	Skills             []string `json:"skills"`
	PreferredLocations []string `json:"preferredLocations"`
	PreferredSectors   []string `json:"preferredSectors"`
	Bio                *string  `json:"bio"`
}

// HandleCreate creates the caller's profile; a second create is a 409.
// POST /api/profiles/me
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body profileBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	input := service.ProfileInput{
		Skills:             body.Skills,
		PreferredLocations: body.PreferredLocations,
		PreferredSectors:   body.PreferredSectors,
	}
	if body.EducationLevel != nil {
		input.EducationLevel = *body.EducationLevel
	}
	if body.FieldOfStudy != nil {
		input.FieldOfStudy = *body.FieldOfStudy
	}
	if body.Bio != nil {
		input.Bio = *body.Bio
	}

	profile, err := h.profiles.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, profile)
}

// HandleUpdate applies a partial update. PATCH /api/profiles/me
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body profileBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.Update(r.Context(), userID, service.ProfileUpdate{
		EducationLevel:     body.EducationLevel,
		FieldOfStudy:       body.FieldOfStudy,
		Skills:             body.Skills,
		PreferredLocations: body.PreferredLocations,
		PreferredSectors:   body.PreferredSectors,
		Bio:                body.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}
