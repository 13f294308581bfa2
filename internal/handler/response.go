// Package handler contains the HTTP layer: request parsing, the response
// envelope and the mapping from domain errors to status codes. Handlers
// delegate all business decisions to the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alternagen/api/internal/apperror"
)

// envelope is the shape of every API response: {success, data?, error?},
// plus pagination meta on list endpoints.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
	Meta    *pageMeta  `json:"meta,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`    // machine-readable, e.g. "NOT_FOUND"
	Message string `json:"message"` // human-readable description
}

type pageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// writeJSON sends the envelope with the given status. Headers must be set
// before the first body write.
func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Headers are already gone at this point; log and move on.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writePage sends a list response with pagination meta.
func writePage(w http.ResponseWriter, data any, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Meta:    &pageMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	})
}

// writeError translates a domain error into a status code and error body.
// The service layer never sees HTTP; this is the only place the mapping
// lives.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		code := "INTERNAL_ERROR"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			code = "VALIDATION_FAILED"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			code = "UNAUTHORIZED"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			code = "FORBIDDEN"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			code = "NOT_FOUND"
		case errors.Is(err, apperror.ErrAlreadyExists):
			status = http.StatusConflict
			code = "ALREADY_EXISTS"
		case errors.Is(err, apperror.ErrPaymentRequired):
			status = http.StatusPaymentRequired
			code = "PAYMENT_REQUIRED"
		}

		writeJSON(w, status, envelope{
			Success: false,
			Error:   &errorBody{Code: code, Message: appErr.Message},
		})
		return
	}

	// Unknown error: never leak internals to the client.
	writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errorBody{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
	})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields so
// client typos surface as 400s instead of silently dropped fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
