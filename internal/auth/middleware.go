package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// UserResolver maps a provider identity id to our internal user id, creating
// the account lazily if the provider's webhook hasn't delivered it yet.
// Implemented by the user service.
type UserResolver interface {
	ResolveIdentity(ctx context.Context, identityID string) (string, error)
}

// contextKey is unexported so only this package can read or write the user id
// stored in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, verifies it, maps
// the subject to an internal user id and stores that id in the request
// context. Missing or invalid tokens end the chain with 401.
func RequireAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identityID, err := extractIdentity(r, tokens)
			if err != nil {
				unauthorized(w)
				return
			}

			userID, err := users.ResolveIdentity(r.Context(), identityID)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's internal id.
// Returns ("", false) when the request never passed RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given user id, as if the request
// had passed RequireAuth. Intended for handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func extractIdentity(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return "", errors.New("auth: missing bearer token")
	}

	return tokens.Validate(tokenStr)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"valid authentication required"}}`))
}
