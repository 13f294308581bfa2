package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alternagen/api/internal/auth"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository/sqlite"
)

// testEnv wires real services against an in-memory database so handler
// tests exercise the full request path below the router.
type testEnv struct {
	db     *sqlite.DB
	logger *slog.Logger
	userID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	user := &model.User{IdentityID: "idp-1", Email: "lea@example.com"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	return &testEnv{db: db, logger: logger, userID: user.ID}
}

// authed stamps the env's user onto the request, as RequireAuth would.
func (e *testEnv) authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), e.userID))
}

// apiResponse mirrors the envelope for decoding in assertions.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"meta"`
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var res apiResponse
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return res
}
