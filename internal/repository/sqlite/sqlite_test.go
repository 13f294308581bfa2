package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/alternagen/api/internal/model"
)

// newTestDB opens a fresh in-memory database. Each test gets its own schema
// and the connection is destroyed on cleanup, so tests stay isolated.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser seeds a user row. Foreign keys are enforced, so almost every
// test needs one of these before touching jobs, tasks or credits.
func createTestUser(t *testing.T, db *DB, identityID string) *model.User {
	t.Helper()
	user := &model.User{
		IdentityID: identityID,
		Email:      identityID + "@example.com",
		FirstName:  "Test",
		LastName:   "User",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestJob(t *testing.T, db *DB, userID, title, url string) *model.Job {
	t.Helper()
	job := &model.Job{
		UserID:       userID,
		Title:        title,
		Company:      "Acme",
		Location:     "Paris",
		Requirements: "Go, SQL",
		URL:          url,
	}
	if err := db.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

// uniqueURL builds distinct job urls for loops.
func uniqueURL(i int) string {
	return fmt.Sprintf("https://jobs.example.com/posting/%d", i)
}
