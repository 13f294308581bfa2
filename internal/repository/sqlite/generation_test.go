package sqlite

import (
	"context"
	"testing"

	"github.com/alternagen/api/internal/model"
)

func TestCreateGeneration(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_gen")

	gen := &model.Generation{
		UserID: user.ID,
		Type:   model.GenerationCV,
		Input:  `{"jobId":"abc"}`,
		Output: "Curriculum vitae...",
	}
	if err := db.CreateGeneration(context.Background(), gen); err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}

	if gen.ID == "" {
		t.Error("CreateGeneration() did not set gen.ID")
	}
	if gen.CreatedAt.IsZero() {
		t.Error("CreateGeneration() did not set gen.CreatedAt")
	}
}

func TestListGenerations_NewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_gen")

	for i := 0; i < 4; i++ {
		genType := model.GenerationCV
		if i%2 == 1 {
			genType = model.GenerationCoverLetter
		}
		gen := &model.Generation{UserID: user.ID, Type: genType, Output: "text"}
		if err := db.CreateGeneration(context.Background(), gen); err != nil {
			t.Fatalf("CreateGeneration() #%d error = %v", i, err)
		}
	}

	gens, err := db.ListGenerations(context.Background(), user.ID, 3)
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if len(gens) != 3 {
		t.Fatalf("ListGenerations() returned %d, want 3", len(gens))
	}
	for i := 1; i < len(gens); i++ {
		if gens[i].CreatedAt.After(gens[i-1].CreatedAt) {
			t.Error("generations not ordered newest first")
		}
	}
}

func TestListGenerations_ScopedToUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "idn_alice")
	bob := createTestUser(t, db, "idn_bob")

	gen := &model.Generation{UserID: alice.ID, Type: model.GenerationCV, Output: "text"}
	if err := db.CreateGeneration(context.Background(), gen); err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}

	gens, err := db.ListGenerations(context.Background(), bob.ID, 10)
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if len(gens) != 0 {
		t.Errorf("ListGenerations() for other user returned %d, want 0", len(gens))
	}
}
