package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
)

func TestCreateProfile_RoundTripsLists(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_profile")

	profile := &model.Profile{
		UserID:             user.ID,
		EducationLevel:     "Bac+5",
		FieldOfStudy:       "Informatique",
		Skills:             []string{"Go", "SQL", "React"},
		PreferredLocations: []string{"Paris", "Lyon"},
		PreferredSectors:   []string{"Tech"},
		Bio:                "Recherche une alternance",
	}
	if err := db.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}

	found, err := db.GetProfileByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetProfileByUserID() error = %v", err)
	}
	if !reflect.DeepEqual(found.Skills, profile.Skills) {
		t.Errorf("Skills = %v, want %v", found.Skills, profile.Skills)
	}
	if !reflect.DeepEqual(found.PreferredLocations, profile.PreferredLocations) {
		t.Errorf("PreferredLocations = %v, want %v", found.PreferredLocations, profile.PreferredLocations)
	}
	if found.EducationLevel != "Bac+5" {
		t.Errorf("EducationLevel = %q, want %q", found.EducationLevel, "Bac+5")
	}
}

func TestCreateProfile_NilListsBecomeEmpty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_profile")

	profile := &model.Profile{UserID: user.ID}
	if err := db.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}

	found, err := db.GetProfileByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetProfileByUserID() error = %v", err)
	}
	// Empty slices, not nil: JSON responses must show [] rather than null.
	if found.Skills == nil || len(found.Skills) != 0 {
		t.Errorf("Skills = %v, want empty slice", found.Skills)
	}
}

func TestCreateProfile_OnePerUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_profile")

	first := &model.Profile{UserID: user.ID}
	if err := db.CreateProfile(context.Background(), first); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}

	second := &model.Profile{UserID: user.ID}
	err := db.CreateProfile(context.Background(), second)
	if !errors.Is(err, apperror.ErrAlreadyExists) {
		t.Errorf("CreateProfile() second error = %v, want ErrAlreadyExists", err)
	}
}

func TestGetProfileByUserID_NotFound(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_profile")

	_, err := db.GetProfileByUserID(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProfileByUserID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_profile")

	profile := &model.Profile{
		UserID: user.ID,
		Skills: []string{"Go"},
	}
	if err := db.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}

	profile.Skills = []string{"Go", "Kubernetes"}
	profile.EducationLevel = "Bac+3"
	if err := db.UpdateProfile(context.Background(), profile); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	found, err := db.GetProfileByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetProfileByUserID() error = %v", err)
	}
	if !reflect.DeepEqual(found.Skills, []string{"Go", "Kubernetes"}) {
		t.Errorf("Skills = %v, want updated list", found.Skills)
	}
	if found.EducationLevel != "Bac+3" {
		t.Errorf("EducationLevel = %q, want %q", found.EducationLevel, "Bac+3")
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "idn_profile")

	profile := &model.Profile{UserID: user.ID}
	err := db.UpdateProfile(context.Background(), profile)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}
