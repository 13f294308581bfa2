package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

// String-list columns (skills, locations, sectors) are stored as JSON text.
// They are small, read and written whole, and never filtered element-wise,
// so a normalized side table would buy nothing.

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateProfile inserts the user's profile. The user_id UNIQUE constraint
// enforces at-most-one-profile-per-user server-side.
func (db *DB) CreateProfile(ctx context.Context, profile *model.Profile) error {
	profile.ID = xid.New().String()
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	skills, err := marshalList(profile.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: encoding skills: %w", err)
	}
	locations, err := marshalList(profile.PreferredLocations)
	if err != nil {
		return fmt.Errorf("sqlite: encoding locations: %w", err)
	}
	sectors, err := marshalList(profile.PreferredSectors)
	if err != nil {
		return fmt.Errorf("sqlite: encoding sectors: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, education_level, field_of_study,
		                       skills, preferred_locations, preferred_sectors,
		                       bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.UserID,
		profile.EducationLevel,
		profile.FieldOfStudy,
		skills,
		locations,
		sectors,
		profile.Bio,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists("profile", "profile already exists")
		}
		return fmt.Errorf("sqlite: creating profile: %w", err)
	}

	return nil
}

func (db *DB) GetProfileByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var (
		profile   model.Profile
		skills    string
		locations string
		sectors   string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, education_level, field_of_study,
		        skills, preferred_locations, preferred_sectors,
		        bio, created_at, updated_at
		 FROM profiles
		 WHERE user_id = ?`,
		userID,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.EducationLevel,
		&profile.FieldOfStudy,
		&skills,
		&locations,
		&sectors,
		&profile.Bio,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}

	if profile.Skills, err = unmarshalList(skills); err != nil {
		return nil, fmt.Errorf("sqlite: decoding skills: %w", err)
	}
	if profile.PreferredLocations, err = unmarshalList(locations); err != nil {
		return nil, fmt.Errorf("sqlite: decoding locations: %w", err)
	}
	if profile.PreferredSectors, err = unmarshalList(sectors); err != nil {
		return nil, fmt.Errorf("sqlite: decoding sectors: %w", err)
	}

	return &profile, nil
}

func (db *DB) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()

	skills, err := marshalList(profile.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: encoding skills: %w", err)
	}
	locations, err := marshalList(profile.PreferredLocations)
	if err != nil {
		return fmt.Errorf("sqlite: encoding locations: %w", err)
	}
	sectors, err := marshalList(profile.PreferredSectors)
	if err != nil {
		return fmt.Errorf("sqlite: encoding sectors: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE profiles
		 SET education_level = ?, field_of_study = ?, skills = ?,
		     preferred_locations = ?, preferred_sectors = ?, bio = ?, updated_at = ?
		 WHERE user_id = ?`,
		profile.EducationLevel,
		profile.FieldOfStudy,
		skills,
		locations,
		sectors,
		profile.Bio,
		profile.UpdatedAt,
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile for user %s: %w", profile.UserID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("profile", profile.UserID)
	}

	return nil
}
