package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

const maxProfileSkills = 50

// ProfileService manages the single job-search profile each user owns.
type ProfileService struct {
	repo   repository.ProfileRepository
	logger *slog.Logger
}

func NewProfileService(repo repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// ProfileInput is the payload for creating a profile.
type ProfileInput struct {
	EducationLevel     string
	FieldOfStudy       string
	Skills             []string
	PreferredLocations []string
	PreferredSectors   []string
	Bio                string
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	EducationLevel     *string
	FieldOfStudy       *string
	Skills             []string
	PreferredLocations []string
	PreferredSectors   []string
	Bio                *string
}

// Get returns the user's profile, NotFound if it hasn't been created yet.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

// Create creates the user's profile. A second create is AlreadyExists; the
// client should PATCH instead.
func (s *ProfileService) Create(ctx context.Context, userID string, input ProfileInput) (*model.Profile, error) {
	if len(input.Skills) > maxProfileSkills {
		return nil, apperror.ValidationFailed("skills",
			fmt.Sprintf("at most %d skills are allowed", maxProfileSkills))
	}

	profile := &model.Profile{
		UserID:             userID,
		EducationLevel:     strings.TrimSpace(input.EducationLevel),
		FieldOfStudy:       strings.TrimSpace(input.FieldOfStudy),
		Skills:             cleanList(input.Skills),
		PreferredLocations: cleanList(input.PreferredLocations),
		PreferredSectors:   cleanList(input.PreferredSectors),
		Bio:                strings.TrimSpace(input.Bio),
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile created",
		slog.String("id", profile.ID),
		slog.String("userId", userID),
	)

	return profile, nil
}

// Update applies a partial update to the user's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, update ProfileUpdate) (*model.Profile, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.EducationLevel != nil {
		profile.EducationLevel = strings.TrimSpace(*update.EducationLevel)
	}
	if update.FieldOfStudy != nil {
		profile.FieldOfStudy = strings.TrimSpace(*update.FieldOfStudy)
	}
	if update.Skills != nil {
		if len(update.Skills) > maxProfileSkills {
			return nil, apperror.ValidationFailed("skills",
				fmt.Sprintf("at most %d skills are allowed", maxProfileSkills))
		}
		profile.Skills = cleanList(update.Skills)
	}
	if update.PreferredLocations != nil {
		profile.PreferredLocations = cleanList(update.PreferredLocations)
	}
	if update.PreferredSectors != nil {
		profile.PreferredSectors = cleanList(update.PreferredSectors)
	}
	if update.Bio != nil {
		profile.Bio = strings.TrimSpace(*update.Bio)
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return profile, nil
}

// cleanList trims entries and drops empties, preserving order.
func cleanList(list []string) []string {
	cleaned := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}
