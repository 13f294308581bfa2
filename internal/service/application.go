package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

// ApplicationService tracks a user's applications through the funnel.
type ApplicationService struct {
	repo   repository.ApplicationRepository
	jobs   repository.JobRepository
	logger *slog.Logger
}

func NewApplicationService(repo repository.ApplicationRepository, jobs repository.JobRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, logger: logger}
}

// ApplicationInput is the payload for creating an application.
type ApplicationInput struct {
	JobID     string
	Status    string
	Notes     string
	AppliedAt *time.Time
}

// ApplicationUpdate is a partial update; nil fields are left unchanged.
type ApplicationUpdate struct {
	Status    *string
	Notes     *string
	AppliedAt *time.Time
}

// Create records an application against one of the user's saved jobs.
// One application per job; a second is AlreadyExists.
func (s *ApplicationService) Create(ctx context.Context, userID string, input ApplicationInput) (*model.Application, error) {
	jobID := strings.TrimSpace(input.JobID)
	if jobID == "" {
		return nil, apperror.ValidationFailed("jobId", "job ID is required")
	}

	// The job must exist and belong to the caller. The FK would catch a
	// missing job, but this yields a proper NotFound instead of a 500.
	if _, err := s.jobs.GetJob(ctx, userID, jobID); err != nil {
		return nil, err
	}

	status := model.ApplicationStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if status != "" && !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("unknown application status %q", input.Status))
	}

	app := &model.Application{
		UserID:    userID,
		JobID:     jobID,
		Status:    status,
		Notes:     strings.TrimSpace(input.Notes),
		AppliedAt: input.AppliedAt,
	}

	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("application created",
		slog.String("id", app.ID),
		slog.String("jobId", jobID),
		slog.String("status", string(app.Status)),
	)

	return app, nil
}

// List returns the user's applications, optionally restricted to a status.
func (s *ApplicationService) List(ctx context.Context, userID, status string) ([]model.Application, error) {
	filter := model.ApplicationStatus(strings.ToUpper(strings.TrimSpace(status)))
	if filter != "" && !filter.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("unknown application status %q", status))
	}

	apps, err := s.repo.ListApplications(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list applications", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	return apps, nil
}

// Update applies a partial update to an application.
func (s *ApplicationService) Update(ctx context.Context, userID, id string, update ApplicationUpdate) (*model.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "application ID is required")
	}

	app, err := s.repo.GetApplication(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		status := model.ApplicationStatus(strings.ToUpper(strings.TrimSpace(*update.Status)))
		if !status.Valid() {
			return nil, apperror.ValidationFailed("status",
				fmt.Sprintf("unknown application status %q", *update.Status))
		}
		app.Status = status
		// Moving to APPLIED stamps the application time if the client
		// didn't supply one.
		if status == model.StatusApplied && app.AppliedAt == nil && update.AppliedAt == nil {
			now := time.Now()
			app.AppliedAt = &now
		}
	}
	if update.Notes != nil {
		app.Notes = strings.TrimSpace(*update.Notes)
	}
	if update.AppliedAt != nil {
		app.AppliedAt = update.AppliedAt
	}

	if err := s.repo.UpdateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("updating application: %w", err)
	}

	return app, nil
}

// Delete removes an application.
func (s *ApplicationService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "application ID is required")
	}

	if err := s.repo.DeleteApplication(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("application deleted", slog.String("id", id))
	return nil
}
