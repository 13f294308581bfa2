package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

const (
	MaxJobTitleLength = 200
	DefaultPageLimit  = 20
	MaxPageLimit      = 100
)

// JobService manages the postings a user has saved.
type JobService struct {
	repo   repository.JobRepository
	logger *slog.Logger
}

func NewJobService(repo repository.JobRepository, logger *slog.Logger) *JobService {
	return &JobService{repo: repo, logger: logger}
}

// JobInput is the payload for saving a job posting.
type JobInput struct {
	Title        string
	Company      string
	Location     string
	Description  string
	Requirements string
	URL          string
	Source       string
}

// Create saves a posting for the user. The same url can be saved once per
// user; a repeat is AlreadyExists.
func (s *JobService) Create(ctx context.Context, userID string, input JobInput) (*model.Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "job title is required")
	}
	if len(title) > MaxJobTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("job title must be %d characters or less", MaxJobTitleLength))
	}

	rawURL := strings.TrimSpace(input.URL)
	if rawURL == "" {
		return nil, apperror.ValidationFailed("url", "job url is required")
	}
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperror.ValidationFailed("url", "job url must be absolute")
	}

	job := &model.Job{
		UserID:       userID,
		Title:        title,
		Company:      strings.TrimSpace(input.Company),
		Location:     strings.TrimSpace(input.Location),
		Description:  input.Description,
		Requirements: input.Requirements,
		URL:          rawURL,
		Source:       strings.TrimSpace(input.Source),
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("job saved",
		slog.String("id", job.ID),
		slog.String("userId", userID),
		slog.String("source", job.Source),
	)

	return job, nil
}

// Get returns one of the user's saved jobs.
func (s *JobService) Get(ctx context.Context, userID, id string) (*model.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "job ID is required")
	}
	return s.repo.GetJob(ctx, userID, id)
}

// List returns a page of the user's jobs plus the total count for the filter.
func (s *JobService) List(ctx context.Context, userID string, filter repository.JobFilter, limit, offset int) ([]model.Job, int, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := s.repo.ListJobs(ctx, userID, filter, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing jobs: %w", err)
	}

	return jobs, total, nil
}

// Delete removes a saved job along with its applications and match scores.
func (s *JobService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "job ID is required")
	}

	if err := s.repo.DeleteJob(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("job deleted", slog.String("id", id), slog.String("userId", userID))
	return nil
}
