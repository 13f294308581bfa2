package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/matching"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

// MatchService runs the scoring engine against a user's profile and saved
// jobs and persists the results. The engine itself (internal/matching) is
// pure; everything stateful happens here.
type MatchService struct {
	profiles repository.ProfileRepository
	jobs     repository.JobRepository
	matches  repository.MatchRepository
	logger   *slog.Logger
}

func NewMatchService(
	profiles repository.ProfileRepository,
	jobs repository.JobRepository,
	matches repository.MatchRepository,
	logger *slog.Logger,
) *MatchService {
	return &MatchService{
		profiles: profiles,
		jobs:     jobs,
		matches:  matches,
		logger:   logger,
	}
}

// Calculate scores one (user, job) pair and upserts the result, so
// recalculating replaces the previous score instead of stacking rows.
func (s *MatchService) Calculate(ctx context.Context, userID, jobID string) (*model.MatchScore, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, apperror.ValidationFailed("jobId", "job ID is required")
	}

	profile, err := s.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	result := matching.Score(profile, job)

	score := &model.MatchScore{
		UserID:      userID,
		JobID:       jobID,
		Score:       result.Score,
		Explanation: result.Explanation,
	}
	if err := s.matches.UpsertMatchScore(ctx, score); err != nil {
		return nil, fmt.Errorf("saving match score: %w", err)
	}

	s.logger.Info("match calculated",
		slog.String("userId", userID),
		slog.String("jobId", jobID),
		slog.Int("score", score.Score),
	)

	return score, nil
}

// Scores returns the user's match scores, best first.
func (s *MatchService) Scores(ctx context.Context, userID string, limit int) ([]model.MatchScore, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	scores, err := s.matches.ListMatchScores(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing match scores: %w", err)
	}

	return scores, nil
}

// CalculateAll scores every saved job for the user, paging through the job
// list. Used by the RUN_MATCH background task. Returns the number of jobs
// scored. A user without a profile scores nothing, which the task reports
// rather than fails.
func (s *MatchService) CalculateAll(ctx context.Context, userID string) (int, error) {
	profile, err := s.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	scored := 0
	offset := 0
	for {
		jobs, _, err := s.jobs.ListJobs(ctx, userID, repository.JobFilter{},
			repository.ListOptions{Limit: MaxPageLimit, Offset: offset})
		if err != nil {
			return scored, fmt.Errorf("listing jobs for matching: %w", err)
		}
		if len(jobs) == 0 {
			break
		}

		for i := range jobs {
			result := matching.Score(profile, &jobs[i])
			score := &model.MatchScore{
				UserID:      userID,
				JobID:       jobs[i].ID,
				Score:       result.Score,
				Explanation: result.Explanation,
			}
			if err := s.matches.UpsertMatchScore(ctx, score); err != nil {
				return scored, fmt.Errorf("saving match score for job %s: %w", jobs[i].ID, err)
			}
			scored++
		}

		offset += len(jobs)
	}

	s.logger.Info("batch match complete",
		slog.String("userId", userID),
		slog.Int("jobs", scored),
	)

	return scored, nil
}
