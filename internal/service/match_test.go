package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
)

type matchFixture struct {
	svc      *MatchService
	profiles *mockProfileRepo
	jobs     *mockJobRepo
	matches  *mockMatchRepo
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	f := &matchFixture{
		profiles: newMockProfileRepo(),
		jobs:     newMockJobRepo(),
		matches:  newMockMatchRepo(),
	}
	f.svc = NewMatchService(f.profiles, f.jobs, f.matches, testLogger())
	return f
}

func (f *matchFixture) seedProfile(t *testing.T, userID string) {
	t.Helper()
	err := f.profiles.CreateProfile(context.Background(), &model.Profile{
		UserID:             userID,
		Skills:             []string{"Go", "SQL"},
		PreferredLocations: []string{"Paris"},
		PreferredSectors:   []string{"Tech"},
	})
	if err != nil {
		t.Fatalf("seeding profile: %v", err)
	}
}

func (f *matchFixture) seedJob(t *testing.T, userID string, i int) string {
	t.Helper()
	job := &model.Job{
		UserID:       userID,
		Title:        "Backend Developer",
		Company:      "Acme",
		Location:     "Paris",
		Requirements: "Go, SQL",
		URL:          fmt.Sprintf("https://jobs.example.com/%d", i),
	}
	if err := f.jobs.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("seeding job: %v", err)
	}
	return job.ID
}

func TestCalculate_PersistsScore(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "user-1")
	jobID := f.seedJob(t, "user-1", 1)

	score, err := f.svc.Calculate(ctx, "user-1", jobID)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if score.Score < 0 || score.Score > 100 {
		t.Errorf("Score = %d, want 0..100", score.Score)
	}
	if score.Explanation == "" {
		t.Error("Explanation should not be empty")
	}
	if len(f.matches.scores) != 1 {
		t.Errorf("stored %d scores, want 1", len(f.matches.scores))
	}
}

func TestCalculate_RecalculationOverwrites(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "user-1")
	jobID := f.seedJob(t, "user-1", 1)

	if _, err := f.svc.Calculate(ctx, "user-1", jobID); err != nil {
		t.Fatalf("first Calculate() error = %v", err)
	}
	if _, err := f.svc.Calculate(ctx, "user-1", jobID); err != nil {
		t.Fatalf("second Calculate() error = %v", err)
	}
	if len(f.matches.scores) != 1 {
		t.Errorf("stored %d scores after recalculation, want 1", len(f.matches.scores))
	}
}

func TestCalculate_WithoutProfile(t *testing.T) {
	f := newMatchFixture(t)
	jobID := f.seedJob(t, "user-1", 1)

	_, err := f.svc.Calculate(context.Background(), "user-1", jobID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCalculate_JobOwnership(t *testing.T) {
	f := newMatchFixture(t)
	f.seedProfile(t, "user-1")
	jobID := f.seedJob(t, "user-2", 1)

	_, err := f.svc.Calculate(context.Background(), "user-1", jobID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for someone else's job", err)
	}
}

func TestCalculateAll_PagesThroughEveryJob(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "user-1")

	// More jobs than one page so the offset loop has to advance.
	count := MaxPageLimit + 7
	for i := 0; i < count; i++ {
		f.seedJob(t, "user-1", i)
	}
	f.seedJob(t, "user-2", 9999)

	scored, err := f.svc.CalculateAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateAll() error = %v", err)
	}
	if scored != count {
		t.Errorf("scored = %d, want %d", scored, count)
	}
	if len(f.matches.scores) != count {
		t.Errorf("stored %d scores, want %d", len(f.matches.scores), count)
	}
}

func TestScores_BestFirst(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-1", Score: 40})
	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-2", Score: 80})
	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-3", Score: 60})

	scores, err := f.svc.Scores(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	if len(scores) != 2 || scores[0].Score != 80 || scores[1].Score != 60 {
		t.Errorf("scores = %+v, want top two best first", scores)
	}
}
