package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
)

type agentFixture struct {
	svc      *AgentService
	tasks    *mockTaskRepo
	apps     *mockApplicationRepo
	matches  *mockMatchRepo
	subs     *mockSubscriptionRepo
	profiles *mockProfileRepo
	jobs     *mockJobRepo
}

func newAgentFixture(t *testing.T) *agentFixture {
	t.Helper()
	f := &agentFixture{
		tasks:    newMockTaskRepo(),
		apps:     newMockApplicationRepo(),
		matches:  newMockMatchRepo(),
		subs:     newMockSubscriptionRepo(),
		profiles: newMockProfileRepo(),
		jobs:     newMockJobRepo(),
	}
	matcher := NewMatchService(f.profiles, f.jobs, f.matches, testLogger())
	f.svc = NewAgentService(f.tasks, f.apps, f.matches, f.subs, matcher, testLogger())
	return f
}

func (f *agentFixture) seedProfile(t *testing.T, userID string) {
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

func (f *agentFixture) seedJob(t *testing.T, userID, title string) {
	t.Helper()
	err := f.jobs.CreateJob(context.Background(), &model.Job{
		UserID:       userID,
		Title:        title,
		Company:      "Acme",
		Location:     "Paris",
		Requirements: "Go, SQL",
		URL:          "https://jobs.example.com/" + title,
	})
	if err != nil {
		t.Fatalf("seeding job: %v", err)
	}
}

func TestEnqueue_RequiresTaskType(t *testing.T) {
	f := newAgentFixture(t)
	_, err := f.svc.Enqueue(context.Background(), "user-1", "  ", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestProcessNext_EmptyQueue(t *testing.T) {
	f := newAgentFixture(t)
	task, err := f.svc.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("ProcessNext() error = %v", err)
	}
	if task != nil {
		t.Fatalf("task = %+v, want nil on an empty queue", task)
	}
}

func TestProcessNext_RunMatchScoresAllJobs(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "user-1")
	f.seedJob(t, "user-1", "backend-dev")
	f.seedJob(t, "user-1", "data-engineer")

	if _, err := f.svc.Enqueue(ctx, "user-1", model.TaskRunMatch, ""); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	task, err := f.svc.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext() error = %v", err)
	}
	if task.Status != model.TaskSuccess {
		t.Fatalf("Status = %q, want SUCCESS (output %q)", task.Status, task.Output)
	}
	if !strings.Contains(task.Output, `"matches":2`) {
		t.Errorf("Output = %q, want a matches count of 2", task.Output)
	}

	scores, _ := f.matches.ListMatchScores(ctx, "user-1", 0)
	if len(scores) != 2 {
		t.Errorf("stored %d scores, want 2", len(scores))
	}
}

func TestProcessNext_RunMatchWithoutProfileSucceeds(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	f.svc.Enqueue(ctx, "user-1", model.TaskRunMatch, "")

	task, err := f.svc.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext() error = %v", err)
	}
	if task.Status != model.TaskSuccess {
		t.Fatalf("Status = %q, want SUCCESS", task.Status)
	}
	if !strings.Contains(task.Output, "no profile yet") {
		t.Errorf("Output = %q", task.Output)
	}
}

func TestProcessNext_UnknownTypeFails(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	f.svc.Enqueue(ctx, "user-1", "REBOOT_UNIVERSE", "")

	task, err := f.svc.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext() should absorb handler failures, got %v", err)
	}
	if task.Status != model.TaskFailed {
		t.Fatalf("Status = %q, want FAILED", task.Status)
	}
	if !strings.Contains(task.Output, "unknown task type: REBOOT_UNIVERSE") {
		t.Errorf("Output = %q", task.Output)
	}

	stored, _ := f.tasks.GetTask(ctx, task.ID)
	if stored.Status != model.TaskFailed {
		t.Errorf("persisted Status = %q, want FAILED", stored.Status)
	}
}

func TestProcessNext_FetchOffersStub(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	f.svc.Enqueue(ctx, "user-1", model.TaskFetchOffers, "")

	task, err := f.svc.ProcessNext(ctx)
	if err != nil {
		t.Fatalf("ProcessNext() error = %v", err)
	}
	if task.Status != model.TaskSuccess {
		t.Fatalf("Status = %q, want SUCCESS", task.Status)
	}
	if !strings.Contains(task.Output, `"count":5`) {
		t.Errorf("Output = %q", task.Output)
	}
}

func TestDailyBrief_RequiresActivePro(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	// No subscription at all.
	if _, err := f.svc.DailyBrief(ctx, "user-1"); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}

	// A canceled subscription doesn't count either.
	f.subs.UpsertSubscription(ctx, &model.Subscription{
		UserID:     "user-1",
		ExternalID: "sub_ext_1",
		PlanCode:   model.PlanPro,
		Status:     model.SubscriptionCanceled,
	})
	if _, err := f.svc.DailyBrief(ctx, "user-1"); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden for canceled subscription", err)
	}
}

func TestDailyBrief_StatsAndActions(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	f.subs.UpsertSubscription(ctx, &model.Subscription{
		UserID:     "user-1",
		ExternalID: "sub_ext_1",
		PlanCode:   model.PlanPro,
		Status:     model.SubscriptionActive,
	})

	f.seedJob(t, "user-1", "backend-dev")
	f.seedJob(t, "user-1", "data-engineer")
	f.apps.CreateApplication(ctx, &model.Application{UserID: "user-1", JobID: "job-1", Status: model.StatusApplied})
	f.apps.CreateApplication(ctx, &model.Application{UserID: "user-1", JobID: "job-2", Status: model.StatusRejected})

	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-1", Score: 85})
	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-2", Score: 40})

	brief, err := f.svc.DailyBrief(ctx, "user-1")
	if err != nil {
		t.Fatalf("DailyBrief() error = %v", err)
	}
	if brief.Message != "Here is your mission for today." {
		t.Errorf("Message = %q", brief.Message)
	}
	if brief.Stats.PendingApplications != 1 {
		t.Errorf("PendingApplications = %d, want 1 (rejected doesn't count)", brief.Stats.PendingApplications)
	}
	if brief.Stats.NewOpportunities != 1 {
		t.Errorf("NewOpportunities = %d, want 1 (only scores above 70)", brief.Stats.NewOpportunities)
	}
	if len(brief.Actions) != 2 {
		t.Errorf("got %d actions, want 2: %+v", len(brief.Actions), brief.Actions)
	}
}

func TestRecommendedOffers_EmptyEnqueuesMatching(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	offers, inProgress, err := f.svc.RecommendedOffers(ctx, "user-1")
	if err != nil {
		t.Fatalf("RecommendedOffers() error = %v", err)
	}
	if !inProgress {
		t.Error("inProgress = false, want true when no scores exist yet")
	}
	if len(offers) != 0 {
		t.Errorf("got %d offers, want 0", len(offers))
	}

	task, err := f.tasks.ClaimNextTask(ctx)
	if err != nil || task == nil {
		t.Fatalf("expected a queued task, got %v, %v", task, err)
	}
	if task.TaskType != model.TaskRunMatch {
		t.Errorf("TaskType = %q, want %q", task.TaskType, model.TaskRunMatch)
	}
}

func TestRecommendedOffers_ReturnsBestFirst(t *testing.T) {
	f := newAgentFixture(t)
	ctx := context.Background()

	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-1", Score: 55})
	f.matches.UpsertMatchScore(ctx, &model.MatchScore{UserID: "user-1", JobID: "job-2", Score: 90})

	offers, inProgress, err := f.svc.RecommendedOffers(ctx, "user-1")
	if err != nil {
		t.Fatalf("RecommendedOffers() error = %v", err)
	}
	if inProgress {
		t.Error("inProgress = true, want false when scores exist")
	}
	if len(offers) != 2 || offers[0].Score != 90 {
		t.Errorf("offers = %+v, want best first", offers)
	}
	if len(f.tasks.tasks) != 0 {
		t.Error("no task should be enqueued when scores exist")
	}
}
