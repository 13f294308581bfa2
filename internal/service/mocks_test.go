package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

// Hand-written in-memory mocks for the repository interfaces. Each stores
// copies so tests can't leak state through shared pointers.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---- users ----

type mockUserRepo struct {
	users  map[string]*model.User // keyed by internal id
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.IdentityID == user.IdentityID {
			return apperror.AlreadyExists("user", "user already exists")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByIdentityID(_ context.Context, identityID string) (*model.User, error) {
	for _, u := range m.users {
		if u.IdentityID == identityID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", identityID)
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// ---- profiles ----

type mockProfileRepo struct {
	profiles map[string]*model.Profile // keyed by user id
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) CreateProfile(_ context.Context, profile *model.Profile) error {
	if _, ok := m.profiles[profile.UserID]; ok {
		return apperror.AlreadyExists("profile", "profile already exists")
	}
	profile.ID = "profile-" + profile.UserID
	stored := *profile
	m.profiles[profile.UserID] = &stored
	return nil
}

func (m *mockProfileRepo) GetProfileByUserID(_ context.Context, userID string) (*model.Profile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile", userID)
	}
	result := *profile
	return &result, nil
}

func (m *mockProfileRepo) UpdateProfile(_ context.Context, profile *model.Profile) error {
	if _, ok := m.profiles[profile.UserID]; !ok {
		return apperror.NotFound("profile", profile.UserID)
	}
	stored := *profile
	m.profiles[profile.UserID] = &stored
	return nil
}

// ---- jobs ----

type mockJobRepo struct {
	jobs   map[string]*model.Job
	nextID int
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job)}
}

func (m *mockJobRepo) CreateJob(_ context.Context, job *model.Job) error {
	for _, j := range m.jobs {
		if j.UserID == job.UserID && j.URL == job.URL {
			return apperror.AlreadyExists("job", "job already saved")
		}
	}
	m.nextID++
	job.ID = fmt.Sprintf("job-%d", m.nextID)
	job.SavedAt = time.Now()
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *mockJobRepo) GetJob(_ context.Context, userID, id string) (*model.Job, error) {
	job, ok := m.jobs[id]
	if !ok || job.UserID != userID {
		return nil, apperror.NotFound("job", id)
	}
	result := *job
	return &result, nil
}

func (m *mockJobRepo) ListJobs(_ context.Context, userID string, filter repository.JobFilter, opts repository.ListOptions) ([]model.Job, int, error) {
	all := make([]model.Job, 0)
	for _, j := range m.jobs {
		if j.UserID != userID {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.Company != "" && !strings.Contains(strings.ToLower(j.Company), strings.ToLower(filter.Company)) {
			continue
		}
		all = append(all, *j)
	}
	sort.Slice(all, func(i, k int) bool { return all[i].ID < all[k].ID })

	total := len(all)
	if opts.Offset >= len(all) {
		return []model.Job{}, total, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

func (m *mockJobRepo) DeleteJob(_ context.Context, userID, id string) error {
	job, ok := m.jobs[id]
	if !ok || job.UserID != userID {
		return apperror.NotFound("job", id)
	}
	delete(m.jobs, id)
	return nil
}

// ---- applications ----

type mockApplicationRepo struct {
	apps   map[string]*model.Application
	nextID int
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*model.Application)}
}

func (m *mockApplicationRepo) CreateApplication(_ context.Context, app *model.Application) error {
	for _, a := range m.apps {
		if a.UserID == app.UserID && a.JobID == app.JobID {
			return apperror.AlreadyExists("application", "application already exists for this job")
		}
	}
	m.nextID++
	app.ID = fmt.Sprintf("app-%d", m.nextID)
	if app.Status == "" {
		app.Status = model.StatusSaved
	}
	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m *mockApplicationRepo) GetApplication(_ context.Context, userID, id string) (*model.Application, error) {
	app, ok := m.apps[id]
	if !ok || app.UserID != userID {
		return nil, apperror.NotFound("application", id)
	}
	result := *app
	return &result, nil
}

func (m *mockApplicationRepo) ListApplications(_ context.Context, userID string, status model.ApplicationStatus) ([]model.Application, error) {
	result := make([]model.Application, 0)
	for _, a := range m.apps {
		if a.UserID != userID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockApplicationRepo) UpdateApplication(_ context.Context, app *model.Application) error {
	existing, ok := m.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return apperror.NotFound("application", app.ID)
	}
	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m *mockApplicationRepo) DeleteApplication(_ context.Context, userID, id string) error {
	app, ok := m.apps[id]
	if !ok || app.UserID != userID {
		return apperror.NotFound("application", id)
	}
	delete(m.apps, id)
	return nil
}

func (m *mockApplicationRepo) CountApplicationsByStatus(_ context.Context, userID string, statuses []model.ApplicationStatus) (int, error) {
	count := 0
	for _, a := range m.apps {
		if a.UserID != userID {
			continue
		}
		for _, s := range statuses {
			if a.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

// ---- match scores ----

type mockMatchRepo struct {
	scores map[string]*model.MatchScore // keyed by userID+"/"+jobID
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{scores: make(map[string]*model.MatchScore)}
}

func (m *mockMatchRepo) UpsertMatchScore(_ context.Context, score *model.MatchScore) error {
	key := score.UserID + "/" + score.JobID
	if score.ID == "" {
		score.ID = "match-" + key
	}
	score.CalculatedAt = time.Now()
	stored := *score
	m.scores[key] = &stored
	return nil
}

func (m *mockMatchRepo) ListMatchScores(_ context.Context, userID string, limit int) ([]model.MatchScore, error) {
	result := make([]model.MatchScore, 0)
	for _, s := range m.scores {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].Score > result[k].Score })
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockMatchRepo) CountMatchesAbove(_ context.Context, userID string, threshold int) (int, error) {
	count := 0
	for _, s := range m.scores {
		if s.UserID == userID && s.Score > threshold {
			count++
		}
	}
	return count, nil
}

// ---- credits ----

type mockCreditsRepo struct {
	ledgers map[string]*model.Credits
}

func newMockCreditsRepo() *mockCreditsRepo {
	return &mockCreditsRepo{ledgers: make(map[string]*model.Credits)}
}

func (m *mockCreditsRepo) ensure(userID string) *model.Credits {
	if c, ok := m.ledgers[userID]; ok {
		return c
	}
	c := &model.Credits{UserID: userID, FreeCredits: model.FreeCredits}
	m.ledgers[userID] = c
	return c
}

func (m *mockCreditsRepo) ConsumeCredit(_ context.Context, userID string) (bool, error) {
	c := m.ensure(userID)
	if c.IsSubscribed {
		return true, nil
	}
	if c.FreeCredits > 0 {
		c.FreeCredits--
		return true, nil
	}
	return false, nil
}

func (m *mockCreditsRepo) GetCredits(_ context.Context, userID string) (*model.Credits, error) {
	result := *m.ensure(userID)
	return &result, nil
}

func (m *mockCreditsRepo) SetSubscribed(_ context.Context, userID string, subscribed bool, periodEnd *time.Time) error {
	c := m.ensure(userID)
	c.IsSubscribed = subscribed
	c.SubscriptionEnd = periodEnd
	return nil
}

// ---- subscriptions ----

type mockSubscriptionRepo struct {
	subs map[string]*model.Subscription // keyed by user id
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (m *mockSubscriptionRepo) UpsertSubscription(_ context.Context, sub *model.Subscription) error {
	if sub.ID == "" {
		sub.ID = "sub-" + sub.UserID
	}
	stored := *sub
	m.subs[sub.UserID] = &stored
	return nil
}

func (m *mockSubscriptionRepo) GetSubscriptionByUserID(_ context.Context, userID string) (*model.Subscription, error) {
	sub, ok := m.subs[userID]
	if !ok {
		return nil, apperror.NotFound("subscription", userID)
	}
	result := *sub
	return &result, nil
}

func (m *mockSubscriptionRepo) UpdateSubscriptionByExternalID(_ context.Context, externalID, status string, periodEnd *time.Time) (string, error) {
	for _, sub := range m.subs {
		if sub.ExternalID == externalID {
			sub.Status = status
			if periodEnd != nil {
				sub.PeriodEnd = periodEnd
			}
			return sub.UserID, nil
		}
	}
	return "", nil
}

// ---- generations ----

type mockGenerationRepo struct {
	gens   []model.Generation
	nextID int
}

func newMockGenerationRepo() *mockGenerationRepo {
	return &mockGenerationRepo{}
}

func (m *mockGenerationRepo) CreateGeneration(_ context.Context, gen *model.Generation) error {
	m.nextID++
	gen.ID = fmt.Sprintf("gen-%d", m.nextID)
	gen.CreatedAt = time.Now()
	m.gens = append(m.gens, *gen)
	return nil
}

func (m *mockGenerationRepo) ListGenerations(_ context.Context, userID string, limit int) ([]model.Generation, error) {
	result := make([]model.Generation, 0)
	for i := len(m.gens) - 1; i >= 0; i-- {
		if m.gens[i].UserID != userID {
			continue
		}
		result = append(result, m.gens[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// ---- tasks ----

type mockTaskRepo struct {
	tasks  []*model.AgentTask
	nextID int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{}
}

func (m *mockTaskRepo) CreateTask(_ context.Context, task *model.AgentTask) error {
	m.nextID++
	task.ID = fmt.Sprintf("task-%d", m.nextID)
	task.Status = model.TaskQueued
	if task.Input == "" {
		task.Input = "{}"
	}
	task.CreatedAt = time.Now()
	stored := *task
	m.tasks = append(m.tasks, &stored)
	return nil
}

func (m *mockTaskRepo) GetTask(_ context.Context, id string) (*model.AgentTask, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			result := *t
			return &result, nil
		}
	}
	return nil, apperror.NotFound("task", id)
}

func (m *mockTaskRepo) ClaimNextTask(_ context.Context) (*model.AgentTask, error) {
	for _, t := range m.tasks {
		if t.Status == model.TaskQueued {
			t.Status = model.TaskRunning
			result := *t
			return &result, nil
		}
	}
	return nil, nil
}

func (m *mockTaskRepo) FinishTask(_ context.Context, id string, status model.TaskStatus, output string) error {
	for _, t := range m.tasks {
		if t.ID == id {
			if t.Status != model.TaskRunning {
				return apperror.NotFound("running task", id)
			}
			t.Status = status
			t.Output = output
			return nil
		}
	}
	return apperror.NotFound("running task", id)
}

// ---- webhook events ----

type mockEventRepo struct {
	seen map[string]bool
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{seen: make(map[string]bool)}
}

func (m *mockEventRepo) AdmitWebhookEvent(_ context.Context, eventID, _ string) (bool, error) {
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

// ---- text generator / checkout stubs ----

type stubGenerator struct {
	output string
	err    error
	calls  int
	// last prompt seen, for assertions
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

type stubCheckout struct {
	url        string
	err        error
	successURL string
	cancelURL  string
}

func (s *stubCheckout) CreateCheckoutSession(_ context.Context, _, _, successURL, cancelURL string) (string, error) {
	s.successURL = successURL
	s.cancelURL = cancelURL
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

// seedUser creates a user through the mock repo and returns its internal id.
func seedUser(t *testing.T, repo *mockUserRepo, identityID string) string {
	t.Helper()
	user := &model.User{IdentityID: identityID, Email: identityID + "@example.com"}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user.ID
}
