// Package repository defines the persistence interfaces consumed by the
// service layer. The sqlite subpackage implements them; service tests
// substitute in-memory mocks.
//
// All methods are entity-qualified (CreateJob, not Create) because a single
// storage type implements several of these interfaces at once.
package repository

import (
	"context"
	"time"

	"github.com/alternagen/api/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// JobFilter narrows job listings. Empty fields are ignored; non-empty ones
// match case-insensitively as substrings.
type JobFilter struct {
	Location string
	Company  string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByIdentityID(ctx context.Context, identityID string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfileByUserID(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) error
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, userID, id string) (*model.Job, error)
	// ListJobs returns one page of the user's jobs (newest first) plus the
	// total row count for the filter, so handlers can compute pagination
	// metadata.
	ListJobs(ctx context.Context, userID string, filter JobFilter, opts ListOptions) ([]model.Job, int, error)
	DeleteJob(ctx context.Context, userID, id string) error
}

type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, userID, id string) (*model.Application, error)
	// ListApplications returns the user's applications, newest first. A
	// non-empty status restricts the result to that status.
	ListApplications(ctx context.Context, userID string, status model.ApplicationStatus) ([]model.Application, error)
	UpdateApplication(ctx context.Context, app *model.Application) error
	DeleteApplication(ctx context.Context, userID, id string) error
	CountApplicationsByStatus(ctx context.Context, userID string, statuses []model.ApplicationStatus) (int, error)
}

type MatchRepository interface {
	// UpsertMatchScore writes the score for (UserID, JobID), overwriting any
	// prior score for that pair. There is never more than one row per pair.
	UpsertMatchScore(ctx context.Context, score *model.MatchScore) error
	// ListMatchScores returns up to limit scores, best first.
	ListMatchScores(ctx context.Context, userID string, limit int) ([]model.MatchScore, error)
	CountMatchesAbove(ctx context.Context, userID string, threshold int) (int, error)
}

type CreditsRepository interface {
	// ConsumeCredit performs the atomic check-and-decrement: it creates the
	// ledger row with the free allowance on first use, never decrements a
	// subscribed user, and decrements a free user only while credits remain.
	// The conditional decrement is a single UPDATE so concurrent callers
	// cannot overspend.
	ConsumeCredit(ctx context.Context, userID string) (bool, error)
	// GetCredits returns the user's ledger, creating it with the free
	// allowance if it doesn't exist yet.
	GetCredits(ctx context.Context, userID string) (*model.Credits, error)
	// SetSubscribed flips the subscription flag (and period end) on the
	// ledger, creating the row if needed.
	SetSubscribed(ctx context.Context, userID string, subscribed bool, periodEnd *time.Time) error
}

type SubscriptionRepository interface {
	// UpsertSubscription writes the subscription row keyed on UserID.
	UpsertSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error)
	// UpdateSubscriptionByExternalID updates status and period end on the
	// row matching the processor's subscription id. Returns the owning user
	// id, or ("", nil) when no row matches — an event for a subscription we
	// never recorded is ignored, not an error.
	UpdateSubscriptionByExternalID(ctx context.Context, externalID, status string, periodEnd *time.Time) (string, error)
}

type GenerationRepository interface {
	CreateGeneration(ctx context.Context, gen *model.Generation) error
	ListGenerations(ctx context.Context, userID string, limit int) ([]model.Generation, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.AgentTask) error
	GetTask(ctx context.Context, id string) (*model.AgentTask, error)
	// ClaimNextTask atomically claims the oldest QUEUED task, marking it
	// RUNNING in the same statement so concurrent pollers can never claim
	// the same row. Returns (nil, nil) when the queue is empty.
	ClaimNextTask(ctx context.Context) (*model.AgentTask, error)
	// FinishTask moves a RUNNING task to a terminal state with its output
	// (or error detail). Tasks not in RUNNING are left untouched — terminal
	// states never transition.
	FinishTask(ctx context.Context, id string, status model.TaskStatus, output string) error
}

type WebhookEventRepository interface {
	// AdmitWebhookEvent records the event id and reports whether it was seen
	// for the first time. Implemented as an insert against a unique
	// constraint: a conflict means duplicate, so two concurrent deliveries
	// of the same event can never both be admitted.
	AdmitWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error)
}
