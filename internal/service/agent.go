package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

// goodMatchThreshold is the score above which a match counts as a new
// opportunity in the daily brief.
const goodMatchThreshold = 70

const recommendedLimit = 10

// AgentService runs the background task queue and the PRO agent features
// built on top of it (daily brief, recommended offers).
type AgentService struct {
	tasks         repository.TaskRepository
	applications  repository.ApplicationRepository
	matches       repository.MatchRepository
	subscriptions repository.SubscriptionRepository
	matcher       *MatchService
	logger        *slog.Logger
}

func NewAgentService(
	tasks repository.TaskRepository,
	applications repository.ApplicationRepository,
	matches repository.MatchRepository,
	subscriptions repository.SubscriptionRepository,
	matcher *MatchService,
	logger *slog.Logger,
) *AgentService {
	return &AgentService{
		tasks:         tasks,
		applications:  applications,
		matches:       matches,
		subscriptions: subscriptions,
		matcher:       matcher,
		logger:        logger,
	}
}

// Enqueue queues a task for the poller. The type isn't validated here:
// an unknown type is queued and then fails at processing with a recorded
// error, which keeps enqueue and dispatch decoupled.
func (s *AgentService) Enqueue(ctx context.Context, userID, taskType, input string) (*model.AgentTask, error) {
	taskType = strings.TrimSpace(taskType)
	if taskType == "" {
		return nil, apperror.ValidationFailed("taskType", "task type is required")
	}

	task := &model.AgentTask{
		UserID:   userID,
		TaskType: taskType,
		Input:    input,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueuing task: %w", err)
	}

	s.logger.Info("task enqueued",
		slog.String("id", task.ID),
		slog.String("type", taskType),
		slog.String("userId", userID),
	)

	return task, nil
}

// Task returns one task by id, for status polling.
func (s *AgentService) Task(ctx context.Context, id string) (*model.AgentTask, error) {
	return s.tasks.GetTask(ctx, id)
}

// ProcessNext claims and runs the oldest queued task. Returns (nil, nil)
// when the queue is empty. Handler failures (including unknown task types)
// finish the task as FAILED with the error recorded in its output; they are
// not returned as errors, so one bad task never wedges the poller.
func (s *AgentService) ProcessNext(ctx context.Context) (*model.AgentTask, error) {
	task, err := s.tasks.ClaimNextTask(ctx)
	if err != nil {
		return nil, fmt.Errorf("claiming task: %w", err)
	}
	if task == nil {
		return nil, nil
	}

	output, runErr := s.run(ctx, task)

	if runErr != nil {
		s.logger.Warn("task failed",
			slog.String("id", task.ID),
			slog.String("type", task.TaskType),
			slog.String("error", runErr.Error()),
		)
		detail, _ := json.Marshal(map[string]string{"error": runErr.Error()})
		if err := s.tasks.FinishTask(ctx, task.ID, model.TaskFailed, string(detail)); err != nil {
			return nil, fmt.Errorf("recording task failure: %w", err)
		}
		task.Status = model.TaskFailed
		task.Output = string(detail)
		return task, nil
	}

	if err := s.tasks.FinishTask(ctx, task.ID, model.TaskSuccess, output); err != nil {
		return nil, fmt.Errorf("recording task success: %w", err)
	}
	task.Status = model.TaskSuccess
	task.Output = output

	s.logger.Info("task complete",
		slog.String("id", task.ID),
		slog.String("type", task.TaskType),
	)

	return task, nil
}

func (s *AgentService) run(ctx context.Context, task *model.AgentTask) (string, error) {
	switch task.TaskType {
	case model.TaskRunMatch:
		scored, err := s.matcher.CalculateAll(ctx, task.UserID)
		if err != nil {
			// No profile yet means nothing to match, not a failure.
			if errors.Is(err, apperror.ErrNotFound) {
				return `{"message":"no profile yet, nothing to match","matches":0}`, nil
			}
			return "", err
		}
		return fmt.Sprintf(`{"message":"Matching run complete","matches":%d}`, scored), nil

	case model.TaskDailyBrief:
		return `{"message":"Brief generated"}`, nil

	case model.TaskFetchOffers:
		// Offer ingestion is a stub: there is no upstream source wired yet.
		return `{"message":"Offers fetched (mock)","count":5}`, nil

	default:
		return "", fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

// BriefAction is one suggested action in a daily brief.
type BriefAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Link  string `json:"link"`
}

// BriefStats summarizes the user's pipeline.
type BriefStats struct {
	PendingApplications int `json:"pendingApplications"`
	NewOpportunities    int `json:"newOpportunities"`
}

// Brief is the PRO daily brief payload.
type Brief struct {
	Message string        `json:"message"`
	Actions []BriefAction `json:"actions"`
	Stats   BriefStats    `json:"stats"`
}

// DailyBrief builds the PRO daily brief. Users without an active PRO
// subscription are Forbidden.
func (s *AgentService) DailyBrief(ctx context.Context, userID string) (*Brief, error) {
	sub, err := s.subscriptions.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if !sub.IsActivePro() {
		return nil, apperror.Forbidden("daily brief requires an active PRO subscription")
	}

	pending, err := s.applications.CountApplicationsByStatus(ctx, userID,
		[]model.ApplicationStatus{model.StatusSaved, model.StatusApplied, model.StatusInterview})
	if err != nil {
		return nil, fmt.Errorf("counting pending applications: %w", err)
	}

	opportunities, err := s.matches.CountMatchesAbove(ctx, userID, goodMatchThreshold)
	if err != nil {
		return nil, fmt.Errorf("counting opportunities: %w", err)
	}

	brief := &Brief{
		Message: "Here is your mission for today.",
		Actions: []BriefAction{},
		Stats: BriefStats{
			PendingApplications: pending,
			NewOpportunities:    opportunities,
		},
	}
	if opportunities > 0 {
		brief.Actions = append(brief.Actions, BriefAction{
			Type:  "APPLY",
			Label: fmt.Sprintf("You have %d strong matches waiting", opportunities),
			Link:  "/offers/recommended",
		})
	}
	if pending > 0 {
		brief.Actions = append(brief.Actions, BriefAction{
			Type:  "FOLLOWUP",
			Label: fmt.Sprintf("Follow up on %d pending applications", pending),
			Link:  "/applications",
		})
	}

	return brief, nil
}

// RecommendedOffers returns the user's top matches, best first. When no
// scores exist yet it enqueues a RUN_MATCH task and reports inProgress so
// the client can poll.
func (s *AgentService) RecommendedOffers(ctx context.Context, userID string) ([]model.MatchScore, bool, error) {
	scores, err := s.matches.ListMatchScores(ctx, userID, recommendedLimit)
	if err != nil {
		return nil, false, fmt.Errorf("listing match scores: %w", err)
	}

	if len(scores) == 0 {
		if _, err := s.Enqueue(ctx, userID, model.TaskRunMatch, ""); err != nil {
			return nil, false, err
		}
		return []model.MatchScore{}, true, nil
	}

	return scores, false, nil
}

// Poller drains the task queue on an interval, outside the request cycle.
type Poller struct {
	agent    *AgentService
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(agent *AgentService, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{agent: agent, interval: interval, logger: logger}
}

// Run processes tasks until ctx is cancelled. Each tick drains the queue;
// an empty claim puts the poller back to sleep until the next tick.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("task poller started", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("task poller stopped")
			return
		case <-ticker.C:
			for {
				task, err := p.agent.ProcessNext(ctx)
				if err != nil {
					p.logger.Error("task processing error", slog.String("error", err.Error()))
					break
				}
				if task == nil {
					break
				}
			}
		}
	}
}
