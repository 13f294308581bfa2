package model

import "time"

// TaskStatus is the lifecycle state of an agent task. Transitions are
// strictly forward: QUEUED → RUNNING → SUCCESS or FAILED. Terminal states
// never transition again.
type TaskStatus string

const (
	TaskQueued  TaskStatus = "QUEUED"
	TaskRunning TaskStatus = "RUNNING"
	TaskSuccess TaskStatus = "SUCCESS"
	TaskFailed  TaskStatus = "FAILED"
)

// Known task types dispatched by the agent poller. An unknown type is a
// FAILED outcome, not a crash.
const (
	TaskRunMatch    = "RUN_MATCH"
	TaskDailyBrief  = "DAILY_BRIEF"
	TaskFetchOffers = "FETCH_OFFERS"
)

// AgentTask is one row in the polling-based task table. Input and Output are
// JSON blobs — the queue doesn't interpret them, only the per-type handler
// does. On failure, Output carries the error detail.
type AgentTask struct {
	ID        string     `json:"id"        db:"id"`
	UserID    string     `json:"userId"    db:"user_id"`
	TaskType  string     `json:"taskType"  db:"task_type"`
	Status    TaskStatus `json:"status"    db:"status"`
	Input     string     `json:"input"     db:"input"`
	Output    string     `json:"output"    db:"output"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}
