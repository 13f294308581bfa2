package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.TaskRepository = (*DB)(nil)

func (db *DB) CreateTask(ctx context.Context, task *model.AgentTask) error {
	task.ID = xid.New().String()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Status = model.TaskQueued
	if task.Input == "" {
		task.Input = "{}"
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO agent_tasks (id, user_id, task_type, status, input, output, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '', ?, ?)`,
		task.ID,
		task.UserID,
		task.TaskType,
		task.Status,
		task.Input,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

func (db *DB) GetTask(ctx context.Context, id string) (*model.AgentTask, error) {
	var task model.AgentTask
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, task_type, status, input, output, created_at, updated_at
		 FROM agent_tasks
		 WHERE id = ?`,
		id,
	).Scan(
		&task.ID,
		&task.UserID,
		&task.TaskType,
		&task.Status,
		&task.Input,
		&task.Output,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}

	return &task, nil
}

// ClaimNextTask claims the oldest QUEUED task (FIFO by creation time).
//
// Find-oldest and mark-RUNNING are one statement: the inner SELECT picks the
// candidate and the outer UPDATE only fires if it is still QUEUED, with
// RETURNING handing back the claimed row. Two pollers racing here make
// SQLite serialize the UPDATEs — the loser's WHERE clause no longer matches
// and it simply claims the next task (or nothing). No row can be processed
// twice.
func (db *DB) ClaimNextTask(ctx context.Context) (*model.AgentTask, error) {
	var task model.AgentTask
	err := db.conn.QueryRowContext(ctx,
		`UPDATE agent_tasks
		 SET status = ?, updated_at = ?
		 WHERE id = (
		     SELECT id FROM agent_tasks
		     WHERE status = ?
		     ORDER BY created_at ASC, id ASC
		     LIMIT 1
		 ) AND status = ?
		 RETURNING id, user_id, task_type, status, input, output, created_at, updated_at`,
		model.TaskRunning, time.Now(), model.TaskQueued, model.TaskQueued,
	).Scan(
		&task.ID,
		&task.UserID,
		&task.TaskType,
		&task.Status,
		&task.Input,
		&task.Output,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			// Queue is empty — not an error, the poller just idles.
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: claiming task: %w", err)
	}

	return &task, nil
}

// FinishTask records the terminal outcome of a RUNNING task. The status
// guard in the WHERE clause enforces strictly-forward transitions: a task
// already in SUCCESS or FAILED (or still QUEUED — never claimed) is left
// untouched and reported as NotFound.
func (db *DB) FinishTask(ctx context.Context, id string, status model.TaskStatus, output string) error {
	if status != model.TaskSuccess && status != model.TaskFailed {
		return fmt.Errorf("sqlite: finishing task %s: %q is not a terminal status", id, status)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE agent_tasks
		 SET status = ?, output = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		status, output, time.Now(), id, model.TaskRunning,
	)
	if err != nil {
		return fmt.Errorf("sqlite: finishing task %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("running task", id)
	}

	return nil
}
