package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.ApplicationRepository = (*DB)(nil)

// CreateApplication inserts an application. UNIQUE(user_id, job_id) makes a
// second application for the same job a conflict.
func (db *DB) CreateApplication(ctx context.Context, app *model.Application) error {
	app.ID = xid.New().String()
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = model.StatusSaved
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, job_id, status, notes, applied_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID,
		app.UserID,
		app.JobID,
		app.Status,
		app.Notes,
		nullableTime(app.AppliedAt),
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists("application", "application already exists for this job")
		}
		return fmt.Errorf("sqlite: creating application: %w", err)
	}

	return nil
}

func (db *DB) GetApplication(ctx context.Context, userID, id string) (*model.Application, error) {
	var (
		app       model.Application
		appliedAt sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, job_id, status, notes, applied_at, created_at, updated_at
		 FROM applications
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&app.ID,
		&app.UserID,
		&app.JobID,
		&app.Status,
		&app.Notes,
		&appliedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting application %s: %w", id, err)
	}

	if appliedAt.Valid {
		app.AppliedAt = &appliedAt.Time
	}

	return &app, nil
}

func (db *DB) ListApplications(ctx context.Context, userID string, status model.ApplicationStatus) ([]model.Application, error) {
	query := `SELECT id, user_id, job_id, status, notes, applied_at, created_at, updated_at
	          FROM applications
	          WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		var (
			app       model.Application
			appliedAt sql.NullTime
		)
		if err := rows.Scan(
			&app.ID, &app.UserID, &app.JobID, &app.Status, &app.Notes,
			&appliedAt, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		if appliedAt.Valid {
			app.AppliedAt = &appliedAt.Time
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}

	return apps, nil
}

func (db *DB) UpdateApplication(ctx context.Context, app *model.Application) error {
	app.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE applications
		 SET status = ?, notes = ?, applied_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		app.Status,
		app.Notes,
		nullableTime(app.AppliedAt),
		app.UpdatedAt,
		app.ID,
		app.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating application %s: %w", app.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", app.ID)
	}

	return nil
}

func (db *DB) DeleteApplication(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM applications WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting application %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", id)
	}

	return nil
}

// CountApplicationsByStatus counts the user's applications in any of the
// given statuses. Used by the daily brief for its pending-work stat.
func (db *DB) CountApplicationsByStatus(ctx context.Context, userID string, statuses []model.ApplicationStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(statuses)+1)
	args = append(args, userID)
	for _, s := range statuses {
		args = append(args, s)
	}

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE user_id = ? AND status IN (`+placeholders+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting applications: %w", err)
	}

	return count, nil
}

// nullableTime converts *time.Time to a driver-friendly value, NULL when nil.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
