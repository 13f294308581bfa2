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

var _ repository.JobRepository = (*DB)(nil)

// CreateJob inserts a saved job. The UNIQUE(user_id, url) constraint turns a
// re-save of the same posting into an AlreadyExists error instead of a
// duplicate row — the constraint, not a pre-check, is what makes this safe
// under concurrent saves from the extension.
func (db *DB) CreateJob(ctx context.Context, job *model.Job) error {
	job.ID = xid.New().String()
	now := time.Now()
	job.SavedAt = now
	job.CreatedAt = now
	if job.Source == "" {
		job.Source = "Manual"
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO jobs (id, user_id, title, company, location, description,
		                   requirements, url, source, saved_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.UserID,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Requirements,
		job.URL,
		job.Source,
		job.SavedAt,
		job.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists("job", "job already saved")
		}
		return fmt.Errorf("sqlite: creating job: %w", err)
	}

	return nil
}

// GetJob fetches a job scoped to its owner — a job id belonging to another
// user is NotFound, not Forbidden, so ids can't be probed.
func (db *DB) GetJob(ctx context.Context, userID, id string) (*model.Job, error) {
	var job model.Job
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, company, location, description,
		        requirements, url, source, saved_at, created_at
		 FROM jobs
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&job.ID,
		&job.UserID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.Description,
		&job.Requirements,
		&job.URL,
		&job.Source,
		&job.SavedAt,
		&job.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("job", id)
		}
		return nil, fmt.Errorf("sqlite: getting job %s: %w", id, err)
	}

	return &job, nil
}

// ListJobs returns one page of the user's jobs (newest saved first) and the
// total count for the filter. Location/company filters are case-insensitive
// substring matches, mirroring the list UI's search boxes.
func (db *DB) ListJobs(ctx context.Context, userID string, filter repository.JobFilter, opts repository.ListOptions) ([]model.Job, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = ?`
	args := []any{userID}
	if filter.Location != "" {
		where += ` AND location LIKE '%' || ? || '%' COLLATE NOCASE`
		args = append(args, filter.Location)
	}
	if filter.Company != "" {
		where += ` AND company LIKE '%' || ? || '%' COLLATE NOCASE`
		args = append(args, filter.Company)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting jobs: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, company, location, description,
		        requirements, url, source, saved_at, created_at
		 FROM jobs `+where+`
		 ORDER BY saved_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0, limit)
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(
			&job.ID, &job.UserID, &job.Title, &job.Company, &job.Location,
			&job.Description, &job.Requirements, &job.URL, &job.Source,
			&job.SavedAt, &job.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating jobs: %w", err)
	}

	return jobs, total, nil
}

// DeleteJob removes a job. Applications and match scores referencing it go
// with it via ON DELETE CASCADE.
func (db *DB) DeleteJob(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting job %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("job", id)
	}

	return nil
}
