// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of SQLite — works everywhere Go works.
//
// This layer is where the correctness-critical atomicity lives. Three
// operations must be single-statement conditional updates rather than
// read-then-write sequences:
//
//   - the credit decrement (Consume) — a concurrent pair of generation
//     requests must not overspend the counter;
//   - the task claim (ClaimNext) — two pollers must never both claim the
//     same QUEUED row;
//   - the webhook admit (Admit) — two deliveries of the same event must not
//     both be applied.
//
// Each relies on a server-side constraint or a conditional UPDATE, never on
// application-level check-then-act.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all entities keeps wiring simple — the service
// layer still only sees the narrow interface it asked for.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite connection pool and runs migrations.
//
// dbPath examples:
//   - "data/alternagen.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — important
	// for a web server where requests and the task poller share the file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite for backwards compatibility.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer Close() next to New().
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this is safe to run on every start.
//
// The UNIQUE constraints here are load-bearing: the application depends on
// them being enforced server-side (duplicate applications and job urls
// become conflicts, webhook replays become no-ops).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			identity_id TEXT NOT NULL UNIQUE,
			email       TEXT NOT NULL DEFAULT '',
			first_name  TEXT NOT NULL DEFAULT '',
			last_name   TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS profiles (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			education_level     TEXT NOT NULL DEFAULT '',
			field_of_study      TEXT NOT NULL DEFAULT '',
			skills              TEXT NOT NULL DEFAULT '[]',
			preferred_locations TEXT NOT NULL DEFAULT '[]',
			preferred_sectors   TEXT NOT NULL DEFAULT '[]',
			bio                 TEXT NOT NULL DEFAULT '',
			created_at          DATETIME NOT NULL,
			updated_at          DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS jobs (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title        TEXT NOT NULL,
			company      TEXT NOT NULL DEFAULT '',
			location     TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			requirements TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL,
			source       TEXT NOT NULL DEFAULT 'Manual',
			saved_at     DATETIME NOT NULL,
			created_at   DATETIME NOT NULL,
			UNIQUE(user_id, url)
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_user_saved ON jobs(user_id, saved_at);

		CREATE TABLE IF NOT EXISTS applications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_id     TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			status     TEXT NOT NULL DEFAULT 'SAVED',
			notes      TEXT NOT NULL DEFAULT '',
			applied_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(user_id, job_id)
		);

		CREATE TABLE IF NOT EXISTS match_scores (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_id        TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			score         INTEGER NOT NULL,
			explanation   TEXT NOT NULL DEFAULT '',
			calculated_at DATETIME NOT NULL,
			UNIQUE(user_id, job_id)
		);
		CREATE INDEX IF NOT EXISTS idx_match_scores_user_score ON match_scores(user_id, score);

		CREATE TABLE IF NOT EXISTS credits (
			user_id          TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			free_credits     INTEGER NOT NULL,
			is_subscribed    INTEGER NOT NULL DEFAULT 0,
			subscription_end DATETIME,
			created_at       DATETIME NOT NULL,
			updated_at       DATETIME NOT NULL,
			CHECK(free_credits >= 0)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			external_id TEXT NOT NULL DEFAULT '',
			plan_code   TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT '',
			period_end  DATETIME,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_external ON subscriptions(external_id);

		CREATE TABLE IF NOT EXISTS generations (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type       TEXT NOT NULL,
			input      TEXT NOT NULL DEFAULT '',
			output     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_generations_user_created ON generations(user_id, created_at);

		CREATE TABLE IF NOT EXISTS agent_tasks (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			task_type  TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'QUEUED',
			input      TEXT NOT NULL DEFAULT '{}',
			output     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_agent_tasks_status_created ON agent_tasks(status, created_at);

		CREATE TABLE IF NOT EXISTS webhook_events (
			event_id   TEXT PRIMARY KEY,
			event_type TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as plain errors carrying SQLite's
// message text, so string matching is the practical detection here.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
