package sqlite

import (
	"context"
	"database/sql"
	"strings"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"
	"github.com/pkg/errors"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database and ensures the schema exists.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// Connect with WAL mode and a busy timeout; the wizard is effectively
	// single-user but two browser tabs can still race.
	dsn := profile.DSN
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	driver := &DB{
		db:      db,
		profile: profile,
	}

	if err := driver.migrate(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to exec: %s", stmt)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		current_stage TEXT NOT NULL,
		completed_stages TEXT NOT NULL DEFAULT '[]',
		data TEXT NOT NULL DEFAULT '{}',
		conversation_history TEXT NOT NULL DEFAULT '[]',
		created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_uid TEXT NOT NULL,
		rating INTEGER NOT NULL DEFAULT 0,
		comment TEXT NOT NULL DEFAULT '',
		created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
	)`,
	`CREATE TABLE IF NOT EXISTS customer (
		id TEXT PRIMARY KEY,
		subscription_status TEXT NOT NULL DEFAULT 'active',
		plan TEXT NOT NULL DEFAULT '',
		actual_attempts INTEGER NOT NULL DEFAULT 0,
		used_attempt INTEGER NOT NULL DEFAULT 0,
		created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_session_uid ON feedback (session_uid)`,
}
