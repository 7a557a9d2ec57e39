package postgres

import (
	"context"
	"database/sql"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// Connection pool sized for a single-founder wizard; each request does
	// at most a couple of queries.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

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
		id SERIAL PRIMARY KEY,
		uid TEXT NOT NULL UNIQUE,
		current_stage TEXT NOT NULL,
		completed_stages JSONB NOT NULL DEFAULT '[]',
		data JSONB NOT NULL DEFAULT '{}',
		conversation_history JSONB NOT NULL DEFAULT '[]',
		created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
		updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id SERIAL PRIMARY KEY,
		session_uid TEXT NOT NULL,
		rating INTEGER NOT NULL DEFAULT 0,
		comment TEXT NOT NULL DEFAULT '',
		created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
	)`,
	`CREATE TABLE IF NOT EXISTS customer (
		id TEXT PRIMARY KEY,
		subscription_status TEXT NOT NULL DEFAULT 'active',
		plan TEXT NOT NULL DEFAULT '',
		actual_attempts INTEGER NOT NULL DEFAULT 0,
		used_attempt INTEGER NOT NULL DEFAULT 0,
		created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
		updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_session_uid ON feedback (session_uid)`,
}
