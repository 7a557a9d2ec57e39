package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	// GetDB returns the underlying sql.DB, or nil for the in-memory driver.
	GetDB() *sql.DB
	Close() error

	// Session model related methods.
	CreateSession(ctx context.Context, create *Session) (*Session, error)
	ListSessions(ctx context.Context, find *FindSession) ([]*Session, error)
	UpdateSession(ctx context.Context, update *UpdateSession) (*Session, error)

	// Feedback model related methods.
	CreateFeedback(ctx context.Context, create *Feedback) (*Feedback, error)
	ListFeedback(ctx context.Context, find *FindFeedback) ([]*Feedback, error)

	// Customer model related methods.
	UpsertCustomer(ctx context.Context, upsert *UpsertCustomer) (*Customer, error)
	GetCustomer(ctx context.Context, find *FindCustomer) (*Customer, error)
	IncrementCustomerAttempt(ctx context.Context, id string) (*Customer, error)
}
