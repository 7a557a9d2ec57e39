package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mvpforge/mvpforge/store"
)

func (d *DB) UpsertCustomer(ctx context.Context, upsert *store.UpsertCustomer) (*store.Customer, error) {
	stmt := `INSERT INTO customer (id, subscription_status, plan, actual_attempts, used_attempt)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (id)
		DO UPDATE SET
			subscription_status = EXCLUDED.subscription_status,
			plan = EXCLUDED.plan,
			actual_attempts = EXCLUDED.actual_attempts,
			used_attempt = EXCLUDED.used_attempt,
			updated_ts = strftime('%s', 'now')
		RETURNING id, subscription_status, plan, actual_attempts, used_attempt, created_ts, updated_ts`

	customer, err := scanCustomer(d.db.QueryRowContext(ctx, stmt,
		upsert.ID, upsert.SubscriptionStatus, upsert.Plan, upsert.ActualAttempts, upsert.UsedAttempt))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}
	return customer, nil
}

func (d *DB) GetCustomer(ctx context.Context, find *store.FindCustomer) (*store.Customer, error) {
	if find.ID == nil {
		return nil, fmt.Errorf("customer id is required")
	}

	query := `SELECT id, subscription_status, plan, actual_attempts, used_attempt, created_ts, updated_ts
		FROM customer WHERE id = ` + placeholder(1)

	customer, err := scanCustomer(d.db.QueryRowContext(ctx, query, *find.ID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func (d *DB) IncrementCustomerAttempt(ctx context.Context, id string) (*store.Customer, error) {
	stmt := `UPDATE customer
		SET used_attempt = used_attempt + 1, updated_ts = strftime('%s', 'now')
		WHERE id = ` + placeholder(1) + `
		RETURNING id, subscription_status, plan, actual_attempts, used_attempt, created_ts, updated_ts`

	customer, err := scanCustomer(d.db.QueryRowContext(ctx, stmt, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment customer attempt: %w", err)
	}
	return customer, nil
}

func scanCustomer(row rowScanner) (*store.Customer, error) {
	var customer store.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.SubscriptionStatus,
		&customer.Plan,
		&customer.ActualAttempts,
		&customer.UsedAttempt,
		&customer.CreatedTs,
		&customer.UpdatedTs,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
