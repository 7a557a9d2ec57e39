package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvpforge/mvpforge/store"
)

func (d *DB) CreateFeedback(ctx context.Context, create *store.Feedback) (*store.Feedback, error) {
	fields := []string{"session_uid", "rating", "comment"}
	placeholderValues := []any{create.SessionUID, create.Rating, create.Comment}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO feedback (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	return create, nil
}

func (d *DB) ListFeedback(ctx context.Context, find *store.FindFeedback) ([]*store.Feedback, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "feedback.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SessionUID; v != nil {
		where, args = append(where, "feedback.session_uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, session_uid, rating, comment, created_ts
		FROM feedback
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY feedback.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Feedback, 0)
	for rows.Next() {
		var feedback store.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.SessionUID,
			&feedback.Rating,
			&feedback.Comment,
			&feedback.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		list = append(list, &feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}

	return list, nil
}
