package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mvpforge/mvpforge/store"
)

func (d *DB) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	completedStages, err := marshalStages(create.CompletedStages)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(create.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow data: %w", err)
	}
	history, err := marshalHistory(create.ConversationHistory)
	if err != nil {
		return nil, err
	}

	fields := []string{"uid", "current_stage", "completed_stages", "data", "conversation_history"}
	placeholderValues := []any{create.UID, create.CurrentStage, completedStages, string(data), history}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if create.CompletedStages == nil {
		create.CompletedStages = []store.Stage{}
	}
	if create.ConversationHistory == nil {
		create.ConversationHistory = []store.ConversationMessage{}
	}
	return create, nil
}

func (d *DB) ListSessions(ctx context.Context, find *store.FindSession) ([]*store.Session, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "session.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "session.uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, current_stage, completed_stages, data, conversation_history,
			created_ts, updated_ts
		FROM session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY session.updated_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*store.Session, error) {
	var session store.Session
	var completedStages, data, history string

	if err := row.Scan(
		&session.ID,
		&session.UID,
		&session.CurrentStage,
		&completedStages,
		&data,
		&history,
		&session.CreatedTs,
		&session.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	stages, err := unmarshalStages(completedStages)
	if err != nil {
		return nil, err
	}
	session.CompletedStages = stages

	if err := json.Unmarshal([]byte(data), &session.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow data: %w", err)
	}

	messages, err := unmarshalHistory(history)
	if err != nil {
		return nil, err
	}
	session.ConversationHistory = messages

	return &session, nil
}

func (d *DB) UpdateSession(ctx context.Context, update *store.UpdateSession) (*store.Session, error) {
	// Appending to the transcript needs the stored history first.
	var existing []store.ConversationMessage
	if len(update.AppendMessages) > 0 {
		current, err := d.ListSessions(ctx, &store.FindSession{UID: &update.UID})
		if err != nil {
			return nil, err
		}
		if len(current) == 0 {
			return nil, fmt.Errorf("session not found: %s", update.UID)
		}
		existing = current[0].ConversationHistory
	}

	set, args := []string{}, []any{}
	if v := update.CurrentStage; v != nil {
		set, args = append(set, "current_stage = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CompletedStages; v != nil {
		raw, err := marshalStages(*v)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "completed_stages = "+placeholder(len(args)+1)), append(args, raw)
	}
	if v := update.Data; v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal workflow data: %w", err)
		}
		set, args = append(set, "data = "+placeholder(len(args)+1)), append(args, string(raw))
	}
	if len(update.AppendMessages) > 0 {
		raw, err := marshalHistory(append(existing, update.AppendMessages...))
		if err != nil {
			return nil, err
		}
		set, args = append(set, "conversation_history = "+placeholder(len(args)+1)), append(args, raw)
	}

	updatedTs := time.Now().Unix()
	if v := update.UpdatedTs; v != nil {
		updatedTs = *v
	}
	set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, updatedTs)

	args = append(args, update.UID)
	stmt := `UPDATE session SET ` + strings.Join(set, ", ") + ` WHERE uid = ` + placeholder(len(args)) + `
		RETURNING id, uid, current_stage, completed_stages, data, conversation_history, created_ts, updated_ts`

	session, err := scanSession(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

func marshalHistory(messages []store.ConversationMessage) (string, error) {
	if messages == nil {
		messages = []store.ConversationMessage{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	return string(raw), nil
}

func unmarshalHistory(raw string) ([]store.ConversationMessage, error) {
	messages := []store.ConversationMessage{}
	if raw == "" {
		return messages, nil
	}
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}
