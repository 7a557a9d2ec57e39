// Package memory implements store.Driver on plain maps. It is the default
// when no DSN is configured and doubles as the testing store.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mvpforge/mvpforge/store"
)

type DB struct {
	mu sync.RWMutex

	nextSessionID  int32
	nextFeedbackID int32
	sessions       map[string]*store.Session // keyed by UID
	feedback       []*store.Feedback
	customers      map[string]*store.Customer
}

func NewDB() store.Driver {
	return &DB{
		nextSessionID:  1,
		nextFeedbackID: 1,
		sessions:       make(map[string]*store.Session),
		customers:      make(map[string]*store.Customer),
	}
}

func (d *DB) GetDB() *sql.DB {
	return nil
}

func (d *DB) Close() error {
	return nil
}

// cloneSession deep-copies through JSON so callers never share state with the
// stored record. This also mirrors what the SQL drivers do on every
// round-trip.
func cloneSession(s *store.Session) (*store.Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to clone session")
	}
	var out store.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "failed to clone session")
	}
	if out.CompletedStages == nil {
		out.CompletedStages = []store.Stage{}
	}
	if out.ConversationHistory == nil {
		out.ConversationHistory = []store.ConversationMessage{}
	}
	return &out, nil
}

func (d *DB) CreateSession(_ context.Context, create *store.Session) (*store.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[create.UID]; ok {
		return nil, errors.Errorf("session already exists: %s", create.UID)
	}

	now := time.Now().Unix()
	create.ID = d.nextSessionID
	d.nextSessionID++
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}

	stored, err := cloneSession(create)
	if err != nil {
		return nil, err
	}
	d.sessions[create.UID] = stored

	return cloneSession(stored)
}

func (d *DB) ListSessions(_ context.Context, find *store.FindSession) ([]*store.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := make([]*store.Session, 0)
	for _, s := range d.sessions {
		if find.ID != nil && s.ID != *find.ID {
			continue
		}
		if find.UID != nil && s.UID != *find.UID {
			continue
		}
		cloned, err := cloneSession(s)
		if err != nil {
			return nil, err
		}
		list = append(list, cloned)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedTs > list[j].UpdatedTs
	})

	if find.Offset != nil && *find.Offset < len(list) {
		list = list[*find.Offset:]
	} else if find.Offset != nil {
		list = nil
	}
	if find.Limit != nil && *find.Limit < len(list) {
		list = list[:*find.Limit]
	}

	return list, nil
}

func (d *DB) UpdateSession(_ context.Context, update *store.UpdateSession) (*store.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.sessions[update.UID]
	if !ok {
		return nil, errors.Errorf("session not found: %s", update.UID)
	}

	if v := update.CurrentStage; v != nil {
		existing.CurrentStage = *v
	}
	if v := update.CompletedStages; v != nil {
		existing.CompletedStages = append([]store.Stage{}, (*v)...)
	}
	if v := update.Data; v != nil {
		existing.Data = *v
	}
	if len(update.AppendMessages) > 0 {
		existing.ConversationHistory = append(existing.ConversationHistory, update.AppendMessages...)
	}
	if v := update.UpdatedTs; v != nil {
		existing.UpdatedTs = *v
	} else {
		existing.UpdatedTs = time.Now().Unix()
	}

	return cloneSession(existing)
}

func (d *DB) CreateFeedback(_ context.Context, create *store.Feedback) (*store.Feedback, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	create.ID = d.nextFeedbackID
	d.nextFeedbackID++
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stored := *create
	d.feedback = append(d.feedback, &stored)

	out := stored
	return &out, nil
}

func (d *DB) ListFeedback(_ context.Context, find *store.FindFeedback) ([]*store.Feedback, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := make([]*store.Feedback, 0)
	for _, f := range d.feedback {
		if find.ID != nil && f.ID != *find.ID {
			continue
		}
		if find.SessionUID != nil && f.SessionUID != *find.SessionUID {
			continue
		}
		out := *f
		list = append(list, &out)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedTs > list[j].CreatedTs
	})

	if find.Limit != nil && *find.Limit < len(list) {
		list = list[:*find.Limit]
	}

	return list, nil
}

func (d *DB) UpsertCustomer(_ context.Context, upsert *store.UpsertCustomer) (*store.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().Unix()
	existing, ok := d.customers[upsert.ID]
	if !ok {
		existing = &store.Customer{ID: upsert.ID, CreatedTs: now}
		d.customers[upsert.ID] = existing
	}
	existing.SubscriptionStatus = upsert.SubscriptionStatus
	existing.Plan = upsert.Plan
	existing.ActualAttempts = upsert.ActualAttempts
	existing.UsedAttempt = upsert.UsedAttempt
	existing.UpdatedTs = now

	out := *existing
	return &out, nil
}

func (d *DB) GetCustomer(_ context.Context, find *store.FindCustomer) (*store.Customer, error) {
	if find.ID == nil {
		return nil, errors.New("customer id is required")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	existing, ok := d.customers[*find.ID]
	if !ok {
		return nil, nil
	}
	out := *existing
	return &out, nil
}

func (d *DB) IncrementCustomerAttempt(_ context.Context, id string) (*store.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.customers[id]
	if !ok {
		return nil, errors.Errorf("customer not found: %s", id)
	}
	existing.UsedAttempt++
	existing.UpdatedTs = time.Now().Unix()

	out := *existing
	return &out, nil
}
