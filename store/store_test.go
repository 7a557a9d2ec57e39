package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/store"
	"github.com/mvpforge/mvpforge/store/db/memory"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(memory.NewDB(), &profile.Profile{Mode: "dev", Driver: "memory"})
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestGetSessionByUID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.GetSessionByUID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	created, err := s.CreateSession(ctx, &store.Session{
		UID:          "sess-1",
		CurrentStage: store.StageProblemDiscovery,
	})
	require.NoError(t, err)

	got, err = s.GetSessionByUID(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.UID, got.UID)
}

func TestUpdateSessionRefreshesReads(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateSession(ctx, &store.Session{
		UID:          "sess-1",
		CurrentStage: store.StageProblemDiscovery,
	})
	require.NoError(t, err)

	// Read once so the session is cached.
	_, err = s.GetSessionByUID(ctx, "sess-1")
	require.NoError(t, err)

	next := store.StageMarketResearch
	_, err = s.UpdateSession(ctx, &store.UpdateSession{UID: "sess-1", CurrentStage: &next})
	require.NoError(t, err)

	// A subsequent read must see the update, not the stale cached copy.
	got, err := s.GetSessionByUID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, store.StageMarketResearch, got.CurrentStage)
}

func TestCustomerReadThrough(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id := "cust_123"
	got, err := s.GetCustomer(ctx, &store.FindCustomer{ID: &id})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.UpsertCustomer(ctx, &store.UpsertCustomer{
		ID:                 id,
		SubscriptionStatus: store.SubscriptionActive,
		Plan:               "free",
		ActualAttempts:     3,
	})
	require.NoError(t, err)

	got, err = s.GetCustomer(ctx, &store.FindCustomer{ID: &id})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, store.SubscriptionActive, got.SubscriptionStatus)

	bumped, err := s.IncrementCustomerAttempt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int32(1), bumped.UsedAttempt)

	// The increment is visible through the cache immediately.
	got, err = s.GetCustomer(ctx, &store.FindCustomer{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.UsedAttempt)
}
