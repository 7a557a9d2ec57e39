package store

import (
	"context"
	"time"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Caches
	sessionCache  *cache.Cache // cache for sessions, keyed by UID
	customerCache *cache.Cache // cache for customer records
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:        driver,
		profile:       profile,
		sessionCache:  cache.New(cacheConfig),
		customerCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.sessionCache.Close()
	s.customerCache.Close()

	return s.driver.Close()
}

func (s *Store) CreateSession(ctx context.Context, create *Session) (*Session, error) {
	session, err := s.driver.CreateSession(ctx, create)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(session.UID, session)
	return session, nil
}

// GetSessionByUID returns the session with the given UID, or nil when it does
// not exist.
func (s *Store) GetSessionByUID(ctx context.Context, uid string) (*Session, error) {
	if cached, ok := s.sessionCache.Get(uid); ok {
		if session, ok := cached.(*Session); ok {
			return session, nil
		}
	}

	sessions, err := s.driver.ListSessions(ctx, &FindSession{UID: &uid})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	s.sessionCache.Set(uid, sessions[0])
	return sessions[0], nil
}

func (s *Store) ListSessions(ctx context.Context, find *FindSession) ([]*Session, error) {
	return s.driver.ListSessions(ctx, find)
}

func (s *Store) UpdateSession(ctx context.Context, update *UpdateSession) (*Session, error) {
	session, err := s.driver.UpdateSession(ctx, update)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(session.UID, session)
	return session, nil
}

func (s *Store) CreateFeedback(ctx context.Context, create *Feedback) (*Feedback, error) {
	return s.driver.CreateFeedback(ctx, create)
}

func (s *Store) ListFeedback(ctx context.Context, find *FindFeedback) ([]*Feedback, error) {
	return s.driver.ListFeedback(ctx, find)
}

func (s *Store) UpsertCustomer(ctx context.Context, upsert *UpsertCustomer) (*Customer, error) {
	customer, err := s.driver.UpsertCustomer(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.customerCache.SetWithTTL(customer.ID, customer, 30*time.Second)
	return customer, nil
}

// GetCustomer returns the customer record, or nil when it does not exist.
// Hits are cached briefly; the billing system mutates these rows out of
// band, so the TTL is kept short.
func (s *Store) GetCustomer(ctx context.Context, find *FindCustomer) (*Customer, error) {
	if find.ID != nil {
		if cached, ok := s.customerCache.Get(*find.ID); ok {
			if customer, ok := cached.(*Customer); ok {
				return customer, nil
			}
		}
	}

	customer, err := s.driver.GetCustomer(ctx, find)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		s.customerCache.SetWithTTL(customer.ID, customer, 30*time.Second)
	}
	return customer, nil
}

func (s *Store) IncrementCustomerAttempt(ctx context.Context, id string) (*Customer, error) {
	customer, err := s.driver.IncrementCustomerAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	s.customerCache.SetWithTTL(customer.ID, customer, 30*time.Second)
	return customer, nil
}
