package store

// SubscriptionStatus mirrors the billing system's subscription state string.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Customer mirrors the external billing system's customer record. The wizard
// only reads it, except for the increment-attempt call issued when a new
// session starts. The billing system is responsible for flipping the status
// to expired when attempts run out.
type Customer struct {
	ID                 string
	SubscriptionStatus SubscriptionStatus
	Plan               string
	ActualAttempts     int32
	UsedAttempt        int32
	CreatedTs          int64
	UpdatedTs          int64
}

// RemainingAttempts is surfaced for free-plan customers. It never gates
// access by itself.
func (c *Customer) RemainingAttempts() int32 {
	remaining := c.ActualAttempts - c.UsedAttempt
	if remaining < 0 {
		return 0
	}
	return remaining
}

type FindCustomer struct {
	ID *string
}

type UpsertCustomer struct {
	ID                 string
	SubscriptionStatus SubscriptionStatus
	Plan               string
	ActualAttempts     int32
	UsedAttempt        int32
}
