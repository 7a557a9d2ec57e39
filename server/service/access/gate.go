// Package access decides, per request, whether the wizard is usable for the
// current visitor based on the billing system's customer record.
package access

import (
	"context"
	"log/slog"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/store"
)

// Decision is the access gate outcome.
type Decision string

const (
	// DecisionAllow grants access.
	DecisionAllow Decision = "allow"
	// DecisionAccessRequired is shown when no customer id is present.
	DecisionAccessRequired Decision = "access_required"
	// DecisionNotFound is shown when the customer record does not exist or
	// could not be fetched.
	DecisionNotFound Decision = "not_found"
	// DecisionRenew prompts an expired customer to renew.
	DecisionRenew Decision = "renew"
	// DecisionUpgrade prompts paused/cancelled/unknown customers to upgrade.
	DecisionUpgrade Decision = "upgrade"
)

// Result carries the decision plus the display data the blocking screens
// need.
type Result struct {
	Decision   Decision `json:"decision"`
	CustomerID string   `json:"customerId,omitempty"`
	Plan       string   `json:"plan,omitempty"`
	// RemainingAttempts is surfaced for free-plan customers; it does not
	// gate access by itself.
	RemainingAttempts *int32 `json:"remainingAttempts,omitempty"`
}

// Allowed reports whether the wizard may be used.
func (r *Result) Allowed() bool {
	return r.Decision == DecisionAllow
}

// Gate is the single access gate implementation; the development bypass is a
// profile flag, not a second variant.
type Gate struct {
	store   *store.Store
	profile *profile.Profile
}

// NewGate creates an access gate.
func NewGate(s *store.Store, p *profile.Profile) *Gate {
	return &Gate{store: s, profile: p}
}

// Evaluate maps the customer's subscription status to a decision. Any error
// while fetching the record is treated identically to "not found" (fail
// closed).
func (g *Gate) Evaluate(ctx context.Context, customerID string) *Result {
	if g.profile.AccessBypass {
		return &Result{Decision: DecisionAllow, CustomerID: customerID}
	}

	if customerID == "" {
		return &Result{Decision: DecisionAccessRequired}
	}

	customer, err := g.store.GetCustomer(ctx, &store.FindCustomer{ID: &customerID})
	if err != nil {
		slog.Warn("customer lookup failed, denying access",
			"customer_id", customerID,
			"error", err)
		return &Result{Decision: DecisionNotFound, CustomerID: customerID}
	}
	if customer == nil {
		return &Result{Decision: DecisionNotFound, CustomerID: customerID}
	}

	result := &Result{
		CustomerID: customer.ID,
		Plan:       customer.Plan,
	}
	if customer.Plan == "free" {
		remaining := customer.RemainingAttempts()
		result.RemainingAttempts = &remaining
	}

	switch customer.SubscriptionStatus {
	case store.SubscriptionActive:
		result.Decision = DecisionAllow
	case store.SubscriptionExpired:
		result.Decision = DecisionRenew
	default:
		// paused, cancelled and anything unrecognized
		result.Decision = DecisionUpgrade
	}
	return result
}
