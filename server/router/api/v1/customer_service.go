package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/store"
)

// CustomerResponse is the wire shape of a billing customer record.
type CustomerResponse struct {
	ID                 string                   `json:"id"`
	SubscriptionStatus store.SubscriptionStatus `json:"subscriptionStatus"`
	Plan               string                   `json:"plan"`
	ActualAttempts     int32                    `json:"actualAttempts"`
	UsedAttempt        int32                    `json:"usedAttempt"`
	RemainingAttempts  int32                    `json:"remainingAttempts"`
}

func convertCustomer(customer *store.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:                 customer.ID,
		SubscriptionStatus: customer.SubscriptionStatus,
		Plan:               customer.Plan,
		ActualAttempts:     customer.ActualAttempts,
		UsedAttempt:        customer.UsedAttempt,
		RemainingAttempts:  customer.RemainingAttempts(),
	}
}

// GetCustomer handles GET /api/v1/customers/:id.
func (s *APIV1Service) GetCustomer(c echo.Context) error {
	id := c.Param("id")

	customer, err := s.Store.GetCustomer(c.Request().Context(), &store.FindCustomer{ID: &id})
	if err != nil {
		return errorJSON(c, errors.Internal("failed to look up customer", err))
	}
	if customer == nil {
		// The not-found body echoes the requested id so the frontend can show
		// it on the blocking screen.
		return errorJSON(c, errors.CustomerNotFound(id))
	}
	return c.JSON(http.StatusOK, convertCustomer(customer))
}

// UpsertCustomerRequest mirrors the billing system's webhook payload.
type UpsertCustomerRequest struct {
	SubscriptionStatus store.SubscriptionStatus `json:"subscriptionStatus"`
	Plan               string                   `json:"plan"`
	ActualAttempts     int32                    `json:"actualAttempts"`
	UsedAttempt        int32                    `json:"usedAttempt"`
}

// UpsertCustomer handles PUT /api/v1/customers/:id. Only the billing system
// calls this, authenticated with the shared webhook key.
func (s *APIV1Service) UpsertCustomer(c echo.Context) error {
	key := c.Request().Header.Get(webhookKeyHeader)
	if s.Profile.BillingWebhookKey == "" ||
		subtle.ConstantTimeCompare([]byte(key), []byte(s.Profile.BillingWebhookKey)) != 1 {
		return errorJSON(c, errors.AccessDenied("invalid webhook key"))
	}

	request := &UpsertCustomerRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}

	customer, err := s.Store.UpsertCustomer(c.Request().Context(), &store.UpsertCustomer{
		ID:                 c.Param("id"),
		SubscriptionStatus: request.SubscriptionStatus,
		Plan:               request.Plan,
		ActualAttempts:     request.ActualAttempts,
		UsedAttempt:        request.UsedAttempt,
	})
	if err != nil {
		return errorJSON(c, errors.Internal("failed to upsert customer", err))
	}
	return c.JSON(http.StatusOK, convertCustomer(customer))
}

// IncrementCustomerAttempt handles POST /api/v1/customers/:id/increment-attempt.
func (s *APIV1Service) IncrementCustomerAttempt(c echo.Context) error {
	id := c.Param("id")

	customer, err := s.Store.IncrementCustomerAttempt(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, errors.CustomerNotFound(id))
	}
	return c.JSON(http.StatusOK, convertCustomer(customer))
}
