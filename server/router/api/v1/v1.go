// Package v1 exposes the wizard over plain JSON HTTP.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/plugin/ai"
	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/server/middleware"
	"github.com/mvpforge/mvpforge/server/service/access"
	"github.com/mvpforge/mvpforge/server/service/export"
	"github.com/mvpforge/mvpforge/server/service/wizard"
	"github.com/mvpforge/mvpforge/store"
)

// customerIDHeader carries the billing customer id on gated requests.
const customerIDHeader = "X-Customer-Id"

// webhookKeyHeader authenticates billing-system upserts.
const webhookKeyHeader = "X-Webhook-Key"

// APIV1Service groups the v1 route handlers and their dependencies.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Wizard  *wizard.Service
	Gate    *access.Gate
	Export  *export.Service

	generateLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(p *profile.Profile, s *store.Store, generator *ai.Generator) *APIV1Service {
	return &APIV1Service{
		Profile: p,
		Store:   s,
		Wizard:  wizard.NewService(s, generator),
		Gate:    access.NewGate(s, p),
		Export:  export.NewService(),
		// One generation every 2s with a burst of 5, per customer.
		generateLimiter: middleware.NewRateLimiter(2*time.Second, 5),
	}
}

// RegisterRoutes registers all v1 routes on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	// Ungated routes.
	g.GET("/health", s.GetHealth)
	g.GET("/integrations/status", s.GetIntegrationsStatus)
	g.GET("/system/metrics", s.GetMetrics)
	g.GET("/stages", s.ListStages)
	g.POST("/feedback", s.CreateFeedback)
	g.GET("/feedback", s.ListFeedback)
	g.GET("/customers/:id", s.GetCustomer)
	g.PUT("/customers/:id", s.UpsertCustomer)
	g.POST("/customers/:id/increment-attempt", s.IncrementCustomerAttempt)

	// Wizard routes behind the access gate.
	gated := g.Group("", s.accessGate)
	gated.POST("/sessions", s.CreateSession)
	gated.GET("/sessions/:id", s.GetSession)
	gated.PATCH("/sessions/:id", s.UpdateSession)
	gated.POST("/sessions/:id/stages/:stage", s.GenerateStage)
	gated.GET("/sessions/:id/graph/:kind", s.GetSessionGraph)
	gated.POST("/sessions/:id/export", s.ExportSession)
}

// accessGate blocks wizard routes for visitors without an active
// subscription. The decision payload gives the frontend enough to render the
// matching blocking screen.
func (s *APIV1Service) accessGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		customerID := c.Request().Header.Get(customerIDHeader)
		if customerID == "" {
			customerID = c.QueryParam("customerId")
		}

		result := s.Gate.Evaluate(c.Request().Context(), customerID)
		if !result.Allowed() {
			return c.JSON(http.StatusForbidden, map[string]any{
				"error":  string(errors.ErrCodeAccessDenied),
				"access": result,
			})
		}

		c.Set("customerID", customerID)
		return next(c)
	}
}

// errorJSON maps a wizard error to its HTTP response.
func errorJSON(c echo.Context, err error) error {
	code := errors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidArgument, errors.ErrCodeValidation:
		status = http.StatusBadRequest
	case errors.ErrCodeSessionNotFound, errors.ErrCodeStageNotFound, errors.ErrCodeCustomerNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeAccessDenied:
		status = http.StatusForbidden
	case errors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case errors.ErrCodeGenerationFailed:
		status = http.StatusBadGateway
	}

	return c.JSON(status, map[string]string{
		"error":   string(code),
		"message": err.Error(),
	})
}
