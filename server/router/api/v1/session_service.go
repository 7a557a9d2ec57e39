package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/store"
)

// SessionResponse is the wire shape of a session.
type SessionResponse struct {
	UID                 string                      `json:"uid"`
	CurrentStage        store.Stage                 `json:"currentStage"`
	CompletedStages     []store.Stage               `json:"completedStages"`
	Data                store.WorkflowData          `json:"data"`
	ConversationHistory []store.ConversationMessage `json:"conversationHistory"`
	CreatedTs           int64                       `json:"createdTs"`
	UpdatedTs           int64                       `json:"updatedTs"`
}

func convertSession(session *store.Session) *SessionResponse {
	completed := session.CompletedStages
	if completed == nil {
		completed = []store.Stage{}
	}
	history := session.ConversationHistory
	if history == nil {
		history = []store.ConversationMessage{}
	}
	return &SessionResponse{
		UID:                 session.UID,
		CurrentStage:        session.CurrentStage,
		CompletedStages:     completed,
		Data:                session.Data,
		ConversationHistory: history,
		CreatedTs:           session.CreatedTs,
		UpdatedTs:           session.UpdatedTs,
	}
}

// CreateSessionRequest creates a new wizard session. The UID is optional;
// the server mints one when it is absent.
type CreateSessionRequest struct {
	UID string `json:"uid"`
}

// CreateSession handles POST /api/v1/sessions.
func (s *APIV1Service) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	request := &CreateSessionRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}

	uid := request.UID
	if uid == "" {
		uid = shortuuid.New()
	}

	// Re-opening an existing session is not an error; the frontend sends the
	// stored UID on every visit.
	if existing, err := s.Store.GetSessionByUID(ctx, uid); err != nil {
		return errorJSON(c, errors.Internal("failed to look up session", err))
	} else if existing != nil {
		return c.JSON(http.StatusOK, convertSession(existing))
	}

	session, err := s.Store.CreateSession(ctx, &store.Session{
		UID:          uid,
		CurrentStage: catalog.First(),
	})
	if err != nil {
		return errorJSON(c, errors.Internal("failed to create session", err))
	}

	// A fresh session consumes one attempt for metered customers. Attempt
	// accounting is best effort; the billing system reconciles.
	if customerID, ok := c.Get("customerID").(string); ok && customerID != "" {
		if _, err := s.Store.IncrementCustomerAttempt(ctx, customerID); err != nil {
			slog.Warn("failed to record session attempt",
				"customer_id", customerID,
				"error", err)
		}
	}

	return c.JSON(http.StatusCreated, convertSession(session))
}

// GetSession handles GET /api/v1/sessions/:id.
func (s *APIV1Service) GetSession(c echo.Context) error {
	session, err := s.findSession(c)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, convertSession(session))
}

// UpdateSessionRequest is the PATCH body. Op selects a navigation operation
// ("goto" or "reset"); when Op is empty the named fields are applied as a
// partial update.
type UpdateSessionRequest struct {
	Op    string      `json:"op"`
	Stage store.Stage `json:"stage"`

	CurrentStage    *store.Stage        `json:"currentStage"`
	CompletedStages *[]store.Stage      `json:"completedStages"`
	Data            *store.WorkflowData `json:"data"`
}

// UpdateSession handles PATCH /api/v1/sessions/:id.
func (s *APIV1Service) UpdateSession(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := s.findSession(c)
	if err != nil {
		return errorJSON(c, err)
	}

	request := &UpdateSessionRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}

	switch request.Op {
	case "goto":
		updated, err := s.Wizard.GoToStep(ctx, session, request.Stage)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, convertSession(updated))
	case "reset":
		updated, err := s.Wizard.ResetToStep(ctx, session, request.Stage)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, convertSession(updated))
	case "":
	default:
		return errorJSON(c, errors.InvalidArgument("unknown op: "+request.Op))
	}

	if request.CurrentStage != nil && !catalog.IsValid(*request.CurrentStage) {
		return errorJSON(c, errors.StageNotFound(string(*request.CurrentStage)))
	}
	if request.CompletedStages != nil {
		for _, stage := range *request.CompletedStages {
			if !catalog.IsValid(stage) {
				return errorJSON(c, errors.StageNotFound(string(stage)))
			}
		}
	}

	updated, err := s.Store.UpdateSession(ctx, &store.UpdateSession{
		UID:             session.UID,
		CurrentStage:    request.CurrentStage,
		CompletedStages: request.CompletedStages,
		Data:            request.Data,
	})
	if err != nil {
		return errorJSON(c, errors.Internal("failed to update session", err))
	}
	return c.JSON(http.StatusOK, convertSession(updated))
}

// findSession resolves the :id path parameter to a stored session.
func (s *APIV1Service) findSession(c echo.Context) (*store.Session, error) {
	uid := c.Param("id")
	if uid == "" {
		return nil, errors.InvalidArgument("missing session id")
	}

	session, err := s.Store.GetSessionByUID(c.Request().Context(), uid)
	if err != nil {
		return nil, errors.Internal("failed to look up session", err)
	}
	if session == nil {
		return nil, errors.SessionNotFound(uid)
	}
	return session, nil
}
