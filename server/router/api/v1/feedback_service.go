package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/store"
)

// CreateFeedbackRequest is one feedback submission. Repeat submissions from
// the same session each create a new row.
type CreateFeedbackRequest struct {
	SessionUID string `json:"sessionUid"`
	Rating     int32  `json:"rating"`
	Comment    string `json:"comment"`
}

// FeedbackResponse is the wire shape of a feedback row.
type FeedbackResponse struct {
	ID         int32  `json:"id"`
	SessionUID string `json:"sessionUid"`
	Rating     int32  `json:"rating"`
	Comment    string `json:"comment"`
	CreatedTs  int64  `json:"createdTs"`
}

// ListFeedback handles GET /api/v1/feedback. An optional sessionUid query
// parameter narrows the list to one session.
func (s *APIV1Service) ListFeedback(c echo.Context) error {
	find := &store.FindFeedback{}
	if uid := c.QueryParam("sessionUid"); uid != "" {
		find.SessionUID = &uid
	}
	limit := 100
	find.Limit = &limit

	rows, err := s.Store.ListFeedback(c.Request().Context(), find)
	if err != nil {
		return errorJSON(c, errors.Internal("failed to list feedback", err))
	}

	response := make([]FeedbackResponse, 0, len(rows))
	for _, f := range rows {
		response = append(response, FeedbackResponse{
			ID:         f.ID,
			SessionUID: f.SessionUID,
			Rating:     f.Rating,
			Comment:    f.Comment,
			CreatedTs:  f.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// CreateFeedback handles POST /api/v1/feedback.
func (s *APIV1Service) CreateFeedback(c echo.Context) error {
	request := &CreateFeedbackRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}

	if request.Rating < 1 || request.Rating > 5 {
		return errorJSON(c, errors.Validation("rating must be between 1 and 5"))
	}
	if request.SessionUID == "" {
		return errorJSON(c, errors.Validation("missing sessionUid"))
	}

	feedback, err := s.Store.CreateFeedback(c.Request().Context(), &store.Feedback{
		SessionUID: request.SessionUID,
		Rating:     request.Rating,
		Comment:    request.Comment,
	})
	if err != nil {
		return errorJSON(c, errors.Internal("failed to save feedback", err))
	}

	return c.JSON(http.StatusCreated, &FeedbackResponse{
		ID:         feedback.ID,
		SessionUID: feedback.SessionUID,
		Rating:     feedback.Rating,
		Comment:    feedback.Comment,
		CreatedTs:  feedback.CreatedTs,
	})
}
