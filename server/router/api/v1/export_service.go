package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/server/service/export"
)

// ExportSessionRequest selects the export format; markdown when omitted.
type ExportSessionRequest struct {
	Format export.Format `json:"format"`
}

// ExportSession handles POST /api/v1/sessions/:id/export.
func (s *APIV1Service) ExportSession(c echo.Context) error {
	session, err := s.findSession(c)
	if err != nil {
		return errorJSON(c, err)
	}

	request := &ExportSessionRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}

	body, contentType, err := s.Export.Render(session, request.Format)
	if err != nil {
		return errorJSON(c, errors.InvalidArgument(err.Error()))
	}

	ext := "md"
	if request.Format == export.FormatHTML {
		ext = "html"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="mvp-plan-%s.%s"`, session.UID, ext))
	return c.Blob(http.StatusOK, contentType, body)
}
