package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvpforge/mvpforge/plugin/graph"
	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/store"
)

// StageDefResponse is the wire shape of a catalog entry.
type StageDefResponse struct {
	ID          store.Stage           `json:"id"`
	Title       string                `json:"title"`
	Concept     string                `json:"concept"`
	ArtifactKey string                `json:"artifactKey,omitempty"`
	Inputs      []catalog.InputField  `json:"inputs,omitempty"`
	Rubric      []string              `json:"rubric,omitempty"`
	Outputs     []catalog.OutputField `json:"outputs,omitempty"`
	DependsOn   []store.Stage         `json:"dependsOn,omitempty"`
}

// ListStages handles GET /api/v1/stages. The catalog is static, so the
// response is the same for every caller.
func (s *APIV1Service) ListStages(c echo.Context) error {
	defs := catalog.Stages()
	response := make([]StageDefResponse, 0, len(defs))
	for _, def := range defs {
		response = append(response, StageDefResponse{
			ID:          def.ID,
			Title:       def.Title,
			Concept:     def.Concept,
			ArtifactKey: def.ArtifactKey,
			Inputs:      def.Inputs,
			Rubric:      def.Rubric,
			Outputs:     def.Outputs,
			DependsOn:   def.DependsOn,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// GenerateStageRequest carries the user's stage input.
type GenerateStageRequest struct {
	Input map[string]string `json:"input"`
}

// GenerateStage handles POST /api/v1/sessions/:id/stages/:stage. For
// artifact-producing stages it runs generation and completes the stage in one
// call; for export and feedback it only records completion.
func (s *APIV1Service) GenerateStage(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := s.findSession(c)
	if err != nil {
		return errorJSON(c, err)
	}

	stageID := store.Stage(c.Param("stage"))
	def, ok := catalog.Lookup(stageID)
	if !ok {
		return errorJSON(c, errors.StageNotFound(string(stageID)))
	}

	if !def.ProducesArtifact() {
		updated, err := s.Wizard.CompleteStage(ctx, session, stageID, nil)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, convertSession(updated))
	}

	limiterKey := session.UID
	if customerID, ok := c.Get("customerID").(string); ok && customerID != "" {
		limiterKey = customerID
	}
	if !s.generateLimiter.Allow(limiterKey) {
		return errorJSON(c, errors.RateLimitExceeded("too many generation requests"))
	}

	request := &GenerateStageRequest{}
	if err := c.Bind(request); err != nil {
		return errorJSON(c, errors.InvalidArgument("malformed request body"))
	}

	updated, err := s.Wizard.GenerateAndComplete(ctx, session, stageID, request.Input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, convertSession(updated))
}

// GetSessionGraph handles GET /api/v1/sessions/:id/graph/:kind.
func (s *APIV1Service) GetSessionGraph(c echo.Context) error {
	session, err := s.findSession(c)
	if err != nil {
		return errorJSON(c, err)
	}

	switch c.Param("kind") {
	case graph.KindRootCause:
		return c.JSON(http.StatusOK, graph.BuildRootCauseGraph(session.Data.RootCause))
	case graph.KindCompetitors:
		return c.JSON(http.StatusOK, graph.BuildCompetitorGraph(session.Data.CompetitorAnalysis))
	default:
		return errorJSON(c, errors.InvalidArgument("unknown graph kind: "+c.Param("kind")))
	}
}
