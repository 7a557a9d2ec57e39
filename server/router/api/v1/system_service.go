package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/server/internal/observability"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// GetHealth handles GET /api/v1/health.
func (s *APIV1Service) GetHealth(c echo.Context) error {
	status := "ok"
	if db := s.Store.GetDriver().GetDB(); db != nil {
		if err := db.PingContext(c.Request().Context()); err != nil {
			status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  status,
		Version: s.Profile.Version,
		Mode:    s.Profile.Mode,
	})
}

// IntegrationsStatusResponse reports which external integrations are
// configured. Booleans only; no keys or endpoints leave the server.
type IntegrationsStatusResponse struct {
	LLM      bool   `json:"llm"`
	LLMModel string `json:"llmModel,omitempty"`
	Database string `json:"database"`
	Billing  bool   `json:"billing"`
}

// GetIntegrationsStatus handles GET /api/v1/integrations/status.
func (s *APIV1Service) GetIntegrationsStatus(c echo.Context) error {
	response := IntegrationsStatusResponse{
		LLM:      s.Profile.IsLLMEnabled(),
		Database: s.Profile.Driver,
		Billing:  s.Profile.BillingWebhookKey != "",
	}
	if response.LLM {
		response.LLMModel = s.Profile.LLMModel
	}
	return c.JSON(http.StatusOK, response)
}

// StageMetricsResponse is the per-stage generation breakdown.
type StageMetricsResponse struct {
	Generations int64 `json:"generations"`
	Fallbacks   int64 `json:"fallbacks"`
}

// MetricsResponse summarizes generation activity since process start.
type MetricsResponse struct {
	GenerationTotal  int64                           `json:"generationTotal"`
	GenerationFailed int64                           `json:"generationFailed"`
	FallbackTotal    int64                           `json:"fallbackTotal"`
	Stages           map[string]StageMetricsResponse `json:"stages"`
}

// GetMetrics handles GET /api/v1/system/metrics.
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	metrics := observability.GlobalMetrics()
	total, failed, fallback := metrics.Snapshot()

	stages := make(map[string]StageMetricsResponse)
	for _, def := range catalog.Stages() {
		if !def.ProducesArtifact() {
			continue
		}
		generations, fallbacks := metrics.StageSnapshot(string(def.ID))
		if generations == 0 && fallbacks == 0 {
			continue
		}
		stages[string(def.ID)] = StageMetricsResponse{
			Generations: generations,
			Fallbacks:   fallbacks,
		}
	}

	return c.JSON(http.StatusOK, MetricsResponse{
		GenerationTotal:  total,
		GenerationFailed: failed,
		FallbackTotal:    fallback,
		Stages:           stages,
	})
}
