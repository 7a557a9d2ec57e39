package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvpforge/mvpforge/internal/profile"
	"github.com/mvpforge/mvpforge/plugin/ai"
	"github.com/mvpforge/mvpforge/store"
	"github.com/mvpforge/mvpforge/store/db/memory"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(_ context.Context, _ []ai.Message) (string, error) {
	return f.response, f.err
}

type testEnv struct {
	echo    *echo.Echo
	store   *store.Store
	service *APIV1Service
}

func newTestEnv(t *testing.T, p *profile.Profile, llm ai.LLMService) *testEnv {
	t.Helper()

	if p == nil {
		p = &profile.Profile{Mode: "dev", Driver: "memory", AccessBypass: true, Version: "test"}
	}
	s := store.New(memory.NewDB(), p)
	t.Cleanup(func() {
		_ = s.Close()
	})

	service := NewAPIV1Service(p, s, ai.NewGenerator(llm, 2))
	e := echo.New()
	service.RegisterRoutes(e)

	return &testEnv{echo: e, store: s, service: service}
}

func (env *testEnv) request(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) *SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.request(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestIntegrationsStatus(t *testing.T) {
	p := &profile.Profile{
		Mode: "dev", Driver: "memory", AccessBypass: true,
		LLMAPIKey: "sk-test", LLMModel: "gpt-4o-mini",
		BillingWebhookKey: "hook",
	}
	env := newTestEnv(t, p, nil)

	rec := env.request(t, http.MethodGet, "/api/v1/integrations/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp IntegrationsStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.LLM)
	assert.Equal(t, "gpt-4o-mini", resp.LLMModel)
	assert.Equal(t, "memory", resp.Database)
	assert.True(t, resp.Billing)
}

func TestListStages(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.request(t, http.MethodGet, "/api/v1/stages", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []StageDefResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 10)
	assert.Equal(t, store.StageProblemDiscovery, resp[0].ID)
	assert.Equal(t, store.StageFeedback, resp[9].ID)
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.request(t, http.MethodPost, "/api/v1/sessions", `{}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeSession(t, rec)
	assert.NotEmpty(t, created.UID)
	assert.Equal(t, store.StageProblemDiscovery, created.CurrentStage)
	assert.Empty(t, created.CompletedStages)

	t.Run("create with existing uid returns the session", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/sessions", fmt.Sprintf(`{"uid":%q}`, created.UID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.UID, decodeSession(t, rec).UID)
	})

	t.Run("get", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/sessions/"+created.UID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.UID, decodeSession(t, rec).UID)
	})

	t.Run("get unknown", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/sessions/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("patch goto", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/api/v1/sessions/"+created.UID, `{"op":"goto","stage":"icp"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, store.StageICP, decodeSession(t, rec).CurrentStage)
	})

	t.Run("patch reset", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/api/v1/sessions/"+created.UID, `{"op":"reset","stage":"problem-discovery"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, store.StageProblemDiscovery, decodeSession(t, rec).CurrentStage)
	})

	t.Run("patch unknown op", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/api/v1/sessions/"+created.UID, `{"op":"teleport"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patch invalid stage", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/api/v1/sessions/"+created.UID, `{"currentStage":"bogus"}`, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGenerateStage(t *testing.T) {
	llm := &fakeLLM{response: `{"original":"x","refined":"Track inventory daily","audience":"managers","impact":"30% waste","keyPains":["manual counts"]}`}
	env := newTestEnv(t, nil, llm)

	rec := env.request(t, http.MethodPost, "/api/v1/sessions", `{"uid":"sess-1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := `{"input":{"problem":"Restaurants waste 30% of food due to poor inventory tracking"}}`
	rec = env.request(t, http.MethodPost, "/api/v1/sessions/sess-1/stages/problem-discovery", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	session := decodeSession(t, rec)
	assert.Equal(t, store.StageMarketResearch, session.CurrentStage)
	require.NotNil(t, session.Data.ProblemStatement)
	assert.Equal(t, "Track inventory daily", session.Data.ProblemStatement.Refined)

	t.Run("validation failure", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/sessions/sess-1/stages/market-research", `{"input":{}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown stage", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/sessions/sess-1/stages/bogus", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("export stage completes without generation", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/api/v1/sessions/sess-1", `{"op":"goto","stage":"export"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.request(t, http.MethodPost, "/api/v1/sessions/sess-1/stages/export", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		session := decodeSession(t, rec)
		assert.Contains(t, session.CompletedStages, store.StageExport)
	})
}

func TestSessionGraph(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, err := env.store.CreateSession(context.Background(), &store.Session{
		UID:          "sess-g",
		CurrentStage: store.StageCompetitorAnalysis,
		Data: store.WorkflowData{
			RootCause: &store.RootCause{
				Problem:      "waste",
				PrimaryCause: "no tracking",
				Causes:       []store.CauseNode{{Label: "no tracking"}},
			},
		},
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/sessions/sess-g/graph/root-cause", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var g struct {
		Kind  string `json:"kind"`
		Nodes []any  `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, "root-cause", g.Kind)
	assert.Len(t, g.Nodes, 2)

	t.Run("competitors graph on empty data", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/sessions/sess-g/graph/competitors", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown kind", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/sessions/sess-g/graph/mindmap", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportSession(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, err := env.store.CreateSession(context.Background(), &store.Session{
		UID:          "sess-e",
		CurrentStage: store.StageExport,
		Data: store.WorkflowData{
			ProblemStatement: &store.ProblemStatement{Refined: "a refined problem"},
		},
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodPost, "/api/v1/sessions/sess-e/export", `{"format":"markdown"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "mvp-plan-sess-e.md")
	assert.Contains(t, rec.Body.String(), "a refined problem")

	rec = env.request(t, http.MethodPost, "/api/v1/sessions/sess-e/export", `{"format":"html"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1")
}

func TestFeedback(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.request(t, http.MethodPost, "/api/v1/feedback", `{"sessionUid":"sess-1","rating":4,"comment":"useful"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp FeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int32(4), resp.Rating)
	assert.NotZero(t, resp.ID)

	t.Run("rating out of range", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/feedback", `{"sessionUid":"sess-1","rating":6}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing session uid", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/feedback", `{"rating":3}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list filters by session", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/feedback", `{"sessionUid":"sess-2","rating":2}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.request(t, http.MethodGet, "/api/v1/feedback?sessionUid=sess-1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []FeedbackResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "sess-1", rows[0].SessionUID)
	})
}

func TestCustomerEndpoints(t *testing.T) {
	p := &profile.Profile{Mode: "dev", Driver: "memory", AccessBypass: true, BillingWebhookKey: "hook"}
	env := newTestEnv(t, p, nil)

	t.Run("not found echoes the requested id", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/customers/cust_123", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "cust_123")
	})

	t.Run("upsert requires the webhook key", func(t *testing.T) {
		body := `{"subscriptionStatus":"active","plan":"free","actualAttempts":3}`
		rec := env.request(t, http.MethodPut, "/api/v1/customers/cust_123", body, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(t, http.MethodPut, "/api/v1/customers/cust_123", body, map[string]string{"X-Webhook-Key": "hook"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "cust_123", resp.ID)
		assert.Equal(t, int32(3), resp.RemainingAttempts)
	})

	t.Run("increment attempt", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/customers/cust_123/increment-attempt", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int32(1), resp.UsedAttempt)
	})
}

func TestAccessGateMiddleware(t *testing.T) {
	p := &profile.Profile{Mode: "prod", Driver: "memory"}
	env := newTestEnv(t, p, nil)

	t.Run("anonymous blocked", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "access_required")
	})

	t.Run("unknown customer blocked", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{"X-Customer-Id": "cust_x"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_found")
	})

	t.Run("active customer passes and consumes an attempt", func(t *testing.T) {
		_, err := env.store.UpsertCustomer(context.Background(), &store.UpsertCustomer{
			ID:                 "cust_ok",
			SubscriptionStatus: store.SubscriptionActive,
			Plan:               "free",
			ActualAttempts:     3,
		})
		require.NoError(t, err)

		rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{"X-Customer-Id": "cust_ok"})
		require.Equal(t, http.StatusCreated, rec.Code)

		customer, err := env.store.IncrementCustomerAttempt(context.Background(), "cust_ok")
		require.NoError(t, err)
		// One attempt from session creation plus the explicit bump.
		assert.Equal(t, int32(2), customer.UsedAttempt)
	})

	t.Run("expired customer blocked with renew", func(t *testing.T) {
		_, err := env.store.UpsertCustomer(context.Background(), &store.UpsertCustomer{
			ID:                 "cust_old",
			SubscriptionStatus: store.SubscriptionExpired,
			Plan:               "pro",
		})
		require.NoError(t, err)

		rec := env.request(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{"X-Customer-Id": "cust_old"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "renew")
	})

	t.Run("health stays open", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
