package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvpforge/mvpforge/store"
)

func planSession() *store.Session {
	return &store.Session{
		UID: "sess-abc",
		CompletedStages: []store.Stage{
			store.StageProblemDiscovery,
			store.StageMarketResearch,
		},
		Data: store.WorkflowData{
			ProblemStatement: &store.ProblemStatement{
				Original: "Restaurants waste 30% of food due to poor inventory tracking",
				Refined:  "Independent restaurants lose a third of stock to untracked spoilage",
				Audience: "Restaurant managers",
				Impact:   "30% of food cost written off",
				KeyPains: []string{"manual counts", "no spoilage alerts"},
			},
			MarketResearch: &store.MarketResearch{
				MarketSize: "$2B annually",
				Summary:    "A growing niche.",
				Trends:     []string{"margin pressure"},
			},
			Requirements: &store.Requirements{
				Functional: []store.Requirement{
					{ID: "R1", Title: "Stock entry", Description: "Record deliveries"},
				},
				NonFunctional: []store.Requirement{
					{ID: "R2", Title: "Speed", Description: "Entry under 10s"},
				},
			},
			Prioritization: &store.Prioritization{
				Method: "moscow",
				Items: []store.PrioritizedItem{
					{RequirementID: "R1", Score: 9, Tier: "must", Rationale: "core loop"},
				},
				MVP: []string{"R1"},
			},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	svc := NewService()

	body, contentType, err := svc.Render(planSession(), FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=utf-8", contentType)

	doc := string(body)
	assert.Contains(t, doc, "# MVP Plan")
	assert.Contains(t, doc, "sess-abc")
	assert.Contains(t, doc, "Independent restaurants lose a third of stock")
	assert.Contains(t, doc, "Restaurants waste 30% of food")
	assert.Contains(t, doc, "$2B annually")
	assert.Contains(t, doc, "R1")
	assert.Contains(t, doc, "Problem Discovery, Market Research")

	// Stages without artifacts leave no empty sections behind.
	assert.NotContains(t, doc, "## Root Cause")
	assert.NotContains(t, doc, "## Ideal Customer")

	// The document sticks to ASCII punctuation.
	assert.NotContains(t, doc, "\u2014")
}

func TestRenderPersonaAndUseCase(t *testing.T) {
	svc := NewService()

	session := planSession()
	session.Data.ICP = &store.ICP{
		Persona:     "Maria",
		Role:        "owner-operator",
		CompanySize: "1-10",
		Pains:       []string{"no time for counts"},
	}
	session.Data.UseCase = &store.UseCase{
		Title:    "Log a delivery",
		Actor:    "Maria",
		Scenario: "A produce delivery arrives mid-shift.",
		Steps:    []string{"scan invoice", "confirm quantities"},
		Outcome:  "Stock levels stay current.",
	}

	body, _, err := svc.Render(session, FormatMarkdown)
	require.NoError(t, err)

	doc := string(body)
	assert.Contains(t, doc, "Maria: owner-operator at a 1-10 company.")
	assert.Contains(t, doc, "**Log a delivery** (Maria)")
	assert.Contains(t, doc, "1. scan invoice")
	assert.NotContains(t, doc, "\u2014")
}

func TestRenderMarkdownDefaultFormat(t *testing.T) {
	svc := NewService()

	body, contentType, err := svc.Render(planSession(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=utf-8", contentType)
	assert.True(t, strings.HasPrefix(string(body), "# MVP Plan"))
}

func TestRenderHTML(t *testing.T) {
	svc := NewService()

	body, contentType, err := svc.Render(planSession(), FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", contentType)

	doc := string(body)
	assert.Contains(t, doc, "<h1")
	assert.Contains(t, doc, "MVP Plan")
	assert.NotContains(t, doc, "# MVP Plan")
}

func TestRenderUnknownFormat(t *testing.T) {
	svc := NewService()

	_, _, err := svc.Render(planSession(), Format("pdf"))
	assert.Error(t, err)
}

func TestRenderEmptySession(t *testing.T) {
	svc := NewService()

	body, _, err := svc.Render(&store.Session{UID: "empty"}, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(body), "no stages completed yet")
}
