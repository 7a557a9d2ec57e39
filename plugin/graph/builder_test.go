package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvpforge/mvpforge/store"
)

func TestBuildRootCauseGraph(t *testing.T) {
	rc := &store.RootCause{
		Problem:      "Restaurants waste food",
		PrimaryCause: "No inventory tracking",
		Causes: []store.CauseNode{
			{
				Label:    "No inventory tracking",
				Evidence: "Weekly paper counts",
				SubCauses: []store.CauseNode{
					{Label: "Paper forms"},
				},
			},
			{Label: "Over-ordering"},
		},
	}

	g := BuildRootCauseGraph(rc)

	assert.Equal(t, KindRootCause, g.Kind)
	// Problem hub + 2 causes + 1 sub-cause.
	assert.Equal(t, 4, g.Stats.NodeCount)
	assert.Equal(t, 3, g.Stats.EdgeCount)
	assert.Equal(t, 2, g.Stats.Depth)
	assert.Len(t, g.Nodes, g.Stats.NodeCount)
	assert.Len(t, g.Edges, g.Stats.EdgeCount)

	var primary, secondary *Node
	for i := range g.Nodes {
		switch g.Nodes[i].Label {
		case "No inventory tracking":
			primary = &g.Nodes[i]
		case "Over-ordering":
			secondary = &g.Nodes[i]
		}
	}
	require.NotNil(t, primary)
	require.NotNil(t, secondary)
	assert.Greater(t, primary.Weight, secondary.Weight)

	// Every edge endpoint must be a node.
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		assert.True(t, ids[e.Source], "unknown source %s", e.Source)
		assert.True(t, ids[e.Target], "unknown target %s", e.Target)
	}
}

func TestBuildRootCauseGraphNil(t *testing.T) {
	g := BuildRootCauseGraph(nil)
	assert.Equal(t, KindRootCause, g.Kind)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Equal(t, 0, g.Stats.NodeCount)
}

func TestBuildCompetitorGraph(t *testing.T) {
	ca := &store.CompetitorAnalysis{
		Competitors: []store.Competitor{
			{Name: "BigCo", Overlap: 0.8},
			{Name: "SmallCo", Overlap: 0.2},
			{Name: "WeirdCo", Overlap: 1.7},
		},
		Gaps: []string{"Mobile-first workflow"},
	}

	g := BuildCompetitorGraph(ca)

	assert.Equal(t, KindCompetitors, g.Kind)
	// Market hub + 3 competitors + 1 gap.
	assert.Equal(t, 5, g.Stats.NodeCount)
	assert.Equal(t, 4, g.Stats.EdgeCount)

	for _, n := range g.Nodes {
		assert.GreaterOrEqual(t, n.Weight, 0.0, "node %s", n.ID)
		assert.LessOrEqual(t, n.Weight, 1.0, "node %s", n.ID)
	}
}

func TestBuildCompetitorGraphNil(t *testing.T) {
	g := BuildCompetitorGraph(nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}
