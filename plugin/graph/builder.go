package graph

import (
	"fmt"

	"github.com/mvpforge/mvpforge/store"
)

// BuildRootCauseGraph projects a root-cause artifact into a cause tree:
// problem at the center, causes and sub-causes fanning out.
func BuildRootCauseGraph(rc *store.RootCause) *Graph {
	g := &Graph{Kind: KindRootCause, Nodes: []Node{}, Edges: []Edge{}}
	if rc == nil {
		return g
	}

	rootID := "problem"
	g.Nodes = append(g.Nodes, Node{
		ID:     rootID,
		Label:  rc.Problem,
		Type:   NodeTypeProblem,
		Weight: 1,
	})

	maxDepth := 0
	for i, cause := range rc.Causes {
		depth := addCauseNode(g, rootID, fmt.Sprintf("c%d", i), cause, rc.PrimaryCause, 1)
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	g.Stats = Stats{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges), Depth: maxDepth}
	return g
}

// addCauseNode appends one cause subtree and returns its depth.
func addCauseNode(g *Graph, parentID, id string, cause store.CauseNode, primary string, depth int) int {
	weight := 0.5
	if cause.Label == primary {
		weight = 1
	}
	g.Nodes = append(g.Nodes, Node{
		ID:     id,
		Label:  cause.Label,
		Type:   NodeTypeCause,
		Weight: weight,
	})
	g.Edges = append(g.Edges, Edge{
		Source: parentID,
		Target: id,
		Type:   EdgeTypeCausedBy,
		Weight: weight,
	})

	maxDepth := depth
	for i, sub := range cause.SubCauses {
		subDepth := addCauseNode(g, id, fmt.Sprintf("%s.%d", id, i), sub, primary, depth+1)
		if subDepth > maxDepth {
			maxDepth = subDepth
		}
	}
	return maxDepth
}

// BuildCompetitorGraph projects a competitive analysis into a hub graph: the
// market in the middle, competitors weighted by problem overlap, gaps hanging
// off the hub.
func BuildCompetitorGraph(ca *store.CompetitorAnalysis) *Graph {
	g := &Graph{Kind: KindCompetitors, Nodes: []Node{}, Edges: []Edge{}}
	if ca == nil {
		return g
	}

	hubID := "market"
	g.Nodes = append(g.Nodes, Node{
		ID:     hubID,
		Label:  "Market",
		Type:   NodeTypeMarket,
		Weight: 1,
	})

	for i, competitor := range ca.Competitors {
		id := fmt.Sprintf("comp%d", i)
		overlap := competitor.Overlap
		if overlap < 0 {
			overlap = 0
		} else if overlap > 1 {
			overlap = 1
		}
		g.Nodes = append(g.Nodes, Node{
			ID:     id,
			Label:  competitor.Name,
			Type:   NodeTypeCompetitor,
			Weight: overlap,
		})
		g.Edges = append(g.Edges, Edge{
			Source: hubID,
			Target: id,
			Type:   EdgeTypeCompetes,
			Weight: overlap,
		})
	}

	for i, gap := range ca.Gaps {
		id := fmt.Sprintf("gap%d", i)
		g.Nodes = append(g.Nodes, Node{
			ID:     id,
			Label:  gap,
			Type:   NodeTypeGap,
			Weight: 0.3,
		})
		g.Edges = append(g.Edges, Edge{
			Source: hubID,
			Target: id,
			Type:   EdgeTypeGapOf,
			Weight: 0.3,
		})
	}

	g.Stats = Stats{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges)}
	return g
}
