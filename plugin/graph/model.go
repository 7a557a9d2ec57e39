// Package graph projects wizard artifacts into node/edge models for display.
// The transforms are data-only; layout and rendering happen client side.
package graph

// Node represents a node in a projection.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	// Weight drives node sizing, 0-1.
	Weight float64 `json:"weight"`
}

// Edge represents an edge in a projection.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Graph is a complete projection.
type Graph struct {
	Kind  string `json:"kind"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

// Stats contains projection statistics.
type Stats struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
	Depth     int `json:"depth,omitempty"`
}

// Node type constants.
const (
	NodeTypeProblem    = "problem"
	NodeTypeCause      = "cause"
	NodeTypeMarket     = "market"
	NodeTypeCompetitor = "competitor"
	NodeTypeGap        = "gap"
)

// Edge type constants.
const (
	EdgeTypeCausedBy = "caused_by"
	EdgeTypeCompetes = "competes"
	EdgeTypeGapOf    = "gap_of"
)

// Graph kind constants.
const (
	KindRootCause   = "root-cause"
	KindCompetitors = "competitors"
)
