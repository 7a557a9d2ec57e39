package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// WorkflowData aggregates the artifacts the wizard produces, one typed field
// per artifact-producing stage. Keeping the fields typed (instead of a single
// loose JSON bag) means a decoded artifact for a stage always matches that
// stage's declared shape.
type WorkflowData struct {
	ProblemStatement   *ProblemStatement   `json:"problemStatement,omitempty"`
	MarketResearch     *MarketResearch     `json:"marketResearch,omitempty"`
	RootCause          *RootCause          `json:"rootCause,omitempty"`
	CompetitorAnalysis *CompetitorAnalysis `json:"competitorAnalysis,omitempty"`
	ICP                *ICP                `json:"icp,omitempty"`
	UseCase            *UseCase            `json:"useCase,omitempty"`
	Requirements       *Requirements       `json:"requirements,omitempty"`
	Prioritization     *Prioritization     `json:"prioritization,omitempty"`
}

// Artifact is the sum type over per-stage artifact structs.
type Artifact interface {
	ArtifactStage() Stage
}

// Merge stores an artifact in the field belonging to its stage, replacing any
// previous value for that stage.
func (d *WorkflowData) Merge(a Artifact) {
	switch v := a.(type) {
	case *ProblemStatement:
		d.ProblemStatement = v
	case *MarketResearch:
		d.MarketResearch = v
	case *RootCause:
		d.RootCause = v
	case *CompetitorAnalysis:
		d.CompetitorAnalysis = v
	case *ICP:
		d.ICP = v
	case *UseCase:
		d.UseCase = v
	case *Requirements:
		d.Requirements = v
	case *Prioritization:
		d.Prioritization = v
	}
}

// Get returns the stored artifact for a stage, or nil when the stage has not
// produced one yet. Typed nils are normalized to a nil interface.
func (d *WorkflowData) Get(stage Stage) Artifact {
	switch stage {
	case StageProblemDiscovery:
		if d.ProblemStatement != nil {
			return d.ProblemStatement
		}
	case StageMarketResearch:
		if d.MarketResearch != nil {
			return d.MarketResearch
		}
	case StageRootCause:
		if d.RootCause != nil {
			return d.RootCause
		}
	case StageCompetitorAnalysis:
		if d.CompetitorAnalysis != nil {
			return d.CompetitorAnalysis
		}
	case StageICP:
		if d.ICP != nil {
			return d.ICP
		}
	case StageUseCase:
		if d.UseCase != nil {
			return d.UseCase
		}
	case StageRequirements:
		if d.Requirements != nil {
			return d.Requirements
		}
	case StagePrioritization:
		if d.Prioritization != nil {
			return d.Prioritization
		}
	}
	return nil
}

// DecodeArtifact unmarshals raw JSON into the concrete artifact type for the
// given stage. Stages that produce no artifact (export, feedback) are an
// error.
func DecodeArtifact(stage Stage, data []byte) (Artifact, error) {
	var a Artifact
	switch stage {
	case StageProblemDiscovery:
		a = &ProblemStatement{}
	case StageMarketResearch:
		a = &MarketResearch{}
	case StageRootCause:
		a = &RootCause{}
	case StageCompetitorAnalysis:
		a = &CompetitorAnalysis{}
	case StageICP:
		a = &ICP{}
	case StageUseCase:
		a = &UseCase{}
	case StageRequirements:
		a = &Requirements{}
	case StagePrioritization:
		a = &Prioritization{}
	default:
		return nil, errors.Errorf("stage %q does not produce an artifact", stage)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s artifact", stage)
	}
	return a, nil
}

// ProblemStatement is the artifact of the problem-discovery stage.
type ProblemStatement struct {
	Original string   `json:"original"`
	Refined  string   `json:"refined"`
	Audience string   `json:"audience"`
	Impact   string   `json:"impact"`
	KeyPains []string `json:"keyPains"`
}

func (*ProblemStatement) ArtifactStage() Stage { return StageProblemDiscovery }

// MarketResearch is the artifact of the market-research stage.
type MarketResearch struct {
	MarketSize string   `json:"marketSize"`
	Trends     []string `json:"trends"`
	Segments   []string `json:"segments"`
	Risks      []string `json:"risks"`
	Summary    string   `json:"summary"`
}

func (*MarketResearch) ArtifactStage() Stage { return StageMarketResearch }

// CauseNode is one node of the root-cause tree.
type CauseNode struct {
	Label     string      `json:"label"`
	Evidence  string      `json:"evidence"`
	SubCauses []CauseNode `json:"subCauses,omitempty"`
}

// RootCause is the artifact of the root-cause stage.
type RootCause struct {
	Problem      string      `json:"problem"`
	Causes       []CauseNode `json:"causes"`
	PrimaryCause string      `json:"primaryCause"`
}

func (*RootCause) ArtifactStage() Stage { return StageRootCause }

// Competitor is one entry of the competitive analysis.
type Competitor struct {
	Name       string   `json:"name"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	// Overlap is how much of the target problem the competitor already
	// covers, 0 to 1.
	Overlap float64 `json:"overlap"`
}

// CompetitorAnalysis is the artifact of the competitor-analysis stage.
type CompetitorAnalysis struct {
	Competitors []Competitor `json:"competitors"`
	Gaps        []string     `json:"gaps"`
	Positioning string       `json:"positioning"`
}

func (*CompetitorAnalysis) ArtifactStage() Stage { return StageCompetitorAnalysis }

// ICP is the ideal-customer-profile artifact.
type ICP struct {
	Persona     string   `json:"persona"`
	Role        string   `json:"role"`
	CompanySize string   `json:"companySize"`
	Pains       []string `json:"pains"`
	Gains       []string `json:"gains"`
	Channels    []string `json:"channels"`
}

func (*ICP) ArtifactStage() Stage { return StageICP }

// UseCase is the artifact of the use-case stage.
type UseCase struct {
	Title    string   `json:"title"`
	Actor    string   `json:"actor"`
	Scenario string   `json:"scenario"`
	Steps    []string `json:"steps"`
	Outcome  string   `json:"outcome"`
}

func (*UseCase) ArtifactStage() Stage { return StageUseCase }

// Requirement is one requirement item.
type Requirement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Requirements is the artifact of the requirements stage.
type Requirements struct {
	Functional    []Requirement `json:"functional"`
	NonFunctional []Requirement `json:"nonFunctional"`
}

func (*Requirements) ArtifactStage() Stage { return StageRequirements }

// PrioritizedItem scores one requirement.
type PrioritizedItem struct {
	RequirementID string  `json:"requirementId"`
	Score         float64 `json:"score"`
	Tier          string  `json:"tier"` // must | should | could | wont
	Rationale     string  `json:"rationale"`
}

// Prioritization is the artifact of the prioritization stage.
type Prioritization struct {
	Method string            `json:"method"`
	Items  []PrioritizedItem `json:"items"`
	MVP    []string          `json:"mvp"` // requirement ids picked for the MVP cut
}

func (*Prioritization) ArtifactStage() Stage { return StagePrioritization }
