// Package catalog defines the ordered stage list of the MVP builder wizard.
// The slice below is the single source of truth for stage order; positions
// are derived from it instead of a second lookup table.
package catalog

import (
	"github.com/mvpforge/mvpforge/store"
)

// InputField describes one required field of a stage's user input.
type InputField struct {
	Name      string
	Label     string
	MinLength int
}

// OutputField names one top-level key of a stage's artifact, with the
// description embedded into the generation prompt.
type OutputField struct {
	Name        string
	Description string
}

// StageDef is the static definition of a wizard stage. Immutable at runtime.
type StageDef struct {
	ID      store.Stage
	Title   string
	Concept string
	// ArtifactKey is the workflow-data key the stage writes, empty for
	// stages that produce no AI artifact (export, feedback).
	ArtifactKey string
	Inputs      []InputField
	Rubric      []string
	Outputs     []OutputField
	// DependsOn lists stages whose artifacts are fed back into the prompt.
	DependsOn []store.Stage
}

// ProducesArtifact reports whether the stage runs an AI generation.
func (d *StageDef) ProducesArtifact() bool {
	return d.ArtifactKey != ""
}

var stages = []StageDef{
	{
		ID:          store.StageProblemDiscovery,
		Title:       "Problem Discovery",
		Concept:     "Turn the founder's raw problem description into a sharp, evidence-oriented problem statement.",
		ArtifactKey: "problemStatement",
		Inputs: []InputField{
			{Name: "problem", Label: "Describe the problem you want to solve", MinLength: 20},
		},
		Rubric: []string{
			"The refined statement names who is affected and how often.",
			"The impact is quantified or at least bounded.",
			"Key pains are concrete observations, not solutions.",
		},
		Outputs: []OutputField{
			{Name: "original", Description: "the founder's original problem text, verbatim"},
			{Name: "refined", Description: "a one-sentence refined problem statement"},
			{Name: "audience", Description: "who experiences the problem"},
			{Name: "impact", Description: "the cost or consequence of the problem"},
			{Name: "keyPains", Description: "array of 3-5 concrete pain points"},
		},
	},
	{
		ID:          store.StageMarketResearch,
		Title:       "Market Research",
		Concept:     "Size the market around the problem and surface the trends and risks that shape it.",
		ArtifactKey: "marketResearch",
		Inputs: []InputField{
			{Name: "market", Label: "Describe your target market as you understand it", MinLength: 10},
		},
		Rubric: []string{
			"Market size carries a unit and a time frame.",
			"Trends are dated and attributable.",
			"Risks are specific to this market, not generic startup risks.",
		},
		Outputs: []OutputField{
			{Name: "marketSize", Description: "estimated market size with unit"},
			{Name: "trends", Description: "array of current market trends"},
			{Name: "segments", Description: "array of addressable market segments"},
			{Name: "risks", Description: "array of market-specific risks"},
			{Name: "summary", Description: "a short narrative summary"},
		},
		DependsOn: []store.Stage{store.StageProblemDiscovery},
	},
	{
		ID:          store.StageRootCause,
		Title:       "Root-Cause Analysis",
		Concept:     "Decompose the problem into a cause tree and identify the primary root cause worth attacking.",
		ArtifactKey: "rootCause",
		Inputs: []InputField{
			{Name: "observations", Label: "What have you observed about why this problem happens?", MinLength: 10},
		},
		Rubric: []string{
			"Causes are phrased as mechanisms, not symptoms.",
			"Each cause carries supporting evidence.",
			"The primary cause is one of the listed causes.",
		},
		Outputs: []OutputField{
			{Name: "problem", Description: "the problem under analysis"},
			{Name: "causes", Description: "array of cause nodes, each with label, evidence and optional subCauses"},
			{Name: "primaryCause", Description: "the single most fundamental cause"},
		},
		DependsOn: []store.Stage{store.StageProblemDiscovery},
	},
	{
		ID:          store.StageCompetitorAnalysis,
		Title:       "Competitive Analysis",
		Concept:     "Map who else addresses this problem and where the unserved gaps are.",
		ArtifactKey: "competitorAnalysis",
		Inputs: []InputField{
			{Name: "competitors", Label: "List competitors or alternatives you know of", MinLength: 5},
		},
		Rubric: []string{
			"Every competitor has at least one strength and one weakness.",
			"Overlap scores reflect how much of the problem each competitor covers.",
			"Gaps follow from the weaknesses, not wishful thinking.",
		},
		Outputs: []OutputField{
			{Name: "competitors", Description: "array of competitors with name, strengths, weaknesses and overlap (0-1)"},
			{Name: "gaps", Description: "array of unserved needs"},
			{Name: "positioning", Description: "a one-sentence positioning angle"},
		},
		DependsOn: []store.Stage{store.StageProblemDiscovery, store.StageMarketResearch},
	},
	{
		ID:          store.StageICP,
		Title:       "Ideal Customer Profile",
		Concept:     "Describe the single customer profile most likely to pay for a solution first.",
		ArtifactKey: "icp",
		Inputs: []InputField{
			{Name: "customer", Label: "Who do you imagine as your first customer?", MinLength: 10},
		},
		Rubric: []string{
			"The persona is one person, not a segment.",
			"Pains trace back to the problem statement.",
			"Channels are places this persona already is.",
		},
		Outputs: []OutputField{
			{Name: "persona", Description: "a short persona description"},
			{Name: "role", Description: "the persona's job role"},
			{Name: "companySize", Description: "company size bracket"},
			{Name: "pains", Description: "array of persona pains"},
			{Name: "gains", Description: "array of desired gains"},
			{Name: "channels", Description: "array of channels to reach the persona"},
		},
		DependsOn: []store.Stage{store.StageProblemDiscovery, store.StageCompetitorAnalysis},
	},
	{
		ID:          store.StageUseCase,
		Title:       "Core Use Case",
		Concept:     "Write the one end-to-end scenario in which the ICP gets the core value.",
		ArtifactKey: "useCase",
		Inputs: []InputField{
			{Name: "scenario", Label: "Walk through how your customer would use the product", MinLength: 10},
		},
		Rubric: []string{
			"The actor is the ICP persona.",
			"Steps are observable actions.",
			"The outcome resolves a stated pain.",
		},
		Outputs: []OutputField{
			{Name: "title", Description: "short use case title"},
			{Name: "actor", Description: "who performs the use case"},
			{Name: "scenario", Description: "the triggering situation"},
			{Name: "steps", Description: "array of ordered steps"},
			{Name: "outcome", Description: "the end state for the actor"},
		},
		DependsOn: []store.Stage{store.StageICP},
	},
	{
		ID:          store.StageRequirements,
		Title:       "Requirements",
		Concept:     "Derive functional and non-functional requirements from the use case.",
		ArtifactKey: "requirements",
		Inputs: []InputField{
			{Name: "constraints", Label: "Any constraints or must-haves?", MinLength: 3},
		},
		Rubric: []string{
			"Each requirement has a stable id (R1, R2, ...).",
			"Functional requirements map to use-case steps.",
			"Non-functional requirements are measurable.",
		},
		Outputs: []OutputField{
			{Name: "functional", Description: "array of {id, title, description}"},
			{Name: "nonFunctional", Description: "array of {id, title, description}"},
		},
		DependsOn: []store.Stage{store.StageUseCase, store.StageICP},
	},
	{
		ID:          store.StagePrioritization,
		Title:       "Prioritization",
		Concept:     "Score the requirements and cut the smallest set that proves the core value.",
		ArtifactKey: "prioritization",
		Inputs: []InputField{
			{Name: "focus", Label: "What matters most for your first release?", MinLength: 3},
		},
		Rubric: []string{
			"Every requirement id appears exactly once.",
			"Tiers follow MoSCoW (must/should/could/wont).",
			"The MVP cut contains only must items.",
		},
		Outputs: []OutputField{
			{Name: "method", Description: "the scoring method used"},
			{Name: "items", Description: "array of {requirementId, score, tier, rationale}"},
			{Name: "mvp", Description: "array of requirement ids selected for the MVP"},
		},
		DependsOn: []store.Stage{store.StageRequirements, store.StageProblemDiscovery},
	},
	{
		ID:      store.StageExport,
		Title:   "Export",
		Concept: "Assemble everything produced so far into a shareable document.",
	},
	{
		ID:      store.StageFeedback,
		Title:   "Feedback",
		Concept: "Collect the founder's feedback on the wizard itself.",
	},
}

// Stages returns the ordered stage definitions.
func Stages() []StageDef {
	return stages
}

// Lookup returns the definition for a stage id.
func Lookup(id store.Stage) (*StageDef, bool) {
	for i := range stages {
		if stages[i].ID == id {
			return &stages[i], true
		}
	}
	return nil, false
}

// IsValid reports whether id is a catalog stage.
func IsValid(id store.Stage) bool {
	_, ok := Lookup(id)
	return ok
}

// Index returns the position of a stage in the catalog, or -1.
func Index(id store.Stage) int {
	for i := range stages {
		if stages[i].ID == id {
			return i
		}
	}
	return -1
}

// Next returns the stage after id, clamped at the final stage.
func Next(id store.Stage) store.Stage {
	i := Index(id)
	if i < 0 || i >= len(stages)-1 {
		return stages[len(stages)-1].ID
	}
	return stages[i+1].ID
}

// First returns the first stage of the wizard.
func First() store.Stage {
	return stages[0].ID
}

// Last returns the terminal stage of the wizard.
func Last() store.Stage {
	return stages[len(stages)-1].ID
}
