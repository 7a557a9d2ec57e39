package ai

import (
	"github.com/mvpforge/mvpforge/store"
)

// Fallback returns the static default artifact for a stage, used when the
// model response is unusable. Every field declared in the stage's output
// shape is populated so downstream screens never branch on missing keys.
// Stages without artifacts return nil.
func Fallback(stage store.Stage, input map[string]string) store.Artifact {
	switch stage {
	case store.StageProblemDiscovery:
		original := input["problem"]
		return &store.ProblemStatement{
			Original: original,
			Refined:  original,
			Audience: "To be determined",
			Impact:   "To be determined",
			KeyPains: []string{"To be refined with more research"},
		}
	case store.StageMarketResearch:
		return &store.MarketResearch{
			MarketSize: "Unknown",
			Trends:     []string{"To be researched"},
			Segments:   []string{"General market"},
			Risks:      []string{"Insufficient market data"},
			Summary:    "Automatic market research was unavailable; revisit this step.",
		}
	case store.StageRootCause:
		return &store.RootCause{
			Problem: input["observations"],
			Causes: []store.CauseNode{
				{Label: "Cause analysis unavailable", Evidence: "No analysis could be generated"},
			},
			PrimaryCause: "To be determined",
		}
	case store.StageCompetitorAnalysis:
		return &store.CompetitorAnalysis{
			Competitors: []store.Competitor{
				{Name: "Status quo / manual process", Strengths: []string{"Familiar"}, Weaknesses: []string{"Inefficient"}, Overlap: 0.5},
			},
			Gaps:        []string{"To be researched"},
			Positioning: "To be determined",
		}
	case store.StageICP:
		return &store.ICP{
			Persona:     "Early adopter in the affected audience",
			Role:        "To be determined",
			CompanySize: "Any",
			Pains:       []string{"The problem described in the problem statement"},
			Gains:       []string{"A faster way to get the job done"},
			Channels:    []string{"Direct outreach"},
		}
	case store.StageUseCase:
		return &store.UseCase{
			Title:    "Core workflow",
			Actor:    "The ideal customer",
			Scenario: input["scenario"],
			Steps:    []string{"Sign up", "Complete the core action", "See the result"},
			Outcome:  "The customer's main pain is resolved",
		}
	case store.StageRequirements:
		return &store.Requirements{
			Functional: []store.Requirement{
				{ID: "R1", Title: "Core workflow", Description: "Support the core use case end to end"},
			},
			NonFunctional: []store.Requirement{
				{ID: "N1", Title: "Usability", Description: "A new user completes the core workflow unaided"},
			},
		}
	case store.StagePrioritization:
		return &store.Prioritization{
			Method: "MoSCoW",
			Items: []store.PrioritizedItem{
				{RequirementID: "R1", Score: 1, Tier: "must", Rationale: "The core workflow is the MVP"},
			},
			MVP: []string{"R1"},
		}
	}
	return nil
}
