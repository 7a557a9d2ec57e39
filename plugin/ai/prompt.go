package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/store"
)

// BuildStagePrompt renders the deterministic system prompt for a stage from
// its catalog definition and the artifacts of its dependency stages. The
// prompt embeds the rubric and the exact output shape so the model answers in
// parseable JSON.
func BuildStagePrompt(def *catalog.StageDef, prior *store.WorkflowData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced product coach guiding a founder through the %q step of building an MVP.\n", def.Title)
	fmt.Fprintf(&b, "%s\n\n", def.Concept)

	if len(def.DependsOn) > 0 && prior != nil {
		b.WriteString("Context from earlier steps:\n")
		for _, dep := range def.DependsOn {
			artifact := prior.Get(dep)
			if artifact == nil {
				continue
			}
			raw, err := json.Marshal(artifact)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", dep, string(raw))
		}
		b.WriteString("\n")
	}

	b.WriteString("Quality criteria:\n")
	for _, criterion := range def.Rubric {
		fmt.Fprintf(&b, "- %s\n", criterion)
	}

	b.WriteString("\nRespond with a single JSON object and nothing else. Keys:\n")
	for _, out := range def.Outputs {
		fmt.Fprintf(&b, "  %q: %s\n", out.Name, out.Description)
	}
	b.WriteString("\nDo not add keys. Do not wrap the JSON in prose.\n")

	return b.String()
}

// BuildUserPrompt renders the founder's answers for the stage.
func BuildUserPrompt(def *catalog.StageDef, input map[string]string) string {
	var b strings.Builder
	for _, field := range def.Inputs {
		fmt.Fprintf(&b, "%s: %s\n", field.Label, input[field.Name])
	}
	return b.String()
}
