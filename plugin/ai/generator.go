package ai

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/store"
)

// GenerationError describes why a stage artifact could not be produced. The
// caller decides what to do with it; the generator never silently substitutes
// a default.
type GenerationError struct {
	Stage store.Stage
	// Response holds the raw model output when parsing failed, empty on
	// network errors.
	Response string
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for stage %s: %v", e.Stage, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Generator produces stage artifacts from user input via the LLM service.
type Generator struct {
	llm LLMService

	// sem bounds concurrent model calls across all sessions.
	sem *semaphore.Weighted
}

// NewGenerator creates a generator. maxConcurrent <= 0 means 4.
func NewGenerator(llm LLMService, maxConcurrent int64) *Generator {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Generator{
		llm: llm,
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// Generate builds the stage prompt, performs one model call and parses the
// artifact out of the response. Exactly one outbound call is made per
// invocation; nothing is retried.
func (g *Generator) Generate(ctx context.Context, def *catalog.StageDef, input map[string]string, prior *store.WorkflowData) (store.Artifact, error) {
	if !def.ProducesArtifact() {
		return nil, &GenerationError{Stage: def.ID, Cause: fmt.Errorf("stage produces no artifact")}
	}
	if g.llm == nil {
		return nil, &GenerationError{Stage: def.ID, Cause: fmt.Errorf("LLM service is not configured")}
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, &GenerationError{Stage: def.ID, Cause: err}
	}
	defer g.sem.Release(1)

	response, err := g.llm.Chat(ctx, []Message{
		SystemPrompt(BuildStagePrompt(def, prior)),
		UserMessage(BuildUserPrompt(def, input)),
	})
	if err != nil {
		return nil, &GenerationError{Stage: def.ID, Cause: err}
	}

	artifact, err := ParseArtifact(def.ID, response)
	if err != nil {
		return nil, &GenerationError{Stage: def.ID, Response: response, Cause: err}
	}

	pinOriginalInput(artifact, input)
	return artifact, nil
}

// ParseArtifact extracts a stage artifact from a model response. Three
// attempts, in order: the whole response as JSON, the first fenced code
// block, the first {...} span.
func ParseArtifact(stage store.Stage, response string) (store.Artifact, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response")
	}

	candidates := []string{trimmed}
	if fenced, ok := extractFencedBlock(trimmed); ok {
		candidates = append(candidates, fenced)
	}
	if span, ok := extractObjectSpan(trimmed); ok {
		candidates = append(candidates, span)
	}

	var lastErr error
	for _, candidate := range candidates {
		artifact, err := store.DecodeArtifact(stage, []byte(candidate))
		if err == nil {
			return artifact, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no parseable JSON object in response: %w", lastErr)
}

// extractFencedBlock returns the contents of the first ``` block.
func extractFencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// Skip a language tag like "json" on the opening fence.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine != "" && !strings.HasPrefix(firstLine, "{") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// extractObjectSpan returns the first balanced {...} span.
func extractObjectSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// pinOriginalInput keeps verbatim user text verbatim: the model may reword
// everything else, but the problem statement's original field must echo what
// the founder typed.
func pinOriginalInput(artifact store.Artifact, input map[string]string) {
	if ps, ok := artifact.(*store.ProblemStatement); ok {
		if text, ok := input["problem"]; ok && text != "" {
			ps.Original = text
		}
	}
}
