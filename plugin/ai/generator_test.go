package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/store"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(_ context.Context, _ []Message) (string, error) {
	f.calls++
	return f.response, f.err
}

func mustLookup(t *testing.T, stage store.Stage) *catalog.StageDef {
	t.Helper()
	def, ok := catalog.Lookup(stage)
	require.True(t, ok)
	return def
}

func TestParseArtifact(t *testing.T) {
	payload := `{"original":"o","refined":"r","audience":"a","impact":"i","keyPains":["p1"]}`

	t.Run("bare json", func(t *testing.T) {
		artifact, err := ParseArtifact(store.StageProblemDiscovery, payload)
		require.NoError(t, err)
		ps := artifact.(*store.ProblemStatement)
		assert.Equal(t, "r", ps.Refined)
	})

	t.Run("fenced block", func(t *testing.T) {
		response := "Here is the result:\n```json\n" + payload + "\n```\nDone."
		artifact, err := ParseArtifact(store.StageProblemDiscovery, response)
		require.NoError(t, err)
		assert.Equal(t, "r", artifact.(*store.ProblemStatement).Refined)
	})

	t.Run("prose wrapped object", func(t *testing.T) {
		response := "Sure! " + payload + " Hope that helps."
		artifact, err := ParseArtifact(store.StageProblemDiscovery, response)
		require.NoError(t, err)
		assert.Equal(t, "r", artifact.(*store.ProblemStatement).Refined)
	})

	t.Run("braces inside strings", func(t *testing.T) {
		response := `Note: {"original":"has } inside","refined":"r","audience":"a","impact":"i","keyPains":[]} end`
		artifact, err := ParseArtifact(store.StageProblemDiscovery, response)
		require.NoError(t, err)
		assert.Equal(t, "has } inside", artifact.(*store.ProblemStatement).Original)
	})

	t.Run("no json at all", func(t *testing.T) {
		_, err := ParseArtifact(store.StageProblemDiscovery, "I cannot answer that.")
		assert.Error(t, err)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := ParseArtifact(store.StageProblemDiscovery, "   ")
		assert.Error(t, err)
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	input := map[string]string{"problem": "Restaurants waste 30% of food due to poor inventory tracking"}
	def := mustLookup(t, store.StageProblemDiscovery)

	t.Run("success pins original input", func(t *testing.T) {
		llm := &fakeLLM{response: `{"original":"model made this up","refined":"r","audience":"a","impact":"i","keyPains":["p"]}`}
		g := NewGenerator(llm, 2)

		artifact, err := g.Generate(ctx, def, input, &store.WorkflowData{})
		require.NoError(t, err)
		assert.Equal(t, 1, llm.calls)

		ps := artifact.(*store.ProblemStatement)
		// The original field is always the founder's text, whatever the
		// model returned.
		assert.Equal(t, input["problem"], ps.Original)
		assert.Equal(t, "r", ps.Refined)
	})

	t.Run("transport error surfaces, no retry", func(t *testing.T) {
		llm := &fakeLLM{err: errors.New("connection refused")}
		g := NewGenerator(llm, 2)

		_, err := g.Generate(ctx, def, input, &store.WorkflowData{})
		require.Error(t, err)
		assert.Equal(t, 1, llm.calls)

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, store.StageProblemDiscovery, genErr.Stage)
		assert.Empty(t, genErr.Response)
	})

	t.Run("unparseable response keeps raw output", func(t *testing.T) {
		llm := &fakeLLM{response: "I'd rather write a poem."}
		g := NewGenerator(llm, 2)

		_, err := g.Generate(ctx, def, input, &store.WorkflowData{})
		require.Error(t, err)

		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "I'd rather write a poem.", genErr.Response)
	})

	t.Run("nil llm", func(t *testing.T) {
		g := NewGenerator(nil, 2)
		_, err := g.Generate(ctx, def, input, &store.WorkflowData{})
		assert.Error(t, err)
	})

	t.Run("non-artifact stage", func(t *testing.T) {
		g := NewGenerator(&fakeLLM{}, 2)
		exportDef := mustLookup(t, store.StageExport)
		_, err := g.Generate(ctx, exportDef, nil, &store.WorkflowData{})
		assert.Error(t, err)
	})
}

func TestFallbackCoversEveryOutputField(t *testing.T) {
	input := map[string]string{
		"problem":      "Restaurants waste 30% of food due to poor inventory tracking",
		"observations": "Stock counts happen weekly on paper",
		"scenario":     "The manager checks stock before ordering",
	}

	for _, def := range catalog.Stages() {
		def := def
		t.Run(string(def.ID), func(t *testing.T) {
			artifact := Fallback(def.ID, input)
			if !def.ProducesArtifact() {
				assert.Nil(t, artifact)
				return
			}
			require.NotNil(t, artifact)
			assert.Equal(t, def.ID, artifact.ArtifactStage())

			// Every declared output field must be present, so downstream
			// screens never branch on missing keys.
			raw, err := json.Marshal(artifact)
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, json.Unmarshal(raw, &m))
			for _, out := range def.Outputs {
				assert.Contains(t, m, out.Name, "missing output field %s", out.Name)
			}
		})
	}
}

func TestFallbackEchoesProblemInput(t *testing.T) {
	input := map[string]string{"problem": "the problem text"}
	artifact := Fallback(store.StageProblemDiscovery, input)
	ps := artifact.(*store.ProblemStatement)
	assert.Equal(t, "the problem text", ps.Original)
	assert.Equal(t, "the problem text", ps.Refined)
	assert.NotEmpty(t, ps.KeyPains)
}

func TestBuildStagePromptIncludesDependencies(t *testing.T) {
	def := mustLookup(t, store.StageMarketResearch)
	prior := &store.WorkflowData{
		ProblemStatement: &store.ProblemStatement{Refined: "a very specific refined problem"},
	}

	prompt := BuildStagePrompt(def, prior)
	assert.Contains(t, prompt, "a very specific refined problem")
	assert.Contains(t, prompt, "marketSize")
	assert.Contains(t, prompt, "JSON")
}
