// Package wizard enforces the linear stage progression and mediates between
// raw user input and the AI gateway.
package wizard

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/mvpforge/mvpforge/plugin/ai"
	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/server/internal/errors"
	"github.com/mvpforge/mvpforge/server/internal/observability"
	"github.com/mvpforge/mvpforge/store"
)

// Service is the stage controller.
type Service struct {
	Store     *store.Store
	Generator *ai.Generator
	Metrics   *observability.Metrics
}

// NewService creates a wizard service.
func NewService(s *store.Store, generator *ai.Generator) *Service {
	return &Service{
		Store:     s,
		Generator: generator,
		Metrics:   observability.GlobalMetrics(),
	}
}

// CompleteStage merges the stage artifact into the session, marks the stage
// completed and advances the current stage, clamped at the final stage. A
// stageID that is not the session's current stage is a stale write and
// leaves the session untouched.
func (s *Service) CompleteStage(ctx context.Context, session *store.Session, stageID store.Stage, artifact store.Artifact) (*store.Session, error) {
	if !catalog.IsValid(stageID) {
		return nil, errors.StageNotFound(string(stageID))
	}
	if stageID != session.CurrentStage {
		// Stale write from an out-of-order tab; keep the session as is.
		slog.Warn("stale stage completion ignored",
			"session_uid", session.UID,
			"stage", stageID,
			"current_stage", session.CurrentStage)
		return session, nil
	}

	data := session.Data
	if artifact != nil {
		data.Merge(artifact)
	}

	completed := append([]store.Stage{}, session.CompletedStages...)
	if !session.HasCompleted(stageID) {
		completed = append(completed, stageID)
	}

	next := catalog.Next(stageID)
	updated, err := s.Store.UpdateSession(ctx, &store.UpdateSession{
		UID:             session.UID,
		CurrentStage:    &next,
		CompletedStages: &completed,
		Data:            &data,
	})
	if err != nil {
		return nil, errors.Internal("failed to persist session", err)
	}
	return updated, nil
}

// GoToStep sets the current stage directly, without validating prerequisite
// completion. Escape hatch for users stuck on a step.
func (s *Service) GoToStep(ctx context.Context, session *store.Session, stageID store.Stage) (*store.Session, error) {
	if !catalog.IsValid(stageID) {
		return nil, errors.StageNotFound(string(stageID))
	}

	updated, err := s.Store.UpdateSession(ctx, &store.UpdateSession{
		UID:          session.UID,
		CurrentStage: &stageID,
	})
	if err != nil {
		return nil, errors.Internal("failed to persist session", err)
	}
	return updated, nil
}

// ResetToStep sets the current stage and discards every completed-stage entry
// at or after the target position. Stored artifacts for the discarded stages
// are kept, so revisiting a step shows the previous result.
func (s *Service) ResetToStep(ctx context.Context, session *store.Session, stageID store.Stage) (*store.Session, error) {
	target := catalog.Index(stageID)
	if target < 0 {
		return nil, errors.StageNotFound(string(stageID))
	}

	completed := make([]store.Stage, 0, len(session.CompletedStages))
	for _, c := range session.CompletedStages {
		if catalog.Index(c) < target {
			completed = append(completed, c)
		}
	}

	updated, err := s.Store.UpdateSession(ctx, &store.UpdateSession{
		UID:             session.UID,
		CurrentStage:    &stageID,
		CompletedStages: &completed,
	})
	if err != nil {
		return nil, errors.Internal("failed to persist session", err)
	}
	return updated, nil
}

// GenerateAndComplete validates the stage input, produces the artifact via
// the AI gateway (falling back to the stage default on any generation
// failure) and completes the stage. The generation exchange is appended to
// the session transcript.
func (s *Service) GenerateAndComplete(ctx context.Context, session *store.Session, stageID store.Stage, input map[string]string) (*store.Session, error) {
	def, ok := catalog.Lookup(stageID)
	if !ok {
		return nil, errors.StageNotFound(string(stageID))
	}
	if !def.ProducesArtifact() {
		return nil, errors.InvalidArgument("stage does not support generation: " + string(stageID))
	}
	if err := ValidateInput(def, input); err != nil {
		return nil, err
	}

	reqCtx := observability.NewRequestContext(slog.Default(), session.UID, string(stageID))
	s.Metrics.RecordGeneration(string(stageID))

	artifact, err := s.Generator.Generate(ctx, def, input, &session.Data)
	if err != nil {
		// Degraded result, not an error: the founder gets the static
		// default and the fallback path is counted separately.
		s.Metrics.RecordFallback(string(stageID))
		reqCtx.Warn("artifact generation fell back to default",
			slog.String(observability.LogFieldEventType, observability.EventFallback),
			slog.String("reason", err.Error()),
		)
		artifact = ai.Fallback(stageID, input)
	} else {
		reqCtx.Info("artifact generated",
			slog.String(observability.LogFieldEventType, observability.EventGenerated),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
	}
	s.Metrics.RecordDuration(string(stageID), reqCtx.Duration())

	now := time.Now().Unix()
	if _, err := s.Store.UpdateSession(ctx, &store.UpdateSession{
		UID: session.UID,
		AppendMessages: []store.ConversationMessage{
			{Role: store.MessageRoleUser, Content: ai.BuildUserPrompt(def, input), CreatedTs: now},
			{Role: store.MessageRoleAssistant, Content: def.Title + " artifact generated", CreatedTs: now},
		},
	}); err != nil {
		s.Metrics.RecordFailure()
		return nil, errors.Internal("failed to append transcript", err)
	}

	updated, err := s.CompleteStage(ctx, session, stageID, artifact)
	if err != nil {
		s.Metrics.RecordFailure()
		return nil, err
	}
	return updated, nil
}

// ValidateInput checks the stage's required fields and minimum lengths.
func ValidateInput(def *catalog.StageDef, input map[string]string) error {
	for _, field := range def.Inputs {
		value := input[field.Name]
		if value == "" {
			return errors.Validation("missing required field: " + field.Name)
		}
		if utf8.RuneCountInString(value) < field.MinLength {
			return errors.Validation("field too short: " + field.Name)
		}
	}
	return nil
}
