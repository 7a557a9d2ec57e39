package store

// Stage identifies one step of the wizard. The ordered list of stages is
// owned by the catalog package; the store only knows the identifiers so they
// can be persisted.
type Stage string

const (
	StageProblemDiscovery   Stage = "problem-discovery"
	StageMarketResearch     Stage = "market-research"
	StageRootCause          Stage = "root-cause"
	StageCompetitorAnalysis Stage = "competitor-analysis"
	StageICP                Stage = "icp"
	StageUseCase            Stage = "use-case"
	StageRequirements       Stage = "requirements"
	StagePrioritization     Stage = "prioritization"
	StageExport             Stage = "export"
	StageFeedback           Stage = "feedback"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ConversationMessage is one entry of a session's append-only transcript.
type ConversationMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedTs int64       `json:"createdTs"`
}

// Session is one founder's progress through the wizard. UID is client
// generated and opaque; sessions are never deleted.
type Session struct {
	ID                  int32
	UID                 string
	CurrentStage        Stage
	CompletedStages     []Stage
	Data                WorkflowData
	ConversationHistory []ConversationMessage
	CreatedTs           int64
	UpdatedTs           int64
}

// HasCompleted reports whether the session already completed the given stage.
func (s *Session) HasCompleted(stage Stage) bool {
	for _, c := range s.CompletedStages {
		if c == stage {
			return true
		}
	}
	return false
}

type FindSession struct {
	ID  *int32
	UID *string

	Limit  *int
	Offset *int
}

type UpdateSession struct {
	UID             string
	CurrentStage    *Stage
	CompletedStages *[]Stage
	Data            *WorkflowData
	AppendMessages  []ConversationMessage
	UpdatedTs       *int64
}
