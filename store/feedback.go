package store

// Feedback is one submitted feedback row, one per submission.
type Feedback struct {
	ID         int32
	SessionUID string
	Rating     int32
	Comment    string
	CreatedTs  int64
}

type FindFeedback struct {
	ID         *int32
	SessionUID *string

	Limit  *int
	Offset *int
}
