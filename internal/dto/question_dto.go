package dto

import "time"

// GenerateQuestionsDTO selects artifacts and configures the generation
// run. QuestionTypes maps question type -> enabled; Counts maps question
// type -> requested count (clamped to [1,20] downstream). A type with a
// count but enabled=false is excluded.
type GenerateQuestionsDTO struct {
	ArtifactIDs   []uint          `json:"artifact_ids" binding:"required,min=1"`
	QuestionTypes map[string]bool `json:"question_types" binding:"required"`
	Counts        map[string]int  `json:"counts"`
}

// QuestionDTO is one generated question as returned to the client.
// ColumnA/ColumnB are present only for match_the_following and have
// equal length; Explanation is optional for the other types.
type QuestionDTO struct {
	ID           uint      `json:"id"`
	Type         string    `json:"type"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	ColumnA      []string  `json:"columnA,omitempty"`
	ColumnB      []string  `json:"columnB,omitempty"`
	Explanation  string    `json:"explanation,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GenerationResponseDTO is the result of a successful generation run.
// MissingFiles lists artifacts that were selected but could not be used;
// their presence does not fail the batch as long as some content survived.
type GenerationResponseDTO struct {
	SessionID    uint          `json:"session_id"`
	Questions    []QuestionDTO `json:"questions"`
	MissingFiles []string      `json:"missing_files,omitempty"`
}

// SessionSummaryDTO is used for listing a user's generation sessions.
type SessionSummaryDTO struct {
	ID            uint      `json:"id"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionDetailDTO is a session with its full question set.
type SessionDetailDTO struct {
	ID        uint          `json:"id"`
	Questions []QuestionDTO `json:"questions"`
	CreatedAt time.Time     `json:"created_at"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
