package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeTrueFalse           = "true_false"
	QuestionTypeFillInTheBlanks     = "fill_in_the_blanks"
	QuestionTypeMatchTheFollowing   = "match_the_following"
	QuestionTypeShortAnswer         = "short_answer"
	QuestionTypeLongAnswer          = "long_answer"
	QuestionTypeHigherOrderThinking = "higher_order_thinking"
)

// Question is one generated quiz question. Options holds the
// type-dependent auxiliary data as JSON: columnA/columnB for
// match_the_following (equal length), an optional explanation for the
// rest.
type Question struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	SessionID    uint           `json:"session_id" gorm:"not null;index"`
	Type         string         `json:"type" gorm:"not null"`
	QuestionText string         `json:"question_text" gorm:"type:text;not null"`
	Answer       string         `json:"answer" gorm:"type:text;not null"`
	Options      *string        `json:"options,omitempty" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
