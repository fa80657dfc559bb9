package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestionSession is one generation run and its resulting question set.
// The question set is immutable once generated; regenerating creates a
// new session.
type QuestionSession struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Artifacts []Artifact     `json:"artifacts,omitempty" gorm:"many2many:session_artifacts;"`
	Questions []Question     `json:"questions,omitempty" gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
