package model

import (
	"time"

	"gorm.io/gorm"
)

type ArtifactKind string

const (
	ArtifactKindImage         ArtifactKind = "image"
	ArtifactKindExtractedText ArtifactKind = "extracted_text"
)

// Artifact is a single normalized upload. Payload is a self-describing
// data URI: data:image/...;base64 for images, data:application/json;base64
// wrapping {text,source,pages,totalPages,originalName} for extracted text.
// An artifact is only created after normalization succeeds and is
// immutable afterwards.
type Artifact struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	OriginalName string         `json:"original_name" gorm:"not null"`
	FileName     string         `json:"file_name" gorm:"not null"`
	Kind         ArtifactKind   `json:"kind" gorm:"not null"`
	Payload      string         `json:"-" gorm:"type:text;not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
