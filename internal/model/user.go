package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Email     string            `json:"email" gorm:"not null;uniqueIndex"`
	Password  string            `json:"-" gorm:"not null"` // bcrypt hash
	Artifacts []Artifact        `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Sessions  []QuestionSession `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}
