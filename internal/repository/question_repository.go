package repository

import (
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindBySessionID(sessionID uint) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindBySessionID(sessionID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
