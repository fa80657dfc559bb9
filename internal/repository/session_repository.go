package repository

import (
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *model.QuestionSession) error
	FindByID(id uint) (*model.QuestionSession, error)
	FindAllWithQuestionCount(userID uint) ([]struct {
		model.QuestionSession
		QuestionCount int
	}, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.QuestionSession) error {
	// GORM creates the associated questions and the session_artifacts
	// join rows in the same call.
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByID(id uint) (*model.QuestionSession, error) {
	var session model.QuestionSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindAllWithQuestionCount(userID uint) ([]struct {
	model.QuestionSession
	QuestionCount int
}, error) {
	var results []struct {
		model.QuestionSession
		QuestionCount int
	}
	err := r.db.Model(&model.QuestionSession{}).
		Select("question_sessions.*, (SELECT COUNT(*) FROM questions WHERE questions.session_id = question_sessions.id AND questions.deleted_at IS NULL) as question_count").
		Where("question_sessions.user_id = ? AND question_sessions.deleted_at IS NULL", userID).
		Order("question_sessions.created_at DESC").
		Scan(&results).Error
	return results, err
}
