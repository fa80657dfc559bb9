package repository

import (
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
)

type ArtifactRepository interface {
	Create(artifact *model.Artifact) error
	FindByID(id uint) (*model.Artifact, error)
	FindByIDs(ids []uint) ([]model.Artifact, error)
	FindAllByUser(userID uint) ([]model.Artifact, error)
	Delete(id uint) error
}

type artifactRepository struct {
	db *gorm.DB
}

func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

func (r *artifactRepository) Create(artifact *model.Artifact) error {
	return r.db.Create(artifact).Error
}

func (r *artifactRepository) FindByID(id uint) (*model.Artifact, error) {
	var artifact model.Artifact
	if err := r.db.First(&artifact, id).Error; err != nil {
		return nil, err
	}
	return &artifact, nil
}

// FindByIDs returns the artifacts that still exist among ids; deleted
// ones are silently absent from the result.
func (r *artifactRepository) FindByIDs(ids []uint) ([]model.Artifact, error) {
	var artifacts []model.Artifact
	if err := r.db.Where("id IN ?", ids).Find(&artifacts).Error; err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *artifactRepository) FindAllByUser(userID uint) ([]model.Artifact, error) {
	var artifacts []model.Artifact
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&artifacts).Error; err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *artifactRepository) Delete(id uint) error {
	return r.db.Delete(&model.Artifact{}, id).Error
}
