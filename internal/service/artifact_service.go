package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrArtifactNotFound covers both a missing row and an ownership
// mismatch; callers see the two cases identically.
var ErrArtifactNotFound = errors.New("artifact not found")

// UploadFile is one file received at the HTTP boundary.
type UploadFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// ArtifactService drives normalization for a batch of uploads and owns
// artifact listing/deletion. Files are processed independently: one
// rejection never aborts its siblings.
type ArtifactService interface {
	UploadFiles(ctx context.Context, userID uint, files []UploadFile) (*dto.UploadResponseDTO, error)
	ListArtifacts(userID uint) ([]dto.ArtifactSummaryDTO, error)
	DeleteArtifact(userID, artifactID uint) error
}

type artifactService struct {
	pipeline     NormalizationPipeline
	artifactRepo repository.ArtifactRepository
}

func NewArtifactService(pipeline NormalizationPipeline, artifactRepo repository.ArtifactRepository) ArtifactService {
	return &artifactService{pipeline: pipeline, artifactRepo: artifactRepo}
}

func (s *artifactService) UploadFiles(ctx context.Context, userID uint, files []UploadFile) (*dto.UploadResponseDTO, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files uploaded")
	}

	resp := &dto.UploadResponseDTO{Uploaded: []dto.ArtifactSummaryDTO{}}
	for _, file := range files {
		normalized, err := s.pipeline.Normalize(ctx, file.Name, file.MimeType, file.Data)
		if err != nil {
			log.Warn().Err(err).Str("file", file.Name).Msg("Upload rejected by normalization")
			resp.Rejected = append(resp.Rejected, dto.RejectedFileDTO{
				OriginalName: file.Name,
				Reason:       err.Error(),
			})
			continue
		}

		artifact := model.Artifact{
			UserID:       userID,
			OriginalName: file.Name,
			FileName:     normalized.FileName,
			Kind:         normalized.Kind,
			Payload:      EncodeDataURI(normalized.MimeType, normalized.Data),
		}
		if err := s.artifactRepo.Create(&artifact); err != nil {
			log.Error().Err(err).Str("file", file.Name).Msg("Failed to persist artifact")
			resp.Rejected = append(resp.Rejected, dto.RejectedFileDTO{
				OriginalName: file.Name,
				Reason:       "failed to store artifact",
			})
			continue
		}

		var summary dto.ArtifactSummaryDTO
		copier.Copy(&summary, &artifact)
		summary.Kind = string(artifact.Kind)
		resp.Uploaded = append(resp.Uploaded, summary)
	}
	return resp, nil
}

func (s *artifactService) ListArtifacts(userID uint) ([]dto.ArtifactSummaryDTO, error) {
	artifacts, err := s.artifactRepo.FindAllByUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to list artifacts")
		return nil, fmt.Errorf("error fetching artifacts: %w", err)
	}

	dtos := make([]dto.ArtifactSummaryDTO, 0, len(artifacts))
	for _, artifact := range artifacts {
		var summary dto.ArtifactSummaryDTO
		copier.Copy(&summary, &artifact)
		summary.Kind = string(artifact.Kind)
		dtos = append(dtos, summary)
	}
	return dtos, nil
}

func (s *artifactService) DeleteArtifact(userID, artifactID uint) error {
	artifact, err := s.artifactRepo.FindByID(artifactID)
	if err != nil {
		return ErrArtifactNotFound
	}
	if artifact.UserID != userID {
		return ErrArtifactNotFound
	}
	if err := s.artifactRepo.Delete(artifactID); err != nil {
		log.Error().Err(err).Uint("artifactID", artifactID).Msg("Failed to delete artifact")
		return fmt.Errorf("error deleting artifact: %w", err)
	}
	return nil
}
