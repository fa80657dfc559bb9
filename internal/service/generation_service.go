package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// GenerationService runs the batch generation flow: resolve artifacts,
// partition them into model content, call the model once, persist the
// session. Nothing is persisted unless the whole run succeeds.
type GenerationService interface {
	GenerateQuestions(ctx context.Context, userID uint, req dto.GenerateQuestionsDTO) (*dto.GenerationResponseDTO, error)
	ListSessions(userID uint) ([]dto.SessionSummaryDTO, error)
	GetSessionQuestions(userID, sessionID uint) (*dto.SessionDetailDTO, error)
}

type generationService struct {
	artifactRepo repository.ArtifactRepository
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	optimizer    ImageOptimizer
	generator    QuestionGenerator
}

func NewGenerationService(
	artifactRepo repository.ArtifactRepository,
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	optimizer ImageOptimizer,
	generator QuestionGenerator,
) GenerationService {
	return &generationService{
		artifactRepo: artifactRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		optimizer:    optimizer,
		generator:    generator,
	}
}

// contentPartition is the outcome of folding the selected artifacts into
// model-ready content. Text and images are mutually exclusive at call
// time: when AggregateText is non-empty the images are ignored.
type contentPartition struct {
	AggregateText string
	ImagesBase64  []string
	MissingFiles  []string
}

// questionOptions is the JSON persisted in Question.Options.
type questionOptions struct {
	ColumnA     []string `json:"columnA,omitempty"`
	ColumnB     []string `json:"columnB,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

func (s *generationService) GenerateQuestions(ctx context.Context, userID uint, req dto.GenerateQuestionsDTO) (*dto.GenerationResponseDTO, error) {
	if len(allowedTypesFor(req.QuestionTypes)) == 0 {
		return nil, ErrNoQuestionTypesEnabled
	}

	artifacts, err := s.artifactRepo.FindByIDs(req.ArtifactIDs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch artifacts for generation")
		return nil, fmt.Errorf("error fetching artifacts: %w", err)
	}

	owned := make([]model.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if a.UserID == userID {
			owned = append(owned, a)
		}
	}
	if len(owned) == 0 {
		return nil, ErrNoArtifactsFound
	}

	partition := s.partitionArtifacts(owned)
	if partition.AggregateText == "" && len(partition.ImagesBase64) == 0 {
		return nil, fmt.Errorf("%w: unusable files: %v", ErrNoValidContent, partition.MissingFiles)
	}

	// Text wins: when any extracted text is present the images are not
	// sent to the model at all.
	content := ModelContent{Text: partition.AggregateText}
	if content.Text == "" {
		content.ImagesBase64 = partition.ImagesBase64
	}

	generated, err := s.generator.Generate(ctx, content, req.QuestionTypes, req.Counts)
	if err != nil {
		return nil, err
	}

	session := model.QuestionSession{
		UserID:    userID,
		Artifacts: owned,
		Questions: make([]model.Question, 0, len(generated)),
	}
	for _, q := range generated {
		question := model.Question{
			Type:         q.Type,
			QuestionText: q.Question,
			Answer:       q.Answer,
		}
		if len(q.ColumnA) > 0 || q.Explanation != "" {
			opts, err := json.Marshal(questionOptions{
				ColumnA:     q.ColumnA,
				ColumnB:     q.ColumnB,
				Explanation: q.Explanation,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to encode question options: %w", err)
			}
			encoded := string(opts)
			question.Options = &encoded
		}
		session.Questions = append(session.Questions, question)
	}

	if err := s.sessionRepo.Create(&session); err != nil {
		log.Error().Err(err).Msg("Failed to persist question session")
		return nil, fmt.Errorf("error saving question session: %w", err)
	}

	log.Info().Uint("sessionID", session.ID).Int("questions", len(session.Questions)).Int("missing", len(partition.MissingFiles)).Msg("Question generation complete")

	return &dto.GenerationResponseDTO{
		SessionID:    session.ID,
		Questions:    questionDTOs(session.Questions),
		MissingFiles: partition.MissingFiles,
	}, nil
}

// partitionArtifacts folds the artifact batch into model content. Each
// artifact either contributes (text appended, or image re-optimized for
// the model payload) or lands in MissingFiles; a bad artifact never
// fails the batch here.
func (s *generationService) partitionArtifacts(artifacts []model.Artifact) contentPartition {
	var partition contentPartition
	for _, artifact := range artifacts {
		switch artifact.Kind {
		case model.ArtifactKindExtractedText:
			_, payload, err := DecodeDataURI(artifact.Payload)
			if err != nil {
				log.Warn().Err(err).Str("file", artifact.OriginalName).Msg("Unreadable text artifact payload")
				partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
				continue
			}
			var doc extractedTextDoc
			if err := json.Unmarshal(payload, &doc); err != nil {
				log.Warn().Err(err).Str("file", artifact.OriginalName).Msg("Malformed text artifact document")
				partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
				continue
			}
			if (doc.Source != TextSourcePdf && doc.Source != TextSourceOcr) || doc.Text == "" {
				partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
				continue
			}
			partition.AggregateText += doc.Text + "\n\n"

		case model.ArtifactKindImage:
			mimeType, payload, err := DecodeDataURI(artifact.Payload)
			if err != nil {
				log.Warn().Err(err).Str("file", artifact.OriginalName).Msg("Unreadable image artifact payload")
				partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
				continue
			}
			// SVGs are stored verbatim, so they are rasterized here
			// rather than pushed through the raster decoder.
			if mimeType == "image/svg+xml" {
				rendered, err := RasterizeSvg(payload, ModelMaxDimension, ModelJpegQuality)
				if err != nil {
					log.Warn().Err(err).Str("file", artifact.OriginalName).Msg("SVG rasterization failed")
					partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
					continue
				}
				partition.ImagesBase64 = append(partition.ImagesBase64, base64.StdEncoding.EncodeToString(rendered))
				continue
			}
			// Re-optimize at the model payload targets; storage keeps the
			// smaller rendition.
			result := s.optimizer.Optimize(payload, ModelMaxDimension, ModelJpegQuality)
			if result.Degraded {
				partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
				continue
			}
			partition.ImagesBase64 = append(partition.ImagesBase64, base64.StdEncoding.EncodeToString(result.Data))

		default:
			partition.MissingFiles = append(partition.MissingFiles, artifact.OriginalName)
		}
	}
	return partition
}

func (s *generationService) ListSessions(userID uint) ([]dto.SessionSummaryDTO, error) {
	rows, err := s.sessionRepo.FindAllWithQuestionCount(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to list sessions")
		return nil, fmt.Errorf("error fetching sessions: %w", err)
	}

	summaries := make([]dto.SessionSummaryDTO, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, dto.SessionSummaryDTO{
			ID:            row.ID,
			QuestionCount: row.QuestionCount,
			CreatedAt:     row.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *generationService) GetSessionQuestions(userID, sessionID uint) (*dto.SessionDetailDTO, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	questions, err := s.questionRepo.FindBySessionID(sessionID)
	if err != nil {
		log.Error().Err(err).Uint("sessionID", sessionID).Msg("Failed to load session questions")
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}

	return &dto.SessionDetailDTO{
		ID:        session.ID,
		Questions: questionDTOs(questions),
		CreatedAt: session.CreatedAt,
	}, nil
}

func questionDTOs(questions []model.Question) []dto.QuestionDTO {
	dtos := make([]dto.QuestionDTO, 0, len(questions))
	for _, q := range questions {
		d := dto.QuestionDTO{
			ID:        q.ID,
			Type:      q.Type,
			Question:  q.QuestionText,
			Answer:    q.Answer,
			CreatedAt: q.CreatedAt,
		}
		if q.Options != nil {
			var opts questionOptions
			if err := json.Unmarshal([]byte(*q.Options), &opts); err == nil {
				d.ColumnA = opts.ColumnA
				d.ColumnB = opts.ColumnB
				d.Explanation = opts.Explanation
			}
		}
		dtos = append(dtos, d)
	}
	return dtos
}
