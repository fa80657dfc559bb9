package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/jpeg"
	"testing"

	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArtifactRepo struct {
	artifacts []model.Artifact
}

func (f *fakeArtifactRepo) Create(artifact *model.Artifact) error {
	artifact.ID = uint(len(f.artifacts) + 1)
	f.artifacts = append(f.artifacts, *artifact)
	return nil
}
func (f *fakeArtifactRepo) FindByID(id uint) (*model.Artifact, error) {
	for i := range f.artifacts {
		if f.artifacts[i].ID == id {
			return &f.artifacts[i], nil
		}
	}
	return nil, ErrArtifactNotFound
}
func (f *fakeArtifactRepo) FindByIDs(ids []uint) ([]model.Artifact, error) {
	var out []model.Artifact
	for _, id := range ids {
		for _, a := range f.artifacts {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}
func (f *fakeArtifactRepo) FindAllByUser(userID uint) ([]model.Artifact, error) { return nil, nil }
func (f *fakeArtifactRepo) Delete(id uint) error                               { return nil }

type fakeSessionRepo struct {
	created *model.QuestionSession
}

func (f *fakeSessionRepo) Create(session *model.QuestionSession) error {
	session.ID = 42
	f.created = session
	return nil
}
func (f *fakeSessionRepo) FindByID(id uint) (*model.QuestionSession, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, ErrSessionNotFound
}
func (f *fakeSessionRepo) FindAllWithQuestionCount(userID uint) ([]struct {
	model.QuestionSession
	QuestionCount int
}, error) {
	return nil, nil
}

type fakeQuestionRepo struct {
	questions []model.Question
}

func (f *fakeQuestionRepo) FindBySessionID(sessionID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	questions   []GeneratedQuestion
	err         error
	lastContent ModelContent
}

func (f *fakeGenerator) Generate(ctx context.Context, content ModelContent, types map[string]bool, counts map[string]int) ([]GeneratedQuestion, error) {
	f.lastContent = content
	return f.questions, f.err
}

func textArtifact(t *testing.T, id uint, userID uint, name, source, text string) model.Artifact {
	t.Helper()
	doc, err := json.Marshal(extractedTextDoc{Text: text, Source: source, Pages: 1, TotalPages: 1, OriginalName: name})
	require.NoError(t, err)
	return model.Artifact{
		ID:           id,
		UserID:       userID,
		OriginalName: name,
		Kind:         model.ArtifactKindExtractedText,
		Payload:      EncodeDataURI("application/json", doc),
	}
}

func imageArtifact(t *testing.T, id uint, userID uint, name string, data []byte) model.Artifact {
	t.Helper()
	return model.Artifact{
		ID:           id,
		UserID:       userID,
		OriginalName: name,
		Kind:         model.ArtifactKindImage,
		Payload:      EncodeDataURI("image/png", data),
	}
}

func newTestGenerationService(repo *fakeArtifactRepo, sessions *fakeSessionRepo, gen *fakeGenerator) *generationService {
	return &generationService{
		artifactRepo: repo,
		sessionRepo:  sessions,
		questionRepo: &fakeQuestionRepo{},
		optimizer:    NewImageOptimizer(),
		generator:    gen,
	}
}

func TestPartitionArtifactsTextAndImages(t *testing.T) {
	svc := newTestGenerationService(nil, nil, nil)

	artifacts := []model.Artifact{
		textArtifact(t, 1, 7, "ch1.pdf", TextSourcePdf, "Mitochondria are the powerhouse."),
		imageArtifact(t, 2, 7, "fig.png", pngBytes(t, 200, 200)),
		imageArtifact(t, 3, 7, "broken.png", []byte("not an image")),
	}

	partition := svc.partitionArtifacts(artifacts)

	assert.Contains(t, partition.AggregateText, "Mitochondria are the powerhouse.")
	assert.Len(t, partition.ImagesBase64, 1)
	assert.Equal(t, []string{"broken.png"}, partition.MissingFiles)
}

func TestPartitionArtifactsRasterizesSvg(t *testing.T) {
	svc := newTestGenerationService(nil, nil, nil)

	svg := model.Artifact{
		ID:           1,
		UserID:       7,
		OriginalName: "figure.svg",
		Kind:         model.ArtifactKindImage,
		Payload:      EncodeDataURI("image/svg+xml", sampleSvg(1200, 600)),
	}

	partition := svc.partitionArtifacts([]model.Artifact{svg})

	require.Len(t, partition.ImagesBase64, 1)
	assert.Empty(t, partition.MissingFiles)

	rendered, err := base64.StdEncoding.DecodeString(partition.ImagesBase64[0])
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(rendered))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), ModelMaxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), ModelMaxDimension)
}

func TestPartitionArtifactsMalformedSvgGoesMissing(t *testing.T) {
	svc := newTestGenerationService(nil, nil, nil)

	broken := model.Artifact{
		ID:           1,
		UserID:       7,
		OriginalName: "broken.svg",
		Kind:         model.ArtifactKindImage,
		Payload:      EncodeDataURI("image/svg+xml", []byte("not an svg")),
	}

	partition := svc.partitionArtifacts([]model.Artifact{broken})

	assert.Empty(t, partition.ImagesBase64)
	assert.Equal(t, []string{"broken.svg"}, partition.MissingFiles)
}

func TestPartitionArtifactsRejectsUnknownTextSource(t *testing.T) {
	svc := newTestGenerationService(nil, nil, nil)

	artifacts := []model.Artifact{
		textArtifact(t, 1, 7, "odd.pdf", "manual", "some text"),
		textArtifact(t, 2, 7, "empty.pdf", TextSourceOcr, ""),
	}

	partition := svc.partitionArtifacts(artifacts)

	assert.Empty(t, partition.AggregateText)
	assert.Equal(t, []string{"odd.pdf", "empty.pdf"}, partition.MissingFiles)
}

func TestGenerateQuestionsTextTakesPrecedenceOverImages(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		textArtifact(t, 1, 7, "ch1.pdf", TextSourcePdf, "Osmosis moves water."),
		imageArtifact(t, 2, 7, "fig.png", pngBytes(t, 100, 100)),
	}}
	sessions := &fakeSessionRepo{}
	gen := &fakeGenerator{questions: []GeneratedQuestion{
		{Type: model.QuestionTypeTrueFalse, Question: "Q", Answer: "True"},
	}}
	svc := newTestGenerationService(repo, sessions, gen)

	resp, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs:   []uint{1, 2},
		QuestionTypes: map[string]bool{model.QuestionTypeTrueFalse: true},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, gen.lastContent.Text)
	assert.Empty(t, gen.lastContent.ImagesBase64)
	assert.Equal(t, uint(42), resp.SessionID)
	require.Len(t, resp.Questions, 1)
}

func TestGenerateQuestionsReportsMissingFiles(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		imageArtifact(t, 1, 7, "fig.png", pngBytes(t, 100, 100)),
		imageArtifact(t, 2, 7, "broken.png", []byte("garbage")),
	}}
	sessions := &fakeSessionRepo{}
	gen := &fakeGenerator{questions: []GeneratedQuestion{
		{Type: model.QuestionTypeShortAnswer, Question: "Q", Answer: "A"},
	}}
	svc := newTestGenerationService(repo, sessions, gen)

	resp, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs:   []uint{1, 2},
		QuestionTypes: map[string]bool{model.QuestionTypeShortAnswer: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"broken.png"}, resp.MissingFiles)
	assert.Len(t, gen.lastContent.ImagesBase64, 1)
}

func TestGenerateQuestionsRejectsAllDisabledTypes(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		textArtifact(t, 1, 7, "ch1.pdf", TextSourcePdf, "content"),
	}}
	sessions := &fakeSessionRepo{}
	svc := newTestGenerationService(repo, sessions, &fakeGenerator{})

	_, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs: []uint{1},
		QuestionTypes: map[string]bool{
			model.QuestionTypeTrueFalse:   false,
			model.QuestionTypeShortAnswer: false,
			"multiple_choice":             true,
		},
	})
	assert.ErrorIs(t, err, ErrNoQuestionTypesEnabled)
	assert.Nil(t, sessions.created)
}

func TestGenerateQuestionsNoOwnedArtifacts(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		imageArtifact(t, 1, 99, "someone-elses.png", pngBytes(t, 50, 50)),
	}}
	svc := newTestGenerationService(repo, &fakeSessionRepo{}, &fakeGenerator{})

	_, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs:   []uint{1},
		QuestionTypes: map[string]bool{model.QuestionTypeTrueFalse: true},
	})
	assert.ErrorIs(t, err, ErrNoArtifactsFound)
}

func TestGenerateQuestionsAllArtifactsUnusable(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		imageArtifact(t, 1, 7, "broken1.png", []byte("x")),
		imageArtifact(t, 2, 7, "broken2.png", []byte("y")),
	}}
	svc := newTestGenerationService(repo, &fakeSessionRepo{}, &fakeGenerator{})

	_, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs:   []uint{1, 2},
		QuestionTypes: map[string]bool{model.QuestionTypeTrueFalse: true},
	})
	assert.ErrorIs(t, err, ErrNoValidContent)
}

func TestGenerateQuestionsPersistsOptionsJSON(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		textArtifact(t, 1, 7, "ch1.pdf", TextSourcePdf, "content"),
	}}
	sessions := &fakeSessionRepo{}
	gen := &fakeGenerator{questions: []GeneratedQuestion{
		{
			Type:     model.QuestionTypeMatchTheFollowing,
			Question: "Match terms",
			Answer:   "1-a",
			ColumnA:  []string{"mitosis"},
			ColumnB:  []string{"cell division"},
		},
		{
			Type:        model.QuestionTypeShortAnswer,
			Question:    "Define osmosis",
			Answer:      "Water movement",
			Explanation: "Chapter 2",
		},
		{Type: model.QuestionTypeTrueFalse, Question: "Plain", Answer: "True"},
	}}
	svc := newTestGenerationService(repo, sessions, gen)

	resp, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs: []uint{1},
		QuestionTypes: map[string]bool{
			model.QuestionTypeMatchTheFollowing: true,
			model.QuestionTypeShortAnswer:       true,
			model.QuestionTypeTrueFalse:         true,
		},
	})
	require.NoError(t, err)

	require.NotNil(t, sessions.created)
	require.Len(t, sessions.created.Questions, 3)
	assert.NotNil(t, sessions.created.Questions[0].Options)
	assert.NotNil(t, sessions.created.Questions[1].Options)
	assert.Nil(t, sessions.created.Questions[2].Options)

	require.Len(t, resp.Questions, 3)
	assert.Equal(t, []string{"mitosis"}, resp.Questions[0].ColumnA)
	assert.Equal(t, []string{"cell division"}, resp.Questions[0].ColumnB)
	assert.Equal(t, "Chapter 2", resp.Questions[1].Explanation)
	assert.Empty(t, resp.Questions[2].Explanation)
}

func TestGenerateQuestionsGeneratorErrorDoesNotPersist(t *testing.T) {
	repo := &fakeArtifactRepo{artifacts: []model.Artifact{
		textArtifact(t, 1, 7, "ch1.pdf", TextSourcePdf, "content"),
	}}
	sessions := &fakeSessionRepo{}
	svc := newTestGenerationService(repo, sessions, &fakeGenerator{err: ErrEmptyGenerationResult})

	_, err := svc.GenerateQuestions(context.Background(), 7, dto.GenerateQuestionsDTO{
		ArtifactIDs:   []uint{1},
		QuestionTypes: map[string]bool{model.QuestionTypeTrueFalse: true},
	})
	assert.ErrorIs(t, err, ErrEmptyGenerationResult)
	assert.Nil(t, sessions.created)
}

func TestGetSessionQuestionsOwnership(t *testing.T) {
	sessions := &fakeSessionRepo{created: &model.QuestionSession{ID: 42, UserID: 7}}
	svc := newTestGenerationService(&fakeArtifactRepo{}, sessions, &fakeGenerator{})

	detail, err := svc.GetSessionQuestions(7, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), detail.ID)

	_, err = svc.GetSessionQuestions(8, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
