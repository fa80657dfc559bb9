package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ModelContent is the payload for one generation call: aggregate text OR
// a list of base64 JPEG images, never both.
type ModelContent struct {
	Text         string
	ImagesBase64 []string
}

// GeneratedQuestion is one question parsed from the model response.
type GeneratedQuestion struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	ColumnA     []string `json:"columnA,omitempty"`
	ColumnB     []string `json:"columnB,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuestionGenerator wraps the non-deterministic external model behind
// deterministic prompt construction and response validation. The call
// is never retried automatically.
type QuestionGenerator interface {
	Generate(ctx context.Context, content ModelContent, types map[string]bool, counts map[string]int) ([]GeneratedQuestion, error)
}

type geminiQuestionService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiQuestionService(cfg *config.Config) (QuestionGenerator, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Question generation will be non-functional.")
		return &geminiQuestionService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	generativeModel := client.GenerativeModel("gemini-2.5-flash")
	return &geminiQuestionService{client: generativeModel, cfg: cfg}, nil
}

// knownQuestionTypes fixes the instruction order so prompts are
// deterministic for a given config.
var knownQuestionTypes = []string{
	model.QuestionTypeTrueFalse,
	model.QuestionTypeFillInTheBlanks,
	model.QuestionTypeMatchTheFollowing,
	model.QuestionTypeShortAnswer,
	model.QuestionTypeLongAnswer,
	model.QuestionTypeHigherOrderThinking,
}

var questionTypeLabels = map[string]string{
	model.QuestionTypeTrueFalse:           "True/False",
	model.QuestionTypeFillInTheBlanks:     "Fill in the Blanks",
	model.QuestionTypeMatchTheFollowing:   "Match the Following",
	model.QuestionTypeShortAnswer:         "Short Answer",
	model.QuestionTypeLongAnswer:          "Long Answer",
	model.QuestionTypeHigherOrderThinking: "Higher Order Thinking",
}

var defaultQuestionCounts = map[string]int{
	model.QuestionTypeTrueFalse:           5,
	model.QuestionTypeFillInTheBlanks:     5,
	model.QuestionTypeMatchTheFollowing:   5,
	model.QuestionTypeShortAnswer:         5,
	model.QuestionTypeLongAnswer:          3,
	model.QuestionTypeHigherOrderThinking: 3,
}

const (
	minQuestionCount = 1
	maxQuestionCount = 20
)

// allowedTypesFor resolves the request config into the ordered list of
// enabled known types. A type with a count but enabled=false stays
// excluded.
func allowedTypesFor(types map[string]bool) []string {
	var allowed []string
	for _, t := range knownQuestionTypes {
		if types[t] {
			allowed = append(allowed, t)
		}
	}
	return allowed
}

func clampCount(questionType string, counts map[string]int) int {
	count, ok := counts[questionType]
	if !ok || count == 0 {
		count = defaultQuestionCounts[questionType]
	}
	if count < minQuestionCount {
		count = minQuestionCount
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}
	return count
}

func (s *geminiQuestionService) Generate(ctx context.Context, content ModelContent, types map[string]bool, counts map[string]int) ([]GeneratedQuestion, error) {
	if s.client == nil {
		return nil, ErrServiceNotConfigured
	}

	allowed := allowedTypesFor(types)
	if len(allowed) == 0 {
		return nil, ErrNoQuestionTypesEnabled
	}

	prompt := buildPrompt(content.Text, allowed, counts)
	parts := []genai.Part{genai.Text(prompt)}

	if content.Text == "" {
		for _, imageBase64 := range content.ImagesBase64 {
			raw, err := base64.StdEncoding.DecodeString(imageBase64)
			if err != nil {
				return nil, fmt.Errorf("invalid base64 image payload: %w", err)
			}
			parts = append(parts, genai.ImageData("jpeg", raw))
		}
	}

	log.Info().Int("images", len(content.ImagesBase64)).Bool("textMode", content.Text != "").Strs("allowedTypes", allowed).Msg("Calling Gemini for question generation")

	resp, err := s.client.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during question generation")
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidModelResponse)
	}

	var fullText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText.WriteString(string(txt))
		}
	}

	questions, err := parseGeneratedQuestions(fullText.String(), allowed)
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(questions)).Msg("Parsed generated questions")
	return questions, nil
}

// buildPrompt produces one instruction block per enabled type embedding
// its clamped count, plus an explicit allow-list the model must not
// deviate from.
func buildPrompt(aggregateText string, allowed []string, counts map[string]int) string {
	var requests []string
	for _, t := range allowed {
		requests = append(requests, fmt.Sprintf("- %d %s questions", clampCount(t, counts), questionTypeLabels[t]))
	}

	var b strings.Builder
	if aggregateText != "" {
		b.WriteString("Based on the following educational content extracted from textbook material, generate questions.\n\n")
		b.WriteString("Content:\n")
		b.WriteString(aggregateText)
		b.WriteString("\n\n")
	} else {
		b.WriteString("You are an expert educator. Analyze the provided textbook images and generate educational questions based ONLY on the content visible in these images.\n\n")
	}

	b.WriteString("Generate EXACTLY the following questions (DO NOT generate any other types):\n")
	b.WriteString(strings.Join(requests, "\n"))
	b.WriteString("\n\nCRITICAL REQUIREMENTS:\n")
	if aggregateText != "" {
		b.WriteString("- Questions must be sourced ONLY from the text content provided above\n")
		b.WriteString("- DO NOT reference diagrams, images, charts, or visual elements\n")
	} else {
		b.WriteString("- Questions must be sourced ONLY from the content visible in the images\n")
		b.WriteString("- DO NOT reference content that is not visible in the provided images\n")
	}
	b.WriteString("- Only generate the question types listed above - no other types allowed\n")
	b.WriteString("- Each question must be unique (no repetition)\n")
	b.WriteString("- Questions should be challenging and educationally valuable for high school or college level students\n")
	b.WriteString("- For Fill in the Blanks, use _____ to indicate blanks\n")
	b.WriteString("- For Match the Following, provide two columns (columnA and columnB) with the same number of items\n")
	b.WriteString("- For all questions, provide complete and accurate answers\n\n")
	b.WriteString("ALLOWED QUESTION TYPES FOR THIS REQUEST: ")
	b.WriteString(strings.Join(allowed, ", "))
	b.WriteString("\n\nFormat your response as a JSON array of objects with fields: ")
	b.WriteString(`"type", "question", "answer", optional "explanation", and for match_the_following the parallel arrays "columnA" and "columnB".`)
	b.WriteString("\nReturn ONLY the JSON array, no additional text.")
	return b.String()
}

// parseGeneratedQuestions locates the first well-formed JSON array in
// the response (the model may wrap it in prose) and post-filters the
// records to the allowed types. The model is untrusted to honor the
// allow-list.
func parseGeneratedQuestions(response string, allowed []string) ([]GeneratedQuestion, error) {
	raw, err := extractQuestionArray(response)
	if err != nil {
		return nil, err
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = true
	}

	var questions []GeneratedQuestion
	for _, q := range raw {
		if !allowedSet[q.Type] {
			log.Warn().Str("type", q.Type).Msg("Dropping question of non-requested type")
			continue
		}
		if q.Type == model.QuestionTypeMatchTheFollowing && len(q.ColumnA) != len(q.ColumnB) {
			log.Warn().Int("columnA", len(q.ColumnA)).Int("columnB", len(q.ColumnB)).Msg("Dropping match_the_following question with unbalanced columns")
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, ErrEmptyGenerationResult
	}
	return questions, nil
}

// extractQuestionArray decodes the first parseable JSON array substring.
func extractQuestionArray(response string) ([]GeneratedQuestion, error) {
	for offset := 0; offset < len(response); {
		idx := strings.Index(response[offset:], "[")
		if idx < 0 {
			break
		}
		start := offset + idx
		dec := json.NewDecoder(strings.NewReader(response[start:]))
		var arr []GeneratedQuestion
		if err := dec.Decode(&arr); err == nil {
			return arr, nil
		}
		offset = start + 1
	}
	return nil, ErrInvalidModelResponse
}
