package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/middleware"
	"github.com/quizforge/quizforge/internal/service"
	"github.com/rs/zerolog/log"
)

type QuestionController struct {
	generationService service.GenerationService
}

func NewQuestionController(generationService service.GenerationService) *QuestionController {
	return &QuestionController{generationService: generationService}
}

// Generate godoc
// @Summary Generate questions from selected artifacts
// @Description Runs one generation batch over the selected artifacts. Extracted text takes precedence over images; unusable artifacts are reported in missing_files without failing the batch.
// @Tags Questions
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuestionsDTO true "Artifact selection and question type configuration"
// @Success 200 {object} dto.GenerationResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request or no usable content"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 404 {object} dto.ErrorResponse "No selected artifacts found"
// @Failure 502 {object} dto.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} dto.ErrorResponse "Generation service not configured"
// @Security BearerAuth
// @Router /questions/generate [post]
func (c *QuestionController) Generate(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}

	var req dto.GenerateQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.generationService.GenerateQuestions(ctx.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoQuestionTypesEnabled):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "No question types enabled"})
		case errors.Is(err, service.ErrNoArtifactsFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "None of the selected artifacts were found"})
		case errors.Is(err, service.ErrNoValidContent):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "No usable content in the selected artifacts", Details: []string{err.Error()}})
		case errors.Is(err, service.ErrServiceNotConfigured):
			ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Message: "Question generation is not configured"})
		case errors.Is(err, service.ErrInvalidModelResponse), errors.Is(err, service.ErrEmptyGenerationResult):
			ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Model returned an unusable response", Details: []string{err.Error()}})
		default:
			log.Error().Err(err).Msg("Generate questions: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to generate questions", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListSessions godoc
// @Summary List the caller's generation sessions
// @Tags Questions
// @Produce json
// @Success 200 {array} dto.SessionSummaryDTO
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /questions/sessions [get]
func (c *QuestionController) ListSessions(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}

	sessions, err := c.generationService.ListSessions(userID)
	if err != nil {
		log.Error().Err(err).Msg("List sessions: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve sessions"})
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

// GetSession godoc
// @Summary Get one session with its questions
// @Tags Questions
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Security BearerAuth
// @Router /questions/sessions/{session_id} [get]
func (c *QuestionController) GetSession(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}

	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session ID format"})
		return
	}

	detail, err := c.generationService.GetSessionQuestions(userID, uint(sessionID))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
			return
		}
		log.Error().Err(err).Uint64("sessionID", sessionID).Msg("Get session: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve session"})
		return
	}
	ctx.JSON(http.StatusOK, detail)
}
