package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/middleware"
	"github.com/quizforge/quizforge/internal/service"
	"github.com/rs/zerolog/log"
)

type ArtifactController struct {
	artifactService service.ArtifactService
	cfg             *config.Config
}

func NewArtifactController(artifactService service.ArtifactService, cfg *config.Config) *ArtifactController {
	return &ArtifactController{artifactService: artifactService, cfg: cfg}
}

// Upload godoc
// @Summary Upload files for question generation
// @Description Accepts images (JPEG, PNG, GIF, WebP, BMP, TIFF, SVG, HEIC) and PDFs under the "files" form field. Each file is normalized independently; rejected files are reported without failing the batch.
// @Tags Artifacts
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload (repeatable)"
// @Success 200 {object} dto.UploadResponseDTO
// @Failure 400 {object} dto.ErrorResponse "No files or limits exceeded"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /artifacts [post]
func (c *ArtifactController) Upload(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid multipart form", Details: []string{err.Error()}})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "No files uploaded"})
		return
	}
	if len(fileHeaders) > c.cfg.Upload.MaxFiles {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: fmt.Sprintf("Too many files; at most %d per request", c.cfg.Upload.MaxFiles)})
		return
	}

	maxBytes := int64(c.cfg.Upload.MaxFileSizeMB) * 1024 * 1024
	files := make([]service.UploadFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		if header.Size > maxBytes {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: fmt.Sprintf("File %s exceeds the %dMB size limit", header.Filename, c.cfg.Upload.MaxFileSizeMB)})
			return
		}
		opened, err := header.Open()
		if err != nil {
			log.Error().Err(err).Str("file", header.Filename).Msg("Upload: Failed to open multipart file")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to read uploaded file"})
			return
		}
		data, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			log.Error().Err(err).Str("file", header.Filename).Msg("Upload: Failed to read multipart file")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to read uploaded file"})
			return
		}
		files = append(files, service.UploadFile{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	resp, err := c.artifactService.UploadFiles(ctx.Request.Context(), userID, files)
	if err != nil {
		log.Error().Err(err).Msg("Upload: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process uploads"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary List the caller's artifacts
// @Tags Artifacts
// @Produce json
// @Success 200 {array} dto.ArtifactSummaryDTO
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /artifacts [get]
func (c *ArtifactController) List(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}

	artifacts, err := c.artifactService.ListArtifacts(userID)
	if err != nil {
		log.Error().Err(err).Msg("List artifacts: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve artifacts"})
		return
	}
	ctx.JSON(http.StatusOK, artifacts)
}

// Delete godoc
// @Summary Delete one artifact
// @Description Soft-deletes the artifact. Sessions that already used it keep their questions.
// @Tags Artifacts
// @Produce json
// @Param artifact_id path int true "Artifact ID"
// @Success 204 "Deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid artifact ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 404 {object} dto.ErrorResponse "Artifact not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /artifacts/{artifact_id} [delete]
func (c *ArtifactController) Delete(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthenticated"})
		return
	}

	artifactID, err := strconv.ParseUint(ctx.Param("artifact_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid artifact ID format"})
		return
	}

	if err := c.artifactService.DeleteArtifact(userID, uint(artifactID)); err != nil {
		if errors.Is(err, service.ErrArtifactNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Artifact not found"})
			return
		}
		log.Error().Err(err).Uint64("artifactID", artifactID).Msg("Delete artifact: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete artifact"})
		return
	}
	ctx.Status(http.StatusNoContent)
}
