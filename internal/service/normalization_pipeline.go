package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/rs/zerolog/log"
)

// NormalizedFile is the uniform output of the pipeline: either optimized
// image bytes or an extracted-text JSON document, ready to persist.
type NormalizedFile struct {
	FileName string
	Kind     model.ArtifactKind
	MimeType string
	Data     []byte
}

// extractedTextDoc is the stored representation of text pulled from a
// PDF, wrapped in a data:application/json;base64 URI.
type extractedTextDoc struct {
	Text         string `json:"text"`
	Source       string `json:"source"`
	Pages        int    `json:"pages"`
	TotalPages   int    `json:"totalPages"`
	OriginalName string `json:"originalName"`
}

// NormalizationPipeline turns one uploaded file into a storable
// artifact. Terminal outcomes are a NormalizedFile or a rejection
// error; soft failures (HEIC transcode, optimization) degrade quality
// but never reject.
type NormalizationPipeline interface {
	Normalize(ctx context.Context, originalName, declaredMime string, data []byte) (*NormalizedFile, error)
}

type normalizationPipeline struct {
	detector   FormatDetector
	transcoder HeicTranscoder
	extractor  DocumentTextExtractor
	optimizer  ImageOptimizer
}

func NewNormalizationPipeline(
	detector FormatDetector,
	transcoder HeicTranscoder,
	extractor DocumentTextExtractor,
	optimizer ImageOptimizer,
) NormalizationPipeline {
	return &normalizationPipeline{
		detector:   detector,
		transcoder: transcoder,
		extractor:  extractor,
		optimizer:  optimizer,
	}
}

func (p *normalizationPipeline) Normalize(ctx context.Context, originalName, declaredMime string, data []byte) (*NormalizedFile, error) {
	format := p.detector.Detect(originalName, declaredMime, data)
	log.Info().Str("file", originalName).Str("format", format.String()).Int("bytes", len(data)).Msg("Normalizing upload")

	switch format {
	case FormatPdf:
		extraction, err := p.extractor.Extract(ctx, data)
		if err != nil {
			return nil, err
		}
		doc := extractedTextDoc{
			Text:         extraction.Text,
			Source:       extraction.Source,
			Pages:        extraction.PagesProcessed,
			TotalPages:   extraction.TotalPages,
			OriginalName: originalName,
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode extracted text: %w", err)
		}
		return &NormalizedFile{
			FileName: textFileName(originalName),
			Kind:     model.ArtifactKindExtractedText,
			MimeType: "application/json",
			Data:     payload,
		}, nil

	case FormatVector:
		// SVG passes through untouched.
		return &NormalizedFile{
			FileName: originalName,
			Kind:     model.ArtifactKindImage,
			MimeType: "image/svg+xml",
			Data:     data,
		}, nil

	case FormatHeicLike:
		result := p.transcoder.Transcode(data)
		fileName := originalName
		if !result.Degraded {
			fileName = JpegFileName(originalName)
		}
		return p.normalizeRaster(fileName, result.Data), nil

	case FormatRaster:
		return p.normalizeRaster(originalName, data), nil

	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, originalName, declaredMime)
	}
}

func (p *normalizationPipeline) normalizeRaster(fileName string, data []byte) *NormalizedFile {
	result := p.optimizer.Optimize(data, StorageMaxDimension, StorageJpegQuality)
	if result.Degraded {
		// Keep the original bytes with their true MIME type; better to
		// store something than nothing.
		return &NormalizedFile{
			FileName: fileName,
			Kind:     model.ArtifactKindImage,
			MimeType: mimetype.Detect(data).String(),
			Data:     data,
		}
	}
	return &NormalizedFile{
		FileName: JpegFileName(fileName),
		Kind:     model.ArtifactKindImage,
		MimeType: "image/jpeg",
		Data:     result.Data,
	}
}

func textFileName(pdfName string) string {
	base := strings.TrimSuffix(pdfName, ".pdf")
	base = strings.TrimSuffix(base, ".PDF")
	return base + "_text.json"
}
