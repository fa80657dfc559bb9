package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/quizforge/quizforge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	result *PdfExtraction
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, pdfData []byte) (*PdfExtraction, error) {
	return f.result, f.err
}

func newTestPipeline(extractor DocumentTextExtractor) NormalizationPipeline {
	return NewNormalizationPipeline(
		NewFormatDetector(),
		NewHeicTranscoder(),
		extractor,
		NewImageOptimizer(),
	)
}

func TestNormalizeRasterImage(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{})

	normalized, err := pipeline.Normalize(context.Background(), "diagram.png", "image/png", pngBytes(t, 900, 600))
	require.NoError(t, err)

	assert.Equal(t, "diagram.jpg", normalized.FileName)
	assert.Equal(t, model.ArtifactKindImage, normalized.Kind)
	assert.Equal(t, "image/jpeg", normalized.MimeType)

	w, h := decodeJpegBounds(t, normalized.Data)
	assert.LessOrEqual(t, w, StorageMaxDimension)
	assert.LessOrEqual(t, h, StorageMaxDimension)
}

func TestNormalizeUndecodableRasterKeepsOriginalBytes(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{})

	// Correct extension but corrupt content: accepted, stored as-is.
	corrupt := []byte("corrupt image body")
	normalized, err := pipeline.Normalize(context.Background(), "broken.png", "image/png", corrupt)
	require.NoError(t, err)

	assert.Equal(t, "broken.png", normalized.FileName)
	assert.Equal(t, corrupt, normalized.Data)
	assert.NotEqual(t, "image/jpeg", normalized.MimeType)
}

func TestNormalizeSvgPassThrough(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{})

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="10" height="10"/></svg>`)
	normalized, err := pipeline.Normalize(context.Background(), "figure.svg", "image/svg+xml", svg)
	require.NoError(t, err)

	assert.Equal(t, "figure.svg", normalized.FileName)
	assert.Equal(t, "image/svg+xml", normalized.MimeType)
	assert.Equal(t, svg, normalized.Data)
}

func TestNormalizeHeicDegradedKeepsNameAndBytes(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{})

	// Not a decodable HEIC: the transcoder soft-fails and the original
	// extension must survive.
	bogus := []byte("pretend heic payload")
	normalized, err := pipeline.Normalize(context.Background(), "IMG_0001.heic", "image/heic", bogus)
	require.NoError(t, err)

	assert.Equal(t, "IMG_0001.heic", normalized.FileName)
	assert.Equal(t, model.ArtifactKindImage, normalized.Kind)
	assert.Equal(t, bogus, normalized.Data)
}

func TestNormalizePdfProducesTextDocument(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{result: &PdfExtraction{
		Text:           "--- Page 1 ---\nCell division\n\n",
		Source:         TextSourcePdf,
		PagesProcessed: 1,
		TotalPages:     1,
	}})

	normalized, err := pipeline.Normalize(context.Background(), "biology.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "biology_text.json", normalized.FileName)
	assert.Equal(t, model.ArtifactKindExtractedText, normalized.Kind)
	assert.Equal(t, "application/json", normalized.MimeType)

	var doc extractedTextDoc
	require.NoError(t, json.Unmarshal(normalized.Data, &doc))
	assert.Equal(t, TextSourcePdf, doc.Source)
	assert.Equal(t, "biology.pdf", doc.OriginalName)
	assert.Equal(t, 1, doc.Pages)
	assert.Contains(t, doc.Text, "Cell division")
}

func TestNormalizePdfExtractionFailureRejects(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{err: ErrPdfTextExtractionFailed})

	_, err := pipeline.Normalize(context.Background(), "scan.pdf", "application/pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrPdfTextExtractionFailed)
}

func TestNormalizeUnsupportedFormatRejects(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{})

	_, err := pipeline.Normalize(context.Background(), "notes.txt", "text/plain", []byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTextFileName(t *testing.T) {
	assert.Equal(t, "chapter1_text.json", textFileName("chapter1.pdf"))
	assert.Equal(t, "CHAPTER2_text.json", textFileName("CHAPTER2.PDF"))
	assert.Equal(t, "weird.name_text.json", textFileName("weird.name.pdf"))
}
