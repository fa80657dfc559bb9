package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// Page caps for the two extraction tiers. OCR is expensive per page, so
// its cap is lower than the embedded-text cap.
const (
	MaxTextExtractionPages = 20
	MaxOcrPages            = 10
)

const (
	// TextSourcePdf tags text read directly from the PDF's embedded
	// text runs; TextSourceOcr tags text recognized from rasterized
	// pages of a scanned PDF.
	TextSourcePdf = "pdf"
	TextSourceOcr = "ocr"
)

// PdfExtraction is the result of text extraction from one document.
type PdfExtraction struct {
	Text           string
	Source         string
	PagesProcessed int
	TotalPages     int
}

// DocumentTextExtractor pulls machine text out of a PDF. Embedded text
// is the cheap, exact tier; OCR only fires when the document has no
// embedded text at all (a scanned PDF).
type DocumentTextExtractor interface {
	Extract(ctx context.Context, pdfData []byte) (*PdfExtraction, error)
}

type documentTextExtractor struct {
	ocr TextOcrProvider
}

func NewDocumentTextExtractor(ocr TextOcrProvider) DocumentTextExtractor {
	return &documentTextExtractor{ocr: ocr}
}

func (e *documentTextExtractor) Extract(ctx context.Context, pdfData []byte) (*PdfExtraction, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open document: %v", ErrPdfTextExtractionFailed, err)
	}
	defer doc.Close()

	totalPages := doc.NumPage()
	if totalPages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrPdfTextExtractionFailed)
	}

	pagesProcessed := totalPages
	if pagesProcessed > MaxTextExtractionPages {
		pagesProcessed = MaxTextExtractionPages
	}

	var builder strings.Builder
	for pageNum := 0; pageNum < pagesProcessed; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		pageText, err := doc.Text(pageNum)
		if err != nil {
			log.Warn().Err(err).Int("page", pageNum+1).Msg("Failed to extract text from page, skipping")
			continue
		}
		builder.WriteString(fmt.Sprintf("--- Page %d ---\n", pageNum+1))
		builder.WriteString(strings.Join(strings.Fields(pageText), " "))
		builder.WriteString("\n\n")
	}

	if text := builder.String(); !isBlank(text) {
		log.Info().Int("pages", pagesProcessed).Int("totalPages", totalPages).Int("chars", len(text)).Msg("Extracted embedded PDF text")
		return &PdfExtraction{
			Text:           text,
			Source:         TextSourcePdf,
			PagesProcessed: pagesProcessed,
			TotalPages:     totalPages,
		}, nil
	}

	// No embedded text anywhere: this is an image-only (scanned) PDF.
	log.Info().Int("totalPages", totalPages).Msg("PDF has no embedded text, falling back to OCR")

	ocrText, ocrPages, err := e.ocr.ExtractText(ctx, pdfData, MaxOcrPages)
	if err != nil {
		return nil, fmt.Errorf("%w: OCR fallback failed: %v", ErrPdfTextExtractionFailed, err)
	}
	if isBlank(ocrText) {
		return nil, fmt.Errorf("%w: OCR produced no text", ErrPdfTextExtractionFailed)
	}

	log.Info().Int("pages", ocrPages).Int("chars", len(ocrText)).Msg("OCR fallback extracted text")
	return &PdfExtraction{
		Text:           ocrText,
		Source:         TextSourceOcr,
		PagesProcessed: ocrPages,
		TotalPages:     totalPages,
	}, nil
}

// isBlank mirrors the "empty or whitespace-only" trigger for the OCR
// fallback: extraction that yields only whitespace or page markers is
// not usable content.
func isBlank(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "--- Page ") && strings.HasSuffix(line, " ---") {
			continue
		}
		return false
	}
	return true
}
