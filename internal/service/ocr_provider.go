package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/quizforge/quizforge/config"
	"github.com/rs/zerolog/log"
)

// TextOcrProvider recognizes text in a scanned PDF. The production
// implementation shells out to external tools; tests substitute an
// in-memory fake.
type TextOcrProvider interface {
	// ExtractText returns the recognized text and the number of pages
	// actually processed (bounded by maxPages).
	ExtractText(ctx context.Context, pdfData []byte, maxPages int) (string, int, error)
}

// ocrRasterDPI matches what the OCR engine was tuned against; lower
// densities noticeably hurt recognition on textbook scans.
const ocrRasterDPI = "300"

type commandOcrProvider struct {
	pdftoppmPath  string
	tesseractPath string
}

// NewCommandOcrProvider builds the production provider invoking
// pdftoppm (Poppler) to rasterize pages and tesseract to recognize them.
func NewCommandOcrProvider(cfg *config.Config) TextOcrProvider {
	return &commandOcrProvider{
		pdftoppmPath:  cfg.Ocr.PdftoppmPath,
		tesseractPath: cfg.Ocr.TesseractPath,
	}
}

func (p *commandOcrProvider) ExtractText(ctx context.Context, pdfData []byte, maxPages int) (string, int, error) {
	tmpDir, err := os.MkdirTemp("", "quizforge-ocr-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp dir for OCR: %w", err)
	}
	// Page images are scoped to this call; remove them on success and
	// failure alike so failed batches cannot accumulate on disk.
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, uuid.NewString()+".pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return "", 0, fmt.Errorf("failed to write temp PDF for OCR: %w", err)
	}

	imagePrefix := filepath.Join(tmpDir, "page")
	rasterize := exec.CommandContext(ctx, p.pdftoppmPath, "-png", "-r", ocrRasterDPI, pdfPath, imagePrefix)
	if out, err := rasterize.CombinedOutput(); err != nil {
		return "", 0, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pageImages, err := filepath.Glob(imagePrefix + "*.png")
	if err != nil || len(pageImages) == 0 {
		return "", 0, fmt.Errorf("no page images produced by pdftoppm")
	}
	// pdftoppm zero-pads page numbers, so lexicographic order is page order.
	sort.Strings(pageImages)

	if len(pageImages) > maxPages {
		pageImages = pageImages[:maxPages]
	}

	var pages []string
	for i, imgPath := range pageImages {
		recognize := exec.CommandContext(ctx, p.tesseractPath, imgPath, "stdout", "-l", "eng", "--oem", "1", "--psm", "3")
		var out bytes.Buffer
		recognize.Stdout = &out
		if err := recognize.Run(); err != nil {
			// Per-page failures are non-fatal to the document.
			log.Warn().Err(err).Int("page", i+1).Msg("tesseract failed on page, skipping")
			continue
		}
		if text := strings.TrimSpace(out.String()); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), len(pageImages), nil
}
