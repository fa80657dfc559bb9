package service

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileFormat classifies an uploaded blob for the normalization pipeline.
type FileFormat int

const (
	FormatUnsupported FileFormat = iota
	FormatRaster
	FormatVector
	FormatHeicLike
	FormatPdf
)

func (f FileFormat) String() string {
	switch f {
	case FormatRaster:
		return "raster"
	case FormatVector:
		return "vector"
	case FormatHeicLike:
		return "heic"
	case FormatPdf:
		return "pdf"
	default:
		return "unsupported"
	}
}

// FormatDetector decides which branch of the pipeline handles a file.
type FormatDetector interface {
	Detect(fileName, declaredMime string, data []byte) FileFormat
}

type formatDetector struct{}

func NewFormatDetector() FormatDetector {
	return &formatDetector{}
}

var rasterExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tiff": true, ".tif": true,
}

// Detect accepts a file when EITHER its extension is in the known set OR
// its declared MIME starts with image/ (or equals application/pdf).
// Clients frequently mislabel MIME types, so the OR is deliberate.
func (d *formatDetector) Detect(fileName, declaredMime string, data []byte) FileFormat {
	ext := strings.ToLower(filepath.Ext(fileName))
	declaredMime = strings.ToLower(strings.TrimSpace(declaredMime))

	switch {
	case ext == ".pdf" || declaredMime == "application/pdf":
		return FormatPdf
	case ext == ".svg" || declaredMime == "image/svg+xml":
		// SVG is passed through unchanged, never re-encoded.
		return FormatVector
	case ext == ".heic" || ext == ".heif" || strings.HasPrefix(declaredMime, "image/hei"):
		return FormatHeicLike
	case rasterExtensions[ext]:
		return FormatRaster
	case strings.HasPrefix(declaredMime, "image/"):
		// Mislabeled or missing extension. Sniff the content so HEIC
		// containers still reach the transcoder instead of the raster
		// decoder.
		sniffed := mimetype.Detect(data)
		if strings.HasPrefix(sniffed.String(), "image/hei") {
			return FormatHeicLike
		}
		return FormatRaster
	default:
		return FormatUnsupported
	}
}
