package service

import (
	"bytes"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// Optimization targets for the two call sites: storage favors small
// rows, the model payload favors small requests.
const (
	StorageMaxDimension = 600
	StorageJpegQuality  = 60
	ModelMaxDimension   = 800
	ModelJpegQuality    = 85
)

// OptimizeResult is a tagged outcome: Degraded means decode or encode
// failed and Data still holds the original bytes unmodified.
type OptimizeResult struct {
	Data     []byte
	Degraded bool
}

// ImageOptimizer bounds a raster image's dimensions and re-encodes it as
// JPEG. It is a best-effort size reduction, never a hard requirement:
// any failure keeps the original bytes.
type ImageOptimizer interface {
	Optimize(data []byte, maxDimension, quality int) OptimizeResult
}

type imageOptimizer struct{}

func NewImageOptimizer() ImageOptimizer {
	return &imageOptimizer{}
}

func (o *imageOptimizer) Optimize(data []byte, maxDimension, quality int) OptimizeResult {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("Image decode failed, keeping original bytes")
		return OptimizeResult{Data: data, Degraded: true}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Fit inside maxDimension x maxDimension preserving aspect ratio,
	// never upscaling.
	if width > maxDimension || height > maxDimension {
		scale := float64(maxDimension) / float64(width)
		if height > width {
			scale = float64(maxDimension) / float64(height)
		}
		dstW := int(float64(width) * scale)
		dstH := int(float64(height) * scale)
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		log.Warn().Err(err).Str("format", format).Msg("JPEG encode failed, keeping original bytes")
		return OptimizeResult{Data: data, Degraded: true}
	}

	return OptimizeResult{Data: buf.Bytes()}
}

// JpegFileName renames an arbitrary image file name to .jpg after
// re-encoding; names already ending in .jpg/.jpeg are untouched.
func JpegFileName(name string) string {
	ext := filepath.Ext(name)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return name
	case "":
		return name + ".jpg"
	default:
		return strings.TrimSuffix(name, ext) + ".jpg"
	}
}
