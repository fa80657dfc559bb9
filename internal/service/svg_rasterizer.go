package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSvgDimension stands in when an SVG declares no usable size.
const defaultSvgDimension = 512

// RasterizeSvg renders an SVG document to JPEG bytes fitted within
// maxDimension. Stored SVG artifacts pass through upload untouched, so
// this is the point where they become model-ready pixels. Vectors scale
// losslessly, so the fit happens before rendering instead of after.
func RasterizeSvg(data []byte, maxDimension, quality int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	width := icon.ViewBox.W
	height := icon.ViewBox.H
	if width <= 0 || height <= 0 {
		width = defaultSvgDimension
		height = defaultSvgDimension
	}
	if width > float64(maxDimension) || height > float64(maxDimension) {
		scale := float64(maxDimension) / width
		if height > width {
			scale = float64(maxDimension) / height
		}
		width *= scale
		height *= scale
	}
	dstW := int(width)
	dstH := int(height)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	rgba := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	// JPEG has no alpha channel; render over white.
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(dstW), float64(dstH))
	scanner := rasterx.NewScannerGV(dstW, dstH, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(dstW, dstH, scanner), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode rasterized svg: %w", err)
	}
	return buf.Bytes(), nil
}
