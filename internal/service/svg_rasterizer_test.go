package service

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSvg(width, height int) []byte {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d"><rect x="0" y="0" width="%d" height="%d" fill="#ff0000"/></svg>`,
		width, height, width, height))
}

func TestRasterizeSvgBoundsOutput(t *testing.T) {
	data, err := RasterizeSvg(sampleSvg(1000, 400), ModelMaxDimension, ModelJpegQuality)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestRasterizeSvgKeepsSmallDimensions(t *testing.T) {
	data, err := RasterizeSvg(sampleSvg(100, 50), ModelMaxDimension, ModelJpegQuality)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestRasterizeSvgRejectsMalformedInput(t *testing.T) {
	_, err := RasterizeSvg([]byte("definitely not xml"), ModelMaxDimension, ModelJpegQuality)
	assert.Error(t, err)
}
