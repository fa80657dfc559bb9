package service

import (
	"bytes"
	"image/jpeg"

	"github.com/adrium/goheif"
	"github.com/rs/zerolog/log"
)

const heicJpegQuality = 95

// TranscodeResult is a tagged outcome: Degraded means the conversion did
// not happen and Data still holds the original bytes.
type TranscodeResult struct {
	Data     []byte
	Degraded bool
}

// HeicTranscoder converts HEIC/HEIF containers to JPEG. Transcoding
// failure is a soft-fail: the caller keeps the original bytes and the
// .heic name rather than losing the upload.
type HeicTranscoder interface {
	Transcode(data []byte) TranscodeResult
}

type heicTranscoder struct{}

func NewHeicTranscoder() HeicTranscoder {
	return &heicTranscoder{}
}

func (t *heicTranscoder) Transcode(data []byte) TranscodeResult {
	img, err := goheif.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("HEIC decode failed, keeping original bytes")
		return TranscodeResult{Data: data, Degraded: true}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: heicJpegQuality}); err != nil {
		log.Warn().Err(err).Msg("JPEG encode of decoded HEIC failed, keeping original bytes")
		return TranscodeResult{Data: data, Degraded: true}
	}

	return TranscodeResult{Data: buf.Bytes()}
}
