package service

import "errors"

// Failure taxonomy for the upload/generation flow. Validation and
// batch-fatal conditions are surfaced as wrapped sentinels; soft
// degradations (HEIC transcode, image optimization) are never errors.
var (
	// ErrUnsupportedFormat rejects a file whose extension and declared
	// MIME type both fall outside the accepted set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrPdfTextExtractionFailed means neither embedded text nor OCR
	// yielded any content for a PDF. Callers must not treat an empty
	// string as usable output.
	ErrPdfTextExtractionFailed = errors.New("pdf text extraction failed")

	// ErrNoQuestionTypesEnabled rejects a generation config whose type
	// map enables no known question type.
	ErrNoQuestionTypesEnabled = errors.New("no question types enabled")

	// ErrNoArtifactsFound means none of the requested artifact ids
	// resolved to stored rows.
	ErrNoArtifactsFound = errors.New("no artifacts found")

	// ErrNoValidContent means every selected artifact failed to decode,
	// leaving neither text nor images to send to the model.
	ErrNoValidContent = errors.New("no valid content in selected artifacts")

	// ErrInvalidModelResponse means the model response contained no
	// parseable JSON array.
	ErrInvalidModelResponse = errors.New("model response did not contain a JSON array")

	// ErrEmptyGenerationResult means the model responded but, after
	// filtering to the allowed types, no questions remained.
	ErrEmptyGenerationResult = errors.New("model generated no questions of the requested types")

	// ErrServiceNotConfigured distinguishes a missing API credential
	// from content problems.
	ErrServiceNotConfigured = errors.New("generation service is not configured")
)
