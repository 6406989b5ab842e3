package mosaic

import "errors"

// ErrFileExists is returned when the computed artifact path already exists
// and config.Output.Overwrite is false.
var ErrFileExists = errors.New("mosaic: file exists")

// ErrSaveFailed is returned when the atomic write of the encoded mosaic
// fails.
var ErrSaveFailed = errors.New("mosaic: save failed")

// ErrCancelled is returned when generation is cancelled mid-flight; any
// partial temp file is removed before it is returned.
var ErrCancelled = errors.New("mosaic: cancelled")

// GenerationError wraps a fatal, non-retryable failure from an earlier
// pipeline stage (layout solving or frame extraction).
type GenerationError struct {
	Underlying error
}

func (e *GenerationError) Error() string { return "mosaic: generation failed: " + e.Underlying.Error() }
func (e *GenerationError) Unwrap() error { return e.Underlying }
