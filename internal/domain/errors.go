package domain

import "errors"

// Domain errors
var (
	ErrMissingFile      = errors.New("no file part")
	ErrEmptyFilename    = errors.New("no selected file")
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrToolNotFound     = errors.New("ocr tool not found")
	ErrToolTimeout      = errors.New("ocr tool timed out")
	ErrOutputMissing    = errors.New("ocr output missing")
	ErrScratchReleased  = errors.New("scratch artifacts already released")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Unwrap exposes the sentinel behind the validation failure
func (e *ValidationError) Unwrap() error {
	return e.Err
}
