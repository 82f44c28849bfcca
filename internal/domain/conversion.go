package domain

import (
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ConversionRequest is one uploaded document awaiting OCR.
// Filename and Payload come straight from the caller and are untrusted.
type ConversionRequest struct {
	RequestID   string
	Filename    string
	ContentType string
	Size        int64
	Payload     io.Reader
}

// ConversionResult holds the OCR'd document returned to the caller
type ConversionResult struct {
	Content   []byte        `json:"-"`
	PageCount int           `json:"page_count,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// InvocationResult is the outcome of one external tool run
type InvocationResult struct {
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

// Succeeded reports whether the tool exited zero
func (r *InvocationResult) Succeeded() bool {
	return r != nil && !r.TimedOut && r.ExitCode == 0
}

// ValidateUpload checks the declared upload before any filesystem or process work.
// The extension comparison is case-insensitive; acceptedExt may be given with or without the dot.
func ValidateUpload(present bool, filename, acceptedExt string) error {
	if !present {
		return &ValidationError{Field: "file", Message: "No file part", Err: ErrMissingFile}
	}

	if strings.TrimSpace(filename) == "" {
		return &ValidationError{Field: "file", Message: "No selected file", Err: ErrEmptyFilename}
	}

	want := strings.ToLower(acceptedExt)
	if want != "" && !strings.HasPrefix(want, ".") {
		want = "." + want
	}
	if got := strings.ToLower(filepath.Ext(filename)); got != want {
		return &ValidationError{
			Field:   "file",
			Message: "File must have a " + want + " extension",
			Err:     ErrInvalidExtension,
		}
	}

	return nil
}

// OutputFilename derives the download name for a processed upload.
// Only the base name of the caller-supplied filename is kept.
func OutputFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "document.pdf"
	}
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == 0x7f {
			return -1
		}
		return r
	}, base)
	return "ocr_" + base
}
