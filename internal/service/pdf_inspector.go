package service

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"pdf-ocr-server/internal/domain"
)

// FitzInspector opens OCR output with MuPDF to confirm it is a readable PDF
type FitzInspector struct {
	logger domain.Logger
}

// NewFitzInspector creates a new output inspector
func NewFitzInspector(logger domain.Logger) *FitzInspector {
	return &FitzInspector{logger: logger}
}

// Inspect returns the page count of the PDF at path
func (i *FitzInspector) Inspect(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages <= 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}

	meta := doc.Metadata()
	i.logger.Debug("Inspected OCR output", "path", path, "pages", pages, "producer", meta["producer"])
	return pages, nil
}
