// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"pdf-ocr-server/internal/domain"
	apperrors "pdf-ocr-server/pkg/errors"
)

const (
	uploadField = "file"

	// headroom for multipart boundaries and headers on top of the file limit
	multipartOverhead = 1 << 20
	// parts larger than this spill to disk while parsing
	multipartMemory = 8 << 20
)

// OCRHandler handles the PDF OCR endpoint
type OCRHandler struct {
	converter   domain.Converter
	maxFileSize int64
	logger      domain.Logger
}

// NewOCRHandler creates a new OCR handler
func NewOCRHandler(converter domain.Converter, maxFileSize int64, logger domain.Logger) *OCRHandler {
	return &OCRHandler{
		converter:   converter,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ProcessPDF accepts a multipart upload in field "file" and answers with the OCR'd PDF
func (h *OCRHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestIDFromContext(r.Context())

	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.writeFailure(w, requestID, h.parseError(err))
		return
	}

	req := &domain.ConversionRequest{RequestID: requestID}

	// a non-multipart body simply has no file part
	if r.MultipartForm == nil {
		h.convert(w, r, req)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	switch {
	case err == nil:
		defer file.Close()
		if h.maxFileSize > 0 && header.Size > h.maxFileSize {
			h.writeFailure(w, requestID, h.tooLarge())
			return
		}
		req.Filename = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.Size = header.Size
		req.Payload = file
	case errors.Is(err, http.ErrMissingFile):
		// a file input submitted with nothing selected arrives as a plain
		// value with an empty filename
		if values, ok := r.MultipartForm.Value[uploadField]; ok && len(values) > 0 {
			req.Payload = strings.NewReader(values[0])
		}
	default:
		h.writeFailure(w, requestID, apperrors.NewValidationError("Malformed multipart request", err))
		return
	}

	h.convert(w, r, req)
}

// convert runs the conversion and writes either the PDF or the JSON failure, never both
func (h *OCRHandler) convert(w http.ResponseWriter, r *http.Request, req *domain.ConversionRequest) {
	requestID := req.RequestID

	result, err := h.converter.Convert(r.Context(), req)
	if err != nil {
		h.writeFailure(w, requestID, apperrors.AsAppError(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": domain.OutputFilename(req.Filename),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	if result.PageCount > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(result.PageCount))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		h.logger.Warn("Failed to write OCR response", "request_id", requestID, "reason", err.Error())
	}
}

func (h *OCRHandler) parseError(err error) *apperrors.AppError {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
		return h.tooLarge()
	}
	return apperrors.NewValidationError("Malformed multipart request", err)
}

func (h *OCRHandler) tooLarge() *apperrors.AppError {
	return apperrors.NewValidationError(fmt.Sprintf("File exceeds the maximum size of %d bytes", h.maxFileSize), nil)
}

// writeFailure logs server-side failures in full and writes the JSON body
func (h *OCRHandler) writeFailure(w http.ResponseWriter, requestID string, appErr *apperrors.AppError) {
	if appErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("OCR request failed", appErr,
			"request_id", requestID,
			"type", appErr.Type,
			"details", appErr.Details,
			"stderr", appErr.Stderr,
		)
	} else {
		h.logger.Debug("OCR request rejected", "request_id", requestID, "reason", appErr.Message)
	}
	writeError(w, appErr)
}
