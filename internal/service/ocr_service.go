package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"pdf-ocr-server/internal/domain"
	apperrors "pdf-ocr-server/pkg/errors"
)

// OCRServiceOptions holds the read-only settings of the conversion pipeline
type OCRServiceOptions struct {
	AcceptedExtension string
	ToolName          string
	MaxConcurrent     int
	ToolTimeout       time.Duration
}

var _ domain.Converter = (*OCRService)(nil)

// OCRService runs one upload through validate, stage, invoke, read and cleanup
type OCRService struct {
	scratch   *ScratchManager
	invoker   domain.ToolInvoker
	inspector domain.OutputInspector
	slots     *semaphore.Weighted
	opts      OCRServiceOptions
	logger    domain.Logger
}

// NewOCRService creates a new conversion service.
// inspector may be nil to skip opening the output.
func NewOCRService(
	scratch *ScratchManager,
	invoker domain.ToolInvoker,
	inspector domain.OutputInspector,
	opts OCRServiceOptions,
	logger domain.Logger,
) *OCRService {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &OCRService{
		scratch:   scratch,
		invoker:   invoker,
		inspector: inspector,
		slots:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		opts:      opts,
		logger:    logger,
	}
}

// Convert OCRs the uploaded document. Scratch files are removed on every
// path out of this method, panics included.
func (s *OCRService) Convert(ctx context.Context, req *domain.ConversionRequest) (*domain.ConversionResult, error) {
	present := req != nil && req.Payload != nil
	filename, requestID := "", ""
	if req != nil {
		filename, requestID = req.Filename, req.RequestID
	}

	if err := domain.ValidateUpload(present, filename, s.opts.AcceptedExtension); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return nil, apperrors.NewValidationError(vErr.Message, err)
		}
		return nil, apperrors.NewValidationError(err.Error(), err)
	}

	artifacts, err := s.scratch.Acquire()
	if err != nil {
		s.logger.Error("Failed to acquire scratch artifacts", err, "request_id", requestID)
		return nil, apperrors.NewInternalError("Failed to prepare scratch storage", err)
	}
	defer func() { _ = artifacts.Release() }()

	written, err := artifacts.WriteInput(req.Payload)
	if err != nil {
		s.logger.Error("Failed to stage upload", err, "request_id", requestID, "scratch_id", artifacts.ID)
		return nil, apperrors.NewInternalError("Failed to stage upload", err)
	}
	s.logger.Debug("Upload staged", "request_id", requestID, "scratch_id", artifacts.ID, "bytes", written)

	invocation, err := s.invoke(ctx, artifacts)
	if err != nil {
		if errors.Is(err, errNoSlot) {
			return nil, apperrors.NewInternalError("Request cancelled while waiting for an OCR slot", err)
		}
		if errors.Is(err, domain.ErrToolNotFound) {
			return nil, apperrors.NewToolNotFoundError(s.opts.ToolName, err)
		}
		s.logger.Error("OCR tool could not be run", err, "request_id", requestID, "scratch_id", artifacts.ID)
		return nil, apperrors.NewInternalError("Failed to run OCR tool", err)
	}

	if !invocation.Succeeded() {
		details := DescribeExit(invocation, s.opts.ToolTimeout)
		s.logger.Warn("OCR tool failed",
			"request_id", requestID,
			"scratch_id", artifacts.ID,
			"exit_code", invocation.ExitCode,
			"timed_out", invocation.TimedOut,
			"duration", invocation.Duration,
			"stderr", invocation.Stderr,
		)
		var cause error
		if invocation.TimedOut {
			cause = domain.ErrToolTimeout
		}
		return nil, apperrors.NewToolFailureError(details, invocation.ExitCode, invocation.Stdout, invocation.Stderr, cause)
	}

	content, err := artifacts.ReadOutput()
	if err != nil {
		if errors.Is(err, domain.ErrOutputMissing) {
			s.logger.Warn("OCR tool exited cleanly without output", "request_id", requestID, "scratch_id", artifacts.ID, "reason", err.Error())
			return nil, apperrors.NewOutputMissingError(err.Error(), invocation.Stdout, invocation.Stderr, err)
		}
		return nil, apperrors.NewInternalError("Failed to read OCR output", err)
	}

	result := &domain.ConversionResult{
		Content:  content,
		Duration: invocation.Duration,
	}

	if s.inspector != nil {
		pages, err := s.inspector.Inspect(artifacts.OutputPath)
		if err != nil {
			s.logger.Warn("OCR output is not a readable PDF", "request_id", requestID, "scratch_id", artifacts.ID, "reason", err.Error())
			return nil, apperrors.NewOutputMissingError("output is not a readable PDF: "+err.Error(), invocation.Stdout, invocation.Stderr, err)
		}
		result.PageCount = pages
	}

	s.logger.Info("OCR completed",
		"request_id", requestID,
		"filename", filename,
		"input_bytes", written,
		"output_bytes", len(content),
		"pages", result.PageCount,
		"duration", invocation.Duration,
	)
	return result, nil
}

var errNoSlot = errors.New("no OCR slot")

// invoke runs the tool while holding one concurrency slot
func (s *OCRService) invoke(ctx context.Context, artifacts *ScratchArtifacts) (*domain.InvocationResult, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", errNoSlot, err)
	}
	defer s.slots.Release(1)
	return s.invoker.Invoke(ctx, artifacts.InputPath, artifacts.OutputPath)
}
