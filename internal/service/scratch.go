package service

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"pdf-ocr-server/internal/domain"
)

const scratchPrefix = "ocr-"

// ScratchManager hands out uniquely named input/output paths under one directory.
// Uniqueness comes from a random token, so concurrent requests share the
// directory without locking.
type ScratchManager struct {
	dir    string
	logger domain.Logger
}

// ScratchArtifacts is the pair of scratch paths owned by a single request
type ScratchArtifacts struct {
	ID         string
	InputPath  string
	OutputPath string

	logger   domain.Logger
	mu       sync.Mutex
	released bool
}

// NewScratchManager creates a manager rooted at dir, creating it if needed
func NewScratchManager(dir string, logger domain.Logger) (*ScratchManager, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir %s: %w", dir, err)
	}
	return &ScratchManager{dir: dir, logger: logger}, nil
}

// Dir returns the scratch root
func (m *ScratchManager) Dir() string {
	return m.dir
}

// Acquire reserves a fresh pair of paths. The caller must Release them.
func (m *ScratchManager) Acquire() (*ScratchArtifacts, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate scratch token: %w", err)
	}
	id := token.String()
	artifacts := &ScratchArtifacts{
		ID:         id,
		InputPath:  filepath.Join(m.dir, scratchPrefix+id+"-input.pdf"),
		OutputPath: filepath.Join(m.dir, scratchPrefix+id+"-output.pdf"),
		logger:     m.logger,
	}
	m.logger.Debug("Scratch artifacts acquired", "scratch_id", id, "input", artifacts.InputPath, "output", artifacts.OutputPath)
	return artifacts, nil
}

// WriteInput stages the payload at InputPath.
// The file is created exclusively so a stale or foreign file is never reused.
func (a *ScratchArtifacts) WriteInput(r io.Reader) (int64, error) {
	a.mu.Lock()
	released := a.released
	a.mu.Unlock()
	if released {
		return 0, domain.ErrScratchReleased
	}

	f, err := os.OpenFile(a.InputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, fmt.Errorf("failed to create scratch input: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return n, fmt.Errorf("failed to write scratch input: %w", copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("failed to close scratch input: %w", closeErr)
	}
	return n, nil
}

// ReadOutput returns the full output artifact.
// A missing or empty artifact reports domain.ErrOutputMissing.
func (a *ScratchArtifacts) ReadOutput() ([]byte, error) {
	data, err := os.ReadFile(a.OutputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("output file was not created: %w", domain.ErrOutputMissing)
		}
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("output file is empty: %w", domain.ErrOutputMissing)
	}
	return data, nil
}

// Release removes both paths. Absent files are not an error and
// calling Release more than once is a no-op.
func (a *ScratchArtifacts) Release() error {
	a.mu.Lock()
	if a.released {
		a.mu.Unlock()
		return nil
	}
	a.released = true
	a.mu.Unlock()

	var err error
	for _, path := range []string{a.InputPath, a.OutputPath} {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = multierr.Append(err, rmErr)
		}
	}

	if err != nil {
		a.logger.Warn("Failed to release scratch artifacts", "scratch_id", a.ID, "error", err.Error())
		return err
	}
	a.logger.Debug("Scratch artifacts released", "scratch_id", a.ID)
	return nil
}
