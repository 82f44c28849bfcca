package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"pdf-ocr-server/internal/domain"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the tool is killed
const waitDelay = 5 * time.Second

// ToolOptions configures how the OCR tool is invoked
type ToolOptions struct {
	Path      string
	Mode      string
	Language  string
	ExtraArgs []string
	Timeout   time.Duration
}

// OCRInvoker runs the OCR command-line tool as a child process
type OCRInvoker struct {
	opts   ToolOptions
	logger domain.Logger
}

// ResolveTool locates the OCR executable once at startup
func ResolveTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrToolNotFound, name, err)
	}
	return path, nil
}

// ToolVersion asks the tool for its version string
func ToolVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to query %s version: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// NewOCRInvoker creates an invoker for an already resolved tool path
func NewOCRInvoker(opts ToolOptions, logger domain.Logger) *OCRInvoker {
	return &OCRInvoker{opts: opts, logger: logger}
}

// Args builds the argument list: mode and language flags, extra flags, then input and output
func (i *OCRInvoker) Args(inputPath, outputPath string) []string {
	var args []string
	switch i.opts.Mode {
	case "skip-text":
		args = append(args, "--skip-text")
	case "force-ocr":
		args = append(args, "--force-ocr")
	case "redo-ocr":
		args = append(args, "--redo-ocr")
	}
	if i.opts.Language != "" {
		args = append(args, "--language", i.opts.Language)
	}
	args = append(args, i.opts.ExtraArgs...)
	return append(args, inputPath, outputPath)
}

// Invoke runs the tool and waits for it to exit.
// A non-zero exit or timeout is reported in the result, not as an error;
// errors mean the tool could not be run at all or ctx was cancelled.
func (i *OCRInvoker) Invoke(ctx context.Context, inputPath, outputPath string) (*domain.InvocationResult, error) {
	runCtx := ctx
	if i.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, i.opts.Timeout)
		defer cancel()
	}

	args := i.Args(inputPath, outputPath)
	cmd := exec.CommandContext(runCtx, i.opts.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	i.logger.Debug("Running OCR tool", "tool", i.opts.Path, "args", args)

	start := time.Now()
	err := cmd.Run()
	result := &domain.InvocationResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result, nil
	}

	if ctxErr := runCtx.Err(); ctxErr != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("ocr tool interrupted: %w", ctx.Err())
		}
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrToolNotFound, i.opts.Path, err)
	}
	return nil, fmt.Errorf("failed to run %s: %w", i.opts.Path, err)
}

// exitCodeHints translates ocrmypdf exit statuses into something readable
var exitCodeHints = map[int]string{
	1:   "bad arguments",
	2:   "input file is not a valid PDF",
	3:   "a required dependency of the OCR tool is missing",
	4:   "output file is invalid",
	5:   "file access error",
	6:   "page already has text",
	7:   "a child process of the OCR tool failed",
	8:   "input PDF is encrypted",
	9:   "invalid OCR tool configuration",
	10:  "PDF/A conversion failed",
	15:  "unspecified OCR tool error",
	130: "interrupted",
}

// DescribeExit summarizes an invocation failure for error details
func DescribeExit(result *domain.InvocationResult, timeout time.Duration) string {
	if result.TimedOut {
		return fmt.Sprintf("OCR tool timed out after %s", timeout)
	}
	if hint, ok := exitCodeHints[result.ExitCode]; ok {
		return fmt.Sprintf("OCR tool exited with status %d: %s", result.ExitCode, hint)
	}
	return fmt.Sprintf("OCR tool exited with status %d", result.ExitCode)
}
