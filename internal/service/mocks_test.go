package service

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"pdf-ocr-server/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		msg += " - " + err.Error()
	}
	m.record("ERROR: " + msg)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

// MockInvoker runs fn in place of the OCR tool
type MockInvoker struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, inputPath, outputPath string) (*domain.InvocationResult, error)
}

func (m *MockInvoker) Invoke(ctx context.Context, inputPath, outputPath string) (*domain.InvocationResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(ctx, inputPath, outputPath)
}

func (m *MockInvoker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// copyInvoker behaves like a successful OCR run that writes prefix+input to the output
func copyInvoker(prefix string) *MockInvoker {
	return &MockInvoker{fn: func(_ context.Context, in, out string) (*domain.InvocationResult, error) {
		data, err := os.ReadFile(in)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(out, append([]byte(prefix), data...), 0o600); err != nil {
			return nil, err
		}
		return &domain.InvocationResult{ExitCode: 0, Stdout: "done"}, nil
	}}
}

type MockInspector struct {
	pages int
	err   error
}

func (m *MockInspector) Inspect(path string) (int, error) {
	return m.pages, m.err
}

// writeFakeTool writes an executable shell script standing in for ocrmypdf
func writeFakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake OCR tool needs a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-ocrmypdf")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return path
}

// lastTwoArgs is shell that sets $in and $out to the final two arguments
const lastTwoArgs = `for arg do in=$out; out=$arg; done`

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected empty scratch dir, found %v", names)
	}
}
