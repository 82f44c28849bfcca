package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"pdf-ocr-server/internal/domain"
)

func writeTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake OCR tool needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ocrmypdf")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho 16.0.0\n"), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	return path
}

func TestNewContainer_MissingTool(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OCR_TOOL", "definitely-not-installed-ocr-7c2e")

	_, err := NewContainer(NewConfig())
	if !errors.Is(err, domain.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestNewContainer_Wiring(t *testing.T) {
	clearConfigEnv(t)
	scratch := filepath.Join(t.TempDir(), "scratch")
	tool := writeTool(t)
	t.Setenv("OCR_TOOL", tool)
	t.Setenv("SCRATCH_DIR", scratch)
	t.Setenv("VERIFY_OUTPUT", "false")

	c, err := NewContainer(NewConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	if c.ToolPath != tool {
		t.Fatalf("expected tool path %s, got %s", tool, c.ToolPath)
	}
	if c.Inspector != nil {
		t.Fatalf("expected no inspector when verification is off")
	}
	if c.GetConverter() == nil || c.GetLogger() == nil || c.GetConfig() == nil {
		t.Fatalf("expected all dependencies wired")
	}
	if info, err := os.Stat(scratch); err != nil || !info.IsDir() {
		t.Fatalf("expected scratch dir to be created: %v", err)
	}
}

func TestNewContainer_VerifyOutputWiresInspector(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OCR_TOOL", writeTool(t))
	t.Setenv("SCRATCH_DIR", t.TempDir())

	c, err := NewContainer(NewConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if c.Inspector == nil {
		t.Fatalf("expected inspector when verification is on")
	}
}
