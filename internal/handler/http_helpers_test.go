package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "pdf-ocr-server/pkg/errors"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperrors.NewValidationError("nope", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %s", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"type":"invalid_request","error":"nope"}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestWriteError_ToolFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperrors.NewToolFailureError("OCR tool exited with status 2", 2, "out", "err", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["type"] != "tool_failure" || body["exit_code"] != float64(2) || body["stderr"] != "err" || body["stdout"] != "out" {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestGetRequestIDFromContext(t *testing.T) {
	if got := GetRequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}

	ctx := context.WithValue(context.Background(), requestIDContextKey, "abc")
	if got := GetRequestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
