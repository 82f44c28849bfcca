package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestMiddleware_AssignsRequestID(t *testing.T) {
	m := NewRequestMiddleware(NewMockHandlerLogger())

	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected uuid request id, got %q", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected response header %q, got %q", seen, rr.Header().Get(RequestIDHeader))
	}
}

func TestRequestMiddleware_KeepsCallerRequestID(t *testing.T) {
	m := NewRequestMiddleware(NewMockHandlerLogger())
	callerID := uuid.NewString()

	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, callerID)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != callerID {
		t.Fatalf("expected %q, got %q", callerID, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "<script>" {
		t.Fatalf("expected malformed caller id to be replaced")
	}
}

func TestRequestMiddleware_RecoverWritesJSON500(t *testing.T) {
	logger := NewMockHandlerLogger()
	m := NewRequestMiddleware(logger)

	h := m.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/process-pdf", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"type":"internal"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
	if !logger.Contains("ERROR: Recovered from panic") {
		t.Fatalf("expected panic to be logged, got %v", logger.Messages())
	}
	if !logger.Contains("INFO: HTTP request") {
		t.Fatalf("expected access log, got %v", logger.Messages())
	}
}

func TestRequestMiddleware_RecoverAfterHeadersWritten(t *testing.T) {
	m := NewRequestMiddleware(NewMockHandlerLogger())

	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected original status to stand, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected no error body after headers, got %s", rr.Body.String())
	}
}

func TestRequestMiddleware_RepanicsAbortHandler(t *testing.T) {
	m := NewRequestMiddleware(NewMockHandlerLogger())

	h := m.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", v)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
