package handler

import (
	"context"
	"io"
	"strings"
	"sync"

	"pdf-ocr-server/internal/domain"
)

// Mock logger used by handler package tests.
type MockHandlerLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockHandlerLogger() *MockHandlerLogger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) record(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, line)
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{}) {
	l.record("INFO: " + msg)
}

func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {
	l.record("ERROR: " + msg)
}

func (l *MockHandlerLogger) Debug(msg string, fields ...interface{}) {
	l.record("DEBUG: " + msg)
}

func (l *MockHandlerLogger) Warn(msg string, fields ...interface{}) {
	l.record("WARN: " + msg)
}

func (l *MockHandlerLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *MockHandlerLogger) Contains(prefix string) bool {
	for _, m := range l.Messages() {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// MockConverter records the request it was given and returns a canned outcome
type MockConverter struct {
	mu       sync.Mutex
	calls    int
	lastReq  *domain.ConversionRequest
	lastBody []byte
	result   *domain.ConversionResult
	err      error
	panicMsg string
}

func (m *MockConverter) Convert(ctx context.Context, req *domain.ConversionRequest) (*domain.ConversionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req
	if req != nil && req.Payload != nil {
		m.lastBody, _ = io.ReadAll(req.Payload)
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.result, m.err
}
