package domain

import (
	"context"
	"time"
)

// Converter defines the managed external-process conversion used by handlers
type Converter interface {
	Convert(ctx context.Context, req *ConversionRequest) (*ConversionResult, error)
}

// ToolInvoker launches the external OCR tool for one input/output pair
type ToolInvoker interface {
	Invoke(ctx context.Context, inputPath, outputPath string) (*InvocationResult, error)
}

// OutputInspector opens a produced artifact and reports its page count
type OutputInspector interface {
	Inspect(path string) (int, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetHost() string
	GetServerPort() string
	IsDebug() bool
	GetLogLevel() string
	GetMaxFileSize() int64
	GetScratchDir() string
	GetAcceptedExtension() string
	GetToolName() string
	GetOCRMode() string
	GetOCRLanguage() string
	GetOCRExtraArgs() []string
	GetToolTimeout() time.Duration
	GetMaxConcurrent() int
	ShouldVerifyOutput() bool
	GetAllowedOrigins() []string
}
