package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pdf-ocr-server/internal/domain"
)

var _ domain.Config = (*AppConfig)(nil)

// OCR invocation modes understood by ocrmypdf
const (
	OCRModeSkipText = "skip-text"
	OCRModeForceOCR = "force-ocr"
	OCRModeRedoOCR  = "redo-ocr"
	OCRModeNone     = "none"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	Host              string        `yaml:"host"`
	ServerPort        string        `yaml:"port"`
	Debug             bool          `yaml:"debug"`
	LogLevel          string        `yaml:"log_level"`
	MaxFileSize       int64         `yaml:"max_file_size"`
	ScratchDir        string        `yaml:"scratch_dir"`
	AcceptedExtension string        `yaml:"accepted_extension"`
	ToolName          string        `yaml:"ocr_tool"`
	OCRMode           string        `yaml:"ocr_mode"`
	OCRLanguage       string        `yaml:"ocr_language"`
	OCRExtraArgs      []string      `yaml:"ocr_extra_args"`
	ToolTimeout       time.Duration `yaml:"ocr_timeout"`
	MaxConcurrent     int           `yaml:"ocr_max_concurrent"`
	VerifyOutput      bool          `yaml:"verify_output"`
	AllowedOrigins    []string      `yaml:"cors_allowed_origins"`
}

// defaultConfig returns the built-in defaults before any file or env overlay
func defaultConfig() *AppConfig {
	return &AppConfig{
		Host:              "0.0.0.0",
		ServerPort:        "5000",
		LogLevel:          "info",
		MaxFileSize:       50 * 1024 * 1024, // 50MB default
		ScratchDir:        os.TempDir(),
		AcceptedExtension: ".pdf",
		ToolName:          "ocrmypdf",
		OCRMode:           OCRModeSkipText,
		ToolTimeout:       10 * time.Minute,
		MaxConcurrent:     runtime.NumCPU(),
		VerifyOutput:      true,
		AllowedOrigins:    []string{"*"},
	}
}

// NewConfig creates a new configuration instance from defaults and environment variables
func NewConfig() *AppConfig {
	cfg := defaultConfig()
	cfg.applyEnv()
	return cfg
}

// LoadConfig reads an optional YAML file and then applies environment overrides.
// An empty path behaves like NewConfig.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	// Cloud Run (and many PaaS) provide the listening port via PORT.
	// Keep SERVER_PORT for local/dev compatibility.
	c.ServerPort = getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", c.ServerPort))
	c.Debug = getEnvBoolOrDefault("DEBUG", c.Debug)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.MaxFileSize = getEnvInt64OrDefault("MAX_FILE_SIZE", c.MaxFileSize)
	c.ScratchDir = getEnvOrDefault("SCRATCH_DIR", c.ScratchDir)
	c.AcceptedExtension = getEnvOrDefault("ACCEPTED_EXTENSION", c.AcceptedExtension)
	c.ToolName = getEnvOrDefault("OCR_TOOL", c.ToolName)
	c.OCRMode = strings.ToLower(getEnvOrDefault("OCR_MODE", c.OCRMode))
	c.OCRLanguage = getEnvOrDefault("OCR_LANGUAGE", c.OCRLanguage)
	if extra := os.Getenv("OCR_EXTRA_ARGS"); extra != "" {
		c.OCRExtraArgs = strings.Fields(extra)
	}
	c.ToolTimeout = getEnvDurationOrDefault("OCR_TIMEOUT", c.ToolTimeout)
	c.MaxConcurrent = int(getEnvInt64OrDefault("OCR_MAX_CONCURRENT", int64(c.MaxConcurrent)))
	c.VerifyOutput = getEnvBoolOrDefault("VERIFY_OUTPUT", c.VerifyOutput)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// Validate rejects settings the server cannot start with
func (c *AppConfig) Validate() error {
	switch c.OCRMode {
	case OCRModeSkipText, OCRModeForceOCR, OCRModeRedoOCR, OCRModeNone:
	default:
		return fmt.Errorf("unknown OCR mode %q", c.OCRMode)
	}
	if c.ToolName == "" {
		return fmt.Errorf("OCR tool must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("OCR timeout must be positive, got %s", c.ToolTimeout)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("OCR max concurrent must be positive, got %d", c.MaxConcurrent)
	}
	return nil
}

// GetHost returns the listen host
func (c *AppConfig) GetHost() string {
	return c.Host
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// IsDebug reports whether debug mode is on
func (c *AppConfig) IsDebug() bool {
	return c.Debug
}

// GetLogLevel returns the logging level; debug mode always logs at debug
func (c *AppConfig) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetScratchDir returns the directory holding per-request scratch files
func (c *AppConfig) GetScratchDir() string {
	return c.ScratchDir
}

// GetAcceptedExtension returns the upload extension accepted by the validator
func (c *AppConfig) GetAcceptedExtension() string {
	return c.AcceptedExtension
}

// GetToolName returns the OCR executable name or path
func (c *AppConfig) GetToolName() string {
	return c.ToolName
}

// GetOCRMode returns the text handling mode passed to the tool
func (c *AppConfig) GetOCRMode() string {
	return c.OCRMode
}

// GetOCRLanguage returns the OCR language, empty for the tool default
func (c *AppConfig) GetOCRLanguage() string {
	return c.OCRLanguage
}

// GetOCRExtraArgs returns additional tool flags
func (c *AppConfig) GetOCRExtraArgs() []string {
	return c.OCRExtraArgs
}

// GetToolTimeout returns the bound on a single tool run
func (c *AppConfig) GetToolTimeout() time.Duration {
	return c.ToolTimeout
}

// GetMaxConcurrent returns how many tool runs may execute at once
func (c *AppConfig) GetMaxConcurrent() int {
	return c.MaxConcurrent
}

// ShouldVerifyOutput reports whether outputs are opened and page-counted
func (c *AppConfig) ShouldVerifyOutput() bool {
	return c.VerifyOutput
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
