package config

import (
	"fmt"

	"pdf-ocr-server/internal/domain"
	"pdf-ocr-server/internal/service"
	"pdf-ocr-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config     domain.Config
	Logger     *logger.AppLogger
	ToolPath   string
	Scratch    *service.ScratchManager
	Invoker    *service.OCRInvoker
	Inspector  domain.OutputInspector
	OCRService *service.OCRService
}

// NewContainer creates a new dependency injection container.
// It fails when the OCR tool cannot be resolved or the scratch directory cannot be created.
func NewContainer(cfg *AppConfig) (*Container, error) {
	var appLogger *logger.AppLogger
	if cfg.IsDebug() {
		appLogger = logger.NewConsoleLogger(cfg.GetLogLevel())
	} else {
		appLogger = logger.NewLogger(cfg.GetLogLevel())
	}

	toolPath, err := service.ResolveTool(cfg.GetToolName())
	if err != nil {
		appLogger.Error("OCR tool not found", err, "tool", cfg.GetToolName())
		return nil, err
	}

	scratch, err := service.NewScratchManager(cfg.GetScratchDir(), appLogger)
	if err != nil {
		appLogger.Error("Failed to prepare scratch directory", err, "dir", cfg.GetScratchDir())
		return nil, fmt.Errorf("scratch directory: %w", err)
	}

	invoker := service.NewOCRInvoker(service.ToolOptions{
		Path:      toolPath,
		Mode:      cfg.GetOCRMode(),
		Language:  cfg.GetOCRLanguage(),
		ExtraArgs: cfg.GetOCRExtraArgs(),
		Timeout:   cfg.GetToolTimeout(),
	}, appLogger)

	// a typed nil would defeat the service's nil check
	var inspector domain.OutputInspector
	if cfg.ShouldVerifyOutput() {
		inspector = service.NewFitzInspector(appLogger)
	}

	ocrService := service.NewOCRService(scratch, invoker, inspector, service.OCRServiceOptions{
		AcceptedExtension: cfg.GetAcceptedExtension(),
		ToolName:          cfg.GetToolName(),
		MaxConcurrent:     cfg.GetMaxConcurrent(),
		ToolTimeout:       cfg.GetToolTimeout(),
	}, appLogger)

	appLogger.Info("OCR pipeline ready",
		"tool", toolPath,
		"mode", cfg.GetOCRMode(),
		"scratch_dir", scratch.Dir(),
		"max_concurrent", cfg.GetMaxConcurrent(),
		"timeout", cfg.GetToolTimeout(),
		"verify_output", cfg.ShouldVerifyOutput(),
	)

	return &Container{
		Config:     cfg,
		Logger:     appLogger,
		ToolPath:   toolPath,
		Scratch:    scratch,
		Invoker:    invoker,
		Inspector:  inspector,
		OCRService: ocrService,
	}, nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetConverter returns the conversion service
func (c *Container) GetConverter() domain.Converter {
	return c.OCRService
}

// Close flushes buffered log entries
func (c *Container) Close() error {
	return c.Logger.Sync()
}
