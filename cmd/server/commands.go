package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"pdf-ocr-server/internal/config"
	"pdf-ocr-server/internal/domain"
	"pdf-ocr-server/internal/handler"
	"pdf-ocr-server/internal/service"
	apperrors "pdf-ocr-server/pkg/errors"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides HOST)",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "Listen port (overrides PORT / SERVER_PORT)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging (overrides DEBUG)",
			},
		},
		Action: serveAction,
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify the OCR tool is installed and print its version",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			path, err := service.ResolveTool(cfg.GetToolName())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()
			version, err := service.ToolVersion(ctx, path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("%s found at %s but --version failed: %v", cfg.GetToolName(), path, err), 1)
			}

			fmt.Fprintf(c.App.Writer, "%s %s (%s)\n", cfg.GetToolName(), version, path)
			return nil
		},
	}
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "OCR a local PDF through the same pipeline as the server",
		ArgsUsage: "<input.pdf> <output.pdf>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: process <input.pdf> <output.pdf>", 2)
			}
			inPath, outPath := c.Args().Get(0), c.Args().Get(1)

			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			container, err := config.NewContainer(cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer func() { _ = container.Close() }()

			in, err := os.Open(inPath)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer in.Close()

			var size int64
			if info, err := in.Stat(); err == nil {
				size = info.Size()
			}

			result, err := container.GetConverter().Convert(c.Context, &domain.ConversionRequest{
				RequestID: uuid.NewString(),
				Filename:  filepath.Base(inPath),
				Size:      size,
				Payload:   in,
			})
			if err != nil {
				appErr := apperrors.AsAppError(err)
				msg := appErr.Error()
				if appErr.Stderr != "" {
					msg += "\n" + appErr.Stderr
				}
				return cli.Exit(msg, 1)
			}

			if err := os.WriteFile(outPath, result.Content, 0o644); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes, %d pages) in %s\n",
				outPath, len(result.Content), result.PageCount, result.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

// loadConfig builds the configuration from the optional file, env and command flags
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("port") {
		if _, err := strconv.Atoi(c.String("port")); err != nil {
			return nil, fmt.Errorf("invalid port %q", c.String("port"))
		}
		cfg.ServerPort = c.String("port")
	}
	if c.IsSet("debug") && c.Bool("debug") {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Wiring
	container, err := config.NewContainer(cfg)
	if err != nil {
		if errors.Is(err, domain.ErrToolNotFound) {
			return cli.Exit(fmt.Sprintf("%v\ninstall ocrmypdf or set OCR_TOOL to its path", err), 1)
		}
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = container.Close() }()
	logger := container.GetLogger()

	// Router
	ocrHandler := handler.NewOCRHandler(container.GetConverter(), cfg.GetMaxFileSize(), logger)
	router := handler.NewRouter(ocrHandler, handler.NewRequestMiddleware(logger), cfg.GetAllowedOrigins())

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.GetHost(), cfg.GetServerPort()),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to start", err)
			return cli.Exit(err.Error(), 1)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown; in-flight conversions finish and clean up their scratch files
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	logger.Info("Server exited")
	return nil
}
