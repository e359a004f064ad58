package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spherical/legal-simplifier/internal/config"
	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/llm"
	"github.com/spherical/legal-simplifier/internal/observability"
	"github.com/spherical/legal-simplifier/internal/pdf"
	"github.com/spherical/legal-simplifier/internal/pipeline"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	if !cfg.HasCredential() {
		logger.Warn().Msg("GEMINI_API_KEY is not set; every generation call will fail until it is configured")
	}

	extractor, err := pdf.NewExtractor(
		cfg.PDF.Backend,
		pdf.NewValidator(cfg.PDF.MaxBytes, cfg.PDF.StrictValidation),
		logger,
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	generator, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closer, ok := generator.(io.Closer); ok {
		defer closer.Close()
	}

	controller := pipeline.NewController(extractor, generator, logger)

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("generation_backend", cfg.Generation.Backend).
		Str("model", cfg.Generation.Model).
		Str("pdf_backend", cfg.PDF.Backend).
		Msg("Starting legal simplifier")

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(logger, cfg, controller),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
	return nil
}

// newGenerator builds the configured generation backend.
func newGenerator(ctx context.Context, cfg *config.Config, logger *observability.Logger) (domain.Generator, error) {
	gen := cfg.Generation
	switch gen.Backend {
	case config.BackendVertex:
		return llm.NewVertexClient(ctx, gen.Vertex.ProjectID, gen.Vertex.Region, gen.Model, logger)
	case config.BackendGemini:
		return llm.NewClient(gen.APIKey, gen.Model,
			llm.WithBaseURL(gen.BaseURL),
			llm.WithTimeout(gen.Timeout),
			llm.WithLogger(logger),
		), nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown generation backend %q", gen.Backend), nil)
	}
}
