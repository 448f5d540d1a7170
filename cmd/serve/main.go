// Command serve runs the tutorkit HTTP service: the supervisor escalation
// endpoint, its AG-UI streaming variant and the moderation guardrail.
//
// Configuration comes from the environment (and .env), optionally
// overlaid with the YAML file named by TUTORKIT_CONFIG:
//
//	TUTORKIT_PORT        - Server port (default: 8000)
//	TUTORKIT_PROVIDER    - openai, anthropic or google (default: openai)
//	TUTORKIT_MODEL       - Supervisor model (default: provider default)
//	OPENAI_API_KEY       - OpenAI API key
//	ANTHROPIC_API_KEY    - Anthropic API key
//	GOOGLE_API_KEY       - Google API key
//	ENGLIFY_API_TOKEN    - Enables the Englify catalog tools
//
// Endpoints:
//
//	POST /api/supervisor         {history, relevantContextFromLastUserMessage}
//	POST /api/supervisor/stream  AG-UI run input, answered as SSE events
//	POST /api/guardrail          {text}
//	GET  /health
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/englify/tutorkit/internal/app"
	"github.com/englify/tutorkit/internal/config"
	"github.com/englify/tutorkit/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &Server{
		supervisor:    a.Supervisor,
		guardrail:     a.Guardrail,
		allowedOrigin: cfg.Server.AllowedOrigin,
		logger:        logger.With("component", "http"),
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      otelhttp.NewHandler(srv.Routes(), "tutorkit"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting",
		"addr", server.Addr,
		"provider", cfg.Provider.Name,
		"tools", a.Registry.Names(),
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
