// Command mcp serves the tutorkit tools over MCP stdio.
//
// The tutor tools are always served, and the Englify catalog tools are
// added when ENGLIFY_API_TOKEN is set. With a provider key the server also
// offers getNextResponseFromSupervisor and checkModeration.
//
// Configuration for an MCP client:
//
//	{
//	    "mcpServers": {
//	        "tutorkit": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/tutorkit"
//	        }
//	    }
//	}
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/englify/tutorkit/internal/app"
	"github.com/englify/tutorkit/internal/config"
	"github.com/englify/tutorkit/mcp"
	"github.com/englify/tutorkit/tool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return err
	}
	ctx := context.Background()

	opts := []mcp.ServerOption{
		mcp.WithName("tutorkit"),
		mcp.WithVersion("1.0.0"),
		mcp.WithLogger(logger),
	}

	var a *app.App
	if cfg.Validate() == nil {
		a, err = app.New(ctx, cfg, logger)
	} else {
		logger.Warn("provider not configured, serving tools only", "provider", cfg.Provider.Name)
		a, err = app.NewTools(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}
	defer a.Close()

	served, err := servedRegistry(a, logger)
	if err != nil {
		return err
	}
	if a.Guardrail != nil {
		opts = append(opts, mcp.WithGuardrail(a.Guardrail))
	}

	logger.Info("serving mcp", "tools", served.Names())
	return mcp.ServeStdio(served, opts...)
}

// servedRegistry copies the supervisor's tools into a new registry and adds
// the escalation tool, so the supervisor cannot call itself.
func servedRegistry(a *app.App, logger *slog.Logger) (*tool.Registry, error) {
	served := tool.NewRegistry()
	for _, spec := range a.Registry.Specs() {
		h, _ := a.Registry.Get(spec.Name)
		if err := served.Register(spec, h); err != nil {
			return nil, err
		}
	}
	if a.Supervisor != nil {
		if err := a.Supervisor.Register(served); err != nil {
			return nil, err
		}
		logger.Debug("escalation tool enabled")
	}
	return served, nil
}
