// Package app wires configuration into the service components shared by
// the HTTP server and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/englify"
	"github.com/englify/tutorkit/gateway"
	"github.com/englify/tutorkit/gateway/anthropic"
	"github.com/englify/tutorkit/gateway/google"
	"github.com/englify/tutorkit/gateway/openai"
	"github.com/englify/tutorkit/guardrail"
	"github.com/englify/tutorkit/internal/config"
	"github.com/englify/tutorkit/mcp"
	"github.com/englify/tutorkit/supervisor"
	"github.com/englify/tutorkit/telemetry"
	"github.com/englify/tutorkit/tool"
	"github.com/englify/tutorkit/tutor"
)

// App holds the wired components.
type App struct {
	Gateway    *gateway.Guarded
	Registry   *tool.Registry
	Supervisor *supervisor.Supervisor
	Guardrail  *guardrail.Guardrail

	remotes []*mcp.RemoteTools
}

// Models is the pair of models used by the supervisor and the guardrail.
type Models struct {
	Supervisor string
	Guardrail  string
}

// ResolveModels fills unset models with the provider's defaults.
func ResolveModels(cfg *config.Config) Models {
	m := Models{Supervisor: cfg.Supervisor.Model, Guardrail: cfg.Guardrail.Model}

	var sup, guard string
	p, _ := ai.ParseProvider(cfg.Provider.Name)
	switch p {
	case ai.ProviderAnthropic:
		sup, guard = anthropic.DefaultModel, anthropic.DefaultModel
	case ai.ProviderGoogle:
		sup, guard = google.DefaultModel, google.DefaultModel
	default:
		sup, guard = supervisor.DefaultModel, guardrail.DefaultModel
	}
	if m.Supervisor == "" {
		m.Supervisor = sup
	}
	if m.Guardrail == "" {
		m.Guardrail = guard
	}
	return m
}

// NewBackend creates the provider client named by cfg.
func NewBackend(ctx context.Context, cfg config.ProviderConfig) (gateway.Gateway, error) {
	p, err := ai.ParseProvider(cfg.Name)
	if err != nil {
		return nil, err
	}
	switch p {
	case ai.ProviderAnthropic:
		var opts []anthropic.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(cfg.AnthropicKey, opts...), nil
	case ai.ProviderGoogle:
		return google.New(ctx, cfg.GoogleKey)
	default:
		var opts []openai.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.OpenAIKey, opts...), nil
	}
}

// New builds the components from cfg. The backend is wrapped with the
// configured timeout and retry policy. Close must be called to stop
// imported MCP servers.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	backend, err := NewBackend(ctx, cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.Provider.Name, err)
	}
	gw := gateway.New(backend,
		gateway.WithTimeout(cfg.Provider.Timeout),
		gateway.WithRetry(cfg.Provider.MaxAttempts, cfg.Provider.InitialDelay, cfg.Provider.MaxDelay),
		gateway.WithLogger(logger),
	)
	return Assemble(ctx, cfg, gw, logger)
}

// Assemble builds the components around an existing gateway.
func Assemble(ctx context.Context, cfg *config.Config, gw *gateway.Guarded, logger *slog.Logger) (*App, error) {
	a, err := NewTools(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Gateway = gw

	sink := telemetry.Multi(telemetry.NewSlog(logger), telemetry.OTel{})
	models := ResolveModels(cfg)

	resolver := supervisor.New(gw, a.Registry,
		supervisor.WithMaxRounds(cfg.Supervisor.MaxRounds),
		supervisor.WithHandlerTimeout(cfg.Supervisor.HandlerTimeout),
		supervisor.WithSink(sink),
		supervisor.WithLogger(logger),
	)
	a.Supervisor = &supervisor.Supervisor{
		Resolver: resolver,
		Model:    models.Supervisor,
		Logger:   logger,
	}

	mode := guardrail.FailOpen
	if cfg.Guardrail.FailClosed {
		mode = guardrail.FailClosed
	}
	a.Guardrail = guardrail.New(
		guardrail.NewClassifier(gw, guardrail.WithModel(models.Guardrail)),
		guardrail.WithAppName(cfg.Guardrail.AppName),
		guardrail.WithFailureMode(mode),
		guardrail.WithSink(sink),
		guardrail.WithLogger(logger),
	)

	logger.Info("components ready",
		"provider", gw.Provider(),
		"supervisor_model", models.Supervisor,
		"guardrail_model", models.Guardrail,
		"tools", a.Registry.Len(),
	)
	return a, nil
}

// NewTools builds only the tool registry: the tutor tools, the catalog
// tools when configured and the tools of every configured MCP server. It
// needs no provider key.
func NewTools(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Registry: tutor.Registry()}

	if cfg.Englify.Enabled() {
		client, err := englify.NewClient(englify.Config{
			BaseURL:     cfg.Englify.BaseURL,
			APIToken:    cfg.Englify.APIToken,
			BearerToken: cfg.Englify.BearerToken,
		}, englify.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create englify client: %w", err)
		}
		if err := englify.NewTools(client).Register(a.Registry); err != nil {
			return nil, fmt.Errorf("register englify tools: %w", err)
		}
	}

	for i, srv := range cfg.MCPServers {
		remote, err := mcp.ConnectStdio(ctx, srv.Command, srv.Env, srv.Args...)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("mcp_servers[%d] %s: %w", i, srv.Command, err)
		}
		a.remotes = append(a.remotes, remote)
		if err := remote.Register(a.Registry); err != nil {
			a.Close()
			return nil, fmt.Errorf("mcp_servers[%d] %s: %w", i, srv.Command, err)
		}
		logger.Info("imported mcp tools", "command", srv.Command, "tools", remote.Names())
	}
	return a, nil
}

// Close stops imported MCP servers.
func (a *App) Close() error {
	var errs []error
	for _, r := range a.remotes {
		errs = append(errs, r.Close())
	}
	a.remotes = nil
	return errors.Join(errs...)
}
