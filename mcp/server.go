package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/guardrail"
	"github.com/englify/tutorkit/tool"
)

// ModerationToolName is the tool added by WithGuardrail.
const ModerationToolName = "checkModeration"

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name      string
	version   string
	guardrail *guardrail.Guardrail
	logger    *slog.Logger
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithGuardrail adds a checkModeration tool that classifies text with g.
func WithGuardrail(g *guardrail.Guardrail) ServerOption {
	return func(c *serverConfig) {
		c.guardrail = g
	}
}

// WithLogger sets the logger for tool calls.
func WithLogger(l *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = l
	}
}

// NewServer creates an MCP server exposing every tool of registry in
// registration order.
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "tutorkit",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	logger := cfg.logger.With("component", "mcp")

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	for _, spec := range registry.Specs() {
		s.AddTool(ToMCPTool(spec), registryHandler(registry, spec.Name, logger))
	}
	if cfg.guardrail != nil {
		s.AddTool(ToMCPTool(moderationSpec()), moderationHandler(cfg.guardrail))
	}
	return s
}

func registryHandler(registry *tool.Registry, name string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := registry.Execute(ctx, name, req.GetArguments())
		if res.Err != nil {
			logger.Warn("tool failed", "tool", name, "error", res.Err)
		}
		return ToMCPCallToolResult(res), nil
	}
}

func moderationSpec() ai.ToolSpec {
	return ai.ToolSpec{
		Name:        ModerationToolName,
		Description: "Classify a message against the moderation policy. Returns whether the tripwire was triggered and why.",
		Parameters: map[string]ai.Param{
			"text": {Type: ai.ParamString, Description: "Text to classify", Required: true},
		},
	}
}

func moderationHandler(g *guardrail.Guardrail) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return ToMCPCallToolResult(tool.Result{Value: g.Check(ctx, text)}), nil
	}
}

// ServeStdio serves registry over stdin/stdout until the client disconnects.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(registry, opts...))
}
