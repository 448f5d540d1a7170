package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/tool"
)

// RemoteTools is the tool list of an MCP server. Its tools can be added to
// a [tool.Registry] with [RemoteTools.Register]; calls are proxied to the
// server.
//
// The list is cached and can be refreshed with [RemoteTools.Refresh].
type RemoteTools struct {
	client *client.Client
	mu     sync.RWMutex
	specs  map[string]ai.ToolSpec
}

// ConnectStdio starts command as an MCP server and lists its tools.
//
//	remote, err := mcp.ConnectStdio(ctx, "./tutorkit-mcp", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer remote.Close()
//	err = remote.Register(reg)
func ConnectStdio(ctx context.Context, command string, env []string, args ...string) (*RemoteTools, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("create MCP client: %w", err)
	}
	return connect(ctx, c)
}

// ConnectSSE connects to an MCP server over SSE and lists its tools.
func ConnectSSE(ctx context.Context, baseURL string) (*RemoteTools, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("create SSE MCP client: %w", err)
	}
	return connect(ctx, c)
}

// Connect initializes an existing client and lists its tools.
func Connect(ctx context.Context, c *client.Client) (*RemoteTools, error) {
	return connect(ctx, c)
}

func connect(ctx context.Context, c *client.Client) (*RemoteTools, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "tutorkit-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize MCP session: %w", err)
	}

	r := &RemoteTools{client: c}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection to the server.
func (r *RemoteTools) Close() error {
	return r.client.Close()
}

// Refresh reloads the tool list. Tools whose schema cannot be converted
// are skipped.
func (r *RemoteTools) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	specs := make(map[string]ai.ToolSpec, len(result.Tools))
	for _, t := range result.Tools {
		spec, err := FromMCPTool(t)
		if err != nil {
			continue
		}
		specs[t.Name] = spec
	}

	r.mu.Lock()
	r.specs = specs
	r.mu.Unlock()
	return nil
}

// Specs returns the remote tools sorted by name.
func (r *RemoteTools) Specs() []ai.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ai.ToolSpec, 0, len(r.specs))
	for _, name := range sortedNames(r.specs) {
		out = append(out, r.specs[name])
	}
	return out
}

// Names returns the remote tool names sorted.
func (r *RemoteTools) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedNames(r.specs)
}

// Has reports whether the server offers name.
func (r *RemoteTools) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[name]
	return ok
}

// Call invokes a remote tool. A JSON text result is returned as
// [json.RawMessage] so it is passed through unchanged; other text is
// returned as a string. A result flagged as an error is returned as an
// error carrying its text.
func (r *RemoteTools) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := r.client.CallTool(ctx, req)
	if err != nil {
		return nil, err
	}
	text := ResultText(result)
	if result.IsError {
		return nil, errors.New(text)
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}
	return text, nil
}

// Register adds every remote tool to reg, proxying calls to the server.
func (r *RemoteTools) Register(reg *tool.Registry) error {
	for _, spec := range r.Specs() {
		name := spec.Name
		err := reg.Register(spec, func(ctx context.Context, args map[string]any) (any, error) {
			return r.Call(ctx, name, args)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
