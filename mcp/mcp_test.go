package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/gateway/gatewaytest"
	"github.com/englify/tutorkit/guardrail"
	"github.com/englify/tutorkit/tool"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type echoArgs struct {
	Text string `json:"text"`
}

func sourceRegistry() *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Func(ai.ToolSpec{
			Name:        "echo",
			Description: "Echo text",
			Parameters: map[string]ai.Param{
				"text": {Type: ai.ParamString, Description: "Text to echo", Required: true},
			},
		}, func(_ context.Context, args echoArgs) (any, error) {
			return args.Text, nil
		}),
		tool.WithHandler(ai.ToolSpec{Name: "lookup", Description: "Structured answer"},
			func(context.Context, map[string]any) (any, error) {
				return map[string]any{"level": "B1", "streak": 4}, nil
			}),
		tool.WithHandler(ai.ToolSpec{Name: "fail", Description: "Always fails"},
			func(context.Context, map[string]any) (any, error) {
				return nil, errors.New("backend down")
			}),
	)
}

// startClient returns an initialized in-process client for s.
func startClient(t *testing.T, reg *tool.Registry, opts ...ServerOption) *client.Client {
	t.Helper()
	c, err := client.NewInProcessClient(NewServer(reg, append(opts, WithLogger(quietLogger))...))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { c.Close() })

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "test-client", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)
	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return result
}

func TestToMCPTool(t *testing.T) {
	t.Run("carries closed schema", func(t *testing.T) {
		mt := ToMCPTool(ai.ToolSpec{
			Name:        "generatePractice",
			Description: "Practice items",
			Parameters: map[string]ai.Param{
				"topic": {Type: ai.ParamString, Required: true},
				"level": {Type: ai.ParamString, Enum: []string{"A1", "A2"}},
			},
		})

		assert.Equal(t, "generatePractice", mt.Name)
		assert.Equal(t, "Practice items", mt.Description)
		assert.JSONEq(t, `{
			"type":"object",
			"properties":{
				"topic":{"type":"string"},
				"level":{"type":"string","enum":["A1","A2"]}
			},
			"required":["topic"],
			"additionalProperties":false
		}`, string(mt.RawInputSchema))
	})

	t.Run("no parameters", func(t *testing.T) {
		mt := ToMCPTool(ai.ToolSpec{Name: "getUserProfile"})
		assert.JSONEq(t, `{"type":"object","properties":{},"required":[],"additionalProperties":false}`,
			string(mt.RawInputSchema))
	})
}

func TestFromMCPTool(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		spec := ai.ToolSpec{
			Name:        "quiz",
			Description: "Make a quiz",
			Parameters: map[string]ai.Param{
				"topic": {Type: ai.ParamString, Description: "Topic", Required: true},
				"count": {Type: ai.ParamInteger},
				"tags":  {Type: ai.ParamArray, Items: &ai.Param{Type: ai.ParamString}},
			},
		}

		got, err := FromMCPTool(ToMCPTool(spec))
		require.NoError(t, err)
		assert.Equal(t, spec, got)
	})

	t.Run("structured schema", func(t *testing.T) {
		mt := mcp.NewTool("search",
			mcp.WithDescription("Search the catalog"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		)

		got, err := FromMCPTool(mt)
		require.NoError(t, err)
		assert.Equal(t, "Search the catalog", got.Description)
		assert.Equal(t, ai.Param{Type: ai.ParamString, Description: "Search query", Required: true},
			got.Parameters["query"])
	})

	t.Run("unknown types become strings", func(t *testing.T) {
		mt := mcp.NewToolWithRawSchema("odd", "", json.RawMessage(`{"type":"object","properties":{"x":{"type":"null"}}}`))
		got, err := FromMCPTool(mt)
		require.NoError(t, err)
		assert.Equal(t, ai.ParamString, got.Parameters["x"].Type)
	})

	t.Run("invalid schema", func(t *testing.T) {
		_, err := FromMCPTool(mcp.NewToolWithRawSchema("bad", "", json.RawMessage(`[1,2]`)))
		assert.Error(t, err)
	})
}

func TestToMCPCallToolResult(t *testing.T) {
	r := ToMCPCallToolResult(tool.Result{Value: "plain"})
	assert.False(t, r.IsError)
	assert.Equal(t, "plain", ResultText(r))

	r = ToMCPCallToolResult(tool.Result{Value: map[string]any{"ok": true}})
	assert.JSONEq(t, `{"ok":true}`, ResultText(r))

	r = ToMCPCallToolResult(tool.Result{
		Value: map[string]any{"error": "boom"},
		Err:   &tool.ErrToolExecution{Name: "x", Err: errors.New("boom")},
	})
	assert.True(t, r.IsError)
	assert.JSONEq(t, `{"error":"boom"}`, ResultText(r))

	assert.Equal(t, "", ResultText(nil))
}

func TestServer(t *testing.T) {
	c := startClient(t, sourceRegistry())

	t.Run("lists tools", func(t *testing.T) {
		list, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
		require.NoError(t, err)

		var names []string
		for _, tl := range list.Tools {
			names = append(names, tl.Name)
		}
		assert.ElementsMatch(t, []string{"echo", "lookup", "fail"}, names)
	})

	t.Run("string result", func(t *testing.T) {
		result := callTool(t, c, "echo", map[string]any{"text": "hello"})
		assert.False(t, result.IsError)
		assert.Equal(t, "hello", ResultText(result))
	})

	t.Run("structured result", func(t *testing.T) {
		result := callTool(t, c, "lookup", nil)
		assert.JSONEq(t, `{"level":"B1","streak":4}`, ResultText(result))
	})

	t.Run("handler error", func(t *testing.T) {
		result := callTool(t, c, "fail", map[string]any{})
		assert.True(t, result.IsError)
		assert.JSONEq(t, `{"error":"backend down"}`, ResultText(result))
	})
}

func TestServerGuardrail(t *testing.T) {
	gw := gatewaytest.New(gatewaytest.Reply(`{"moderationCategory":"OFF_TOPIC","reason":"sports"}`))
	g := guardrail.New(guardrail.NewClassifier(gw), guardrail.WithLogger(quietLogger))
	c := startClient(t, tool.NewRegistry(), WithGuardrail(g))

	result := callTool(t, c, ModerationToolName, map[string]any{"text": "who won the match?"})
	require.False(t, result.IsError)

	var out struct {
		TripwireTriggered bool `json:"tripwireTriggered"`
		OutputInfo        struct {
			Category string `json:"moderationCategory"`
		} `json:"outputInfo"`
	}
	require.NoError(t, json.Unmarshal([]byte(ResultText(result)), &out))
	assert.True(t, out.TripwireTriggered)
	assert.Equal(t, "OFF_TOPIC", out.OutputInfo.Category)

	result = callTool(t, c, ModerationToolName, map[string]any{})
	assert.True(t, result.IsError)
}

func TestRemoteTools(t *testing.T) {
	c, err := client.NewInProcessClient(NewServer(sourceRegistry(), WithLogger(quietLogger)))
	require.NoError(t, err)

	ctx := context.Background()
	remote, err := Connect(ctx, c)
	require.NoError(t, err)
	defer remote.Close()

	t.Run("lists sorted", func(t *testing.T) {
		assert.Equal(t, []string{"echo", "fail", "lookup"}, remote.Names())
		assert.True(t, remote.Has("echo"))
		assert.False(t, remote.Has("missing"))

		specs := remote.Specs()
		require.Len(t, specs, 3)
		assert.True(t, specs[0].Parameters["text"].Required)
	})

	t.Run("call", func(t *testing.T) {
		v, err := remote.Call(ctx, "echo", map[string]any{"text": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "hi", v)

		v, err = remote.Call(ctx, "lookup", nil)
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage(`{"level":"B1","streak":4}`), v)

		_, err = remote.Call(ctx, "fail", nil)
		assert.ErrorContains(t, err, "backend down")
	})

	t.Run("register proxies", func(t *testing.T) {
		reg := tool.NewRegistry()
		require.NoError(t, remote.Register(reg))
		assert.Equal(t, 3, reg.Len())

		res := reg.Execute(ctx, "echo", map[string]any{"text": "via registry"})
		require.NoError(t, res.Err)
		assert.Equal(t, "via registry", res.Value)

		res = reg.Execute(ctx, "fail", nil)
		var execErr *tool.ErrToolExecution
		assert.ErrorAs(t, res.Err, &execErr)

		assert.Error(t, remote.Register(reg))
	})

	t.Run("refresh", func(t *testing.T) {
		require.NoError(t, remote.Refresh(ctx))
		assert.Len(t, remote.Names(), 3)
	})
}
