// Package anthropic sends requests through the Anthropic Messages API.
//
// Instructions and system messages become the system prompt. Each
// function call becomes an assistant tool_use block and its output the
// matching user tool_result block. Parallel tool use is disabled through
// tool_choice. Structured output is obtained by forcing a synthetic tool
// whose input schema is the requested schema.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	ai "github.com/englify/tutorkit"
)

const (
	// DefaultModel is used when a request names no model.
	DefaultModel = "claude-sonnet-4-5"

	defaultMaxTokens = 4096

	// structuredToolName is the synthetic tool used for structured output.
	structuredToolName = "__structured_output__"
)

// Client implements gateway.Gateway on the Messages API.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// ClientOption configures the client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model     string
	baseURL   string
	maxTokens int64
}

// WithModel sets the default model.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) { c.model = model }
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithMaxTokens sets the default output cap.
func WithMaxTokens(n int) ClientOption {
	return func(c *clientConfig) { c.maxTokens = int64(n) }
}

// New creates a client with SDK retries disabled.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{model: DefaultModel, maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&cfg)
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := anthropic.NewClient(sdkOpts...)
	return &Client{client: &client, model: cfg.model, maxTokens: cfg.maxTokens}
}

// Provider returns ai.ProviderAnthropic.
func (c *Client) Provider() ai.Provider { return ai.ProviderAnthropic }

// Send submits req.
func (c *Client) Send(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	resp, err := c.client.Messages.New(ctx, c.buildParams(req))
	if err != nil {
		return nil, wrapError(err)
	}
	return convertResponse(resp, req.ResponseFormat != nil), nil
}

func (c *Client) buildParams(req *ai.Request) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := c.maxTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = int64(req.MaxOutputTokens)
	}

	msgs, system := convertItems(req.Items)
	if req.Instructions != "" {
		system = append([]anthropic.TextBlockParam{{Text: req.Instructions}}, system...)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	tools := convertTools(req.Tools)
	if req.ResponseFormat != nil {
		tools = append(tools, structuredTool(req.ResponseFormat))
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{
				Name:                   structuredToolName,
				DisableParallelToolUse: anthropic.Bool(!req.ParallelToolCalls),
			},
		}
	} else if len(tools) > 0 {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{
				DisableParallelToolUse: anthropic.Bool(!req.ParallelToolCalls),
			},
		}
	}
	if len(tools) > 0 {
		params.Tools = tools
	}
	return params
}

func convertItems(items ai.Items) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var msgs []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	for _, it := range items {
		switch v := it.(type) {
		case ai.Message:
			// Empty text blocks are rejected by the API.
			if v.Content == "" {
				continue
			}
			switch v.Role {
			case ai.RoleSystem, ai.RoleDeveloper:
				system = append(system, anthropic.TextBlockParam{Text: v.Content})
			case ai.RoleAssistant:
				msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(v.Content)))
			default:
				msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(v.Content)))
			}
		case ai.FunctionCall:
			var input any = map[string]any{}
			if v.Arguments != "" {
				var parsed map[string]any
				if err := json.Unmarshal([]byte(v.Arguments), &parsed); err == nil && parsed != nil {
					input = parsed
				}
			}
			msgs = append(msgs, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewToolUseBlock(v.CallID, input, v.Name)},
			})
		case ai.FunctionCallOutput:
			msgs = append(msgs, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewToolResultBlock(v.CallID, v.Output, false)},
			})
		}
	}
	return msgs, system
}

func convertTools(specs []ai.ToolSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		schema := spec.Schema()
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties:  schema["properties"],
					Required:    spec.RequiredParams(),
					ExtraFields: closedSchema(),
				},
			},
		})
	}
	return tools
}

// closedSchema rejects arguments outside the declared properties.
func closedSchema() map[string]any {
	return map[string]any{"additionalProperties": false}
}

func structuredTool(format *ai.ResponseSchema) anthropic.ToolUnionParam {
	description := "Return the answer as structured JSON"
	if format.Description != "" {
		description = format.Description
	}

	var required []string
	switch r := format.Schema["required"].(type) {
	case []string:
		required = r
	case []any:
		for _, v := range r {
			if s, ok := v.(string); ok {
				required = append(required, s)
			}
		}
	}

	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        structuredToolName,
			Description: anthropic.String(description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties:  format.Schema["properties"],
				Required:    required,
				ExtraFields: closedSchema(),
			},
		},
	}
}

func convertResponse(resp *anthropic.Message, structured bool) *ai.Response {
	out := &ai.Response{
		ID:    resp.ID,
		Model: string(resp.Model),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	var text []ai.TextSegment
	structuredJSON := ""
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text = append(text, ai.TextSegment{Type: ai.SegmentOutputText, Text: block.Text})
		case "tool_use":
			if structured && block.Name == structuredToolName {
				structuredJSON = string(block.Input)
				continue
			}
			out.Output = append(out.Output, ai.FunctionCall{
				CallID:    block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	if structuredJSON != "" {
		text = []ai.TextSegment{{Type: ai.SegmentOutputText, Text: structuredJSON}}
	}
	if len(text) > 0 {
		// One message holds all text blocks so Text() does not insert
		// newlines between them.
		out.Output = append([]ai.OutputItem{ai.OutputMessage{ID: resp.ID, Content: text}}, out.Output...)
	}
	return out
}

// wrapError categorizes an SDK error by status code.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return ai.NewStatusError(ai.ProviderAnthropic, http.StatusText(apiErr.StatusCode), apiErr.StatusCode, parseRetryAfter(apiErr.Response), err)
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
