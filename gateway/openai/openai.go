// Package openai sends requests through the OpenAI Responses API.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	ai "github.com/englify/tutorkit"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gpt-4.1"

// Client implements gateway.Gateway on the Responses API.
type Client struct {
	client *openai.Client
	model  string
}

// ClientOption configures the client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model   string
	baseURL string
	sdkOpts []option.RequestOption
}

// WithModel sets the default model.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) { c.model = model }
}

// WithBaseURL points the client at a different endpoint, such as a proxy
// or a test server.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithRequestOptions passes extra SDK options through.
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(c *clientConfig) { c.sdkOpts = append(c.sdkOpts, opts...) }
}

// New creates a client. SDK retries are disabled because the gateway
// decorator owns retry policy.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{model: DefaultModel}
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
	sdkOpts = append(sdkOpts, cfg.sdkOpts...)

	client := openai.NewClient(sdkOpts...)
	return &Client{client: &client, model: cfg.model}
}

// Provider returns ai.ProviderOpenAI.
func (c *Client) Provider() ai.Provider { return ai.ProviderOpenAI }

// Send submits req and converts the output back.
func (c *Client) Send(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	resp, err := c.client.Responses.New(ctx, c.buildParams(req))
	if err != nil {
		return nil, wrapError(err)
	}
	return convertResponse(resp), nil
}

func (c *Client) buildParams(req *ai.Request) responses.ResponseNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}

	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: convertItems(req.Items),
		},
		ParallelToolCalls: openai.Bool(req.ParallelToolCalls),
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.ResponseFormat != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.ResponseFormat.Name,
					Schema: req.ResponseFormat.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
		if req.ResponseFormat.Description != "" {
			params.Text.Format.OfJSONSchema.Description = openai.String(req.ResponseFormat.Description)
		}
	}
	return params
}

func convertItems(items ai.Items) []responses.ResponseInputItemUnionParam {
	out := make([]responses.ResponseInputItemUnionParam, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case ai.Message:
			out = append(out, responses.ResponseInputItemParamOfMessage(
				v.Content,
				responses.EasyInputMessageRole(v.Role),
			))
		case ai.FunctionCall:
			out = append(out, responses.ResponseInputItemParamOfFunctionCall(v.Arguments, v.CallID, v.Name))
		case ai.FunctionCallOutput:
			out = append(out, responses.ResponseInputItemParamOfFunctionCallOutput(v.CallID, v.Output))
		}
	}
	return out
}

func convertTools(specs []ai.ToolSpec) []responses.ToolUnionParam {
	tools := make([]responses.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		t := responses.ToolParamOfFunction(spec.Name, spec.Schema(), false)
		if spec.Description != "" {
			t.OfFunction.Description = openai.String(spec.Description)
		}
		tools = append(tools, t)
	}
	return tools
}

func convertResponse(resp *responses.Response) *ai.Response {
	out := &ai.Response{
		ID:    resp.ID,
		Model: string(resp.Model),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			msg := ai.OutputMessage{ID: item.ID}
			for _, content := range item.Content {
				switch content.Type {
				case "output_text":
					msg.Content = append(msg.Content, ai.TextSegment{Type: ai.SegmentOutputText, Text: content.Text})
				case "refusal":
					msg.Content = append(msg.Content, ai.TextSegment{Type: ai.SegmentRefusal, Text: content.Refusal})
				}
			}
			out.Output = append(out.Output, msg)
		case "function_call":
			out.Output = append(out.Output, ai.FunctionCall{
				CallID:    item.CallID,
				Name:      item.Name,
				Arguments: item.Arguments,
			})
		}
	}
	return out
}
