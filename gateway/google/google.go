// Package google sends requests to Gemini through the genai SDK.
//
// Gemini has no switch for disabling parallel function calls. Sequential
// execution is still guaranteed because the supervisor loop runs the calls
// of a response one at a time, in order.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	ai "github.com/englify/tutorkit"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gemini-2.5-flash"

// Client implements gateway.Gateway on the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithModel sets the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// New creates a Gemini API client.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns ai.ProviderGoogle.
func (c *Client) Provider() ai.Provider { return ai.ProviderGoogle }

// Send submits req.
func (c *Client) Send(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	contents, system := convertItems(req.Items)
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, buildConfig(req, system))
	if err != nil {
		return nil, wrapError(err)
	}
	return convertResponse(resp), nil
}

func buildConfig(req *ai.Request, system []string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if req.Instructions != "" {
		system = append([]string{req.Instructions}, system...)
	}
	if len(system) > 0 {
		parts := make([]*genai.Part, len(system))
		for i, s := range system {
			parts[i] = &genai.Part{Text: s}
		}
		config.SystemInstruction = &genai.Content{Parts: parts}
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		config.Temperature = &t
	}
	if len(req.Tools) > 0 {
		config.Tools = convertTools(req.Tools)
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}
	if req.ResponseFormat != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = convertSchemaObject(req.ResponseFormat.Schema)
	}
	return config
}

// convertItems maps the item sequence onto Gemini contents. Function
// responses are keyed by name in Gemini, so the name of each call is
// remembered for its output.
func convertItems(items ai.Items) ([]*genai.Content, []string) {
	var contents []*genai.Content
	var system []string
	names := make(map[string]string)

	for _, it := range items {
		switch v := it.(type) {
		case ai.Message:
			if v.Content == "" {
				continue
			}
			switch v.Role {
			case ai.RoleSystem, ai.RoleDeveloper:
				system = append(system, v.Content)
			case ai.RoleAssistant:
				contents = append(contents, genai.NewContentFromText(v.Content, genai.RoleModel))
			default:
				contents = append(contents, genai.NewContentFromText(v.Content, genai.RoleUser))
			}
		case ai.FunctionCall:
			names[v.CallID] = v.Name
			args := map[string]any{}
			if v.Arguments != "" {
				_ = json.Unmarshal([]byte(v.Arguments), &args)
			}
			contents = append(contents, &genai.Content{
				Role: string(genai.RoleModel),
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{ID: v.CallID, Name: v.Name, Args: args},
				}},
			})
		case ai.FunctionCallOutput:
			var response map[string]any
			if err := json.Unmarshal([]byte(v.Output), &response); err != nil || response == nil {
				response = map[string]any{"output": v.Output}
			}
			contents = append(contents, &genai.Content{
				Role: string(genai.RoleUser),
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{ID: v.CallID, Name: names[v.CallID], Response: response},
				}},
			})
		}
	}
	return contents, system
}

func convertTools(specs []ai.ToolSpec) []*genai.Tool {
	funcs := make([]*genai.FunctionDeclaration, len(specs))
	for i, spec := range specs {
		funcs[i] = &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  convertSchemaObject(spec.Schema()),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: funcs}}
}

func convertResponse(resp *genai.GenerateContentResponse) *ai.Response {
	out := &ai.Response{ID: resp.ResponseID, Model: resp.ModelVersion}
	if resp.UsageMetadata != nil {
		out.Usage = ai.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	var text []ai.TextSegment
	for i, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call_%d_%s", i, part.FunctionCall.Name)
			}
			args, _ := json.Marshal(part.FunctionCall.Args)
			if part.FunctionCall.Args == nil {
				args = []byte("{}")
			}
			out.Output = append(out.Output, ai.FunctionCall{CallID: id, Name: part.FunctionCall.Name, Arguments: string(args)})
		case part.Text != "" && !part.Thought:
			text = append(text, ai.TextSegment{Type: ai.SegmentOutputText, Text: part.Text})
		}
	}
	if len(text) > 0 {
		out.Output = append([]ai.OutputItem{ai.OutputMessage{Content: text}}, out.Output...)
	}
	return out
}

// wrapError categorizes a genai API error by status code. genai does not
// expose response headers, so no Retry-After is available.
func wrapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	return ai.NewStatusError(ai.ProviderGoogle, apiErr.Status, apiErr.Code, 0, err)
}
