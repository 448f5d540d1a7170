package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/englify/tutorkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParams(t *testing.T) {
	c := New("test-key")
	req := ai.NewRequest("", []ai.ToolSpec{{
		Name:       "miniQuiz",
		Parameters: map[string]ai.Param{"level": {Type: ai.ParamString, Required: true}},
	}},
		ai.NewSystemMessage("Be kind."),
		ai.NewUserMessage("Quiz me"),
		ai.FunctionCall{CallID: "toolu_1", Name: "miniQuiz", Arguments: `{"level":"B1"}`},
		ai.FunctionCallOutput{CallID: "toolu_1", Output: `{"items":[]}`},
	)
	req.Instructions = "You are the supervisor."

	params := c.buildParams(req)

	assert.Equal(t, anthropic.Model(DefaultModel), params.Model)
	require.Len(t, params.System, 2)
	assert.Equal(t, "You are the supervisor.", params.System[0].Text)
	assert.Equal(t, "Be kind.", params.System[1].Text)

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)

	require.NotNil(t, params.ToolChoice.OfAuto)
	assert.True(t, params.ToolChoice.OfAuto.DisableParallelToolUse.Value)

	require.Len(t, params.Tools, 1)
	assert.Equal(t, "miniQuiz", params.Tools[0].OfTool.Name)
	assert.Equal(t, []string{"level"}, params.Tools[0].OfTool.InputSchema.Required)

	schema, err := json.Marshal(params.Tools[0].OfTool.InputSchema)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"additionalProperties":false`)
}

func TestBuildParamsStructured(t *testing.T) {
	c := New("test-key")
	req := ai.NewRequest("claude-haiku-4-5", nil, ai.NewUserMessage("classify"))
	req.ResponseFormat = &ai.ResponseSchema{
		Name: "output_format",
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"reason": map[string]any{"type": "string"}},
			"required":   []string{"reason"},
		},
	}

	params := c.buildParams(req)
	require.NotNil(t, params.ToolChoice.OfTool)
	assert.Equal(t, structuredToolName, params.ToolChoice.OfTool.Name)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, []string{"reason"}, params.Tools[0].OfTool.InputSchema.Required)
	assert.Equal(t, false, params.Tools[0].OfTool.InputSchema.ExtraFields["additionalProperties"])
}

func TestConvertResponse(t *testing.T) {
	var msg anthropic.Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [
			{"type": "text", "text": "Let me check."},
			{"type": "tool_use", "id": "toolu_1", "name": "getStudentProfile", "input": {}},
			{"type": "tool_use", "id": "toolu_2", "name": "getLessonHistory", "input": {"limit": 2}}
		],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 12, "output_tokens": 3}
	}`), &msg))

	resp := convertResponse(&msg, false)
	assert.Equal(t, "Let me check.", resp.Text())

	calls := resp.FunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "toolu_1", calls[0].CallID)
	assert.Equal(t, "getLessonHistory", calls[1].Name)
	assert.JSONEq(t, `{"limit":2}`, calls[1].Arguments)
	assert.Equal(t, ai.Usage{InputTokens: 12, OutputTokens: 3}, resp.Usage)
}

func TestConvertResponseStructured(t *testing.T) {
	var msg anthropic.Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "msg_2", "type": "message", "role": "assistant", "model": "m",
		"content": [{"type": "tool_use", "id": "toolu_9", "name": "__structured_output__", "input": {"moderationCategory": "NONE", "reason": "fine"}}],
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`), &msg))

	resp := convertResponse(&msg, true)
	assert.Empty(t, resp.FunctionCalls())
	assert.JSONEq(t, `{"moderationCategory":"NONE","reason":"fine"}`, resp.Text())
}
