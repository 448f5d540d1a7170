package google

import (
	"testing"

	ai "github.com/englify/tutorkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertItems(t *testing.T) {
	contents, system := convertItems(ai.Items{
		ai.NewSystemMessage("Be brief."),
		ai.NewUserMessage("How many minutes this week?"),
		ai.FunctionCall{CallID: "c1", Name: "getProgressSummary", Arguments: "{}"},
		ai.FunctionCallOutput{CallID: "c1", Output: `{"totalMinutesThisWeek":60}`},
		ai.FunctionCall{CallID: "c2", Name: "explainMistake", Arguments: "not json"},
		ai.FunctionCallOutput{CallID: "c2", Output: "plain text"},
	})

	assert.Equal(t, []string{"Be brief."}, system)
	require.Len(t, contents, 5)

	call := contents[1].Parts[0].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "model", contents[1].Role)

	res := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, res)
	assert.Equal(t, "getProgressSummary", res.Name)
	assert.Equal(t, float64(60), res.Response["totalMinutesThisWeek"])

	assert.Empty(t, contents[3].Parts[0].FunctionCall.Args)
	assert.Equal(t, map[string]any{"output": "plain text"}, contents[4].Parts[0].FunctionResponse.Response)
}

func TestBuildConfig(t *testing.T) {
	req := ai.NewRequest("", []ai.ToolSpec{{
		Name:       "miniQuiz",
		Parameters: map[string]ai.Param{"level": {Type: ai.ParamString, Required: true, Enum: []string{"A1", "B1"}}},
	}})
	req.Instructions = "You are the supervisor."
	req.ResponseFormat = &ai.ResponseSchema{Name: "out", Schema: map[string]any{"type": "object"}}

	cfg := buildConfig(req, []string{"extra"})
	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 2)
	assert.Equal(t, "You are the supervisor.", cfg.SystemInstruction.Parts[0].Text)

	require.Len(t, cfg.Tools, 1)
	decl := cfg.Tools[0].FunctionDeclarations[0]
	assert.Equal(t, "miniQuiz", decl.Name)
	assert.Equal(t, []string{"A1", "B1"}, decl.Parameters.Properties["level"].Enum)
	assert.Equal(t, []string{"level"}, decl.Parameters.Required)

	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, genai.TypeObject, cfg.ResponseSchema.Type)
}

func TestConvertResponse(t *testing.T) {
	resp := convertResponse(&genai.GenerateContentResponse{
		ResponseID: "r1",
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "Here you go."},
				{FunctionCall: &genai.FunctionCall{Name: "getStudentProfile"}},
				{FunctionCall: &genai.FunctionCall{ID: "fc-2", Name: "getQuizHistory", Args: map[string]any{"limit": 1}}},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 8, CandidatesTokenCount: 2},
	})

	assert.Equal(t, "Here you go.", resp.Text())
	calls := resp.FunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "call_2_getStudentProfile", calls[0].CallID)
	assert.Equal(t, "{}", calls[0].Arguments)
	assert.Equal(t, "fc-2", calls[1].CallID)
	assert.JSONEq(t, `{"limit":1}`, calls[1].Arguments)
	assert.Equal(t, ai.Usage{InputTokens: 8, OutputTokens: 2}, resp.Usage)
}

func TestConvertResponseEmpty(t *testing.T) {
	resp := convertResponse(&genai.GenerateContentResponse{})
	assert.Empty(t, resp.Output)
	assert.Equal(t, "", resp.Text())
}
