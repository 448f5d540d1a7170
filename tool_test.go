package tutorkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolSpecSchema(t *testing.T) {
	spec := ToolSpec{
		Name:        "generatePracticePrompt",
		Description: "Create a short speaking prompt",
		Parameters: map[string]Param{
			"topic":  {Type: ParamString, Required: true},
			"level":  {Type: ParamString, Required: true, Enum: []string{"A1", "A2"}},
			"target": {Type: ParamString, Description: "Grammar target"},
		},
	}

	s := spec.Schema()
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])
	assert.Equal(t, []string{"level", "topic"}, s["required"])

	props := s["properties"].(map[string]any)
	require.Len(t, props, 3)
	assert.Equal(t, []any{"A1", "A2"}, props["level"].(map[string]any)["enum"])
	assert.Equal(t, "Grammar target", props["target"].(map[string]any)["description"])
}

func TestToolSpecSchemaWithoutParameters(t *testing.T) {
	s := ToolSpec{Name: "getStudentProfile"}.Schema()
	assert.Empty(t, s["properties"])
	assert.Equal(t, []string{}, s["required"])
}

func TestToolSpecValidate(t *testing.T) {
	assert.NoError(t, ToolSpec{Name: "ok"}.Validate())
	assert.Error(t, ToolSpec{}.Validate())
	assert.Error(t, ToolSpec{Name: "x", Parameters: map[string]Param{"a": {Type: "date"}}}.Validate())
	assert.Error(t, ToolSpec{Name: "x", Parameters: map[string]Param{"": {Type: ParamString}}}.Validate())
}

func TestResponseText(t *testing.T) {
	t.Run("joins segments and messages", func(t *testing.T) {
		resp := &Response{Output: []OutputItem{
			OutputMessage{Content: []TextSegment{
				{Type: SegmentOutputText, Text: "Hello, "},
				{Type: SegmentRefusal, Text: "ignored"},
				{Type: SegmentOutputText, Text: "Aisha."},
			}},
			FunctionCall{CallID: "c1", Name: "x"},
			OutputMessage{Content: []TextSegment{{Type: SegmentOutputText, Text: "Keep going!"}}},
		}}
		assert.Equal(t, "Hello, Aisha.\nKeep going!", resp.Text())
	})

	t.Run("no messages gives empty text", func(t *testing.T) {
		assert.Equal(t, "", (&Response{}).Text())
	})

	t.Run("function calls keep response order", func(t *testing.T) {
		resp := &Response{Output: []OutputItem{
			FunctionCall{CallID: "a", Name: "first"},
			OutputMessage{},
			FunctionCall{CallID: "b", Name: "second"},
		}}
		calls := resp.FunctionCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, "first", calls[0].Name)
		assert.Equal(t, "second", calls[1].Name)
	})
}

func TestRequestAppend(t *testing.T) {
	req := NewRequest("gpt-4.1", nil, NewUserMessage("hi"))
	assert.False(t, req.ParallelToolCalls)

	req.Append(FunctionCall{CallID: "c1"}, FunctionCallOutput{CallID: "c1"})
	assert.Len(t, req.Items, 3)
	assert.NoError(t, req.Items.Validate())
}
