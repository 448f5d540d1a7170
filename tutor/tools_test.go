package tutor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/englify/tutorkit/tool"
)

func execJSON(t *testing.T, reg *tool.Registry, name string, args map[string]any) string {
	t.Helper()
	res := reg.Execute(context.Background(), name, args)
	require.NoError(t, res.Err)
	b, err := json.Marshal(res.Value)
	require.NoError(t, err)
	return string(b)
}

func TestSpecs(t *testing.T) {
	specs := Specs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
		require.NoError(t, s.Validate(), s.Name)
	}
	assert.Equal(t, []string{
		"generatePracticePrompt",
		"explainMistake",
		"miniQuiz",
		"getStudentProfile",
		"getLessonHistory",
		"getQuizHistory",
		"getProgressSummary",
	}, names)

	assert.Equal(t, []string{"level", "topic"}, specs[0].RequiredParams())
	assert.Equal(t, []string{"sentence"}, specs[1].RequiredParams())
	assert.Empty(t, specs[3].RequiredParams())

	schema := specs[0].Schema()
	level := schema["properties"].(map[string]any)["level"].(map[string]any)
	assert.Equal(t, []any{"A1", "A2", "B1", "B2", "C1"}, level["enum"])
	assert.Equal(t, false, schema["additionalProperties"])
}

func TestExerciseTools(t *testing.T) {
	reg := Registry()

	assert.JSONEq(t, `{"prompt":"You are at a cafe. Order a sandwich and a drink."}`,
		execJSON(t, reg, "generatePracticePrompt", map[string]any{"level": "B1", "topic": "food"}))

	assert.JSONEq(t, `{"explanation":"Use 'bought' (past of buy), not 'buyed'.","example":"I bought ice cream yesterday."}`,
		execJSON(t, reg, "explainMistake", map[string]any{"sentence": "I buyed ice cream"}))

	assert.JSONEq(t, `{"items":[
		{"q":"Say one sentence about your last holiday.","type":"speaking"},
		{"q":"Choose: go/went: 'I ___ to Paris last year.'","a":"went"}
	]}`, execJSON(t, reg, "miniQuiz", map[string]any{"level": "A2", "topic": "travel"}))
}

func TestLearnerTools(t *testing.T) {
	reg := Registry()

	t.Run("profile", func(t *testing.T) {
		var p Profile
		require.NoError(t, json.Unmarshal([]byte(execJSON(t, reg, "getStudentProfile", nil)), &p))
		assert.Equal(t, "Aisha Khan", p.Name)
		assert.Equal(t, "B1", p.Level)
		assert.Equal(t, 12, p.Streak.Current)
		assert.Len(t, p.Goals, 3)
	})

	t.Run("lesson history default limit", func(t *testing.T) {
		var lessons []Lesson
		require.NoError(t, json.Unmarshal([]byte(execJSON(t, reg, "getLessonHistory", map[string]any{})), &lessons))
		require.Len(t, lessons, 5)
		assert.Equal(t, "lesson_1001", lessons[0].ID)
	})

	t.Run("lesson history limit", func(t *testing.T) {
		var lessons []Lesson
		require.NoError(t, json.Unmarshal([]byte(execJSON(t, reg, "getLessonHistory", map[string]any{"limit": float64(2)})), &lessons))
		require.Len(t, lessons, 2)
		assert.Equal(t, "lesson_1000", lessons[1].ID)
	})

	t.Run("quiz history limit above length", func(t *testing.T) {
		var quizzes []QuizResult
		require.NoError(t, json.Unmarshal([]byte(execJSON(t, reg, "getQuizHistory", map[string]any{"limit": float64(10)})), &quizzes))
		assert.Len(t, quizzes, 2)
	})

	t.Run("progress", func(t *testing.T) {
		out := execJSON(t, reg, "getProgressSummary", nil)
		assert.JSONEq(t, `{
			"totalMinutesThisWeek": 60,
			"totalMinutesThisMonth": 220,
			"wordsLearnedThisMonth": 28,
			"grammarFocusCounts": {"pastSimple": 3, "presentSimple": 1, "questionForms": 2},
			"nextReviewDue": "2025-08-21"
		}`, out)
	})

	t.Run("wrong argument type falls back to defaults", func(t *testing.T) {
		var lessons []Lesson
		require.NoError(t, json.Unmarshal([]byte(execJSON(t, reg, "getLessonHistory", map[string]any{"limit": "3"})), &lessons))
		assert.Len(t, lessons, DefaultHistoryLimit)

		out := execJSON(t, reg, "generatePracticePrompt", map[string]any{"level": 3, "topic": "food"})
		assert.Contains(t, out, "prompt")
	})
}

func TestHead(t *testing.T) {
	s := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2, 3}, head(s, 0))
	assert.Equal(t, []int{1}, head(s, 1.9))
	assert.Equal(t, []int{1, 2, 3}, head(s, -4))
	assert.Equal(t, []int{}, head([]int(nil), 3))
}

func TestRegister(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, Register(reg))
	assert.Equal(t, 7, reg.Len())
	assert.Error(t, Register(reg), "second registration collides")
}
