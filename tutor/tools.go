// Package tutor provides the supervisor's English tutoring tools.
//
// The exercise tools return fixed material and the learner tools read a
// [Data] snapshot, so a resolution is deterministic for a given backend
// script.
package tutor

import (
	"context"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/tool"
)

// Levels are the CEFR levels the exercise tools accept.
var Levels = []string{"A1", "A2", "B1", "B2", "C1"}

// DefaultHistoryLimit is used when a history tool gets no usable limit.
const DefaultHistoryLimit = 5

type PracticeArgs struct {
	Level  string `json:"level"`
	Topic  string `json:"topic"`
	Target string `json:"target"`
}

type MistakeArgs struct {
	Sentence string `json:"sentence"`
	Focus    string `json:"focus"`
}

type QuizArgs struct {
	Level string `json:"level"`
	Topic string `json:"topic"`
}

type HistoryArgs struct {
	Limit float64 `json:"limit"`
}

// QuizItem is one question of a mini quiz.
type QuizItem struct {
	Question string `json:"q"`
	Type     string `json:"type,omitempty"`
	Answer   string `json:"a,omitempty"`
}

// Specs returns the tool specs in registration order.
func Specs() []ai.ToolSpec {
	regs := Registrations(SampleData())
	specs := make([]ai.ToolSpec, len(regs))
	for i, r := range regs {
		specs[i] = r.Spec
	}
	return specs
}

// Registrations returns the seven tutor tools reading from d.
func Registrations(d *Data) []tool.Registration {
	return []tool.Registration{
		tool.Func(ai.ToolSpec{
			Name:        "generatePracticePrompt",
			Description: "Create a short practice question or task at a given CEFR level and topic.",
			Parameters: map[string]ai.Param{
				"level":  {Type: ai.ParamString, Description: "Learner level", Enum: Levels, Required: true},
				"topic":  {Type: ai.ParamString, Description: "Conversation topic (e.g., travel, food, work, daily routine)", Required: true},
				"target": {Type: ai.ParamString, Description: "Optional focus, e.g., past simple, conditionals, phrasal verbs"},
			},
		}, func(ctx context.Context, args PracticeArgs) (any, error) {
			return map[string]string{"prompt": "You are at a cafe. Order a sandwich and a drink."}, nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "explainMistake",
			Description: "Explain a learner error concisely and provide a corrected example.",
			Parameters: map[string]ai.Param{
				"sentence": {Type: ai.ParamString, Description: "Learner’s sentence", Required: true},
				"focus":    {Type: ai.ParamString, Description: "Optional grammar/vocab focus"},
			},
		}, func(ctx context.Context, args MistakeArgs) (any, error) {
			return map[string]string{
				"explanation": "Use 'bought' (past of buy), not 'buyed'.",
				"example":     "I bought ice cream yesterday.",
			}, nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "miniQuiz",
			Description: "Generate a 2–3 item micro-quiz for quick assessment.",
			Parameters: map[string]ai.Param{
				"level": {Type: ai.ParamString, Enum: Levels, Required: true},
				"topic": {Type: ai.ParamString, Required: true},
			},
		}, func(ctx context.Context, args QuizArgs) (any, error) {
			return map[string][]QuizItem{"items": {
				{Question: "Say one sentence about your last holiday.", Type: "speaking"},
				{Question: "Choose: go/went: 'I ___ to Paris last year.'", Answer: "went"},
			}}, nil
		}),

		tool.WithHandler(ai.ToolSpec{
			Name:        "getStudentProfile",
			Description: "Fetch the current learner profile, including level, streak, and preferences.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return d.Profile, nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "getLessonHistory",
			Description: "Return a short list of recent lessons with topics and notes.",
			Parameters: map[string]ai.Param{
				"limit": {Type: ai.ParamNumber, Description: "Max number of lessons to return (default 5)"},
			},
		}, func(ctx context.Context, args HistoryArgs) (any, error) {
			return head(d.Lessons, args.Limit), nil
		}),

		tool.Func(ai.ToolSpec{
			Name:        "getQuizHistory",
			Description: "Return recent quiz results for the learner.",
			Parameters: map[string]ai.Param{
				"limit": {Type: ai.ParamNumber, Description: "Max number of quizzes to return (default 5)"},
			},
		}, func(ctx context.Context, args HistoryArgs) (any, error) {
			return head(d.Quizzes, args.Limit), nil
		}),

		tool.WithHandler(ai.ToolSpec{
			Name:        "getProgressSummary",
			Description: "High-level progress summary for the current learner.",
		}, func(ctx context.Context, _ map[string]any) (any, error) {
			return d.Progress, nil
		}),
	}
}

// head returns at most limit leading entries. A limit below one means
// DefaultHistoryLimit. The result is never nil.
func head[T any](s []T, limit float64) []T {
	n := int(limit)
	if n < 1 {
		n = DefaultHistoryLimit
	}
	if n > len(s) {
		n = len(s)
	}
	return append(make([]T, 0, n), s[:n]...)
}

// Register adds the tutor tools backed by SampleData to reg.
func Register(reg *tool.Registry) error {
	for _, r := range Registrations(SampleData()) {
		if err := reg.Register(r.Spec, r.Handler); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns a new registry holding only the tutor tools.
func Registry() *tool.Registry {
	return tool.NewRegistry().Add(Registrations(SampleData())...)
}
