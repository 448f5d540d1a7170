package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/tool"
)

const (
	// DefaultModel is the model the supervisor reasons with.
	DefaultModel = "gpt-4.1"

	// EscalationToolName is the name front-line agents call the supervisor by.
	EscalationToolName = "getNextResponseFromSupervisor"

	contextParam = "relevantContextFromLastUserMessage"
)

// Escalation is what a front-line agent hands to the supervisor.
type Escalation struct {
	// History is the front-line conversation. Only Message items are
	// forwarded; tool traffic of the front-line agent is dropped.
	History ai.Items `json:"history"`

	// RelevantContext is key information from the user's latest message,
	// which may not be in History yet.
	RelevantContext string `json:"relevantContextFromLastUserMessage"`
}

// Reply is the supervisor's answer. Exactly one field is set.
type Reply struct {
	NextResponse string `json:"nextResponse,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Supervisor answers escalations by resolving a request built from the
// front-line history. Zero values for Model and Instructions select
// DefaultModel and DefaultInstructions.
type Supervisor struct {
	Resolver     *Resolver
	Model        string
	Instructions string
	Logger       *slog.Logger
}

// NextResponse resolves an escalation. Failures are logged and reported
// only as GenericErrorMessage.
func (s *Supervisor) NextResponse(ctx context.Context, esc Escalation) Reply {
	logger := s.logger()

	req, err := s.BuildRequest(esc)
	if err != nil {
		logger.Error("failed to build supervisor request", "error", err)
		return Reply{Error: GenericErrorMessage}
	}

	result, err := s.Resolver.Resolve(ctx, req)
	if err != nil {
		logger.Error("supervisor resolution failed", "error", err, "rounds", result.Rounds)
		return Reply{Error: GenericErrorMessage}
	}
	return Reply{NextResponse: result.Text}
}

// BuildRequest assembles the supervisor request for esc: the instructions
// as a system message, then one user message carrying the conversation
// history and the relevant context.
func (s *Supervisor) BuildRequest(esc Escalation) (*ai.Request, error) {
	msgs := esc.History.Messages()
	if msgs == nil {
		msgs = []ai.Message{}
	}
	history, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	instructions := s.Instructions
	if instructions == "" {
		instructions = DefaultInstructions
	}
	model := s.Model
	if model == "" {
		model = DefaultModel
	}

	content := fmt.Sprintf("==== Conversation History ====\n%s\n\n==== Relevant Context From Last User Message ===\n%s\n",
		history, esc.RelevantContext)

	return ai.NewRequest(model, s.Resolver.Registry().Specs(),
		ai.NewSystemMessage(instructions),
		ai.NewUserMessage(content),
	), nil
}

// EscalationTool returns the spec of the tool a front-line agent uses to
// consult the supervisor.
func EscalationTool() ai.ToolSpec {
	return ai.ToolSpec{
		Name: EscalationToolName,
		Description: "Determines the next response whenever the agent faces a non-trivial decision, " +
			"produced by a highly intelligent supervisor agent. Returns a message describing what to do next.",
		Parameters: map[string]ai.Param{
			contextParam: {
				Type: ai.ParamString,
				Description: "Key information from the user described in their most recent message. " +
					"This is critical to provide as the supervisor agent with full context as the last message " +
					"might not be available. Okay to omit if the user message didn't add any new information.",
				Required: true,
			},
		},
	}
}

// Register adds the escalation tool to a front-line registry. The history
// is read from the context with HistoryFromContext.
func (s *Supervisor) Register(reg *tool.Registry) error {
	return reg.Register(EscalationTool(), func(ctx context.Context, args map[string]any) (any, error) {
		relevant, _ := args[contextParam].(string)
		return s.NextResponse(ctx, Escalation{
			History:         HistoryFromContext(ctx),
			RelevantContext: relevant,
		}), nil
	})
}

func (s *Supervisor) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger.With("component", "supervisor")
	}
	return slog.Default().With("component", "supervisor")
}

type historyKey struct{}

// WithHistory attaches the front-line conversation to ctx so the escalation
// tool can forward it.
func WithHistory(ctx context.Context, history ai.Items) context.Context {
	return context.WithValue(ctx, historyKey{}, history)
}

// HistoryFromContext returns the history attached by WithHistory.
func HistoryFromContext(ctx context.Context) ai.Items {
	h, _ := ctx.Value(historyKey{}).(ai.Items)
	return h
}
