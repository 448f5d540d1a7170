package agui

import (
	"errors"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/supervisor"
)

// ErrEmptyInput is returned by Prepare when there is nothing to resolve.
var ErrEmptyInput = errors.New("agui: no history or context provided")

// RunInput is the body of a streaming escalation. History takes the
// front-line conversation as items; AG-UI clients may send Messages
// instead, which are used only when History is empty.
type RunInput struct {
	ThreadID        string           `json:"threadId,omitempty"`
	RunID           string           `json:"runId,omitempty"`
	History         ai.Items         `json:"history,omitempty"`
	Messages        []events.Message `json:"messages,omitempty"`
	RelevantContext string           `json:"relevantContextFromLastUserMessage"`
}

// Prepare converts the input to an escalation. Only the messages of the
// history reach the supervisor, so call and output pairing is not checked.
func (in *RunInput) Prepare() (supervisor.Escalation, error) {
	history := in.History
	if len(history) == 0 && len(in.Messages) > 0 {
		history = ToItems(in.Messages)
	}
	if len(history) == 0 && in.RelevantContext == "" {
		return supervisor.Escalation{}, ErrEmptyInput
	}
	return supervisor.Escalation{History: history, RelevantContext: in.RelevantContext}, nil
}
