package agui

import (
	"encoding/json"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/telemetry"
)

// Mapper converts resolution breadcrumbs to AG-UI events for one run.
type Mapper struct {
	threadID string
	runID    string

	// call ids whose result was already emitted
	results map[string]bool
}

// NewMapper creates a Mapper for a single run. Empty ids are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
		results:  make(map[string]bool),
	}
}

// ThreadID returns the thread id of the run.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run id.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event carrying msg.
func (m *Mapper) RunError(msg string) events.Event {
	if msg == "" {
		msg = "unknown error"
	}
	return events.NewRunErrorEvent(msg)
}

// MapBreadcrumb converts a breadcrumb to AG-UI events. A function call
// becomes TOOL_CALL_START, TOOL_CALL_ARGS and TOOL_CALL_END; its result
// becomes TOOL_CALL_RESULT, emitted once per call id even when the
// resolver records both an error and a result breadcrumb. Other payloads
// have no AG-UI equivalent and yield nil.
func (m *Mapper) MapBreadcrumb(b telemetry.Breadcrumb) []events.Event {
	switch data := b.Data.(type) {
	case telemetry.ToolCall:
		args := "{}"
		if len(data.Args) > 0 {
			if raw, err := json.Marshal(data.Args); err == nil {
				args = string(raw)
			}
		}
		return []events.Event{
			events.NewToolCallStartEvent(data.CallID, data.Name),
			events.NewToolCallArgsEvent(data.CallID, args),
			events.NewToolCallEndEvent(data.CallID),
		}

	case telemetry.ToolResult:
		if m.results[data.CallID] {
			return nil
		}
		m.results[data.CallID] = true
		return []events.Event{
			events.NewToolCallResultEvent(events.GenerateMessageID(), data.CallID, encodeValue(data.Result)),
		}
	}
	return nil
}

// Text returns the start, content and end events of an assistant message.
// The content event is omitted for empty text.
func (m *Mapper) Text(text string) []events.Event {
	id := events.GenerateMessageID()
	out := []events.Event{events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant))}
	if text != "" {
		out = append(out, events.NewTextMessageContentEvent(id, text))
	}
	return append(out, events.NewTextMessageEndEvent(id))
}

// Snapshot returns a MESSAGES_SNAPSHOT of items.
func (m *Mapper) Snapshot(items ai.Items) events.Event {
	return events.NewMessagesSnapshotEvent(FromItems(items))
}

func encodeValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
