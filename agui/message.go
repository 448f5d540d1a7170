package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/englify/tutorkit"
)

// AG-UI message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleTool      = "tool"
)

// ToItems converts AG-UI messages to conversation items. Tool calls on an
// assistant message become FunctionCall items after the message text, and
// tool messages become FunctionCallOutput items.
func ToItems(msgs []events.Message) ai.Items {
	items := make(ai.Items, 0, len(msgs))
	for _, msg := range msgs {
		content := ""
		if msg.Content != nil {
			content = *msg.Content
		}

		if msg.Role == RoleTool {
			if msg.ToolCallID != nil {
				items = append(items, ai.FunctionCallOutput{CallID: *msg.ToolCallID, Output: content})
			}
			continue
		}

		if len(msg.ToolCalls) == 0 || content != "" {
			items = append(items, ai.Message{Role: toRole(msg.Role), Content: content})
		}
		for _, tc := range msg.ToolCalls {
			items = append(items, ai.FunctionCall{
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return items
}

// FromItems converts conversation items to AG-UI messages for snapshots.
// Each function call becomes an assistant message carrying one tool call.
func FromItems(items ai.Items) []events.Message {
	out := make([]events.Message, 0, len(items))
	for _, item := range items {
		m := events.Message{ID: events.GenerateMessageID()}
		switch it := item.(type) {
		case ai.Message:
			m.Role = fromRole(it.Role)
			content := it.Content
			m.Content = &content
		case ai.FunctionCall:
			m.Role = RoleAssistant
			m.ToolCalls = []events.ToolCall{{
				ID:   it.CallID,
				Type: "function",
				Function: events.Function{
					Name:      it.Name,
					Arguments: it.Arguments,
				},
			}}
		case ai.FunctionCallOutput:
			m.Role = RoleTool
			callID, output := it.CallID, it.Output
			m.ToolCallID = &callID
			m.Content = &output
		default:
			continue
		}
		out = append(out, m)
	}
	return out
}

func toRole(role string) ai.Role {
	switch role {
	case RoleAssistant:
		return ai.RoleAssistant
	case RoleSystem:
		return ai.RoleSystem
	case RoleDeveloper:
		return ai.RoleDeveloper
	default:
		return ai.RoleUser
	}
}

func fromRole(role ai.Role) string {
	switch role {
	case ai.RoleAssistant:
		return RoleAssistant
	case ai.RoleSystem:
		return RoleSystem
	case ai.RoleDeveloper:
		return RoleDeveloper
	default:
		return RoleUser
	}
}
