package tutorkit

import (
	"encoding/json"
	"fmt"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ItemType discriminates the kinds of conversation item on the wire.
type ItemType string

const (
	ItemMessage            ItemType = "message"
	ItemFunctionCall       ItemType = "function_call"
	ItemFunctionCallOutput ItemType = "function_call_output"
)

// Item is one entry of a conversation sequence. The set of implementations
// is closed: [Message], [FunctionCall] and [FunctionCallOutput].
type Item interface {
	ItemType() ItemType
	isItem()
}

// Message is an utterance in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FunctionCall is a tool invocation requested by the reasoning backend.
// Arguments is the raw JSON object text exactly as the backend sent it.
type FunctionCall struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// FunctionCallOutput carries the serialized result of the call with the
// same CallID.
type FunctionCallOutput struct {
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

func (Message) ItemType() ItemType            { return ItemMessage }
func (FunctionCall) ItemType() ItemType       { return ItemFunctionCall }
func (FunctionCallOutput) ItemType() ItemType { return ItemFunctionCallOutput }

func (Message) isItem()            {}
func (FunctionCall) isItem()       {}
func (FunctionCallOutput) isItem() {}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// MarshalJSON encodes the message with its "type" discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	return json.Marshal(struct {
		Type ItemType `json:"type"`
		plain
	}{ItemMessage, plain(m)})
}

// MarshalJSON encodes the call with its "type" discriminator.
func (c FunctionCall) MarshalJSON() ([]byte, error) {
	type plain FunctionCall
	return json.Marshal(struct {
		Type ItemType `json:"type"`
		plain
	}{ItemFunctionCall, plain(c)})
}

// MarshalJSON encodes the output with its "type" discriminator.
func (o FunctionCallOutput) MarshalJSON() ([]byte, error) {
	type plain FunctionCallOutput
	return json.Marshal(struct {
		Type ItemType `json:"type"`
		plain
	}{ItemFunctionCallOutput, plain(o)})
}

// Items is an ordered conversation sequence.
type Items []Item

// UnmarshalJSON decodes a JSON array of typed items. Unknown "type" values
// are rejected.
func (items *Items) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Items, 0, len(raw))
	for i, r := range raw {
		var head struct {
			Type ItemType `json:"type"`
		}
		if err := json.Unmarshal(r, &head); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}

		var (
			item Item
			err  error
		)
		switch head.Type {
		case ItemMessage:
			var m Message
			err = json.Unmarshal(r, &m)
			item = m
		case ItemFunctionCall:
			var c FunctionCall
			err = json.Unmarshal(r, &c)
			item = c
		case ItemFunctionCallOutput:
			var o FunctionCallOutput
			err = json.Unmarshal(r, &o)
			item = o
		default:
			return fmt.Errorf("item %d: unknown type %q", i, head.Type)
		}
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, item)
	}

	*items = out
	return nil
}

// Messages returns only the message items, in order.
func (items Items) Messages() []Message {
	var msgs []Message
	for _, it := range items {
		if m, ok := it.(Message); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// Validate checks the pairing rule: every function call has a non-empty
// call id and is immediately followed by the output with the same id, and
// no output appears anywhere else.
func (items Items) Validate() error {
	for i, it := range items {
		switch v := it.(type) {
		case FunctionCall:
			if v.CallID == "" {
				return fmt.Errorf("item %d: function call %q has no call id", i, v.Name)
			}
			if i+1 >= len(items) {
				return fmt.Errorf("item %d: function call %s has no output", i, v.CallID)
			}
			out, ok := items[i+1].(FunctionCallOutput)
			if !ok || out.CallID != v.CallID {
				return fmt.Errorf("item %d: function call %s is not followed by its output", i, v.CallID)
			}
		case FunctionCallOutput:
			if i == 0 {
				return fmt.Errorf("item %d: output %s has no preceding call", i, v.CallID)
			}
			call, ok := items[i-1].(FunctionCall)
			if !ok || call.CallID != v.CallID {
				return fmt.Errorf("item %d: output %s has no preceding call", i, v.CallID)
			}
		case Message:
		default:
			return fmt.Errorf("item %d: unsupported item %T", i, it)
		}
	}
	return nil
}
