package tutorkit

import "strings"

// SegmentType is the kind of a text segment inside an output message.
type SegmentType string

const (
	SegmentOutputText SegmentType = "output_text"
	SegmentRefusal    SegmentType = "refusal"
)

// TextSegment is one piece of an output message.
type TextSegment struct {
	Type SegmentType `json:"type"`
	Text string      `json:"text"`
}

// OutputItem is an entry of a backend response: an [OutputMessage] or a
// [FunctionCall].
type OutputItem interface {
	isOutput()
}

// OutputMessage is a message produced by the backend.
type OutputMessage struct {
	ID      string        `json:"id,omitempty"`
	Content []TextSegment `json:"content"`
}

func (OutputMessage) isOutput() {}
func (FunctionCall) isOutput()  {}

// Text joins the output_text segments of the message with no separator.
func (m OutputMessage) Text() string {
	var b strings.Builder
	for _, seg := range m.Content {
		if seg.Type == SegmentOutputText {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Usage reports token consumption.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Add returns the sum of two usages.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
	}
}

// Response is a reasoning backend reply.
type Response struct {
	ID     string
	Model  string
	Output []OutputItem
	Usage  Usage
}

// FunctionCalls returns the function calls in response order.
func (r *Response) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, o := range r.Output {
		if c, ok := o.(FunctionCall); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// Text returns the final text: segments inside a message are joined with
// no separator and messages are joined with a newline.
func (r *Response) Text() string {
	var parts []string
	for _, o := range r.Output {
		if m, ok := o.(OutputMessage); ok {
			parts = append(parts, m.Text())
		}
	}
	return strings.Join(parts, "\n")
}
