package tutorkit

// Request is one submission to a reasoning backend. Across the rounds of a
// resolution only Items grows; Model, Instructions and Tools stay fixed.
type Request struct {
	Model        string
	Instructions string
	Items        Items
	Tools        []ToolSpec

	// ParallelToolCalls must stay false: tools run one at a time in the
	// order the backend listed them.
	ParallelToolCalls bool

	// ResponseFormat requests structured output. Nil means free text.
	ResponseFormat *ResponseSchema

	// MaxOutputTokens caps the response length. Zero uses the backend default.
	MaxOutputTokens int

	// Temperature overrides the sampling temperature when set.
	Temperature *float64
}

// NewRequest creates a request with parallel tool calls disabled.
func NewRequest(model string, tools []ToolSpec, items ...Item) *Request {
	return &Request{
		Model:             model,
		Items:             append(Items(nil), items...),
		Tools:             tools,
		ParallelToolCalls: false,
	}
}

// Append adds items to the end of the conversation.
func (r *Request) Append(items ...Item) {
	r.Items = append(r.Items, items...)
}

// Float returns a pointer to v, for optional fields like Temperature.
func Float(v float64) *float64 { return &v }
