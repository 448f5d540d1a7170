// Package gatewaytest provides a scripted gateway for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	ai "github.com/englify/tutorkit"
)

// ErrScriptExhausted is returned when Send is called more times than the
// script has steps.
var ErrScriptExhausted = errors.New("gatewaytest: script exhausted")

// Step is one scripted reply: a response or an error.
type Step struct {
	Response *ai.Response
	Err      error
}

// Gateway replays a fixed script and records every request it receives.
type Gateway struct {
	mu       sync.Mutex
	steps    []Step
	requests []ai.Request
	calls    int
}

// New creates a scripted gateway.
func New(steps ...Step) *Gateway {
	return &Gateway{steps: steps}
}

// Send records a snapshot of req and returns the next scripted step.
func (g *Gateway) Send(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := *req
	snap.Items = append(ai.Items(nil), req.Items...)
	g.requests = append(g.requests, snap)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.calls >= len(g.steps) {
		g.calls++
		return nil, ErrScriptExhausted
	}
	step := g.steps[g.calls]
	g.calls++
	return step.Response, step.Err
}

// Calls returns how many times Send was called.
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Requests returns snapshots of every request received.
func (g *Gateway) Requests() []ai.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ai.Request(nil), g.requests...)
}

// Reply builds a step answering with plain text.
func Reply(text string) Step {
	return Step{Response: Text(text)}
}

// Fail builds a failing step.
func Fail(err error) Step {
	return Step{Err: err}
}

// CallTools builds a step requesting the given function calls.
func CallTools(calls ...ai.FunctionCall) Step {
	out := make([]ai.OutputItem, len(calls))
	for i, c := range calls {
		out[i] = c
	}
	return Step{Response: &ai.Response{Output: out}}
}

// Text builds a response with one output message.
func Text(text string) *ai.Response {
	return &ai.Response{Output: []ai.OutputItem{
		ai.OutputMessage{Content: []ai.TextSegment{{Type: ai.SegmentOutputText, Text: text}}},
	}}
}

// JSON builds a text response holding v encoded as JSON.
func JSON(v any) *ai.Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Text(string(b))
}

// Call is shorthand for a function call with the given id, name and raw
// arguments.
func Call(id, name, args string) ai.FunctionCall {
	return ai.FunctionCall{CallID: id, Name: name, Arguments: args}
}
