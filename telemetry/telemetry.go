// Package telemetry records human-readable breadcrumbs about a resolution:
// which tools the supervisor called, with what arguments, and what came back.
//
// Recording is fire-and-forget. A sink must never block the caller and must
// never change control flow; [Safe] enforces the second rule by recovering
// panics. A nil [Sink] is treated as [Nop] everywhere in this module.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Sink receives breadcrumbs.
type Sink interface {
	Record(ctx context.Context, title string, data any)
}

// Func adapts an ordinary function to a Sink.
type Func func(ctx context.Context, title string, data any)

// Record calls f.
func (f Func) Record(ctx context.Context, title string, data any) { f(ctx, title, data) }

type nopSink struct{}

func (nopSink) Record(context.Context, string, any) {}

// Nop discards every breadcrumb.
var Nop Sink = nopSink{}

// Breadcrumb is a recorded title and payload.
type Breadcrumb struct {
	Title string    `json:"title"`
	Data  any       `json:"data,omitempty"`
	Time  time.Time `json:"time"`
}

// ToolCall is the payload of a function-call breadcrumb. It encodes as the
// bare argument object so serialized breadcrumbs match what the backend
// sent; CallID and Name are there for typed consumers.
type ToolCall struct {
	CallID string
	Name   string
	Args   map[string]any
}

// MarshalJSON encodes only the arguments.
func (c ToolCall) MarshalJSON() ([]byte, error) {
	if c.Args == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Args)
}

// ToolResult is the payload of a function-call-result breadcrumb. It
// encodes as the bare result value.
type ToolResult struct {
	CallID string
	Name   string
	Result any
	Failed bool
}

// MarshalJSON encodes only the result.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Result)
}

type safeSink struct {
	sink   Sink
	logger *slog.Logger
}

// Safe wraps a sink so that panics inside Record are recovered and logged.
// A nil sink becomes Nop.
func Safe(s Sink, logger *slog.Logger) Sink {
	if s == nil {
		return Nop
	}
	if _, ok := s.(*safeSink); ok {
		return s
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &safeSink{sink: s, logger: logger}
}

func (s *safeSink) Record(ctx context.Context, title string, data any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("telemetry sink panicked", "title", title, "panic", r)
		}
	}()
	s.sink.Record(ctx, title, data)
}

type multi []Sink

// Multi fans a breadcrumb out to every sink in order. Nil sinks are
// skipped and each sink is isolated from the others' panics.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, Safe(s, nil))
		}
	}
	if len(out) == 0 {
		return Nop
	}
	return out
}

func (m multi) Record(ctx context.Context, title string, data any) {
	for _, s := range m {
		s.Record(ctx, title, data)
	}
}
