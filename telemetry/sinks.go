package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBuffer is the capacity of channels made by NewChannel.
const DefaultBuffer = 100

// Channel delivers breadcrumbs over a buffered channel. When the buffer is
// full the breadcrumb is dropped rather than blocking the resolution.
type Channel struct {
	mu      sync.RWMutex
	ch      chan Breadcrumb
	closed  bool
	dropped atomic.Int64
}

// NewChannel creates a channel sink. A buffer below 1 uses DefaultBuffer.
func NewChannel(buffer int) *Channel {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Channel{ch: make(chan Breadcrumb, buffer)}
}

// Record sends the breadcrumb without blocking.
func (c *Channel) Record(_ context.Context, title string, data any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- Breadcrumb{Title: title, Data: data, Time: time.Now()}:
	default:
		c.dropped.Add(1)
	}
}

// Events returns the receive side of the channel.
func (c *Channel) Events() <-chan Breadcrumb { return c.ch }

// Dropped returns how many breadcrumbs were discarded because the buffer
// was full.
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

// Close closes the channel. Later Record calls are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// Slog writes breadcrumbs as structured log records.
type Slog struct {
	Logger *slog.Logger
	Level  slog.Level
}

// NewSlog creates a log sink at info level. A nil logger uses slog.Default.
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{Logger: logger, Level: slog.LevelInfo}
}

// Record logs the title as the message and the payload as JSON.
func (s *Slog) Record(ctx context.Context, title string, data any) {
	s.Logger.Log(ctx, s.Level, title, "data", encode(data))
}

// OTel attaches breadcrumbs as events on the span found in the context.
// Without a recording span the breadcrumb is dropped.
type OTel struct{}

// Record adds a span event named after the title.
func (OTel) Record(ctx context.Context, title string, data any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("breadcrumb.data", encode(data))}
	switch v := data.(type) {
	case ToolCall:
		attrs = append(attrs, attribute.String("tool.name", v.Name), attribute.String("tool.call_id", v.CallID))
	case ToolResult:
		attrs = append(attrs,
			attribute.String("tool.name", v.Name),
			attribute.String("tool.call_id", v.CallID),
			attribute.Bool("tool.failed", v.Failed),
		)
	}
	span.AddEvent(title, trace.WithAttributes(attrs...))
}

func encode(data any) string {
	if data == nil {
		return ""
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "<unserializable>"
	}
	return string(b)
}
