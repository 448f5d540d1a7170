package supervisor

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/englify/tutorkit/telemetry"
)

const (
	// DefaultMaxRounds bounds the number of backend calls per resolution.
	DefaultMaxRounds = 10

	// DefaultHandlerTimeout bounds each tool handler.
	DefaultHandlerTimeout = 30 * time.Second

	tracerName = "github.com/englify/tutorkit/supervisor"
)

// Options contains configuration for a Resolver.
type Options struct {
	// MaxRounds limits the number of backend calls. Set to 0 for unlimited
	// (not recommended). Default is 10.
	MaxRounds int

	// HandlerTimeout sets the timeout for each tool handler. A value of 0
	// means no per-handler timeout. Default is 30 seconds.
	HandlerTimeout time.Duration

	// Sink receives tool call breadcrumbs. Default is telemetry.Nop.
	Sink telemetry.Sink

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Option is a functional option for configuring a Resolver.
type Option func(*Options)

// WithMaxRounds sets the maximum number of backend calls.
func WithMaxRounds(n int) Option {
	return func(o *Options) {
		o.MaxRounds = n
	}
}

// WithHandlerTimeout sets the timeout for each tool handler. When it
// expires the round stops waiting and the call's output is an error
// payload; a handler that ignores its context is left to finish on its own.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithSink sets the breadcrumb sink.
func WithSink(s telemetry.Sink) Option {
	return func(o *Options) {
		o.Sink = s
	}
}

// AddSink records breadcrumbs to s in addition to the sinks already set.
func AddSink(s telemetry.Sink) Option {
	return func(o *Options) {
		o.Sink = telemetry.Multi(o.Sink, s)
	}
}

// WithLogger sets the logger used for state transitions and failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithTracer sets the tracer that opens one span per resolution.
// By default the global OpenTelemetry tracer provider is used.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = t
	}
}

// ApplyOptions applies functional options on top of the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxRounds:      DefaultMaxRounds,
		HandlerTimeout: DefaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Sink = telemetry.Safe(o.Sink, o.Logger)
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	return o
}
