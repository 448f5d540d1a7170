// Package guardrail classifies agent output against a moderation policy.
//
// A [Guardrail] wraps a [Classifier] and never fails: when classification
// breaks, the configured [FailureMode] decides whether the output passes.
//
//	g := guardrail.New(guardrail.NewClassifier(gw))
//	res := g.Check(ctx, agentOutput)
//	if res.TripwireTriggered {
//		// send a corrective message instead
//	}
package guardrail

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/englify/tutorkit/telemetry"
)

const (
	// DefaultName identifies the guardrail in results and breadcrumbs.
	DefaultName = "moderation_guardrail"

	// FailedError is reported in a Result when classification failed.
	FailedError = "guardrail_failed"
)

// FailureMode decides the outcome when classification fails.
type FailureMode int

const (
	// FailOpen lets the output through.
	FailOpen FailureMode = iota
	// FailClosed trips the wire.
	FailClosed
)

func (m FailureMode) String() string {
	if m == FailClosed {
		return "closed"
	}
	return "open"
}

// Result is the outcome of a check. Verdict is nil when classification
// failed, in which case Error is FailedError.
type Result struct {
	TripwireTriggered bool
	Verdict           *Verdict
	Error             string
}

// MarshalJSON encodes the result as {tripwireTriggered, outputInfo}, where
// outputInfo is the verdict or {"error": "guardrail_failed"}.
func (r Result) MarshalJSON() ([]byte, error) {
	var info any = r.Verdict
	if r.Verdict == nil {
		info = map[string]string{"error": r.Error}
	}
	return json.Marshal(struct {
		TripwireTriggered bool `json:"tripwireTriggered"`
		OutputInfo        any  `json:"outputInfo"`
	}{r.TripwireTriggered, info})
}

// Guardrail checks text with a classifier under a policy.
type Guardrail struct {
	Name        string
	Policy      Policy
	FailureMode FailureMode

	classifier *Classifier
	sink       telemetry.Sink
	logger     *slog.Logger
}

// Option configures a Guardrail.
type Option func(*Guardrail)

// WithPolicy sets the moderation policy.
func WithPolicy(p Policy) Option {
	return func(g *Guardrail) { g.Policy = p }
}

// WithAppName sets the application name of the default policy.
func WithAppName(name string) Option {
	return func(g *Guardrail) {
		if name != "" {
			g.Policy.AppName = name
		}
	}
}

// WithFailureMode sets what happens when classification fails.
func WithFailureMode(m FailureMode) Option {
	return func(g *Guardrail) { g.FailureMode = m }
}

// WithSink records tripwires and failures as breadcrumbs.
func WithSink(s telemetry.Sink) Option {
	return func(g *Guardrail) { g.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guardrail) { g.logger = l }
}

// New creates a fail-open guardrail with the default policy.
func New(c *Classifier, opts ...Option) *Guardrail {
	g := &Guardrail{
		Name:       DefaultName,
		Policy:     DefaultPolicy(),
		classifier: c,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With("component", "guardrail", "guardrail", g.Name)
	g.sink = telemetry.Safe(g.sink, g.logger)
	return g
}

// Check classifies text. It never fails.
func (g *Guardrail) Check(ctx context.Context, text string) Result {
	v, err := g.classifier.Classify(ctx, text, g.Policy)
	if err != nil {
		g.logger.Warn("classification failed", "error", err, "failure_mode", g.FailureMode)
		g.sink.Record(ctx, "["+g.Name+"] "+FailedError, map[string]string{"error": err.Error()})
		return Result{TripwireTriggered: g.FailureMode == FailClosed, Error: FailedError}
	}

	res := Result{TripwireTriggered: v.TripwireTriggered(), Verdict: &v}
	if res.TripwireTriggered {
		g.logger.Info("tripwire triggered", "category", v.ModerationCategory, "reason", v.Reason)
		g.sink.Record(ctx, "["+g.Name+"] tripwire triggered", v)
	}
	return res
}

// CheckAsync runs Check in a goroutine and delivers the result on the
// returned channel, which has capacity one and is closed afterwards.
func (g *Guardrail) CheckAsync(ctx context.Context, text string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- g.Check(ctx, text)
	}()
	return ch
}
