package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/internal/retry"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 60 * time.Second

// Guarded decorates a provider gateway with deadlines, retries, panic
// recovery and error collapsing.
type Guarded struct {
	next     Gateway
	provider ai.Provider
	timeout  time.Duration
	retry    retry.Config
	logger   *slog.Logger
}

// Option configures a Guarded gateway.
type Option func(*Guarded)

// WithTimeout sets the per-attempt deadline. Zero or less disables it.
func WithTimeout(d time.Duration) Option {
	return func(g *Guarded) { g.timeout = d }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(maxAttempts int, initialDelay, maxDelay time.Duration) Option {
	return func(g *Guarded) {
		g.retry = retry.Config{
			MaxAttempts:  maxAttempts,
			InitialDelay: initialDelay,
			MaxDelay:     maxDelay,
			Multiplier:   2.0,
			Jitter:       0.1,
		}
	}
}

// WithoutRetry makes every call a single attempt.
func WithoutRetry() Option {
	return func(g *Guarded) { g.retry = retry.Disabled() }
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guarded) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithProvider overrides the vendor name used in errors and logs.
func WithProvider(p ai.Provider) Option {
	return func(g *Guarded) { g.provider = p }
}

// New wraps next. Every error Send returns is a *Error matching
// ErrUnavailable.
func New(next Gateway, opts ...Option) *Guarded {
	g := &Guarded{
		next:     next,
		provider: providerOf(next),
		timeout:  DefaultTimeout,
		retry:    retry.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway", "provider", string(g.provider))
	return g
}

// Provider returns the wrapped vendor.
func (g *Guarded) Provider() ai.Provider { return g.provider }

// Send submits req. Parallel tool calls are always disabled before the
// request leaves the process.
func (g *Guarded) Send(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	if req == nil {
		return nil, &Error{Provider: g.provider, Err: errors.New("nil request")}
	}
	if g.next == nil {
		return nil, &Error{Provider: g.provider, Err: errors.New("no provider configured")}
	}
	req.ParallelToolCalls = false

	start := time.Now()
	attempts := 0
	resp, err := retry.DoNotify(ctx, g.retry, g.notify, func(ctx context.Context) (*ai.Response, error) {
		attempts++
		return g.attempt(ctx, req)
	})
	if err != nil {
		g.logger.Warn("backend call failed",
			"model", req.Model,
			"attempts", attempts,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, &Error{Provider: g.provider, Attempts: attempts, Err: err}
	}

	g.logger.Debug("backend call completed",
		"model", req.Model,
		"attempts", attempts,
		"items", len(req.Items),
		"output_items", len(resp.Output),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (g *Guarded) attempt(ctx context.Context, req *ai.Request) (resp *ai.Response, err error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, &PanicError{Value: r}
		}
	}()

	resp, err = g.next.Send(ctx, req)
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	return resp, err
}

func (g *Guarded) notify(ev retry.Event) {
	switch ev.Type {
	case retry.EventRetrying:
		g.logger.Info("retrying backend call", "attempt", ev.Attempt, "max_attempts", ev.MaxAttempts, "delay_ms", ev.Delay.Milliseconds())
	case retry.EventAttemptFailed:
		g.logger.Debug("backend attempt failed", "attempt", ev.Attempt, "retryable", ev.Retryable, "error", ev.Err)
	}
}
