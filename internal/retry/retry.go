package retry

import (
	"context"
	"time"

	ai "github.com/englify/tutorkit"
)

// EventType identifies a retry lifecycle event.
type EventType string

const (
	EventAttemptFailed EventType = "attempt_failed"
	EventRetrying      EventType = "retrying"
	EventExhausted     EventType = "exhausted"
)

// Event describes one step of a retried call.
type Event struct {
	Type        EventType
	Attempt     int // 1-indexed
	MaxAttempts int
	Err         error
	Retryable   bool
	Delay       time.Duration
}

// Notify receives retry events. It must not block.
type Notify func(Event)

// effectiveDelay honors a server Retry-After when it is longer than the
// configured backoff.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := ai.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}

// Do calls fn until it succeeds, fails with a non-transient error, or the
// attempts run out. Context cancellation stops the wait between attempts.
// The last error is returned as is.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	return DoNotify(ctx, cfg, nil, fn)
}

// DoNotify is Do with a lifecycle callback. A nil notify is allowed.
func DoNotify[T any](ctx context.Context, cfg Config, notify Notify, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	limit := cfg.attempts()

	for attempt := 0; attempt < limit; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		retryable := IsTransient(err) && ctx.Err() == nil
		emit(notify, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: limit,
			Err:         err,
			Retryable:   retryable,
		})
		if !retryable {
			return zero, err
		}

		if attempt < limit-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			emit(notify, Event{
				Type:        EventRetrying,
				Attempt:     attempt + 1,
				MaxAttempts: limit,
				Delay:       delay,
			})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	emit(notify, Event{
		Type:        EventExhausted,
		Attempt:     limit,
		MaxAttempts: limit,
		Err:         lastErr,
	})
	return zero, lastErr
}

func emit(notify Notify, ev Event) {
	if notify != nil {
		notify(ev)
	}
}
