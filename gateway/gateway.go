// Package gateway submits requests to a reasoning backend.
//
// Provider packages ([github.com/englify/tutorkit/gateway/openai],
// [github.com/englify/tutorkit/gateway/anthropic] and
// [github.com/englify/tutorkit/gateway/google]) translate a [ai.Request]
// into a vendor call. [New] wraps any of them with a per-call deadline,
// retries for transient failures, panic recovery and logging, and collapses
// every failure into a [*Error] that matches [ErrUnavailable]:
//
//	gw := gateway.New(openai.New(apiKey), gateway.WithTimeout(45*time.Second))
//	resp, err := gw.Send(ctx, req)
//	if errors.Is(err, gateway.ErrUnavailable) {
//	    // backend failed after retries
//	}
package gateway

import (
	"context"
	"errors"
	"fmt"

	ai "github.com/englify/tutorkit"
)

// ErrUnavailable is matched by every error a guarded gateway returns.
var ErrUnavailable = errors.New("reasoning backend unavailable")

// Gateway sends one request to a reasoning backend.
type Gateway interface {
	Send(ctx context.Context, req *ai.Request) (*ai.Response, error)
}

// Func adapts a function to a Gateway.
type Func func(ctx context.Context, req *ai.Request) (*ai.Response, error)

// Send calls f.
func (f Func) Send(ctx context.Context, req *ai.Request) (*ai.Response, error) { return f(ctx, req) }

// Named is implemented by gateways that know their vendor.
type Named interface {
	Provider() ai.Provider
}

// Error is the collapsed failure of a guarded gateway. It matches
// ErrUnavailable and whatever the cause matches.
type Error struct {
	Provider ai.Provider
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	name := string(e.Provider)
	if name == "" {
		name = "gateway"
	}
	return fmt.Sprintf("%s: %v: %v", name, ErrUnavailable, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *Error) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// PanicError records a panic recovered from a provider.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("provider panic: %v", e.Value)
}

// providerOf returns the vendor of g, or "".
func providerOf(g Gateway) ai.Provider {
	if n, ok := g.(Named); ok {
		return n.Provider()
	}
	return ""
}
