package supervisor

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is the only failure text shown to end users.
const GenericErrorMessage = "Something went wrong."

// Sentinel errors for resolution failures.
var (
	// ErrGateway indicates the reasoning backend call failed.
	ErrGateway = errors.New("supervisor: reasoning backend failed")

	// ErrResolutionExhausted indicates the round limit was reached while
	// the backend was still asking for tools.
	ErrResolutionExhausted = errors.New("supervisor: resolution rounds exhausted")

	errNoResponse = errors.New("reasoning backend returned no response")
)

// Kind classifies a resolution failure.
type Kind int

const (
	KindGateway Kind = iota + 1
	KindExhausted
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindGateway:
		return "gateway"
	case KindExhausted:
		return "exhausted"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is returned by Resolve when a resolution ends in the Failed state.
type Error struct {
	Kind  Kind
	Round int
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("supervisor: %s in round %d", e.Kind, e.Round)
	}
	return fmt.Sprintf("supervisor: %s in round %d: %v", e.Kind, e.Round, e.Err)
}

// Unwrap exposes the kind's sentinel alongside the cause, so both
// errors.Is(err, ErrGateway) and errors.Is(err, gateway.ErrUnavailable)
// hold for a gateway failure.
func (e *Error) Unwrap() []error {
	var errs []error
	switch e.Kind {
	case KindGateway:
		errs = append(errs, ErrGateway)
	case KindExhausted:
		errs = append(errs, ErrResolutionExhausted)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
