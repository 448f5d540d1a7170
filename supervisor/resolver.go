package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/gateway"
	"github.com/englify/tutorkit/telemetry"
	"github.com/englify/tutorkit/tool"
)

// State is the phase of a resolution.
type State string

const (
	StateAwaitingResponse State = "awaiting_response"
	StateExecutingTools   State = "executing_tools"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// TerminationReason describes why a resolution stopped.
type TerminationReason string

const (
	TerminationComplete  TerminationReason = "complete"
	TerminationMaxRounds TerminationReason = "max_rounds"
	TerminationCancelled TerminationReason = "cancelled"
	TerminationError     TerminationReason = "error"
)

// Breadcrumb title prefixes.
const (
	TitleFunctionCall   = "[supervisorAgent] function call: "
	TitleFunctionResult = "[supervisorAgent] function call result: "
	TitleFunctionError  = "[supervisorAgent] function call error: "
)

// Result is the outcome of a resolution.
type Result struct {
	// ID identifies the resolution in logs and spans.
	ID string

	// Text is the final answer. Only set when Termination is complete.
	Text string

	// Rounds is the number of backend calls made.
	Rounds int

	// Usage accumulates token counts over all rounds.
	Usage ai.Usage

	// Items is the conversation as last sent, including every function
	// call and its output.
	Items ai.Items

	Termination TerminationReason
}

// Resolver runs the tool-call resolution loop.
type Resolver struct {
	gateway  gateway.Gateway
	registry *tool.Registry
	options  *Options
}

// New creates a Resolver that sends requests through gw and executes tools
// from reg.
func New(gw gateway.Gateway, reg *tool.Registry, opts ...Option) *Resolver {
	if reg == nil {
		reg = tool.NewRegistry()
	}
	return &Resolver{
		gateway:  gw,
		registry: reg,
		options:  ApplyOptions(opts...),
	}
}

// Registry returns the registry tools are executed from.
func (r *Resolver) Registry() *tool.Registry { return r.registry }

// With returns a copy of r with opts applied over its options. The
// gateway and registry are shared.
func (r *Resolver) With(opts ...Option) *Resolver {
	o := *r.options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Sink = telemetry.Safe(o.Sink, o.Logger)
	return &Resolver{gateway: r.gateway, registry: r.registry, options: &o}
}

// Resolve sends req and executes requested tools until the backend answers
// without function calls. req is not modified. On failure the returned
// Result is still populated with what happened so far and the error is an
// *Error.
func (r *Resolver) Resolve(ctx context.Context, req *ai.Request) (*Result, error) {
	result := &Result{ID: uuid.NewString()}

	ctx, span := r.options.Tracer.Start(ctx, "supervisor.resolve",
		trace.WithAttributes(
			attribute.String("resolution.id", result.ID),
			attribute.String("model", req.Model),
			attribute.Int("tools", len(req.Tools)),
		))
	defer span.End()

	logger := r.options.Logger.With("resolution_id", result.ID)

	work := *req
	work.Items = append(ai.Items(nil), req.Items...)
	work.ParallelToolCalls = false

	err := r.loop(ctx, &work, result, logger)
	result.Items = work.Items

	span.SetAttributes(
		attribute.Int("rounds", result.Rounds),
		attribute.String("termination", string(result.Termination)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (r *Resolver) loop(ctx context.Context, req *ai.Request, result *Result, logger *slog.Logger) error {
	state := StateAwaitingResponse
	transition := func(to State) {
		logger.Debug("resolution state", "from", state, "to", to, "round", result.Rounds)
		state = to
	}

	for {
		if err := ctx.Err(); err != nil {
			transition(StateFailed)
			result.Termination = TerminationCancelled
			return &Error{Kind: KindCancelled, Round: result.Rounds, Err: err}
		}

		result.Rounds++
		resp, err := r.gateway.Send(ctx, req)
		if err != nil {
			transition(StateFailed)
			if ctxErr := ctx.Err(); ctxErr != nil {
				result.Termination = TerminationCancelled
				logger.Warn("resolution cancelled", "round", result.Rounds, "error", err)
				return &Error{Kind: KindCancelled, Round: result.Rounds, Err: ctxErr}
			}
			result.Termination = TerminationError
			logger.Error("reasoning backend failed", "round", result.Rounds, "error", err)
			return &Error{Kind: KindGateway, Round: result.Rounds, Err: err}
		}
		if resp == nil {
			transition(StateFailed)
			result.Termination = TerminationError
			logger.Error("reasoning backend returned no response", "round", result.Rounds)
			return &Error{Kind: KindGateway, Round: result.Rounds, Err: errNoResponse}
		}
		result.Usage = result.Usage.Add(resp.Usage)

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			transition(StateDone)
			result.Text = resp.Text()
			result.Termination = TerminationComplete
			return nil
		}

		if limit := r.options.MaxRounds; limit > 0 && result.Rounds >= limit {
			transition(StateFailed)
			result.Termination = TerminationMaxRounds
			logger.Warn("resolution rounds exhausted", "rounds", result.Rounds, "pending_calls", len(calls))
			return &Error{Kind: KindExhausted, Round: result.Rounds}
		}

		transition(StateExecutingTools)
		for _, call := range calls {
			req.Append(call, r.execute(ctx, call, logger))
		}
		transition(StateAwaitingResponse)
	}
}

// execute runs one function call and returns its output item. It never
// fails: any fault is turned into a JSON payload for the backend.
func (r *Resolver) execute(ctx context.Context, call ai.FunctionCall, logger *slog.Logger) ai.FunctionCallOutput {
	sink := r.options.Sink
	args := tool.ParseArguments(call.Arguments)

	sink.Record(ctx, TitleFunctionCall+call.Name, telemetry.ToolCall{
		CallID: call.CallID,
		Name:   call.Name,
		Args:   args,
	})

	execCtx := ctx
	if r.options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.options.HandlerTimeout)
		defer cancel()
	}
	res := r.registry.Execute(execCtx, call.Name, args)

	output := encodeOutput(res.Value, logger)
	crumb := telemetry.ToolResult{CallID: call.CallID, Name: call.Name, Result: res.Value}

	var execErr *tool.ErrToolExecution
	if errors.As(res.Err, &execErr) {
		crumb.Failed = true
		logger.Warn("tool failed", "tool", call.Name, "call_id", call.CallID, "error", execErr.Err)
		sink.Record(ctx, TitleFunctionError+call.Name, crumb)
	} else if res.Err != nil {
		logger.Debug("tool not registered, using fallback", "tool", call.Name)
	}
	sink.Record(ctx, TitleFunctionResult+call.Name, crumb)

	return ai.FunctionCallOutput{CallID: call.CallID, Output: output}
}

func encodeOutput(v any, logger *slog.Logger) string {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("tool result not serializable, using fallback", "error", err)
		data, _ = json.Marshal(tool.Fallback())
	}
	return string(data)
}
