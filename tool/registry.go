package tool

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	ai "github.com/englify/tutorkit"
)

// registeredTool combines a tool spec with its handler.
type registeredTool struct {
	spec    ai.ToolSpec
	handler Handler
}

// Fallback is the payload returned for calls to unregistered tools.
func Fallback() map[string]any {
	return map[string]any{"result": true}
}

// Result is the outcome of Execute. Value is always set and serializable;
// Err is non-nil when the value is a fallback or an error payload.
type Result struct {
	Value any
	Err   error
}

// Registry manages tools and their handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]registeredTool
	order    []string
	fallback func() any
}

// Option configures a Registry.
type Option func(*Registry)

// WithFallback replaces the payload returned for unknown tools. The
// function is called once per unknown call so each result is fresh.
func WithFallback(fn func() any) Option {
	return func(r *Registry) {
		if fn != nil {
			r.fallback = fn
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools:    make(map[string]registeredTool),
		fallback: func() any { return Fallback() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool. The spec must be valid, the handler non-nil and
// the name unused.
func (r *Registry) Register(spec ai.ToolSpec, handler Handler) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if handler == nil {
		return errors.New("tool: nil handler for " + spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[spec.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: spec.Name}
	}
	r.tools[spec.Name] = registeredTool{spec: spec, handler: handler}
	r.order = append(r.order, spec.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(spec ai.ToolSpec, handler Handler) {
	if err := r.Register(spec, handler); err != nil {
		panic(err)
	}
}

// Unregister removes a tool. It is a no-op for unknown names.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the handler for name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.handler, true
}

// Spec returns the spec registered under name.
func (r *Registry) Spec(name string) (ai.ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	return rt.spec, ok
}

// Specs returns all specs in registration order.
func (r *Registry) Specs() []ai.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]ai.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].spec)
	}
	return specs
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs the named tool. It never fails outright: unknown tools yield
// the fallback payload and handler errors or panics yield
// {"error": message}, with Result.Err describing what happened. Execute
// returns as soon as ctx is done, even if the handler has not.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	r.mu.RLock()
	rt, ok := r.tools[name]
	fallback := r.fallback
	r.mu.RUnlock()

	if !ok {
		return Result{Value: fallback(), Err: &ErrToolNotFound{Name: name}}
	}
	if args == nil {
		args = map[string]any{}
	}

	value, err := invoke(ctx, rt.handler, args)
	if err != nil {
		return Result{
			Value: map[string]any{"error": err.Error()},
			Err:   &ErrToolExecution{Name: name, Err: err},
		}
	}
	if value == nil {
		value = fallback()
	}
	return Result{Value: value}
}

type outcome struct {
	value any
	err   error
}

// invoke runs h and stops waiting once ctx is done. A handler that ignores
// ctx keeps running in the background; its result is discarded.
func invoke(ctx context.Context, h Handler, args map[string]any) (any, error) {
	done := make(chan outcome, 1)
	go func() {
		var out outcome
		defer func() {
			if rec := recover(); rec != nil {
				out = outcome{err: &PanicError{Value: rec}}
			}
			done <- out
		}()
		out.value, out.err = h(ctx, args)
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		select {
		case out := <-done:
			return out.value, out.err
		default:
			return nil, ctx.Err()
		}
	}
}

// Registration holds a spec and handler for fluent registration.
type Registration struct {
	Spec    ai.ToolSpec
	Handler Handler
}

// Func creates a Registration whose handler decodes arguments into T.
// Arguments that do not fit T are treated as empty: the handler receives
// the zero T and the decode error is logged.
func Func[T any](spec ai.ToolSpec, fn TypedHandler[T]) Registration {
	return Registration{
		Spec: spec,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			typed, err := decodeArgs[T](args)
			if err != nil {
				slog.WarnContext(ctx, "tool arguments do not fit, using empty arguments",
					"tool", spec.Name, "error", err)
				var zero T
				typed = zero
			}
			return fn(ctx, typed)
		},
	}
}

// WithHandler creates a Registration from an untyped handler.
func WithHandler(spec ai.ToolSpec, h Handler) Registration {
	return Registration{Spec: spec, Handler: h}
}

// Add registers tools and returns the registry for chaining. It panics on
// invalid or duplicate registrations.
func (r *Registry) Add(regs ...Registration) *Registry {
	for _, reg := range regs {
		r.MustRegister(reg.Spec, reg.Handler)
	}
	return r
}
