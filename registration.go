package loom

import (
	"context"

	"github.com/dogmatiq/loom/stream"
	"github.com/google/uuid"
)

// A Handler processes the items delivered from a single stream.
type Handler interface {
	// HandleItem processes a single item.
	HandleItem(ctx context.Context, it stream.Item) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, it stream.Item) error

// HandleItem processes a single item by calling fn(ctx, it).
func (fn HandlerFunc) HandleItem(ctx context.Context, it stream.Item) error {
	return fn(ctx, it)
}

// An ErrorHandler is notified when a handler or the stream's own producer
// fails while the engine is servicing its registration.
//
// Returning a non-nil error aborts the run. Typically an error handler
// records the failure and returns nil, allowing the run to continue with the
// failed item abandoned.
type ErrorHandler func(ctx context.Context, err error) error

// A Registration binds one stream to the ordered set of handlers that
// process its items.
//
// It is the engine's unit of fairness and of failure isolation.
type Registration struct {
	id        string
	engine    *Engine
	stream    stream.Stream
	handlers  []Handler
	onError   ErrorHandler
	exhausted bool
}

// ID returns a unique identifier for the registration.
//
// It appears in log messages produced while servicing the registration.
func (r *Registration) ID() string {
	return r.id
}

// AddHandler appends a handler to the registration's handler list.
//
// Handlers are invoked in the order they are added, one item at a time. It
// must not be called once the engine has started running.
func (r *Registration) AddHandler(h Handler) {
	r.engine.m.Lock()
	defer r.engine.m.Unlock()

	if r.engine.running {
		panic("can not add a handler while the engine is running")
	}

	r.handlers = append(r.handlers, h)
}

// RegistrationOption configures the behavior of a registration.
type RegistrationOption func(*Registration)

// WithHandler returns a registration option that appends a handler to the
// registration's handler list.
//
// It is equivalent to calling Registration.AddHandler() on the returned
// registration.
func WithHandler(h Handler) RegistrationOption {
	return func(r *Registration) {
		r.handlers = append(r.handlers, h)
	}
}

// WithErrorHandler returns a registration option that routes handler and
// producer failures within the registration to fn, instead of aborting the
// run.
func WithErrorHandler(fn ErrorHandler) RegistrationOption {
	return func(r *Registration) {
		r.onError = fn
	}
}

// Register binds a stream to the engine.
//
// The engine owns the stream once it is registered; it is closed by
// Engine.Close(). Each registration requires at least one handler, attached
// either via the WithHandler() option or Registration.AddHandler(), before
// Run() is called.
//
// It must not be called while the engine is running.
func (e *Engine) Register(
	s stream.Stream,
	options ...RegistrationOption,
) *Registration {
	e.m.Lock()
	defer e.m.Unlock()

	if e.running {
		panic("can not register a stream while the engine is running")
	}

	if e.closed {
		panic("can not register a stream on a closed engine")
	}

	r := &Registration{
		id:     uuid.NewString(),
		engine: e,
		stream: s,
	}

	for _, o := range options {
		o(r)
	}

	e.registrations = append(e.registrations, r)

	return r
}
