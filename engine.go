// Package loom provides a fair event loop for bots that consume multiple
// asynchronous item streams within a single process.
package loom

import (
	"context"
	"fmt"
	"sync"

	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"go.uber.org/multierr"
)

// Engine coordinates the delivery of items from a set of registered streams
// to the handlers bound to them.
//
// The engine dispatches from a single goroutine; handlers for one item run
// sequentially and a slow handler delays every other registration. Handlers
// that need true parallelism must arrange for it internally.
type Engine struct {
	opts *engineOptions

	m             sync.Mutex
	running       bool
	closed        bool
	registrations []*Registration
}

// New returns an engine with no registered streams.
func New(options ...EngineOption) *Engine {
	return &Engine{
		opts: resolveEngineOptions(options...),
	}
}

// Run dispatches items from the registered streams to their handlers until
// every stream is exhausted, an unhandled failure occurs, or ctx is
// canceled.
//
// It returns nil once every stream has reported exhaustion. Registrations
// over infinite streams keep the run alive indefinitely; such runs end only
// by cancellation, in which case ctx.Err() is returned.
//
// At most one call to Run() may be in progress at a time.
func (e *Engine) Run(ctx context.Context) error {
	regs := e.start()
	defer e.stop()

	if e.opts.Policy == Sequential {
		return e.runSequential(ctx, regs)
	}

	return e.runInterweaved(ctx, regs)
}

// start transitions the engine to its running state, after which the set of
// registrations is immutable.
func (e *Engine) start() []*Registration {
	e.m.Lock()
	defer e.m.Unlock()

	if e.closed {
		panic("can not run a closed engine")
	}

	if e.running {
		panic("a run is already in progress")
	}

	for _, r := range e.registrations {
		if len(r.handlers) == 0 {
			panic(fmt.Sprintf(
				"registration %s has no handlers",
				r.id,
			))
		}
	}

	e.running = true

	return e.registrations
}

// stop transitions the engine out of its running state.
func (e *Engine) stop() {
	e.m.Lock()
	defer e.m.Unlock()

	e.running = false
}

// runInterweaved services every active registration once per round.
//
// One round gives each non-exhausted registration exactly one dispatch
// attempt, bounding the amount of work any single high-traffic stream can
// perform before control returns to the others.
func (e *Engine) runInterweaved(
	ctx context.Context,
	regs []*Registration,
) error {
	idle := backoff.Counter{
		Strategy: e.opts.IdleBackoff,
	}

	active := make([]*Registration, len(regs))
	copy(active, regs)

	for len(active) > 0 {
		delivered := false
		n := 0

		for _, r := range active {
			out, err := e.dispatchOne(ctx, r)
			if err != nil {
				return err
			}

			if out == itemDelivered {
				delivered = true
			}

			if out != streamExhausted {
				active[n] = r
				n++
			}
		}

		active = active[:n]

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if delivered {
			idle.Reset()
			continue
		}

		// Nothing was delivered in this round, so every remaining stream is
		// either empty or misbehaving. Sleep before the next round to avoid
		// hammering the producers.
		if err := linger.Sleep(ctx, idle.Fail(nil)); err != nil {
			return err
		}
	}

	return nil
}

// runSequential drains each registration to exhaustion, in registration
// order.
func (e *Engine) runSequential(
	ctx context.Context,
	regs []*Registration,
) error {
	idle := backoff.Counter{
		Strategy: e.opts.IdleBackoff,
	}

	for _, r := range regs {
		for !r.exhausted {
			out, err := e.dispatchOne(ctx, r)
			if err != nil {
				return err
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			switch out {
			case itemDelivered:
				idle.Reset()
			case streamEmpty:
				if err := linger.Sleep(ctx, idle.Fail(nil)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// Close closes every registered stream.
//
// It must not be called while Run() is in progress.
func (e *Engine) Close() error {
	e.m.Lock()
	defer e.m.Unlock()

	if e.running {
		panic("can not close the engine while a run is in progress")
	}

	if e.closed {
		return nil
	}

	e.closed = true

	var err error
	for _, r := range e.registrations {
		err = multierr.Append(err, r.stream.Close())
	}

	return err
}
