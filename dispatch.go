package loom

import (
	"context"
	"errors"
	"fmt"

	"github.com/dogmatiq/loom/internal/dlog"
	"github.com/dogmatiq/loom/stream"
)

// dispatchOutcome describes the result of a single dispatch attempt.
type dispatchOutcome int

const (
	// itemDelivered means an item was pulled from the stream and offered to
	// the registration's handlers.
	itemDelivered dispatchOutcome = iota

	// streamEmpty means the stream had no item ready.
	streamEmpty

	// streamExhausted means the stream will never produce another item.
	streamExhausted
)

// dispatchOne gives r one opportunity to deliver an item.
//
// It pulls at most one item from the registration's stream and invokes each
// of its handlers, in order, with that item. A handler failure prevents the
// remaining handlers from seeing the item; the failure is routed to the
// registration's error handler.
//
// A non-nil error is fatal to the run.
func (e *Engine) dispatchOne(
	ctx context.Context,
	r *Registration,
) (dispatchOutcome, error) {
	it, err := r.stream.Next(ctx)

	switch {
	case errors.Is(err, stream.ErrExhausted):
		r.exhausted = true
		dlog.LogExhaust(e.opts.Logger, r.id)
		return streamExhausted, nil

	case errors.Is(err, stream.ErrEmpty):
		return streamEmpty, nil

	case err != nil:
		if ctx.Err() != nil {
			return streamEmpty, ctx.Err()
		}

		// The producer itself failed. From the engine's perspective this is
		// just another failure arising while servicing r, so it is routed
		// like a handler failure. It does count as a no-progress tick,
		// ensuring that a persistently-failing producer with a permissive
		// error handler still backs off.
		return streamEmpty, e.routeError(
			ctx,
			r,
			fmt.Errorf("unable to fetch the next item: %w", err),
		)
	}

	dlog.LogDeliver(e.opts.Logger, r.id, it)

	for _, h := range r.handlers {
		if err := h.HandleItem(ctx, it); err != nil {
			return itemDelivered, e.routeError(ctx, r, err)
		}
	}

	return itemDelivered, nil
}

// routeError routes a failure within r to its error handler.
//
// If r has no error handler, or the error handler itself fails, the failure
// is fatal to the run.
func (e *Engine) routeError(
	ctx context.Context,
	r *Registration,
	cause error,
) error {
	if r.onError == nil {
		dlog.LogFatal(e.opts.Logger, r.id, cause)
		return cause
	}

	if err := r.onError(ctx, cause); err != nil {
		dlog.LogFatal(e.opts.Logger, r.id, err)
		return fmt.Errorf("the error handler failed: %w", err)
	}

	dlog.LogRoute(e.opts.Logger, r.id, cause)

	return nil
}
