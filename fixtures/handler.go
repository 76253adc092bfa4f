package fixtures

import (
	"context"

	"github.com/dogmatiq/loom"
	"github.com/dogmatiq/loom/stream"
)

// HandlerStub is a test implementation of the loom.Handler interface.
type HandlerStub struct {
	loom.Handler

	HandleItemFunc func(context.Context, stream.Item) error
}

// HandleItem processes a single item.
//
// If h.HandleItemFunc is non-nil, it returns h.HandleItemFunc(ctx, it),
// otherwise it dispatches to h.Handler. If h.Handler is also nil, it returns
// nil.
func (h *HandlerStub) HandleItem(ctx context.Context, it stream.Item) error {
	if h.HandleItemFunc != nil {
		return h.HandleItemFunc(ctx, it)
	}

	if h.Handler != nil {
		return h.Handler.HandleItem(ctx, it)
	}

	return nil
}
