package stream

import (
	"context"
	"sync"
)

// Channel is a stream that reads items from a Go channel.
//
// A closed channel is an exhausted stream. Reads never block; if no item is
// buffered on the channel when Next() is called, the stream reports ErrEmpty.
type Channel struct {
	// Items is the channel from which items are read. It must not be nil.
	Items <-chan Item

	m      sync.Mutex
	closed bool
}

// Next returns the next item buffered on the channel.
func (s *Channel) Next(ctx context.Context) (Item, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.m.Lock()
	defer s.m.Unlock()

	if s.closed {
		return nil, ErrExhausted
	}

	select {
	case it, ok := <-s.Items:
		if !ok {
			return nil, ErrExhausted
		}

		return it, nil
	default:
		return nil, ErrEmpty
	}
}

// Close stops the stream.
//
// It does not close the underlying channel, which is owned by the producer.
// Any current or future calls to Next() return ErrExhausted.
func (s *Channel) Close() error {
	s.m.Lock()
	defer s.m.Unlock()

	s.closed = true

	return nil
}
