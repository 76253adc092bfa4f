package stream

import (
	"context"
	"sync"
)

// Memory is an in-memory stream.
//
// It is open-ended until it is sealed; a drained-but-unsealed stream reports
// ErrEmpty, allowing items to be appended while the stream is being consumed.
type Memory struct {
	m      sync.Mutex
	items  []Item
	sealed bool
	closed bool
}

// NewMemory returns an in-memory stream that produces the given items and is
// already sealed.
func NewMemory(items ...Item) *Memory {
	return &Memory{
		items:  items,
		sealed: true,
	}
}

// Append appends items to the stream.
//
// It panics if the stream has been sealed.
func (s *Memory) Append(items ...Item) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.sealed {
		panic("can not append to a sealed stream")
	}

	s.items = append(s.items, items...)
}

// Seal marks the end of the stream.
//
// Once the remaining items are consumed the stream reports ErrExhausted
// instead of ErrEmpty.
func (s *Memory) Seal() {
	s.m.Lock()
	defer s.m.Unlock()

	s.sealed = true
}

// Next returns the next item from the stream.
func (s *Memory) Next(ctx context.Context) (Item, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.m.Lock()
	defer s.m.Unlock()

	if s.closed {
		return nil, ErrExhausted
	}

	if len(s.items) == 0 {
		if s.sealed {
			return nil, ErrExhausted
		}

		return nil, ErrEmpty
	}

	it := s.items[0]
	s.items = s.items[1:]

	return it, nil
}

// Close discards any remaining items.
//
// Any current or future calls to Next() return ErrExhausted.
func (s *Memory) Close() error {
	s.m.Lock()
	defer s.m.Unlock()

	s.closed = true
	s.items = nil

	return nil
}
