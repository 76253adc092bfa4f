// Package fixtures contains test doubles used by loom's own tests, and
// useful for testing applications built on loom.
package fixtures

import (
	"context"

	"github.com/dogmatiq/loom/stream"
)

// StreamStub is a test implementation of the stream.Stream interface.
type StreamStub struct {
	stream.Stream

	NextFunc  func(context.Context) (stream.Item, error)
	CloseFunc func() error
}

// Next returns the next item from the stream.
//
// If s.NextFunc is non-nil, it returns s.NextFunc(ctx), otherwise it
// dispatches to s.Stream. If s.Stream is also nil, it returns
// stream.ErrEmpty.
func (s *StreamStub) Next(ctx context.Context) (stream.Item, error) {
	if s.NextFunc != nil {
		return s.NextFunc(ctx)
	}

	if s.Stream != nil {
		return s.Stream.Next(ctx)
	}

	return nil, stream.ErrEmpty
}

// Close releases any resources held by the stream.
//
// If s.CloseFunc is non-nil, it returns s.CloseFunc(), otherwise it
// dispatches to s.Stream. If s.Stream is also nil, it returns nil.
func (s *StreamStub) Close() error {
	if s.CloseFunc != nil {
		return s.CloseFunc()
	}

	if s.Stream != nil {
		return s.Stream.Close()
	}

	return nil
}
