// Package stream defines the interface between the loom engine and the
// asynchronous item producers it consumes.
package stream

import (
	"context"
	"errors"
)

// Item is an application-defined item produced by a stream.
type Item any

// ErrEmpty is returned by Stream.Next() when the stream has no item available
// right now. It is not a failure; the caller may poll again later.
var ErrEmpty = errors.New("stream is temporarily empty")

// ErrExhausted is returned by Stream.Next() when the stream will never
// produce another item. Once returned, all future calls return it too.
var ErrExhausted = errors.New("stream is exhausted")

// A Stream is an ordered sequence of items produced by an external system.
//
// Streams are not intended to be used by multiple goroutines concurrently.
type Stream interface {
	// Next returns the next item from the stream.
	//
	// It returns ErrEmpty if no item is ready right now, and ErrExhausted if
	// the stream will never produce another item. Any other error indicates
	// a failure within the producer itself.
	Next(ctx context.Context) (Item, error)

	// Close releases any resources held by the stream.
	//
	// Any current or future calls to Next() return ErrExhausted.
	Close() error
}
