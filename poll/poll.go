// Package poll provides an infinite stream over a batch-oriented query, in
// the manner of a "newest items" listing on a web API.
package poll

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"github.com/dogmatiq/loom/stream"
)

// DefaultBatchSize is the number of items requested per fetch when the
// BatchSize field is zero.
const DefaultBatchSize = 100

// DefaultBackoff is the default strategy used to delay the next fetch after
// one that produced nothing new, or that failed.
//
// It is overridden by the Backoff field.
var DefaultBackoff backoff.Strategy = backoff.WithTransforms(
	backoff.Exponential(1*time.Second),
	linger.FullJitter,
	linger.Limiter(0, 16*time.Second),
)

// A Fetch function queries an external data source for its most recent
// items, newest first.
//
// It returns at most limit items. The result may overlap with previous
// fetches; the source deduplicates.
type Fetch func(ctx context.Context, limit int) ([]stream.Item, error)

// Source is an infinite stream over a Fetch function.
//
// It produces new items oldest-first, skipping items it has already
// produced. It never reports stream.ErrExhausted until it is closed.
//
// Sources are not intended to be used by multiple goroutines concurrently.
type Source struct {
	// Fetch queries the external data source. It must not be nil.
	Fetch Fetch

	// Key returns a stable identity for an item, used for deduplication.
	// It must not be nil.
	Key func(stream.Item) string

	// Seen records the identities of items already produced.
	// If it is nil, a BoundedSet with DefaultCapacity is used.
	Seen SeenSet

	// BatchSize is the number of items requested per fetch.
	// If it is zero, DefaultBatchSize is used.
	BatchSize int

	// SkipExisting controls how the items already present in the data source
	// at the time of the first fetch are treated. If it is true they are
	// recorded as seen but never produced.
	SkipExisting bool

	// Fallible controls how fetch failures are reported. If it is false,
	// failures are logged and retried according to the backoff strategy.
	// If it is true, failures are returned by Next().
	Fallible bool

	// Backoff is the strategy used to delay the next fetch after one that
	// produced nothing new, or that failed. If it is nil, DefaultBackoff is
	// used.
	Backoff backoff.Strategy

	// Logger is the target for log messages from the source.
	// If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger

	pending []stream.Item
	counter backoff.Counter
	due     time.Time
	primed  bool
	closed  bool
}

// Next returns the next new item produced by the data source.
//
// It returns stream.ErrEmpty, without blocking, when no new item is
// available; fetches are paced by the backoff strategy rather than by the
// caller's polling frequency.
func (s *Source) Next(ctx context.Context) (stream.Item, error) {
	if s.closed {
		return nil, stream.ErrExhausted
	}

	if len(s.pending) == 0 {
		if err := s.poll(ctx); err != nil {
			return nil, err
		}
	}

	if len(s.pending) == 0 {
		return nil, stream.ErrEmpty
	}

	it := s.pending[0]
	s.pending = s.pending[1:]

	return it, nil
}

// Close marks the source as exhausted.
//
// It does not invalidate the seen-set, which may be shared with a future
// source over the same data.
func (s *Source) Close() error {
	s.closed = true
	s.pending = nil

	return nil
}

// poll performs a fetch if one is due, appending any previously-unseen items
// to s.pending, oldest first.
func (s *Source) poll(ctx context.Context) error {
	if time.Now().Before(s.due) {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	limit := s.BatchSize
	if limit == 0 {
		limit = DefaultBatchSize
	}

	batch, err := s.Fetch(ctx, limit)
	if err != nil {
		if s.Fallible {
			return err
		}

		delay := s.fail()
		logging.Log(
			s.logger(),
			"delaying next fetch for %s: %s",
			delay,
			err,
		)

		return nil
	}

	skip := s.SkipExisting && !s.primed
	s.primed = true

	// The fetch returns newest first; produce oldest first.
	fresh := 0
	for i := len(batch) - 1; i >= 0; i-- {
		it := batch[i]

		novel, err := s.seen().Add(s.Key(it))
		if err != nil {
			return err
		}

		if !novel {
			continue
		}

		fresh++

		if !skip {
			s.pending = append(s.pending, it)
		}
	}

	if fresh == 0 {
		delay := s.fail()
		logging.Debug(
			s.logger(),
			"nothing new, delaying next fetch for %s",
			delay,
		)

		return nil
	}

	s.counter.Reset()
	s.due = time.Time{}

	return nil
}

// fail records a fruitless fetch, returning the delay before the next one.
func (s *Source) fail() time.Duration {
	if s.counter.Strategy == nil {
		s.counter.Strategy = s.Backoff

		if s.counter.Strategy == nil {
			s.counter.Strategy = DefaultBackoff
		}
	}

	delay := s.counter.Fail(nil)
	s.due = time.Now().Add(delay)

	return delay
}

// seen returns the seen-set to use for deduplication.
func (s *Source) seen() SeenSet {
	if s.Seen == nil {
		s.Seen = &BoundedSet{}
	}

	return s.Seen
}

// logger returns the target for log messages from the source.
func (s *Source) logger() logging.Logger {
	if s.Logger == nil {
		return logging.DefaultLogger
	}

	return s.Logger
}
