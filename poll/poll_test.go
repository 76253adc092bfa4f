package poll_test

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger/backoff"
	. "github.com/dogmatiq/loom/poll"
	"github.com/dogmatiq/loom/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Source", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		batches [][]stream.Item
		fetches int
		source  *Source
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 1*time.Second)
		DeferCleanup(cancel)

		batches = nil
		fetches = 0

		source = &Source{
			Fetch: func(context.Context, int) ([]stream.Item, error) {
				fetches++

				if len(batches) == 0 {
					return nil, nil
				}

				b := batches[0]
				batches = batches[1:]

				return b, nil
			},
			Key: func(it stream.Item) string {
				return it.(string)
			},
			Backoff: backoff.Constant(20 * time.Millisecond),
			Logger:  logging.DiscardLogger{},
		}
	})

	// drain consumes items from the source until it reports ErrEmpty.
	drain := func() []stream.Item {
		var items []stream.Item

		for {
			it, err := source.Next(ctx)
			if err != nil {
				Expect(err).To(Equal(stream.ErrEmpty))
				return items
			}

			items = append(items, it)
		}
	}

	Describe("func Next()", func() {
		It("produces the fetched items oldest first", func() {
			batches = [][]stream.Item{
				{"<item-3>", "<item-2>", "<item-1>"},
			}

			Expect(drain()).To(Equal(
				[]stream.Item{"<item-1>", "<item-2>", "<item-3>"},
			))
		})

		It("does not produce an item twice, even when fetches overlap", func() {
			batches = [][]stream.Item{
				{"<item-2>", "<item-1>"},
				{"<item-3>", "<item-2>", "<item-1>"},
			}

			items := drain()
			items = append(items, drain()...)

			Expect(items).To(Equal(
				[]stream.Item{"<item-1>", "<item-2>", "<item-3>"},
			))
		})

		It("never produces the items present before the first fetch when SkipExisting is set", func() {
			source.SkipExisting = true

			batches = [][]stream.Item{
				{"<existing-2>", "<existing-1>"},
				{"<item-1>", "<existing-2>", "<existing-1>"},
			}

			items := drain()
			items = append(items, drain()...)

			Expect(items).To(Equal(
				[]stream.Item{"<item-1>"},
			))
		})

		It("delays the next fetch after one that produces nothing new", func() {
			Expect(drain()).To(BeEmpty())
			Expect(fetches).To(Equal(1))

			// Polling again before the backoff deadline must not hit the
			// fetch function.
			Expect(drain()).To(BeEmpty())
			Expect(fetches).To(Equal(1))

			time.Sleep(25 * time.Millisecond)

			Expect(drain()).To(BeEmpty())
			Expect(fetches).To(Equal(2))
		})

		It("retries fetch failures without surfacing them", func() {
			source.Fetch = func(context.Context, int) ([]stream.Item, error) {
				fetches++

				if fetches == 1 {
					return nil, errors.New("<fetch failure>")
				}

				return []stream.Item{"<item>"}, nil
			}

			Expect(drain()).To(BeEmpty())

			time.Sleep(25 * time.Millisecond)

			Expect(drain()).To(Equal(
				[]stream.Item{"<item>"},
			))
		})

		It("surfaces fetch failures when the source is fallible", func() {
			source.Fallible = true
			source.Fetch = func(context.Context, int) ([]stream.Item, error) {
				return nil, errors.New("<fetch failure>")
			}

			_, err := source.Next(ctx)
			Expect(err).To(MatchError("<fetch failure>"))
		})

		It("requests DefaultBatchSize items if no batch size is set", func() {
			source.Fetch = func(_ context.Context, limit int) ([]stream.Item, error) {
				Expect(limit).To(Equal(DefaultBatchSize))
				return nil, nil
			}

			_, err := source.Next(ctx)
			Expect(err).To(Equal(stream.ErrEmpty))
		})

		It("requests the configured number of items per fetch", func() {
			source.BatchSize = 3
			source.Fetch = func(_ context.Context, limit int) ([]stream.Item, error) {
				Expect(limit).To(Equal(3))
				return nil, nil
			}

			_, err := source.Next(ctx)
			Expect(err).To(Equal(stream.ErrEmpty))
		})

		It("surfaces seen-set failures", func() {
			batches = [][]stream.Item{
				{"<item>"},
			}

			source.Seen = &seenSetStub{
				AddFunc: func(string) (bool, error) {
					return false, errors.New("<seen-set failure>")
				},
			}

			_, err := source.Next(ctx)
			Expect(err).To(MatchError("<seen-set failure>"))
		})

		It("returns an error if ctx is canceled before a fetch", func() {
			cancel()

			_, err := source.Next(ctx)
			Expect(err).To(Equal(context.Canceled))
		})
	})

	Describe("func Close()", func() {
		It("marks the source as exhausted", func() {
			batches = [][]stream.Item{
				{"<item>"},
			}

			Expect(source.Close()).To(Succeed())

			_, err := source.Next(ctx)
			Expect(err).To(Equal(stream.ErrExhausted))
		})
	})
})

// seenSetStub is a test implementation of the SeenSet interface.
type seenSetStub struct {
	AddFunc func(string) (bool, error)
}

func (s *seenSetStub) Add(id string) (bool, error) {
	if s.AddFunc != nil {
		return s.AddFunc(id)
	}

	return true, nil
}
