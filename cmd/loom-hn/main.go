// Package main runs a small bot over the Hacker News firehose, announcing
// new stories and new job postings as they appear.
//
// It demonstrates how to stack handlers on a stream, share a handler between
// streams, and keep a run alive with an error handler.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/loom"
	"github.com/dogmatiq/loom/poll"
	"github.com/dogmatiq/loom/stream"
	"golang.org/x/sync/errgroup"
)

// newContext returns a cancelable context that is canceled when the process
// receives a SIGTERM or SIGINT.
func newContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
		case <-sig:
			cancel()
		}
	}()

	return ctx, cancel
}

func main() {
	ctx, cancel := newContext()
	defer cancel()

	if err := run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context) error {
	logger := logging.DefaultLogger

	var delivered uint64

	// tally counts every item that makes it through a stream, regardless of
	// which stream produced it.
	tally := loom.HandlerFunc(
		func(context.Context, stream.Item) error {
			atomic.AddUint64(&delivered, 1)
			return nil
		},
	)

	// keepAlive records a failure and keeps the run alive. Item fetches
	// against the HN API fail sporadically; abandoning the affected item is
	// the right trade for an announcement bot.
	keepAlive := func(_ context.Context, err error) error {
		logging.Log(logger, "skipping item: %s", err)
		return nil
	}

	engine := loom.New(
		loom.WithLogger(logger),
	)
	defer engine.Close()

	stories := engine.Register(
		newListing("newstories"),
		loom.WithErrorHandler(keepAlive),
	)
	stories.AddHandler(announce(logger, "story"))
	stories.AddHandler(tally)

	engine.Register(
		newListing("jobstories"),
		loom.WithErrorHandler(keepAlive),
		loom.WithHandler(announce(logger, "job")),
		loom.WithHandler(tally),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(ctx)
	})

	g.Go(func() error {
		for {
			if err := linger.Sleep(ctx, 30*time.Second); err != nil {
				return err
			}

			logging.Log(
				logger,
				"%d item(s) delivered so far",
				atomic.LoadUint64(&delivered),
			)
		}
	})

	return g.Wait()
}

// newListing returns a polling stream over one of the Hacker News "new"
// listings. Items are story IDs; the details are resolved by the handlers.
func newListing(name string) *poll.Source {
	return &poll.Source{
		Fetch: func(ctx context.Context, limit int) ([]stream.Item, error) {
			var ids []int
			if err := get(ctx, name, &ids); err != nil {
				return nil, err
			}

			if len(ids) > limit {
				ids = ids[:limit]
			}

			items := make([]stream.Item, len(ids))
			for i, id := range ids {
				items[i] = id
			}

			return items, nil
		},
		Key: func(it stream.Item) string {
			return fmt.Sprintf("%d", it)
		},
		BatchSize:    25,
		SkipExisting: true,
	}
}

// announce returns a handler that resolves a story ID and logs a one-line
// announcement for it.
func announce(logger logging.Logger, kind string) loom.Handler {
	return loom.HandlerFunc(
		func(ctx context.Context, it stream.Item) error {
			var details struct {
				Title string `json:"title"`
				By    string `json:"by"`
			}

			path := fmt.Sprintf("item/%d", it)
			if err := get(ctx, path, &details); err != nil {
				return err
			}

			logging.Log(
				logger,
				"new %s by %s: %s",
				kind,
				details.By,
				details.Title,
			)

			return nil
		},
	)
}

// get fetches a document from the Hacker News API, unmarshaling it into v.
func get(ctx context.Context, path string, v interface{}) error {
	url := fmt.Sprintf(
		"https://hacker-news.firebaseio.com/v0/%s.json",
		path,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("the API responded with HTTP %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(v)
}
