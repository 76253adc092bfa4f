package loom

import (
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
)

var (
	// DefaultIdleBackoff is the default strategy used to delay the next
	// dispatch attempt when none of the registered streams has an item
	// ready.
	//
	// The 16 second cap keeps an idle engine polite towards rate-limited
	// APIs without making it slow to notice that items have started flowing
	// again.
	//
	// It is overridden by the WithIdleBackoff() option.
	DefaultIdleBackoff backoff.Strategy = backoff.WithTransforms(
		backoff.Exponential(250*time.Millisecond),
		linger.FullJitter,
		linger.Limiter(0, 16*time.Second),
	)

	// DefaultLogger is the default target for log messages produced by the
	// engine.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger
)

// DispatchPolicy determines the order in which the engine services its
// registrations.
type DispatchPolicy int

const (
	// Interweave services every active registration once per round,
	// regardless of whether earlier registrations in the round produced an
	// item. It bounds the amount of work a single high-traffic stream can
	// perform before control returns to the other streams, and is the
	// recommended policy whenever more than one stream is registered.
	Interweave DispatchPolicy = iota

	// Sequential drains each registration to exhaustion, in registration
	// order, before servicing the next. A registration over an infinite
	// stream never relinquishes control under this policy.
	Sequential
)

// EngineOption configures the behavior of an engine.
type EngineOption func(*engineOptions)

// WithDispatchPolicy returns an engine option that sets the order in which
// the engine services its registrations.
//
// If this option is omitted the Interweave policy is used.
func WithDispatchPolicy(p DispatchPolicy) EngineOption {
	if p != Interweave && p != Sequential {
		panic(fmt.Sprintf("unrecognized dispatch policy (%d)", p))
	}

	return func(opts *engineOptions) {
		opts.Policy = p
	}
}

// WithIdleBackoff returns an engine option that sets the strategy used to
// delay the next dispatch attempt when none of the registered streams has an
// item ready.
//
// If this option is omitted or s is nil DefaultIdleBackoff is used.
func WithIdleBackoff(s backoff.Strategy) EngineOption {
	return func(opts *engineOptions) {
		opts.IdleBackoff = s
	}
}

// WithLogger returns an engine option that sets the target for log messages
// produced by the engine.
//
// If this option is omitted or l is nil DefaultLogger is used.
func WithLogger(l logging.Logger) EngineOption {
	return func(opts *engineOptions) {
		opts.Logger = l
	}
}

// engineOptions is a container for a fully-resolved set of engine options.
type engineOptions struct {
	Policy      DispatchPolicy
	IdleBackoff backoff.Strategy
	Logger      logging.Logger
}

// resolveEngineOptions returns a fully-populated set of engine options built
// from the given options.
func resolveEngineOptions(options ...EngineOption) *engineOptions {
	opts := &engineOptions{}

	for _, o := range options {
		o(opts)
	}

	if opts.IdleBackoff == nil {
		opts.IdleBackoff = DefaultIdleBackoff
	}

	if opts.Logger == nil {
		opts.Logger = DefaultLogger
	}

	return opts
}
