// Package dlog contains utilities for rendering log messages about dispatch
// activity within the engine.
package dlog

import (
	"fmt"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/loom/stream"
)

// LogDeliver logs a message indicating that an item is being delivered to a
// registration's handlers.
//
// Delivery is logged at the debug level; it occurs once per item and would
// otherwise dominate the log output of a high-traffic stream.
func LogDeliver(
	log logging.Logger,
	id string,
	it stream.Item,
) {
	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				RegistrationIDIcon.WithID(id),
			},
			[]Icon{
				DeliverIcon,
			},
			Describe(it),
		),
	)
}

// LogExhaust logs a message indicating that a registration's stream will
// never produce another item.
func LogExhaust(
	log logging.Logger,
	id string,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				RegistrationIDIcon.WithID(id),
			},
			[]Icon{
				ExhaustIcon,
			},
			"stream exhausted",
		),
	)
}

// LogRoute logs a message indicating that a failure within a registration
// has been routed to its error handler.
func LogRoute(
	log logging.Logger,
	id string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				RegistrationIDIcon.WithID(id),
			},
			[]Icon{
				RouteIcon,
			},
			"routed to error handler",
			cause.Error(),
		),
	)
}

// LogFatal logs a message indicating that a failure within a registration is
// about to abort the run.
func LogFatal(
	log logging.Logger,
	id string,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				RegistrationIDIcon.WithID(id),
			},
			[]Icon{
				ErrorIcon,
			},
			cause.Error(),
		),
	)
}

// maxItemWidth is the maximum number of runes of an item's description that
// are included in a log message.
const maxItemWidth = 80

// Describe returns a short human-readable description of an item.
func Describe(it stream.Item) string {
	desc := fmt.Sprintf("%v", it)

	runes := []rune(desc)
	if len(runes) > maxItemWidth {
		desc = string(runes[:maxItemWidth-1]) + "…"
	}

	return desc
}
