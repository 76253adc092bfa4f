package dlog

import (
	"fmt"
	"io"

	"github.com/dogmatiq/iago/must"
)

const (
	// RegistrationIDIcon is the icon shown directly before a registration ID.
	// It is an "equals sign", indicating that the log line relates to exactly
	// the displayed registration.
	RegistrationIDIcon Icon = "="

	// DeliverIcon is the icon shown to indicate that an item is being
	// delivered to a registration's handlers. It is a downward pointing
	// arrow, as such items could be considered as being "downloaded" from
	// the stream into the application.
	DeliverIcon Icon = "▼"

	// ExhaustIcon is the icon shown when a stream reports that it will never
	// produce another item. It is an "end of proof" mark, indicating that
	// the registration's work is conclusively finished.
	ExhaustIcon Icon = "∎"

	// RouteIcon is the icon shown when a failure is routed to a
	// registration's error handler. It is a rightwards arrow with a hook,
	// indicating that the failure has been diverted rather than allowed to
	// travel up and abort the run.
	RouteIcon Icon = "↪"

	// ErrorIcon is the icon shown when logging information about a fatal
	// error. It is a heavy cross, indicating a failure.
	ErrorIcon Icon = "✖"

	// SeparatorIcon is the icon used to separate distinct pieces of text
	// within a log message. It is a heavy dot.
	SeparatorIcon Icon = "●"
)

// Icon is a unicode symbol used as an icon in log messages.
type Icon string

func (i Icon) String() string {
	return string(i)
}

// WriteTo writes a string representation of the icon to w.
// If i is the zero-value, a single space is rendered.
func (i Icon) WriteTo(w io.Writer) (int64, error) {
	s := i.String()
	if i == "" {
		s = " "
	}

	n, err := io.WriteString(w, s)
	return int64(n), err
}

// WithLabel returns an IconWithLabel containing this icon and the given
// label.
func (i Icon) WithLabel(f string, v ...interface{}) IconWithLabel {
	return IconWithLabel{
		i,
		formatLabel(fmt.Sprintf(f, v...)),
	}
}

// WithID returns an IconWithLabel containing this icon and an ID as its
// label.
//
// The id is formatted using FormatID().
func (i Icon) WithID(id string) IconWithLabel {
	return i.WithLabel(FormatID(id))
}

// IconWithLabel is a combination of an icon and a label that relates to it.
type IconWithLabel struct {
	Icon  Icon
	Label string
}

func (i IconWithLabel) String() string {
	return i.Icon.String() + " " + i.Label
}

// WriteTo writes a string representation of the icon and its label to w.
func (i IconWithLabel) WriteTo(w io.Writer) (_ int64, err error) {
	defer must.Recover(&err)

	n := must.WriteTo(w, i.Icon)
	n += must.Write(w, space1)
	n += must.WriteString(w, i.Label)

	return int64(n), err
}

// formatLabel formats a label for display.
func formatLabel(label string) string {
	if label == "" {
		return "-"
	}

	return label
}
