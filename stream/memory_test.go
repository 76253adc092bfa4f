package stream_test

import (
	"context"
	"time"

	. "github.com/dogmatiq/loom/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Memory", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 1*time.Second)
		DeferCleanup(cancel)
	})

	Describe("func Next()", func() {
		It("produces the appended items in order", func() {
			s := &Memory{}
			s.Append("<item-1>", "<item-2>")

			Expect(s.Next(ctx)).To(Equal(Item("<item-1>")))
			Expect(s.Next(ctx)).To(Equal(Item("<item-2>")))
		})

		It("reports ErrEmpty when drained but not sealed", func() {
			s := &Memory{}

			_, err := s.Next(ctx)
			Expect(err).To(Equal(ErrEmpty))

			s.Append("<item>")

			Expect(s.Next(ctx)).To(Equal(Item("<item>")))
		})

		It("reports ErrExhausted once drained and sealed", func() {
			s := &Memory{}
			s.Append("<item>")
			s.Seal()

			Expect(s.Next(ctx)).To(Equal(Item("<item>")))

			_, err := s.Next(ctx)
			Expect(err).To(Equal(ErrExhausted))

			// Exhaustion is terminal.
			_, err = s.Next(ctx)
			Expect(err).To(Equal(ErrExhausted))
		})

		It("returns an error if ctx is canceled", func() {
			s := NewMemory("<item>")

			cancel()

			_, err := s.Next(ctx)
			Expect(err).To(Equal(context.Canceled))
		})
	})

	Describe("func Append()", func() {
		It("panics if the stream is sealed", func() {
			s := NewMemory()

			Expect(func() {
				s.Append("<item>")
			}).To(PanicWith("can not append to a sealed stream"))
		})
	})

	Describe("func NewMemory()", func() {
		It("returns a sealed stream containing the given items", func() {
			s := NewMemory("<item>")

			Expect(s.Next(ctx)).To(Equal(Item("<item>")))

			_, err := s.Next(ctx)
			Expect(err).To(Equal(ErrExhausted))
		})
	})

	Describe("func Close()", func() {
		It("discards the remaining items", func() {
			s := &Memory{}
			s.Append("<item>")

			Expect(s.Close()).To(Succeed())

			_, err := s.Next(ctx)
			Expect(err).To(Equal(ErrExhausted))
		})
	})
})
