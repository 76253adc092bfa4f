package loom_test

import (
	"time"

	. "github.com/dogmatiq/loom"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("func WithDispatchPolicy()", func() {
	It("panics if the policy is not recognized", func() {
		Expect(func() {
			WithDispatchPolicy(DispatchPolicy(-1))
		}).To(PanicWith(
			ContainSubstring("unrecognized dispatch policy"),
		))
	})
})

var _ = Describe("var DefaultIdleBackoff", func() {
	It("caps the delay at 16 seconds", func() {
		for n := uint(0); n < 20; n++ {
			Expect(DefaultIdleBackoff(nil, n)).To(
				BeNumerically("<=", 16*time.Second),
			)
		}
	})
})
