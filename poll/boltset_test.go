package poll_test

import (
	"path/filepath"

	. "github.com/dogmatiq/loom/poll"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"
)

var _ = Describe("type BoltSet", func() {
	var (
		path string
		db   *bbolt.DB
		set  *BoltSet
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "seen.boltdb")

		var err error
		db, err = bbolt.Open(path, 0600, nil)
		Expect(err).ShouldNot(HaveOccurred())

		DeferCleanup(func() {
			db.Close()
		})

		set = &BoltSet{
			DB: db,
		}
	})

	Describe("func Add()", func() {
		It("returns true for an identity that is not present", func() {
			Expect(set.Add("<id>")).To(BeTrue())
		})

		It("returns false for an identity that is already present", func() {
			Expect(set.Add("<id>")).To(BeTrue())
			Expect(set.Add("<id>")).To(BeFalse())
		})

		It("keeps identities in separate buckets separate", func() {
			other := &BoltSet{
				DB:     db,
				Bucket: []byte("<other>"),
			}

			Expect(set.Add("<id>")).To(BeTrue())
			Expect(other.Add("<id>")).To(BeTrue())
		})

		It("retains identities across database sessions", func() {
			Expect(set.Add("<id>")).To(BeTrue())

			Expect(db.Close()).To(Succeed())

			var err error
			db, err = bbolt.Open(path, 0600, nil)
			Expect(err).ShouldNot(HaveOccurred())

			set = &BoltSet{
				DB: db,
			}

			Expect(set.Add("<id>")).To(BeFalse())
		})
	})
})
