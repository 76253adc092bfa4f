package poll

import (
	"go.etcd.io/bbolt"
)

// DefaultBucket is the name of the bucket used when BoltSet.Bucket is empty.
var DefaultBucket = []byte("seen")

// BoltSet is a SeenSet backed by a BoltDB bucket, letting a bot skip items
// it already handled before it was last restarted.
type BoltSet struct {
	// DB is the database used to store identities. It must not be nil.
	DB *bbolt.DB

	// Bucket is the name of the bucket used to store identities.
	// If it is empty, DefaultBucket is used.
	Bucket []byte
}

// seenValue is the value stored against each identity. BoltDB treats empty
// and absent values identically on read, so a marker byte is required.
var seenValue = []byte{1}

// Add adds id to the set.
//
// It returns true if id was not already present.
func (s *BoltSet) Add(id string) (bool, error) {
	bucket := s.Bucket
	if len(bucket) == 0 {
		bucket = DefaultBucket
	}

	novel := false

	err := s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		k := []byte(id)
		if b.Get(k) != nil {
			return nil
		}

		novel = true

		return b.Put(k, seenValue)
	})

	return novel, err
}
