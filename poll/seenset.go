package poll

import "sync"

// A SeenSet records the identities of items that have already been produced
// by a source.
type SeenSet interface {
	// Add adds id to the set.
	//
	// It returns true if id was not already present.
	Add(id string) (bool, error)
}

// DefaultCapacity is the capacity of the bounded set used when Source.Seen
// is nil.
//
// It is three times DefaultBatchSize, plus one, giving deduplication a
// comfortable window across consecutive overlapping fetches.
const DefaultCapacity = 3*DefaultBatchSize + 1

// BoundedSet is an in-memory SeenSet that retains a fixed number of
// identities, discarding the oldest once its capacity is reached.
type BoundedSet struct {
	// Capacity is the maximum number of identities retained.
	// If it is zero, DefaultCapacity is used.
	Capacity int

	m     sync.Mutex
	index map[string]struct{}
	order []string
}

// Add adds id to the set, discarding the oldest identity if the set is full.
//
// It returns true if id was not already present.
func (s *BoundedSet) Add(id string) (bool, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.index[id]; ok {
		return false, nil
	}

	if s.index == nil {
		s.index = map[string]struct{}{}
	}

	n := s.Capacity
	if n == 0 {
		n = DefaultCapacity
	}

	for len(s.order) >= n {
		delete(s.index, s.order[0])
		s.order = s.order[1:]
	}

	s.index[id] = struct{}{}
	s.order = append(s.order, id)

	return true, nil
}
