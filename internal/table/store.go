package table

import "sync/atomic"

// elementStore is the Element Store (spec.md §4.3): a flat array of atomic
// words addressed by a saturated index. The bounds check always precedes
// use of elementStore, but the saturation (min(i, reservedCount-1)) ensures
// that speculative execution past a mispredicted branch still lands in
// reserved memory — a Spectre mitigation, not a correctness mechanism.
type elementStore struct {
	words []uint64 // backed by platform.Reservation.Slots(); len == reservedElements
}

func (s *elementStore) saturate(index uint64) uint64 {
	last := uint64(len(s.words)) - 1
	if index > last {
		return last
	}
	return index
}

// loadAcquire reads the slot at the saturated index with acquire ordering.
func (s *elementStore) loadAcquire(index uint64) BiasedRef {
	return BiasedRef(atomic.LoadUint64(&s.words[s.saturate(index)]))
}

// storeRelease unconditionally writes the slot at the saturated index with
// release ordering. Used only for slots that have no concurrent reader
// yet: grow's initialization of new slots (they are not visible until the
// new count is itself release-stored) and CloneTable's copy into a table
// it has not yet returned.
func (s *elementStore) storeRelease(index uint64, v BiasedRef) {
	atomic.StoreUint64(&s.words[s.saturate(index)], uint64(v))
}

// casRelease attempts to replace old with new at the saturated index with
// acquire-release ordering, per spec.md §4.3's write path.
func (s *elementStore) casRelease(index uint64, old, new BiasedRef) bool {
	return atomic.CompareAndSwapUint64(&s.words[s.saturate(index)], uint64(old), uint64(new))
}
