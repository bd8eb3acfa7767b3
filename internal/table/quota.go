package table

import "sync"

// ResourceQuota accounts element-count allocations across tables sharing
// it (spec.md §3, §4.4 grow). It is optional: a nil ResourceQuota means
// unmetered growth, subject only to the table's own type.max and
// ImplMaxElements.
type ResourceQuota interface {
	// Allocate charges n elements against the quota, returning false
	// (and charging nothing) if doing so would exceed the quota's
	// budget.
	Allocate(n uint64) bool
	// Free returns n elements previously charged via Allocate.
	Free(n uint64)
}

// simpleQuota is a counting ResourceQuota: at most Max elements may be
// charged across every table sharing this quota at once. Grounded on
// WAVM's ResourceQuota::Counter (referenced, not vendored, by
// Lib/Runtime/Table.cpp's resourceQuota->tableElems.allocate/free).
type simpleQuota struct {
	mu   sync.Mutex
	max  uint64
	used uint64
}

// NewResourceQuota creates a ResourceQuota capping total charged elements
// at max across every table it is attached to.
func NewResourceQuota(max uint64) ResourceQuota {
	return &simpleQuota{max: max}
}

func (q *simpleQuota) Allocate(n uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > q.max-q.used {
		return false
	}
	q.used += n
	return true
}

func (q *simpleQuota) Free(n uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > q.used {
		panic("table: quota freed more elements than were allocated")
	}
	q.used -= n
}
