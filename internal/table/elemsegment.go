package table

import "sync"

// ElementSegment is a shared, immutable vector of references produced by
// parsing a module's element section (spec.md §4.6). "Shared" is the load-
// bearing word: table.init reads a segment without holding ModuleInstance's
// mutex for the copy loop, so a concurrent elem.drop must not mutate the
// vector out from under it. Grounded on WAVM's ElemSegment, whose contents
// (Runtime::Object* pointers) are likewise never mutated in place, only
// replaced wholesale by a drop.
type ElementSegment struct {
	elements []Reference
}

// NewElementSegment copies elements into a fresh segment; the caller's
// slice may be reused or mutated afterward.
func NewElementSegment(elements []Reference) *ElementSegment {
	cp := make([]Reference, len(elements))
	copy(cp, elements)
	return &ElementSegment{elements: cp}
}

// Len is the number of references the segment holds.
func (e *ElementSegment) Len() uint64 { return uint64(len(e.elements)) }

// ModuleInstance is the minimal collaborator spec.md §6 requires of a
// module for table.init/elem.drop: a mutable list of element segments
// indexed by segment index (nil once dropped). It has no function index
// space: segment entries are already-resolved References (or null), not
// function indices, and Init copies them as they are. Everything else a
// real module instance would carry (memories, globals, exports, ...) is
// out of scope (spec.md §1 Non-goals).
type ModuleInstance struct {
	mu       sync.Mutex
	Segments []*ElementSegment // index i is nil once dropped
}

// NewModuleInstance wraps segments as the module's element segments, in
// declaration order.
func NewModuleInstance(segments []*ElementSegment) *ModuleInstance {
	cp := make([]*ElementSegment, len(segments))
	copy(cp, segments)
	return &ModuleInstance{Segments: cp}
}

// segmentSnapshot captures the pointer to segment segIndex under the
// module's mutex, then releases it immediately: the copy loop that follows
// runs against this captured pointer, so a concurrent DropElem racing with
// Init never blocks Init's copy loop and never corrupts it (spec.md §4.6,
// invariant I7: a racing drop may only affect whether init sees
// InvalidArgument, never a partial or torn read).
func (m *ModuleInstance) segmentSnapshot(segIndex uint32) *ElementSegment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(segIndex) >= len(m.Segments) {
		return nil
	}
	return m.Segments[segIndex]
}

// DropElem permanently discards element segment segIndex (the elem.drop
// instruction, spec.md §4.6): future Init calls against it fail with
// InvalidArgument. Dropping an already-dropped segment is a no-op, not an
// error (spec.md edge case).
func (m *ModuleInstance) DropElem(segIndex uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(segIndex) >= len(m.Segments) {
		return newArgError(InvalidArgument)
	}
	m.Segments[segIndex] = nil
	return nil
}

// Init copies n references from element segment segIndex, starting at
// srcOffset, into dest starting at destOffset (the table.init instruction,
// spec.md §4.6). It captures the segment pointer once up front (see
// segmentSnapshot) so a concurrent elem.drop can only ever cause this call
// to fail outright with InvalidArgument — it can never observe, or cause
// Init to write, a partial result. A dropped (nil) segment, or a
// [srcOffset, srcOffset+n) range exceeding the segment's length, both fail
// before any element is written.
func Init(dest *Instance, m *ModuleInstance, segIndex uint32, destOffset, srcOffset, n uint64) error {
	seg := m.segmentSnapshot(segIndex)
	if seg == nil {
		return newArgError(InvalidArgument)
	}
	if srcOffset > seg.Len() || n > seg.Len()-srcOffset {
		return newArgError(OutOfBoundsElemSegmentAccess)
	}
	for i := uint64(0); i < n; i++ {
		v := seg.elements[srcOffset+i]
		if _, err := dest.Set(destOffset+i, v); err != nil {
			return err
		}
	}
	return nil
}
