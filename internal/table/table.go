package table

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/platform"
)

// Type is a table's static signature: element kind plus the guest-declared
// min/max element counts (spec.md §3). Max is nil when the guest declared
// no maximum; the table is then only bounded by ImplMaxElements.
type Type struct {
	ElemKind ElemKind
	Min      uint32
	Max      *uint32
}

func (t Type) String() string {
	if t.Max == nil {
		return fmt.Sprintf("%s[%d,-]", t.ElemKind, t.Min)
	}
	return fmt.Sprintf("%s[%d,%d]", t.ElemKind, t.Min, *t.Max)
}

// Metrics is the optional observability hook a table reports to (spec.md
// §4.10's component table, implemented by internal/tablemetrics on top of
// prometheus client_golang). A nil Metrics on an Instance means unmetered.
type Metrics interface {
	TableRegistered()
	TableUnregistered()
	ElementsCommitted(tableID uint64, elements uint64)
	GrowDenied(reason string)
}

// Option configures an Instance at Create or CloneTable time.
type Option func(*Instance)

// WithRegistry attaches t to a Registry other than DefaultRegistry. Tests
// use this for isolation; most embedders leave it unset.
func WithRegistry(r *Registry) Option { return func(t *Instance) { t.registry = r } }

// WithLogger attaches a structured logger (spec.md §4.9); nil (the
// default) disables logging.
func WithLogger(l *logrus.Logger) Option { return func(t *Instance) { t.logger = l } }

// WithMetrics attaches a Metrics sink; nil (the default) disables metrics.
func WithMetrics(m Metrics) Option { return func(t *Instance) { t.metrics = m } }

// Instance is a single table (spec.md §3's TableInstance): a reservation,
// an element store over it, and the bookkeeping spec.md §4.4-§4.7 require.
// All fields besides the ones exposed through accessor methods are
// unexported; every mutating operation either uses lock-free atomics on the
// element store or takes resizingMu, per spec.md §5's concurrency model.
type Instance struct {
	typ       Type
	debugName string

	reservation *platform.Reservation
	store       elementStore

	// n is the committed element count. Reads use atomic.LoadUint64 so
	// get/set (which never take resizingMu) observe a consistent bound
	// against a concurrent grow; writes happen only under resizingMu,
	// as the final step of grow, with release ordering (spec.md §5).
	n uint64

	resizingMu sync.Mutex

	quota ResourceQuota

	registry    *Registry
	compartment *Compartment
	id          uint64

	logger  *logrus.Logger
	metrics Metrics
}

// DebugName is the table's diagnostic name, used in error messages and log
// lines; it has no effect on behavior.
func (t *Instance) DebugName() string { return t.debugName }

// Type returns the table's static signature.
func (t *Instance) Type() Type { return t.typ }

// ID is the table's index within its compartment. Only meaningful when
// Compartment() is non-nil.
func (t *Instance) ID() uint64 { return t.id }

// Compartment is the compartment this table was published into, or nil if
// it was created without one (spec.md §6 treats the compartment as an
// optional collaborator, not every table needs one).
func (t *Instance) Compartment() *Compartment { return t.compartment }

// Size is the table's current element count (the "size" operation,
// spec.md §4.4): a single acquire load, consistent with a concurrent grow
// (spec.md §5, invariant I3).
func (t *Instance) Size() uint64 { return atomic.LoadUint64(&t.n) }

func (t *Instance) maxElements() uint64 {
	if t.typ.Max != nil {
		return uint64(*t.typ.Max)
	}
	return t.implMaxElements()
}

// implMaxElements is the implementation-defined ceiling on any table's
// element count regardless of its declared max (spec.md §3): the number of
// elements its virtual reservation actually holds.
func (t *Instance) implMaxElements() uint64 {
	return t.reservation.ReservedElements()
}

func compatibleElemKind(k ElemKind, ref Reference) bool {
	if k == ElemKindFuncRef {
		_, hasType := ref.TypeID()
		return ref.IsNull() || hasType
	}
	return true
}

// Create allocates a new table of the given type (spec.md §4.4 create).
// It reserves the table's virtual address range, registers it in the
// global registry, then grows it to type.Min, filling every element with
// initElement (substituting UNINITIALIZED for a null initElement per
// spec.md §9). If compartment is non-nil the table is also published into
// it under a freshly allocated id. Any failure after the reservation is
// made unwinds everything done so far and returns a non-nil error,
// leaving no partially-constructed table visible to anyone (spec.md
// invariant I6).
//
// Grounded on WAVM's createTableImpl + createTable (Lib/Runtime/Table.cpp).
func Create(compartment *Compartment, typ Type, initElement Reference, debugName string, quota ResourceQuota, opts ...Option) (*Instance, error) {
	if typ.Max != nil && typ.Min > *typ.Max {
		return nil, newArgError(InvalidArgument)
	}
	if !initElement.IsNull() && !compatibleElemKind(typ.ElemKind, initElement) {
		return nil, newArgError(InvalidArgument)
	}

	t := &Instance{typ: typ, debugName: debugName, quota: quota, registry: DefaultRegistry}
	for _, o := range opts {
		o(t)
	}

	reservation, err := platform.Reserve(uint64(typ.Min))
	if err != nil {
		return nil, fmt.Errorf("table: reserve %q: %w", debugName, err)
	}
	t.reservation = reservation
	t.store = elementStore{words: reservation.Slots()}

	t.registry.register(t)
	if t.metrics != nil {
		t.metrics.TableRegistered()
	}

	if _, ok := t.Grow(uint64(typ.Min), true, initElement); !ok {
		t.registry.unregister(t)
		if t.metrics != nil {
			t.metrics.TableUnregistered()
		}
		_ = t.reservation.Release()
		return nil, fmt.Errorf("table: %q: grow to declared minimum %d failed", debugName, typ.Min)
	}

	if compartment != nil {
		id, ok := compartment.add(t)
		if !ok {
			t.registry.unregister(t)
			if t.metrics != nil {
				t.metrics.TableUnregistered()
			}
			if t.quota != nil {
				t.quota.Free(atomic.LoadUint64(&t.n))
			}
			_ = t.reservation.Release()
			return nil, fmt.Errorf("table: %q: compartment rejected table", debugName)
		}
		t.compartment = compartment
		t.id = id
	}

	return t, nil
}

// CloneTable takes a snapshot of src under its resizing mutex and builds a
// fresh, independent table of the same type and current size in
// newCompartment, preserving src's compartment id in the copy (spec.md §6's
// clone_table collaborator operation). The mutex blocks a concurrent Grow
// but not a concurrent Set or Fill (those never take it), so a slot written
// while the clone copies may show either its old or its new value in the
// copy. Grounded on WAVM's cloneTable
// (Lib/Runtime/Table.cpp), which copies the element array verbatim rather
// than re-running create's fill logic.
func CloneTable(src *Instance, newCompartment *Compartment) (*Instance, error) {
	src.resizingMu.Lock()
	n := atomic.LoadUint64(&src.n)

	dst := &Instance{
		typ:       src.typ,
		debugName: src.debugName,
		quota:     src.quota,
		registry:  src.registry,
		logger:    src.logger,
		metrics:   src.metrics,
	}

	reservation, err := platform.Reserve(uint64(src.typ.Min))
	if err != nil {
		src.resizingMu.Unlock()
		return nil, fmt.Errorf("table: clone %q: reserve: %w", src.debugName, err)
	}
	dst.reservation = reservation
	dst.store = elementStore{words: reservation.Slots()}
	dst.registry.register(dst)
	if dst.metrics != nil {
		dst.metrics.TableRegistered()
	}

	if _, ok := dst.Grow(n, false, NullReference); !ok {
		dst.registry.unregister(dst)
		if dst.metrics != nil {
			dst.metrics.TableUnregistered()
		}
		_ = dst.reservation.Release()
		src.resizingMu.Unlock()
		return nil, fmt.Errorf("table: clone %q: grow to %d failed", src.debugName, n)
	}
	for i := uint64(0); i < n; i++ {
		dst.store.storeRelease(i, src.store.loadAcquire(i))
	}
	src.resizingMu.Unlock()

	if newCompartment != nil {
		if err := newCompartment.insertOrFail(src.id, dst); err != nil {
			dst.registry.unregister(dst)
			if dst.metrics != nil {
				dst.metrics.TableUnregistered()
			}
			if dst.quota != nil {
				dst.quota.Free(n)
			}
			_ = dst.reservation.Release()
			return nil, err
		}
		dst.compartment = newCompartment
		dst.id = src.id
	}
	return dst, nil
}

// Destroy releases a table's compartment entry, registry membership, quota
// charge and virtual reservation, in that order. Nothing in this package
// calls Destroy automatically; the embedder decides when a table's last
// reference has gone away.
func (t *Instance) Destroy() error {
	if t.compartment != nil {
		if err := t.compartment.removeOrFail(t.id); err != nil {
			return err
		}
	}
	t.registry.unregister(t)
	if t.metrics != nil {
		t.metrics.TableUnregistered()
	}
	if t.quota != nil {
		t.quota.Free(atomic.LoadUint64(&t.n))
	}
	return t.reservation.Release()
}

// Grow adds delta elements to the table, optionally initializing them all
// to fill, and reports the element count observed before growing (spec.md
// §4.4 grow). The whole operation — including the quota charge — runs
// under the resizing mutex, so a failed grow (overflow, declared max,
// ImplMaxElements, commit failure, quota denial) leaves the table and its
// quota exactly as they were, and two concurrent growers never observe
// the same "old count" (spec.md invariant I3).
//
// Grounded on WAVM's growTableImpl (Lib/Runtime/Table.cpp): same order of
// checks (quota first, then the two overflow-safe comparisons against
// type.max and ImplMaxElements, then the actual commit).
func (t *Instance) Grow(delta uint64, init bool, fill Reference) (oldCount uint64, ok bool) {
	t.resizingMu.Lock()
	defer t.resizingMu.Unlock()

	oldCount = atomic.LoadUint64(&t.n)
	if delta == 0 {
		return oldCount, true
	}

	if t.quota != nil && !t.quota.Allocate(delta) {
		t.logGrowDenied("quota", delta)
		return 0, false
	}

	max := t.maxElements()
	implMax := t.implMaxElements()
	if delta > max || oldCount > max-delta || delta > implMax || oldCount > implMax-delta {
		if t.quota != nil {
			t.quota.Free(delta)
		}
		t.logGrowDenied("limit", delta)
		return 0, false
	}

	newCount := oldCount + delta
	if err := t.reservation.Commit(oldCount, newCount); err != nil {
		if t.quota != nil {
			t.quota.Free(delta)
		}
		t.logGrowDenied("commit", delta)
		return 0, false
	}

	if init {
		biased := encodeReference(fill)
		for i := oldCount; i < newCount; i++ {
			t.store.storeRelease(i, biased)
		}
	}

	atomic.StoreUint64(&t.n, newCount)
	if t.metrics != nil {
		t.metrics.ElementsCommitted(t.id, newCount)
	}
	return oldCount, true
}

func (t *Instance) logGrowDenied(reason string, delta uint64) {
	if t.metrics != nil {
		t.metrics.GrowDenied(reason)
	}
	if t.logger != nil {
		t.logger.WithFields(logrus.Fields{
			"table":  t.debugName,
			"delta":  delta,
			"reason": reason,
		}).Debug("table.grow denied")
	}
}

// Get reads a table element (spec.md §4.4 get): a bounds check against the
// reserved count, then a single acquire load. A slot that decodes to
// UNINITIALIZED reads back as NullReference with no error — only
// call_indirect treats UNINITIALIZED as an exception (see GetForCallIndirect).
func (t *Instance) Get(index uint64) (Reference, error) {
	if index >= uint64(len(t.store.words)) {
		return NullReference, newTableError(OutOfBoundsTableAccess, t, index)
	}
	addr, kind := decodeBiased(t.store.loadAcquire(index))
	switch kind {
	case decodedOutOfBounds:
		return NullReference, newTableError(OutOfBoundsTableAccess, t, index)
	case decodedUninitialized:
		return NullReference, nil
	default:
		return decodeToReference(addr), nil
	}
}

// GetForCallIndirect is the read call_indirect performs to resolve its
// callee: identical to Get except an UNINITIALIZED slot raises
// UninitializedTableElement instead of reading back as null (spec.md
// §4.4's call_indirect_fail, §7).
func (t *Instance) GetForCallIndirect(index uint64) (Reference, error) {
	if index >= uint64(len(t.store.words)) {
		return NullReference, newTableError(OutOfBoundsTableAccess, t, index)
	}
	addr, kind := decodeBiased(t.store.loadAcquire(index))
	switch kind {
	case decodedOutOfBounds:
		return NullReference, newTableError(OutOfBoundsTableAccess, t, index)
	case decodedUninitialized:
		return NullReference, newTableError(UninitializedTableElement, t, index)
	default:
		return decodeToReference(addr), nil
	}
}

// CallIndirectFail is the diagnostic helper call_indirect invokes once it
// already knows its type check or element load failed, to produce the
// exact guest exception and an optional structured log line (spec.md
// §4.4). Callers on the fast path never call this: they only reach it
// after GetForCallIndirect errored, or after a loaded Reference's TypeID
// disagreed with expected.
func (t *Instance) CallIndirectFail(index uint64, expected FunctionTypeID) error {
	ref, err := t.GetForCallIndirect(index)
	if err != nil {
		if tableErr, ok := err.(*Error); ok && t.logger != nil {
			t.logger.WithFields(logrus.Fields{
				"table": t.debugName,
				"index": index,
				"kind":  tableErr.Kind.String(),
			}).Debug("call_indirect failed")
		}
		return err
	}
	if actual, _ := ref.TypeID(); actual != expected {
		if t.logger != nil {
			t.logger.WithFields(logrus.Fields{
				"table":    t.debugName,
				"index":    index,
				"expected": expected,
				"actual":   actual,
			}).Debug("call_indirect signature mismatch")
		}
		return newTableError(IndirectCallSignatureMismatch, t, index)
	}
	return nil
}

// Set writes a table element, returning the value it replaced (spec.md
// §4.4 set). The write is a CAS loop rather than an unconditional store so
// a concurrent Set on the same slot never loses an update; an
// OUT_OF_BOUNDS slot (one past the committed prefix but within the
// reservation) is rejected without looping, matching Get's treatment of
// the same condition.
func (t *Instance) Set(index uint64, value Reference) (previous Reference, err error) {
	if index >= uint64(len(t.store.words)) {
		return NullReference, newTableError(OutOfBoundsTableAccess, t, index)
	}
	newWord := encodeReference(value)
	for {
		old := t.store.loadAcquire(index)
		oldAddr, kind := decodeBiased(old)
		if kind == decodedOutOfBounds {
			return NullReference, newTableError(OutOfBoundsTableAccess, t, index)
		}
		if t.store.casRelease(index, old, newWord) {
			if kind == decodedUninitialized {
				return NullReference, nil
			}
			return decodeToReference(oldAddr), nil
		}
	}
}

// Fill writes value into n consecutive elements starting at destOffset
// (spec.md §4.4 fill), stopping at the first out-of-bounds Set.
func (t *Instance) Fill(destOffset uint64, value Reference, n uint64) error {
	for i := uint64(0); i < n; i++ {
		if _, err := t.Set(destOffset+i, value); err != nil {
			return err
		}
	}
	return nil
}

// Copy moves n elements from src[srcOffset:] to dest[destOffset:] (spec.md
// §4.4 copy, the table.copy instruction, which may name two distinct
// tables). When the ranges could overlap in the memmove sense — here,
// whenever srcOffset < destOffset, since both ranges share the same index
// space conceptually — elements are copied back-to-front; otherwise
// front-to-back. This matches WAVM's table_copy direction rule
// (Lib/Runtime/Table.cpp) and is what lets copying a range into its own
// immediate right neighbor (dest one past src) observe every source value
// rather than the just-written one.
func Copy(dest, src *Instance, destOffset, srcOffset, n uint64) error {
	if n == 0 {
		return nil
	}
	if srcOffset < destOffset {
		for i := n; i > 0; i-- {
			idx := i - 1
			v, err := src.Get(srcOffset + idx)
			if err != nil {
				return err
			}
			if _, err := dest.Set(destOffset+idx, v); err != nil {
				return err
			}
		}
		return nil
	}
	for i := uint64(0); i < n; i++ {
		v, err := src.Get(srcOffset + i)
		if err != nil {
			return err
		}
		if _, err := dest.Set(destOffset+i, v); err != nil {
			return err
		}
	}
	return nil
}
