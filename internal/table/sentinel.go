package table

import "unsafe"

// sentinelObject is a process-global, stably-addressed dummy object. Its
// only purpose is to have a Go-stable address that can never collide with
// a real Reference's address; its content is never read. Modeled on
// WAVM's makeDummyFunction (Lib/Runtime/Table.cpp), which allocates a
// singleton Function purely so &function has a lifetime-independent
// identity.
type sentinelObject struct {
	debugName string
}

var (
	// outOfBoundsSentinel backs the OUT_OF_BOUNDS value: the word read at
	// reserved-but-never-written slots. Nothing writes it; its bias is, by
	// construction, zero (spec.md §4.2).
	outOfBoundsSentinel = &sentinelObject{debugName: "out-of-bounds table element"}

	// uninitializedSentinel backs the UNINITIALIZED value: a live,
	// non-null encoding distinct from both OUT_OF_BOUNDS and every real
	// Reference, used for freshly-grown slots and for null substitution.
	uninitializedSentinel = &sentinelObject{debugName: "uninitialized table element"}

	outOfBoundsAddr    = uintptr(unsafe.Pointer(outOfBoundsSentinel))
	uninitializedAddr  = uintptr(unsafe.Pointer(uninitializedSentinel))
)

// BiasedRef is a table slot's stored word: reference_address -
// OUT_OF_BOUNDS_address. Zero therefore decodes to OUT_OF_BOUNDS, so a
// freshly committed (OS zero-filled) or never-committed page already
// reads as "every slot out of bounds" with no initialization writes
// (spec.md §4.2, §9). This type is the only place the bias arithmetic is
// performed; every other file in this package operates on Reference or on
// the three named states (out-of-bounds, uninitialized, live).
type BiasedRef uint64

// encodeBiased computes the stored word for ref, after the caller has
// already substituted NullReference -> uninitializedSentinel per spec.md
// §9's "only the outermost API boundary performs the translation" rule.
// This function is never called with a Reference still representing null.
func encodeBiased(addr uintptr) BiasedRef {
	return BiasedRef(uint64(addr) - uint64(outOfBoundsAddr))
}

// decodedKind classifies a decoded slot.
type decodedKind int

const (
	decodedOutOfBounds decodedKind = iota
	decodedUninitialized
	decodedLive
)

// decodeBiased reverses encodeBiased and classifies the result without
// ever materializing a Reference for the sentinel cases (there is nothing
// to materialize a Reference into: OUT_OF_BOUNDS and UNINITIALIZED are not
// valid guest-visible references).
func decodeBiased(b BiasedRef) (addr uintptr, kind decodedKind) {
	addr = uintptr(uint64(b) + uint64(outOfBoundsAddr))
	switch addr {
	case outOfBoundsAddr:
		return addr, decodedOutOfBounds
	case uninitializedAddr:
		return addr, decodedUninitialized
	default:
		return addr, decodedLive
	}
}

// biasedUninitialized is the constant word written for freshly grown
// elements when an explicit fill value isn't provided.
var biasedUninitialized = encodeBiased(uninitializedAddr)

// referenceAddrOrUninitialized substitutes the uninitialized sentinel for
// a null Reference. This is the one and only null<->UNINITIALIZED
// translation point on the write path (spec.md §9); every write helper in
// table.go funnels through it.
func referenceAddrOrUninitialized(ref Reference) uintptr {
	if ref.IsNull() {
		return uninitializedAddr
	}
	return ref.addr()
}

// encodeReference is the write-path helper: substitute UNINITIALIZED for
// null, then bias.
func encodeReference(ref Reference) BiasedRef {
	return encodeBiased(referenceAddrOrUninitialized(ref))
}

// decodeToReference is the read-path helper used once a caller has already
// ruled out the OUT_OF_BOUNDS/UNINITIALIZED cases (decodedKind ==
// decodedLive): it reinterprets the slot's address as a live Reference.
func decodeToReference(addr uintptr) Reference {
	return referenceFromAddr(addr)
}
