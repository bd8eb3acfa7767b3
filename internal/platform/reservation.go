// Package platform is the Virtual Reservation Layer: it reserves a fixed,
// oversized virtual address range per table so that JIT-compiled code (or,
// here, the table package's own saturated-index loads) can treat a 32-bit
// guest index as safe to use without an explicit bounds check on the hot
// path. See internal/table for how the reservation's zero-filled,
// not-yet-committed pages double as the OUT_OF_BOUNDS sentinel.
//
// Grounded on the reserve-big/commit-incrementally technique in
// pgavlin/warp's exec/memory_mmap.go, expressed with golang.org/x/sys/unix
// rather than linkname'd runtime internals.
package platform

import (
	"fmt"
	"unsafe"
)

func unsafeUint64Slice(base uintptr, n int) []uint64 {
	return unsafe.Slice((*uint64)(unsafe.Pointer(base)), n)
}

// ElementSize is the size in bytes of one table slot (one biased reference
// word). It is fixed regardless of host pointer width because the biased
// encoding always fits in 64 bits.
const ElementSize = 8

// maxElements32Bit bounds table reservations on hosts where a full 2^32
// element reservation would itself exhaust the address space.
const maxElements32Bit = 4 * 1024 * 1024 // 4Mi elements, per spec.md §3

// ReservedElementCount returns the number of elements a reservation created
// by Reserve will hold, irrespective of the table's declared max: 2^32 on
// 64-bit hosts, 4Mi elements on 32-bit hosts.
func ReservedElementCount() uint64 {
	if is64bit {
		return uint64(1) << 32
	}
	return maxElements32Bit
}

// Reservation is a fixed virtual address range: reservedElements usable
// slots plus one trailing guard page. Reservation is not safe for
// concurrent Commit/Decommit/Release calls; callers serialize those (the
// table package does so under its resizing mutex).
type Reservation struct {
	base             uintptr
	reservedElements uint64
	guardPageBytes   uintptr
	released         bool
}

// Base is the address of element zero.
func (r *Reservation) Base() uintptr { return r.base }

// ReservedElements is the number of addressable, initially-uncommitted
// elements in the reservation (the guard page is not counted).
func (r *Reservation) ReservedElements() uint64 { return r.reservedElements }

// Slots returns an unsafe view of the entire reservation as a slice of
// uint64 words, one per element. Reading an index past what has been
// committed is legal on every supported platform: those pages are
// zero-filled on first touch (or, if decommitted, on next commit), which
// is exactly the OUT_OF_BOUNDS encoding the table package relies on.
// Writing past the committed prefix is a bug in the caller, not something
// this layer guards against.
func (r *Reservation) Slots() []uint64 {
	return unsafeUint64Slice(r.base, int(r.reservedElements))
}

// Reserve allocates a page-aligned reservation sized for ReservedElementCount
// elements plus one trailing inaccessible guard page. The requested
// maxElements is informational only (it is asserted to fit; the actual
// reservation is always the platform maximum, per spec.md §3).
func Reserve(maxElements uint64) (*Reservation, error) {
	reserved := ReservedElementCount()
	if maxElements > reserved {
		return nil, fmt.Errorf("platform: requested max %d elements exceeds reservation capacity %d", maxElements, reserved)
	}
	pageSize := uintptr(1) << PageSizeLog2()
	reservedBytes := roundUpToPage(uintptr(reserved)*ElementSize, pageSize)
	base, err := reserveVirtual(reservedBytes+pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return &Reservation{base: base, reservedElements: reserved, guardPageBytes: pageSize}, nil
}

// Commit backs [fromElements, toElements) with physical storage, zero-filled.
// Idempotent on already-committed sub-ranges of the same page.
func (r *Reservation) Commit(fromElements, toElements uint64) error {
	if toElements <= fromElements {
		return nil
	}
	pageSize := uintptr(1) << PageSizeLog2()
	fromByte := roundDownToPage(uintptr(fromElements)*ElementSize, pageSize)
	toByte := roundUpToPage(uintptr(toElements)*ElementSize, pageSize)
	return commitVirtual(r.base+fromByte, toByte-fromByte)
}

// Decommit releases the physical backing of the pages covering
// [fromElements, toElements). Those pages are inaccessible until committed
// again (a read faults, and Registry.Resolve maps the faulting address back
// to its table); the next Commit zero-fills them.
func (r *Reservation) Decommit(fromElements, toElements uint64) error {
	if toElements <= fromElements {
		return nil
	}
	pageSize := uintptr(1) << PageSizeLog2()
	fromByte := roundDownToPage(uintptr(fromElements)*ElementSize, pageSize)
	toByte := roundUpToPage(uintptr(toElements)*ElementSize, pageSize)
	return decommitVirtual(r.base+fromByte, toByte-fromByte)
}

// Release returns the whole reservation, including the guard page, to the OS.
func (r *Reservation) Release() error {
	if r.released {
		return nil
	}
	pageSize := uintptr(1) << PageSizeLog2()
	reservedBytes := roundUpToPage(uintptr(r.reservedElements)*ElementSize, pageSize)
	err := releaseVirtual(r.base, reservedBytes+r.guardPageBytes)
	r.released = true
	return err
}

func roundUpToPage(n, pageSize uintptr) uintptr {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

func roundDownToPage(n, pageSize uintptr) uintptr {
	return n &^ (pageSize - 1)
}
