package table

import (
	"fmt"
	"unsafe"
)

// FunctionTypeID identifies a function signature for the call_indirect type
// check (spec.md §4.4 create, §7 IndirectCallSignatureMismatch). It is
// opaque here: the host computes it however it encodes signatures (a hash
// of parameter/result kinds, an index into a canonical signature table,
// etc). This package only ever compares two FunctionTypeIDs for equality;
// see spec.md's explicit Non-goal on calling-convention details.
type FunctionTypeID uint64

// refRecord is the object a live Reference points to. Table slots store
// only uintptr(unsafe.Pointer(rec)) minus the OUT_OF_BOUNDS sentinel's own
// address (the BiasedRef); recovering a Reference from a slot means
// reversing that subtraction and reinterpreting the result as *refRecord,
// exactly as WAVM's Object* pointers are stored and recovered
// (Lib/Runtime/Table.cpp: objectToBiasedTableElementValue /
// biasedTableElementValueToObject).
//
// This is safe only because whatever owns the Reference (an
// ElementSegment, or a caller-held local) keeps rec reachable for as long
// as it may be stored in any table; the table itself does not keep rec
// alive; it stores a bare, GC-invisible address.
type refRecord struct {
	typeID    FunctionTypeID
	debugName string
}

// Reference is an opaque handle to a heap object in the runtime, most
// commonly a function (spec.md §3). The zero Reference is never produced
// by NewFunctionReference; NullReference is the distinguished null value.
// References are compared by identity (the rec pointer), never by the
// value of whatever they point to.
type Reference struct {
	rec *refRecord
}

// NullReference is the distinct null value (spec.md §3). Table read paths
// that hit the UNINITIALIZED sentinel decode to this value at the API
// boundary (spec.md §4.2); internally, null is always stored as the
// UNINITIALIZED sentinel, never as a zero word.
var NullReference = Reference{}

// IsNull reports whether r is the null reference.
func (r Reference) IsNull() bool { return r.rec == nil }

// TypeID returns the function signature id carried by r, and whether r
// carries one at all (a null reference doesn't).
func (r Reference) TypeID() (FunctionTypeID, bool) {
	if r.rec == nil {
		return 0, false
	}
	return r.rec.typeID, true
}

func (r Reference) String() string {
	switch {
	case r.IsNull():
		return "null"
	case r.rec.debugName != "":
		return r.rec.debugName
	default:
		return fmt.Sprintf("ref(%#x)", uintptr(unsafe.Pointer(r.rec)))
	}
}

// NewFunctionReference creates a Reference to a function with the given
// signature. The caller is responsible for keeping the returned Reference
// (or something that reaches the same backing record, e.g. by holding onto
// it in an ElementSegment) reachable for as long as it may
// still be stored in any table: tables hold a bare address, not a tracked
// Go pointer, so nothing else keeping the record alive is a use-after-free
// once the garbage collector reclaims it.
func NewFunctionReference(debugName string, typeID FunctionTypeID) Reference {
	return Reference{rec: &refRecord{typeID: typeID, debugName: debugName}}
}

func (r Reference) addr() uintptr {
	return uintptr(unsafe.Pointer(r.rec))
}

func referenceFromAddr(addr uintptr) Reference {
	return Reference{rec: (*refRecord)(unsafe.Pointer(addr))}
}
