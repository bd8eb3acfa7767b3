package table

import "fmt"

// ErrorKind enumerates the guest-visible exception kinds a table operation
// can raise (spec.md §7). Each is distinct from the rest.
type ErrorKind int

const (
	// OutOfBoundsTableAccess: index >= reserved_count, the loaded slot
	// decodes to OUT_OF_BOUNDS, or a segment offset overflows.
	OutOfBoundsTableAccess ErrorKind = iota + 1
	// UninitializedTableElement: call_indirect reached a slot that
	// decodes to UNINITIALIZED.
	UninitializedTableElement
	// IndirectCallSignatureMismatch: the referenced function's type-id
	// disagrees with the expected signature.
	IndirectCallSignatureMismatch
	// InvalidArgument: operation references a dropped element segment.
	InvalidArgument
	// OutOfBoundsElemSegmentAccess: init source range exceeds segment length.
	OutOfBoundsElemSegmentAccess
)

func (k ErrorKind) String() string {
	switch k {
	case OutOfBoundsTableAccess:
		return "out of bounds table access"
	case UninitializedTableElement:
		return "uninitialized table element"
	case IndirectCallSignatureMismatch:
		return "indirect call signature mismatch"
	case InvalidArgument:
		return "invalid argument"
	case OutOfBoundsElemSegmentAccess:
		return "out of bounds element segment access"
	default:
		return fmt.Sprintf("errorkind(%d)", int(k))
	}
}

// Error is the guest exception a table operation raises. It carries the
// triggering table and index where applicable (spec.md §7: "every guest
// exception carries the triggering table and index"), mirroring WAVM's
// throwException(ExceptionTypes::..., {table, index}) call sites one for
// one (Lib/Runtime/Table.cpp).
type Error struct {
	Kind  ErrorKind
	Table *Instance // nil when the error predates table resolution (e.g. unknown segment)
	Index uint64
	// HasIndex distinguishes "index 0" from "no index applies".
	HasIndex bool
}

func (e *Error) Error() string {
	name := "<unknown table>"
	if e.Table != nil {
		name = e.Table.DebugName()
	}
	if e.HasIndex {
		return fmt.Sprintf("%s: table %q index %d", e.Kind, name, e.Index)
	}
	return fmt.Sprintf("%s: table %q", e.Kind, name)
}

func newTableError(kind ErrorKind, t *Instance, index uint64) *Error {
	return &Error{Kind: kind, Table: t, Index: index, HasIndex: true}
}

func newArgError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}
