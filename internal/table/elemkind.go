package table

import "fmt"

// ElemKind is the element kind of a table, e.g. funcref. Kept local to
// this package (rather than borrowed from a parsed wasm type section,
// which is out of scope per spec.md §1) because create's subtype check
// only ever needs to compare it against what a Reference carries.
type ElemKind byte

const (
	ElemKindFuncRef ElemKind = 0x70
	ElemKindAnyRef  ElemKind = 0x6f
	ElemKindNullRef ElemKind = 0x6e
)

func (k ElemKind) String() string {
	switch k {
	case ElemKindFuncRef:
		return "funcref"
	case ElemKindAnyRef:
		return "anyref"
	case ElemKindNullRef:
		return "nullref"
	default:
		return fmt.Sprintf("elemkind(%#x)", byte(k))
	}
}
