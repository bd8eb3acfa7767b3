// Package api is the public surface shared between an embedder and the
// internal table runtime: reference values, element kinds, table types,
// and the error kinds a guest-visible table operation can raise. It
// re-exports internal/table's core types as aliases rather than wrapping
// them, the same way tetratelabs/wazero's public api package aliases its
// internal/wasm types (e.g. "type Table = internalwasm.Table" in
// api/wasm.go) instead of duplicating their definitions.
package api

import "github.com/MicrohexHQ/wasm-jit-prototype/internal/table"

// ExternType classifies imports and exports with their respective types.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#external-types%E2%91%A0
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

// ElemKind is the element kind of a table, e.g. funcref.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#table-types%E2%91%A0
type ElemKind = table.ElemKind

const (
	ElemKindFuncRef = table.ElemKindFuncRef
	ElemKindAnyRef  = table.ElemKindAnyRef
	ElemKindNullRef = table.ElemKindNullRef
)

// ElemKindName renders an ElemKind for diagnostics.
func ElemKindName(k ElemKind) string { return k.String() }

// TableType is a table's static signature: element kind and declared
// min/max element counts.
type TableType = table.Type

// FunctionTypeID identifies a function signature for the purpose of the
// call_indirect type check.
type FunctionTypeID = table.FunctionTypeID

// Reference is an opaque handle to a heap object in the runtime, most
// commonly a function. NullReference is the distinguished null value.
type Reference = table.Reference

// NullReference is the distinct null value.
var NullReference = table.NullReference

// NewFunctionReference creates a Reference to a function with the given
// signature, identified for diagnostics by debugName.
func NewFunctionReference(debugName string, typeID FunctionTypeID) Reference {
	return table.NewFunctionReference(debugName, typeID)
}

// ErrorKind enumerates the guest-visible exception kinds a table
// operation can raise.
type ErrorKind = table.ErrorKind

const (
	OutOfBoundsTableAccess        = table.OutOfBoundsTableAccess
	UninitializedTableElement     = table.UninitializedTableElement
	IndirectCallSignatureMismatch = table.IndirectCallSignatureMismatch
	InvalidArgument               = table.InvalidArgument
	OutOfBoundsElemSegmentAccess  = table.OutOfBoundsElemSegmentAccess
)

// Error is the guest exception a table operation raises.
type Error = table.Error
