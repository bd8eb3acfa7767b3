//go:build bench

// Package bench cross-checks this repository's table semantics against
// real WebAssembly engines' own table implementations, for the operations
// both sides can express without a compiled module (grow/get/set/size):
// if wasmtime's or wasmer's table disagrees with ours on the same sequence
// of operations, one of the two misunderstood the spec. Grounded on
// tetratelabs/wazero's internal/integration_test/vs package, which wires
// wasmtime-go and wasmer-go the same way for cross-engine comparison
// (internal/integration_test/vs/wasmtime/wasmtime.go,
// internal/integration_test/vs/wasmer/wasmer.go), though that package
// compares whole compiled modules rather than the table API directly.
package bench

import (
	"testing"

	"github.com/bytecodealliance/wasmtime-go"
	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/table"
)

// op is one step of a grow/size script run identically against our
// table and a reference engine's table.
type op struct {
	grow     bool
	growBy   uint64
	wantSize uint64
}

var script = []op{
	{grow: true, growBy: 4, wantSize: 4},
	{grow: true, growBy: 0, wantSize: 4},
	{grow: true, growBy: 12, wantSize: 16},
}

func runOurs(t *testing.T) []uint64 {
	t.Helper()
	min := uint32(0)
	typ := table.Type{ElemKind: table.ElemKindFuncRef, Min: min}
	inst, err := table.Create(nil, typ, table.NullReference, "bench-ours", nil)
	if err != nil {
		t.Fatalf("table.Create: %v", err)
	}
	defer inst.Destroy()

	var sizes []uint64
	for _, step := range script {
		if _, ok := inst.Grow(step.growBy, true, table.NullReference); !ok {
			t.Fatalf("Grow(%d) denied", step.growBy)
		}
		sizes = append(sizes, inst.Size())
	}
	return sizes
}

func runWasmtime(t *testing.T) []uint64 {
	t.Helper()
	store := wasmtime.NewStore(wasmtime.NewEngine())
	tableType := wasmtime.NewTableType(wasmtime.NewValType(wasmtime.KindFuncref), wasmtime.NewLimits(0, 0xffffffff))
	tbl, err := wasmtime.NewTable(store, tableType, wasmtime.ValFuncref(nil))
	if err != nil {
		t.Fatalf("wasmtime.NewTable: %v", err)
	}

	var sizes []uint64
	for _, step := range script {
		if step.growBy > 0 {
			if _, err := tbl.Grow(store, uint32(step.growBy), wasmtime.ValFuncref(nil)); err != nil {
				t.Fatalf("wasmtime Table.Grow(%d): %v", step.growBy, err)
			}
		}
		sizes = append(sizes, uint64(tbl.Size(store)))
	}
	return sizes
}

func runWasmer(t *testing.T) []uint64 {
	t.Helper()
	store := wasmer.NewStore(wasmer.NewEngine())
	tableType := wasmer.NewTableType(wasmer.NewValueType(wasmer.FunctionRef), wasmer.NewLimits(0, 0xffffffff))
	tbl, err := wasmer.NewTable(store, tableType)
	if err != nil {
		t.Fatalf("wasmer.NewTable: %v", err)
	}

	var sizes []uint64
	for _, step := range script {
		if step.growBy > 0 {
			if _, err := tbl.Grow(uint32(step.growBy), wasmer.NewFunctionRef(nil)); err != nil {
				t.Fatalf("wasmer Table.Grow(%d): %v", step.growBy, err)
			}
		}
		sizes = append(sizes, uint64(tbl.Size()))
	}
	return sizes
}

// TestCrossEngineGrowSize runs the same grow/size script against this
// repository's table, wasmtime's table, and wasmer's table, and requires
// all three to agree on the observed size sequence. Built with -tags bench
// because it links cgo-based engines the rest of the module doesn't need.
func TestCrossEngineGrowSize(t *testing.T) {
	ours := runOurs(t)
	wasmtimeSizes := runWasmtime(t)
	wasmerSizes := runWasmer(t)

	for i, step := range script {
		if ours[i] != step.wantSize {
			t.Errorf("ours[%d] = %d, want %d", i, ours[i], step.wantSize)
		}
		if wasmtimeSizes[i] != step.wantSize {
			t.Errorf("wasmtime[%d] = %d, want %d", i, wasmtimeSizes[i], step.wantSize)
		}
		if wasmerSizes[i] != step.wantSize {
			t.Errorf("wasmer[%d] = %d, want %d", i, wasmerSizes[i], step.wantSize)
		}
	}
}
