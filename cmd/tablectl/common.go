package main

import (
	"github.com/spf13/cobra"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/table"
)

// minMaxFlags attaches the --min/--max flags every subcommand uses to
// describe the demo table it builds before performing its one operation.
func minMaxFlags(cmd *cobra.Command) (min *uint32, max *int64) {
	min = cmd.Flags().Uint32("min", 0, "table's declared minimum element count")
	max = cmd.Flags().Int64("max", -1, "table's declared maximum element count (-1 for none)")
	return min, max
}

func buildType(min uint32, max int64) table.Type {
	typ := table.Type{ElemKind: table.ElemKindFuncRef, Min: min}
	if max >= 0 {
		m := uint32(max)
		typ.Max = &m
	}
	return typ
}

func newDemoTable(min uint32, max int64, name string) (*table.Instance, error) {
	return table.Create(nil, buildType(min, max), table.NullReference, name, nil)
}

func demoFunctionRef(tag uint64) table.Reference {
	return table.NewFunctionReference("tablectl-demo-fn", table.FunctionTypeID(tag))
}

func formatRef(r table.Reference) string {
	if r.IsNull() {
		return "null"
	}
	return r.String()
}
