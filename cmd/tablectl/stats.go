package main

import (
	"fmt"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/table"
	"github.com/MicrohexHQ/wasm-jit-prototype/internal/tablemetrics"
)

type tableStatsRow struct {
	Name    string `csv:"name"`
	ElemKind string `csv:"elem_kind"`
	Min     uint32 `csv:"min"`
	Size    uint64 `csv:"size"`
}

func statsCommand() *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "create a handful of demo tables of varying size and report their stats",
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "emit rows as CSV instead of a plain table")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		metrics := tablemetrics.New(reg)

		sizes := []uint64{0, 4, 16}
		rows := make([]tableStatsRow, 0, len(sizes))
		for i, n := range sizes {
			name := fmt.Sprintf("tablectl-stats-%d", i)
			t, err := table.Create(nil, table.Type{ElemKind: table.ElemKindFuncRef, Min: 0}, table.NullReference, name, nil, table.WithMetrics(metrics))
			if err != nil {
				return err
			}
			defer t.Destroy()
			if n > 0 {
				if _, ok := t.Grow(n, true, demoFunctionRef(uint64(i))); !ok {
					return fmt.Errorf("grow %q by %d denied", name, n)
				}
			}
			rows = append(rows, tableStatsRow{
				Name:     t.DebugName(),
				ElemKind: t.Type().ElemKind.String(),
				Min:      t.Type().Min,
				Size:     t.Size(),
			})
		}

		if asCSV {
			b, err := csvutil.Marshal(rows)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		}

		for _, r := range rows {
			fmt.Printf("%-24s kind=%-8s min=%-6d size=%d\n", r.Name, r.ElemKind, r.Min, r.Size)
		}
		return nil
	}
	return cmd
}
