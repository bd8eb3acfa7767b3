package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/table"
)

func copyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "build a demo table, fill it with tagged refs, run table.copy, and dump the result",
	}
	min, max := minMaxFlags(cmd)
	n := cmd.Flags().Uint64("n", 3, "number of elements to copy")
	destOffset := cmd.Flags().Uint64("dest-offset", 1, "destination offset")
	srcOffset := cmd.Flags().Uint64("src-offset", 0, "source offset")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, "tablectl-copy")
		if err != nil {
			return err
		}
		defer t.Destroy()

		need := *destOffset + *n
		if s := *srcOffset + *n; s > need {
			need = s
		}
		if _, ok := t.Grow(need, true, table.NullReference); !ok {
			return fmt.Errorf("grow to %d denied", need)
		}
		for i := uint64(0); i < need; i++ {
			if _, err := t.Set(i, demoFunctionRef(i)); err != nil {
				return err
			}
		}

		if err := table.Copy(t, t, *destOffset, *srcOffset, *n); err != nil {
			return err
		}

		for i := uint64(0); i < need; i++ {
			ref, err := t.Get(i)
			if err != nil {
				return err
			}
			fmt.Printf("table[%d] = %s\n", i, formatRef(ref))
		}
		return nil
	}
	return cmd
}
