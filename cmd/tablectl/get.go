package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MicrohexHQ/wasm-jit-prototype/internal/table"
)

func getCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "create a table grown by --delta, then read --index",
	}
	min, max := minMaxFlags(cmd)
	delta := cmd.Flags().Uint64("delta", 4, "elements to grow by before reading")
	index := cmd.Flags().Uint64("index", 0, "element index to read")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, "tablectl-get")
		if err != nil {
			return err
		}
		defer t.Destroy()

		if *delta > 0 {
			if _, ok := t.Grow(*delta, true, table.NullReference); !ok {
				return fmt.Errorf("grow by %d denied", *delta)
			}
		}

		ref, err := t.Get(*index)
		if err != nil {
			return err
		}
		fmt.Printf("table[%d] = %s\n", *index, formatRef(ref))
		return nil
	}
	return cmd
}
