package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fillCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "create a table grown by --delta, run table.fill over [--offset, --offset+--n), and dump it",
	}
	min, max := minMaxFlags(cmd)
	delta := cmd.Flags().Uint64("delta", 4, "elements to grow by")
	offset := cmd.Flags().Uint64("offset", 0, "fill destination offset")
	n := cmd.Flags().Uint64("n", 4, "number of elements to fill")
	tag := cmd.Flags().Uint64("tag", 7, "function type id tag to fill with")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, "tablectl-fill")
		if err != nil {
			return err
		}
		defer t.Destroy()

		if _, ok := t.Grow(*delta, true, demoFunctionRef(0)); !ok {
			return fmt.Errorf("grow by %d denied", *delta)
		}
		if err := t.Fill(*offset, demoFunctionRef(*tag), *n); err != nil {
			return err
		}
		for i := uint64(0); i < *delta; i++ {
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
