package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func growCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "create a table, then grow it by --delta elements",
	}
	min, max := minMaxFlags(cmd)
	delta := cmd.Flags().Uint64("delta", 1, "number of elements to grow by")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, "tablectl-grow")
		if err != nil {
			return err
		}
		defer t.Destroy()

		old, ok := t.Grow(*delta, true, demoFunctionRef(0))
		if !ok {
			return fmt.Errorf("grow by %d denied (quota, declared max, or implementation max reached)", *delta)
		}
		fmt.Printf("grew from %d to %d\n", old, t.Size())
		return nil
	}
	return cmd
}
