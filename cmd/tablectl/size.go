package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "create a table grown by --delta and report its size",
	}
	min, max := minMaxFlags(cmd)
	delta := cmd.Flags().Uint64("delta", 0, "elements to grow by before reporting size")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, "tablectl-size")
		if err != nil {
			return err
		}
		defer t.Destroy()

		if *delta > 0 {
			if _, ok := t.Grow(*delta, true, demoFunctionRef(0)); !ok {
				return fmt.Errorf("grow by %d denied", *delta)
			}
		}
		fmt.Println(t.Size())
		return nil
	}
	return cmd
}
