package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func setCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "create a table grown by --delta, write --index, and report the previous value",
	}
	min, max := minMaxFlags(cmd)
	delta := cmd.Flags().Uint64("delta", 4, "elements to grow by before writing")
	index := cmd.Flags().Uint64("index", 0, "element index to write")
	tag := cmd.Flags().Uint64("tag", 1, "function type id tag to store at index")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, "tablectl-set")
		if err != nil {
			return err
		}
		defer t.Destroy()

		if *delta > 0 {
			if _, ok := t.Grow(*delta, true, demoFunctionRef(0)); !ok {
				return fmt.Errorf("grow by %d denied", *delta)
			}
		}

		prev, err := t.Set(*index, demoFunctionRef(*tag))
		if err != nil {
			return err
		}
		fmt.Printf("table[%d] <- tag %d; previous = %s\n", *index, *tag, formatRef(prev))
		return nil
	}
	return cmd
}
