package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func createCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a table and report its initial size and type",
	}
	min, max := minMaxFlags(cmd)
	name := cmd.Flags().String("name", "tablectl", "debug name for the created table")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := newDemoTable(*min, *max, *name)
		if err != nil {
			return err
		}
		defer t.Destroy()
		fmt.Printf("created %q: type=%s size=%d\n", t.DebugName(), t.Type(), t.Size())
		return nil
	}
	return cmd
}
