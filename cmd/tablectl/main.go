// Command tablectl is a diagnostic CLI for exercising a single table's
// operations from the shell, grounded on pgavlin/warp's cmd/warp command
// tree (cmd/warp/main.go, cmd/warp/dump/cli.go): one cobra.Command per
// operation, each building and tearing down its own table rather than
// sharing state across invocations (spec.md §4.11).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func configureCLI() *cobra.Command {
	root := &cobra.Command{
		Use:           "tablectl",
		Short:         "exercise WebAssembly table operations from the shell",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(createCommand())
	root.AddCommand(growCommand())
	root.AddCommand(getCommand())
	root.AddCommand(setCommand())
	root.AddCommand(sizeCommand())
	root.AddCommand(copyCommand())
	root.AddCommand(fillCommand())
	root.AddCommand(statsCommand())

	return root
}

func main() {
	if err := configureCLI().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tablectl: %v\n", err)
		os.Exit(1)
	}
}
