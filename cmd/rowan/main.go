package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "rowan",
		Short: "Declarative scene document tooling",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newFmtCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newDepsCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("rowan 0.1.0-dev")
		},
	}
}
