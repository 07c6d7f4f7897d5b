package main

import (
	"fmt"

	"github.com/phanxgames/rowan"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Parse and resolve documents, reporting per-file status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			files, err := collectFiles(cfg, args)
			if err != nil {
				return err
			}

			engine := rowan.NewEngine(rowan.NewMemTree())
			for _, file := range files {
				src, err := readSource(file)
				if err != nil {
					return err
				}
				// Parse/section errors surface via status below.
				_ = engine.AddRaw(file, src)
			}
			engine.Process()

			out := cmd.OutOrStdout()
			failed := 0
			for _, file := range files {
				status := engine.Status(file)
				fmt.Fprintf(out, "%-10s %s\n", status, file)
				if status != rowan.StatusProcessed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}
}
