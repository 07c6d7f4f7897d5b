package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/rowan"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Round-trip documents through the parser, normalizing lossy constructs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("write") {
				write = cfg.Fmt.Write
			}
			files, err := collectFiles(cfg, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, file := range files {
				src, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				doc, err := rowan.Parse(file, string(src))
				if err != nil {
					return err
				}
				rendered := doc.Serialize()
				if !write {
					fmt.Fprint(out, rendered)
					continue
				}
				if rendered == string(src) {
					continue
				}
				if err := os.WriteFile(file, []byte(rendered), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(out, "formatted %s\n", file)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place")
	return cmd
}
