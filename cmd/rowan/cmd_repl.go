package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/phanxgames/rowan"
	"github.com/spf13/cobra"
)

const historyFile = ".rowan_history"

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively parse values and documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			histPath := ""
			if home, err := os.UserHomeDir(); err == nil {
				histPath = filepath.Join(home, historyFile)
			}

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if histPath != "" {
				if f, err := os.Open(histPath); err == nil {
					_, _ = ln.ReadHistory(f)
					f.Close()
				}
				defer func() {
					if f, err := os.Create(histPath); err == nil {
						_, _ = ln.WriteHistory(f)
						f.Close()
					}
				}()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "rowan repl — enter a value, or a document starting with a section keyword; :quit exits")
			for {
				line, err := ln.Prompt("rowan> ")
				if err != nil {
					// Ctrl-C / Ctrl-D.
					fmt.Fprintln(out)
					return nil
				}
				trimmed := strings.TrimSpace(line)
				if trimmed == "" {
					continue
				}
				if trimmed == ":quit" || trimmed == ":q" {
					return nil
				}
				ln.AppendHistory(line)

				if strings.HasPrefix(trimmed, "#") {
					doc, err := rowan.Parse("<repl>", line+"\n")
					if err != nil {
						fmt.Fprintln(out, err)
						continue
					}
					fmt.Fprint(out, doc.Serialize())
					continue
				}
				v, err := rowan.ParseValue(line)
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				fmt.Fprintln(out, rowan.FormatValue(v))
			}
		},
	}
}
