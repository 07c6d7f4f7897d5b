package main

import (
	"fmt"

	"github.com/phanxgames/rowan"
	"github.com/spf13/cobra"
)

func newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps [files...]",
		Short: "Print the dependency processing order; report cycles and missing imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			files, err := collectFiles(cfg, args)
			if err != nil {
				return err
			}

			manifest := rowan.NewManifestMap()
			type fileDeps struct {
				file    string
				imports []rowan.ImportEntry
			}
			var parsed []fileDeps
			for _, file := range files {
				src, err := readSource(file)
				if err != nil {
					return err
				}
				doc, err := rowan.Parse(file, string(src))
				if err != nil {
					return err
				}
				for _, e := range doc.ManifestEntries() {
					target := e.SourceFile()
					if e.IsSelf() {
						target = file
					}
					manifest.Insert(e.Key, target)
				}
				parsed = append(parsed, fileDeps{file: file, imports: doc.ImportEntries()})
			}

			// Same fix-point the engine runs: promote every file whose
			// imports are done, until a pass promotes none.
			out := cmd.OutOrStdout()
			done := make(map[string]bool)
			order := 0
			for {
				progressed := false
				for _, fd := range parsed {
					if done[fd.file] {
						continue
					}
					satisfied := true
					for _, imp := range fd.imports {
						f, ok := manifest.File(imp.Key)
						if !ok || !done[f] {
							satisfied = false
							break
						}
					}
					if !satisfied {
						continue
					}
					order++
					done[fd.file] = true
					progressed = true
					fmt.Fprintf(out, "%3d  %s\n", order, fd.file)
				}
				if !progressed {
					break
				}
			}

			stuck := 0
			for _, fd := range parsed {
				if done[fd.file] {
					continue
				}
				stuck++
				for _, imp := range fd.imports {
					f, ok := manifest.File(imp.Key)
					switch {
					case !ok:
						fmt.Fprintf(out, "  !  %s: manifest key %s is not registered\n", fd.file, imp.Key)
					case !done[f]:
						fmt.Fprintf(out, "  !  %s: import %s (%s) cannot be processed\n", fd.file, imp.Key, f)
					}
				}
			}
			if stuck > 0 {
				return fmt.Errorf("%d files stuck on a cycle or missing import", stuck)
			}
			return nil
		},
	}
}
