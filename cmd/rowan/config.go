package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFile = "rowan.toml"

type config struct {
	Load loadConfig `toml:"load"`
	Fmt  fmtConfig  `toml:"fmt"`
}

type loadConfig struct {
	// Roots are directories scanned recursively for .cob files when a
	// command receives no file arguments.
	Roots []string `toml:"roots"`
}

type fmtConfig struct {
	// Write rewrites files in place instead of printing to stdout.
	Write bool `toml:"write"`
}

// readConfig loads rowan.toml from the working directory. A missing file
// yields defaults.
func readConfig() (config, error) {
	var cfg config
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(configFile, &cfg); err != nil {
		return cfg, fmt.Errorf("reading %s: %w", configFile, err)
	}
	return cfg, nil
}

func readSource(file string) ([]byte, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return src, nil
}

// collectFiles returns the explicit args, or every .cob file under the
// configured roots when no args were given.
func collectFiles(cfg config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	roots := cfg.Load.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".cob") {
				files = append(files, filepath.ToSlash(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .cob files found under %s", strings.Join(roots, ", "))
	}
	return files, nil
}
