package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/hospital-run/game/engine"
)

// ValidationResult captures the outcome of validating a single map file.
type ValidationResult struct {
	File  string
	Valid bool
	Name  string
	Level engine.Level
	Err   error
}

func validateCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check map files for layout and token errors",
		ArgsUsage: "[files or directories...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := mapFiles(cmd.Args().Slice())
			if err != nil {
				return err
			}
			results := validateFiles(files)
			invalid := printValidation(out, results)
			if invalid > 0 {
				return fmt.Errorf("%d of %d maps are invalid", invalid, len(results))
			}
			return nil
		},
	}
}

// mapFiles expands paths into map files. Directories contribute their
// .json and .txt files; no paths means the default map directory.
func mapFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{defaultMapDir}
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if entry.IsDir() || (ext != ".json" && ext != ".txt") {
				continue
			}
			found = append(found, filepath.Join(path, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no map files found in %s", strings.Join(paths, ", "))
	}
	return files, nil
}

// validateMapFile loads a map file and runs the engine's validation on it
func validateMapFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path)}

	config, err := engine.LoadMapFile(path)
	if err != nil {
		result.Err = err
		return result
	}

	result.Valid = true
	result.Name = config.Name
	result.Level = config.Level
	return result
}

func validateFiles(files []string) []ValidationResult {
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateMapFile(file))
	}
	return results
}

// printValidation writes one line per file and returns the invalid count
func printValidation(out io.Writer, results []ValidationResult) int {
	invalid := 0
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(out, "✅ %s: %s (%s)\n", r.File, r.Name, r.Level)
			continue
		}
		invalid++
		fmt.Fprintf(out, "❌ %s: %v\n", r.File, r.Err)
	}
	fmt.Fprintf(out, "\n%d valid, %d invalid\n", len(results)-invalid, invalid)
	return invalid
}
