// Command hospital is the terminal client for Hospital Run. It plays a map
// interactively and checks map files before they are served.
//
// Usage:
//
//	hospital play [--map configs/classic.json] [--seed N]
//	hospital validate [paths...]
//	hospital analyze [paths...]
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

// defaultMapDir is where validate and analyze look when given no paths
const defaultMapDir = "configs"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newApp(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "hospital",
		Usage:   "Play and inspect Hospital Run maps from the terminal",
		Version: version,
		Writer:  out,
		Commands: []*cli.Command{
			playCommand(in, out),
			validateCommand(out),
			analyzeCommand(out),
		},
	}
}
