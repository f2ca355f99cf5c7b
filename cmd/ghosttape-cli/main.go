// Package main provides the entry point for ghosttape-cli.
//
// ghosttape-cli is the command-line tool for inspecting, verifying,
// and producing ghost trace files.
package main

import (
	"fmt"
	"os"

	"github.com/veldra/ghosttape/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
