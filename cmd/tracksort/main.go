// Package main provides the entry point for the tracksort CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/tracksort/cmd/tracksort/commands"
)

func main() {
	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
