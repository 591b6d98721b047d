// Package main is the entry point for the timewire CLI.
//
// Usage:
//
//	timewire [flags] <command> [args]
//
// Commands:
//
//	demo      - Build a synthetic timing graph and run a forward pass
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/timewire-ml/timewire/cmd/timewire/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
