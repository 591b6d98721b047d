// Package commands implements the timewire CLI commands.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "timewire",
	Short: "Learned static-timing surrogate",
	Long: `timewire - a graph-learning surrogate for static timing analysis.

The models predict per-pin arrival times and slews and per-arc cell delays
on a heterogeneous pin graph, propagating predictions in topological order
with attention-based lookups into the cell delay tables.

Commands:
  demo      Build a synthetic timing graph and run a forward pass
  version   Show version information

Examples:
  # Run the demo with the default synthetic netlist
  timewire demo

  # Size the netlist and baseline from a YAML file
  timewire demo -f demo.yaml --baseline`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
