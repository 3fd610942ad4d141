// Package main provides the tomasim command line.
// tomasim is a cycle-accurate Tomasulo scheduling simulator.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tomasim",
	Short: "A cycle-accurate Tomasulo scheduling simulator",
	Long: `tomasim simulates dynamic instruction scheduling with Tomasulo's
algorithm: reservation stations, register renaming and a single
completion bus.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log every scheduling event")
}

// newLogger builds the command-line logger. Warnings are always shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
