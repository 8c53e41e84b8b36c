// Package main provides the CLI entry point for threadbench, which
// times graph algorithm builds across worker-thread counts.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "threadbench",
		Short: "Thread-count sweep benchmark for graph algorithm builds",
		Long: `Threadbench runs each build of a graph algorithm repeatedly against
the same input for a list of worker-thread counts, averages the reported
timings and writes a comparison table with one row per thread count and
one column per build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setLevel(level, logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newVariantsCmd())
	root.AddCommand(newGenDatasetCmd(logger))

	return root
}

func setLevel(level *slog.LevelVar, s string) error {
	switch strings.ToLower(s) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info", "":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", s)
	}

	return nil
}
