package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/threadbench/dataset"
)

func newGenDatasetCmd(logger *slog.Logger) *cobra.Command {
	var (
		nodes        int
		edges        int
		distribution string
		seed         int64
		out          string
	)

	cmd := &cobra.Command{
		Use:   "gen-dataset",
		Short: "Generate a synthetic graph in Matrix Market format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return fmt.Errorf("an output path must be given via --out")
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			cfg := dataset.Config{
				Nodes:        nodes,
				Edges:        edges,
				Distribution: distribution,
				Seed:         seed,
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}

			summary, err := dataset.NewGenerator(cfg).Generate(f)
			if err != nil {
				f.Close()
				os.Remove(out)

				return fmt.Errorf("generate: %w", err)
			}

			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}

			logger.InfoContext(cmd.Context(), "dataset generated",
				slog.String("path", out),
				slog.Int("nodes", summary.Nodes),
				slog.Int("edges", summary.Edges),
				slog.Int64("seed", seed),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&nodes, "nodes", 50_000, "Number of nodes")
	flags.IntVar(&edges, "edges", 2_000_000, "Number of undirected edges")
	flags.StringVar(&distribution, "distribution", "uniform",
		"Endpoint distribution: uniform, power-law")
	flags.Int64Var(&seed, "seed", 0, "Random seed (0 = use current time)")
	flags.StringVarP(&out, "out", "o", "", "Output .mtx path")

	return cmd
}
