package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/weiihann/threadbench/config"
	"github.com/weiihann/threadbench/harness"
	"github.com/weiihann/threadbench/report"
	"github.com/weiihann/threadbench/sweep"
)

type runOptions struct {
	configPath string
	releaseDir string
	filesDir   string
	dataset    string
	threads    []int
	runs       int
	variants   []string
	output     string
	comparison string
	exitPolicy string
	timeout    string
	format     string
	baseline   string
	skipCheck  bool
	noColor    bool
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the thread-count sweep",
		Long: `Run every configured build at every thread count, repeat each
configuration, average the timings and write the result table as CSV.

Each build is started as
  <release-dir>/<program> --f <files-dir>/<dataset> --num_thread <n>
and must print the elapsed milliseconds as a single integer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			return runSweep(cmd.Context(), logger, cmd.OutOrStdout(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"Sweep configuration file (YAML or JSON)")
	flags.StringVar(&opts.releaseDir, "release-dir", config.DefaultReleaseDir,
		"Directory holding the benchmark executables")
	flags.StringVar(&opts.filesDir, "files-dir", config.DefaultFilesDir,
		"Directory datasets are relative to")
	flags.StringVar(&opts.dataset, "dataset", config.DefaultDataset,
		"Input dataset passed to every run")
	flags.IntSliceVar(&opts.threads, "threads", config.DefaultThreads,
		"Thread counts to sweep, in table order (0 = program default)")
	flags.IntVar(&opts.runs, "runs", config.DefaultRuns,
		"Runs averaged per configuration")
	flags.StringSliceVar(&opts.variants, "variants", nil,
		"Variant labels to run (default: all configured)")
	flags.StringVarP(&opts.output, "output", "o", "",
		"CSV output path (default: <dataset>_<comparison>.csv)")
	flags.StringVar(&opts.comparison, "comparison", config.DefaultComparison,
		"Comparison name used in the default output path")
	flags.StringVar(&opts.exitPolicy, "exit-policy", string(harness.ExitIgnore),
		"Non-zero exit handling: ignore, fallback, abort")
	flags.StringVar(&opts.timeout, "timeout", "",
		"Per-run timeout, e.g. 10m (default: none)")
	flags.StringVar(&opts.format, "format", "table",
		"Console output: table, markdown, json, none")
	flags.StringVar(&opts.baseline, "baseline", "",
		"Variant used as speedup reference in markdown output")
	flags.BoolVar(&opts.skipCheck, "skip-check", false,
		"Skip checking that all executables exist before running")
	flags.BoolVar(&opts.noColor, "no-color", false,
		"Disable colored output")

	return cmd
}

// loadConfig builds the sweep configuration: defaults, then the config
// file, then any flag set explicitly on the command line.
func loadConfig(cmd *cobra.Command, opts runOptions) (*config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		var err error

		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()

	if flags.Changed("release-dir") {
		cfg.ReleaseDir = opts.releaseDir
	}
	if flags.Changed("files-dir") {
		cfg.FilesDir = opts.filesDir
	}
	if flags.Changed("dataset") {
		cfg.Dataset = opts.dataset
	}
	if flags.Changed("threads") {
		cfg.Threads = opts.threads
	}
	if flags.Changed("runs") {
		cfg.Runs = opts.runs
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("comparison") {
		cfg.Comparison = opts.comparison
	}
	if flags.Changed("exit-policy") {
		cfg.ExitPolicy = opts.exitPolicy
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}

	if err := cfg.SelectVariants(opts.variants); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runSweep(
	ctx context.Context,
	logger *slog.Logger,
	stdout io.Writer,
	cfg *config.Config,
	opts runOptions,
) error {
	color.NoColor = opts.noColor || !isTerminal(os.Stdout)

	switch opts.format {
	case "", "table", "markdown", "json", "none":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	timeout, err := cfg.RunTimeout()
	if err != nil {
		return fmt.Errorf("parse timeout: %w", err)
	}

	if !opts.skipCheck {
		if err := harness.CheckBinaries(cfg.ReleaseDir, cfg.Variants); err != nil {
			return fmt.Errorf("check executables: %w", err)
		}
	}

	dataset := cfg.DatasetPath()

	logger.InfoContext(ctx, "starting sweep",
		slog.String("dataset", dataset),
		slog.Any("threads", cfg.Threads),
		slog.Int("runs", cfg.Runs),
		slog.Int("variants", len(cfg.Variants)),
		slog.String("exit_policy", string(policy)),
	)

	executor := harness.NewExecutor(
		harness.NewProcessInvoker(cfg.Env, timeout, logger),
		cfg.ReleaseDir,
		policy,
		logger,
	)

	sweeper, err := sweep.New(sweep.Plan{
		Variants: cfg.Variants,
		Dataset:  dataset,
		Threads:  cfg.Threads,
		Runs:     cfg.Runs,
	}, executor, logger)
	if err != nil {
		return err
	}

	result, err := sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	outPath := cfg.OutputPath()
	if err := writeCSV(outPath, result.Table); err != nil {
		return err
	}

	if err := printResult(stdout, result, opts); err != nil {
		return err
	}

	for _, p := range result.Degraded() {
		color.New(color.FgYellow).Fprintf(stdout,
			"⚠ %s at %d threads: %d of %d runs produced no timing\n",
			p.Variant, p.Threads, p.Fallbacks, len(p.Samples),
		)
	}

	color.New(color.FgGreen).Fprintf(stdout, "✓ results written to %s\n", outPath)

	logger.InfoContext(ctx, "sweep complete", slog.String("output", outPath))

	return nil
}

func printResult(w io.Writer, result *sweep.Result, opts runOptions) error {
	switch opts.format {
	case "table", "":
		report.Render(w, result.Table)
	case "markdown":
		if err := report.Generate(w, result.Table, opts.baseline); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	case "json":
		if err := report.GenerateJSON(w, result); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	case "none":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	return nil
}

func writeCSV(path string, table *report.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := report.WriteCSV(f, table); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
