// Package config describes a benchmark sweep: which programs to run,
// on which input, at which thread counts and how often.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/threadbench/harness"
	"github.com/weiihann/threadbench/report"
)

const (
	DefaultReleaseDir = "release"
	DefaultFilesDir   = "../files"
	DefaultDataset    = "syn/fixedNodes/syn_50k_2M.mtx"
	DefaultRuns       = 5
	DefaultComparison = "RustvsSpark"
)

// DefaultThreads is the reference thread-count sweep. Zero lets each
// program pick its own default.
var DefaultThreads = []int{0, 1, 2, 4, 8, 16}

// Config is the complete description of a sweep. It is built once at
// startup and passed down; nothing reads it from globals.
type Config struct {
	// ReleaseDir holds the benchmark executables.
	ReleaseDir string `json:"releaseDir" yaml:"releaseDir"`

	// FilesDir is the directory input datasets are relative to.
	FilesDir string `json:"filesDir" yaml:"filesDir"`

	// Dataset is the input file passed to every run.
	Dataset string `json:"dataset" yaml:"dataset"`

	Threads  []int             `json:"threads" yaml:"threads"`
	Runs     int               `json:"runs" yaml:"runs"`
	Variants []harness.Variant `json:"variants" yaml:"variants"`

	// Comparison names the experiment in the output file name.
	Comparison string `json:"comparison,omitempty" yaml:"comparison,omitempty"`

	// Output overrides the CSV path derived from Dataset and Comparison.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// ExitPolicy is one of ignore, fallback or abort.
	ExitPolicy string `json:"exitPolicy,omitempty" yaml:"exitPolicy,omitempty"`

	// Timeout bounds each run, e.g. "10m". Empty waits forever.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Env is appended to the environment of every run.
	Env []string `json:"env,omitempty" yaml:"env,omitempty"`
}

// DefaultVariants returns the reference comparison: the base, edge
// pruning and edge pruning with optimised seeding builds for both
// concurrency runtimes.
func DefaultVariants() []harness.Variant {
	return []harness.Variant{
		{Label: "par_base", Program: "par_main_base"},
		{Label: "par_ep", Program: "par_main"},
		{Label: "par_ep+os", Program: "par_main_opt"},
		{Label: "rayon_base", Program: "rayon_main_base"},
		{Label: "rayon_ep", Program: "rayon_main"},
		{Label: "rayon_ep+os", Program: "rayon_main_opt"},
	}
}

// Default returns the reference sweep configuration.
func Default() *Config {
	return &Config{
		ReleaseDir: DefaultReleaseDir,
		FilesDir:   DefaultFilesDir,
		Dataset:    DefaultDataset,
		Threads:    slices.Clone(DefaultThreads),
		Runs:       DefaultRuns,
		Variants:   DefaultVariants(),
		Comparison: DefaultComparison,
		ExitPolicy: string(harness.ExitIgnore),
	}
}

// Load reads a configuration file on top of the defaults.
//
// The format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, path)
}

// Parse decodes configuration data on top of the defaults. Fields
// absent from data keep their default values; lists given in data
// replace the default lists entirely.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	return cfg, nil
}

// DatasetPath returns the dataset path as passed to the programs.
func (c *Config) DatasetPath() string {
	if filepath.IsAbs(c.Dataset) || c.FilesDir == "" {
		return c.Dataset
	}

	return filepath.Join(c.FilesDir, c.Dataset)
}

// OutputPath returns where the CSV result is written.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}

	dataset := c.Dataset
	if dataset == "" {
		dataset = "results"
	}

	return report.OutputName(dataset, c.Comparison)
}

// Policy returns the parsed exit policy.
func (c *Config) Policy() (harness.ExitPolicy, error) {
	return harness.ParseExitPolicy(c.ExitPolicy)
}

// RunTimeout returns the parsed per-run timeout.
func (c *Config) RunTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}

	return time.ParseDuration(c.Timeout)
}

// SelectVariants narrows the configured variants to the given labels,
// in the order the labels are given.
func (c *Config) SelectVariants(labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	selected := make([]harness.Variant, 0, len(labels))

	for _, label := range labels {
		i := slices.IndexFunc(c.Variants, func(v harness.Variant) bool {
			return v.Label == label
		})
		if i < 0 {
			return fmt.Errorf("unknown variant %q", label)
		}

		selected = append(selected, c.Variants[i])
	}

	c.Variants = selected

	return nil
}
