package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/threadbench/harness"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{0, 1, 2, 4, 8, 16}, cfg.Threads)
	assert.Equal(t, 5, cfg.Runs)
	assert.Len(t, cfg.Variants, 6)
	assert.Equal(t, "par_base", cfg.Variants[0].Label)
	assert.Equal(t, "rayon_main_opt", cfg.Variants[5].Program)
	assert.Equal(t, filepath.Join("..", "files", "syn", "fixedNodes", "syn_50k_2M.mtx"), cfg.DatasetPath())
	assert.Equal(t, "syn_50k_2M_RustvsSpark.csv", cfg.OutputPath())

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, harness.ExitIgnore, policy)

	timeout, err := cfg.RunTimeout()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestDefaultsAreIndependent(t *testing.T) {
	a := Default()
	a.Threads[0] = 99
	a.Variants[0].Label = "changed"

	b := Default()
	assert.Equal(t, 0, b.Threads[0])
	assert.Equal(t, "par_base", b.Variants[0].Label)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
dataset: syn/small.mtx
threads: [8, 2]
runs: 3
exitPolicy: fallback
timeout: 90s
variants:
  - label: seq
    program: naive
  - label: rayon_ep
    program: rayon_main
`)

	cfg, err := Parse(data, "sweep.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int{8, 2}, cfg.Threads)
	assert.Equal(t, 3, cfg.Runs)
	assert.Equal(t, []harness.Variant{
		{Label: "seq", Program: "naive"},
		{Label: "rayon_ep", Program: "rayon_main"},
	}, cfg.Variants)
	assert.Equal(t, DefaultReleaseDir, cfg.ReleaseDir)
	assert.Equal(t, "small_RustvsSpark.csv", cfg.OutputPath())

	timeout, err := cfg.RunTimeout()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, timeout)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"runs": 2, "output": "out.csv"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Runs)
	assert.Equal(t, "out.csv", cfg.OutputPath())
	assert.Len(t, cfg.Variants, 6)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"runs": "many"}`), "x.json")
	assert.Error(t, err)

	_, err = Parse([]byte("runs: [1"), "x.yaml")
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Dataset = ""
	cfg.Runs = 0
	cfg.Threads = []int{1, -2, 1}
	cfg.ExitPolicy = "retry"
	cfg.Timeout = "soon"
	cfg.Env = []string{"NOEQUALS"}
	cfg.Variants = []harness.Variant{
		{Label: "a", Program: "x"},
		{Label: "a", Program: ""},
		{Label: "num_threads", Program: "y"},
	}

	err := cfg.Validate()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs.Errors))
	for _, e := range verrs.Errors {
		fields = append(fields, e.Field)
	}

	assert.ElementsMatch(t, []string{
		"dataset",
		"runs",
		"threads[1]",
		"threads[2]",
		"variants[1].label",
		"variants[1].program",
		"variants[2].label",
		"exitPolicy",
		"timeout",
		"env[0]",
	}, fields)
	assert.Contains(t, err.Error(), "10 validation errors")
}

func TestValidateEmptyLists(t *testing.T) {
	cfg := Default()
	cfg.Threads = nil
	cfg.Variants = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thread count is required")
	assert.Contains(t, err.Error(), "variant is required")
}

func TestSelectVariants(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.SelectVariants([]string{"rayon_ep", "par_base"}))
	assert.Equal(t, []harness.Variant{
		{Label: "rayon_ep", Program: "rayon_main"},
		{Label: "par_base", Program: "par_main_base"},
	}, cfg.Variants)

	assert.Error(t, cfg.SelectVariants([]string{"naive"}))
}

func TestReferenceConfigMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "configs", "reference.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}
