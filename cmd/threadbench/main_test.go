package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(out io.Writer, args ...string) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))

	root := newRootCmd(logger, level)
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	return root.Execute()
}

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}

	releaseDir := t.TempDir()
	script := "#!/bin/sh\necho $(( $4 * 10 + 5 ))\n"
	require.NoError(t, os.WriteFile(filepath.Join(releaseDir, "par_main_base"), []byte(script), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(releaseDir, "rayon_main_base"), []byte("#!/bin/sh\necho oops\n"), 0o755))

	outPath := filepath.Join(t.TempDir(), "out.csv")

	var stdout bytes.Buffer
	err := execute(&stdout,
		"run",
		"--release-dir", releaseDir,
		"--threads", "4,0,2",
		"--runs", "2",
		"--variants", "par_base,rayon_base",
		"--output", outPath,
		"--format", "none",
		"--no-color",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "num_threads,par_base,rayon_base\n4,45.0,0.0\n0,5.0,0.0\n2,25.0,0.0\n", string(data))

	assert.Contains(t, stdout.String(), "rayon_base at 4 threads: 2 of 2 runs produced no timing")
	assert.Contains(t, stdout.String(), "results written to "+outPath)
}

func TestRunCommandMissingExecutable(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")

	err := execute(io.Discard,
		"run",
		"--release-dir", t.TempDir(),
		"--output", outPath,
	)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no partial output expected")
}

func TestRunCommandInvalidConfig(t *testing.T) {
	err := execute(io.Discard, "run", "--runs", "0", "--skip-check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runs")

	err = execute(io.Discard, "run", "--variants", "nope")
	require.Error(t, err)
}

func TestGenDatasetCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "syn", "tiny.mtx")

	err := execute(io.Discard,
		"gen-dataset", "--nodes", "20", "--edges", "30", "--seed", "5", "--out", out,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "20 20 30\n")
}

func TestVariantsCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, execute(&stdout, "variants", "--release-dir", t.TempDir()))

	assert.Contains(t, stdout.String(), "rayon_main_opt")
	assert.Contains(t, stdout.String(), "Known programs")
}

func TestSetLevel(t *testing.T) {
	level := new(slog.LevelVar)

	require.NoError(t, setLevel(level, "debug"))
	assert.Equal(t, slog.LevelDebug, level.Level())

	require.NoError(t, setLevel(level, "WARN"))
	assert.Equal(t, slog.LevelWarn, level.Level())

	assert.Error(t, setLevel(level, "loud"))
}
