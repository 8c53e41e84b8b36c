package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Variant identifies one benchmarked program. Label names the result
// column, Program names the executable inside the release directory.
type Variant struct {
	Label   string `json:"label" yaml:"label"`
	Program string `json:"program" yaml:"program"`
}

// KnownPrograms returns the executables produced by a release build of
// the graph algorithms.
func KnownPrograms() []string {
	return []string{
		"naive",
		"par_main_base", "par_main", "par_main_opt",
		"rayon_main_base", "rayon_main", "rayon_main_opt",
	}
}

// ExecutableSuffix is appended to every program name when resolving its
// path. It is only non-empty on Windows.
func ExecutableSuffix() string {
	return executableSuffix(runtime.GOOS)
}

func executableSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}

	return ""
}

// ResolveBinary returns the expected executable path for a program
// given the release directory.
func ResolveBinary(releaseDir, program string) string {
	return filepath.Join(releaseDir, program+ExecutableSuffix())
}

// CheckBinaries verifies that every variant resolves to an existing
// regular file, so that a missing build fails the sweep before any
// program is run.
func CheckBinaries(releaseDir string, variants []Variant) error {
	for _, v := range variants {
		path := ResolveBinary(releaseDir, v.Program)

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("variant %s: %w", v.Label, err)
		}

		if info.IsDir() {
			return fmt.Errorf(
				"variant %s: %s is a directory", v.Label, path,
			)
		}
	}

	return nil
}
