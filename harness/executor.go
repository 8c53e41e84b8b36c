package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNonZeroExit is returned under ExitAbort when a program exits with
// a non-zero status.
var ErrNonZeroExit = errors.New("program exited with non-zero status")

// ExitPolicy decides what a non-zero exit status means for a sample.
type ExitPolicy string

const (
	// ExitIgnore consults standard output only.
	ExitIgnore ExitPolicy = "ignore"
	// ExitFallback records a fallback sample for a failed program.
	ExitFallback ExitPolicy = "fallback"
	// ExitAbort stops the sweep on a failed program.
	ExitAbort ExitPolicy = "abort"
)

// ExitPolicies lists the accepted policies.
func ExitPolicies() []ExitPolicy {
	return []ExitPolicy{ExitIgnore, ExitFallback, ExitAbort}
}

// ParseExitPolicy converts a string into an ExitPolicy.
func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch p := ExitPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ExitIgnore, ExitFallback, ExitAbort:
		return p, nil
	case "":
		return ExitIgnore, nil
	default:
		return "", fmt.Errorf("unknown exit policy %q", s)
	}
}

// Executor produces one timing sample per invocation.
type Executor struct {
	Invoker    Invoker
	ReleaseDir string
	Policy     ExitPolicy
	Logger     *slog.Logger
}

// NewExecutor creates an Executor resolving programs under releaseDir.
func NewExecutor(
	invoker Invoker,
	releaseDir string,
	policy ExitPolicy,
	logger *slog.Logger,
) *Executor {
	if policy == "" {
		policy = ExitIgnore
	}

	return &Executor{
		Invoker:    invoker,
		ReleaseDir: releaseDir,
		Policy:     policy,
		Logger:     logger,
	}
}

// Sample runs variant once against dataset with the given thread count.
// Unusable output becomes a fallback sample; only launch failures, and
// failed programs under ExitAbort, are returned as errors.
func (e *Executor) Sample(
	ctx context.Context,
	variant Variant,
	dataset string,
	threads int,
) (Sample, error) {
	inv := Invocation{
		Variant: variant,
		Path:    ResolveBinary(e.ReleaseDir, variant.Program),
		Dataset: dataset,
		Threads: threads,
	}

	out, err := e.Invoker.Invoke(ctx, inv)
	if err != nil {
		return Sample{}, fmt.Errorf("variant %s: %w", variant.Label, err)
	}

	if out.ExitCode != 0 {
		switch e.Policy {
		case ExitAbort:
			return Sample{}, fmt.Errorf(
				"variant %s with %d threads: %w (code %d)\nstderr: %s",
				variant.Label, threads, ErrNonZeroExit, out.ExitCode,
				strings.TrimSpace(out.Stderr),
			)
		case ExitFallback:
			return FallbackSample(
				fmt.Sprintf("exit status %d", out.ExitCode),
			), nil
		default:
			e.Logger.DebugContext(ctx, "ignoring non-zero exit status",
				slog.String("variant", variant.Label),
				slog.Int("threads", threads),
				slog.Int("exit_code", out.ExitCode),
			)
		}
	}

	return ParseSample(out.Stdout), nil
}
