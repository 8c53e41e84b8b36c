package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Invocation describes one run of a benchmark program.
type Invocation struct {
	Variant Variant
	Path    string
	Dataset string
	Threads int
}

// Args returns the command line arguments passed to the program.
func (inv Invocation) Args() []string {
	return []string{
		"--f", inv.Dataset,
		"--num_thread", strconv.Itoa(inv.Threads),
	}
}

// Output is what a finished program left behind.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Wall     time.Duration
}

// Invoker runs a benchmark program to completion.
//
// An error means the program could not be run at all; a program that
// ran and exited with a non-zero status is reported through
// Output.ExitCode instead.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (Output, error)
}

// ProcessInvoker runs programs as local child processes.
type ProcessInvoker struct {
	// Env is appended to the inherited environment.
	Env []string
	// Timeout bounds a single invocation. Zero waits indefinitely.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewProcessInvoker creates a ProcessInvoker.
func NewProcessInvoker(
	env []string,
	timeout time.Duration,
	logger *slog.Logger,
) *ProcessInvoker {
	return &ProcessInvoker{
		Env:     env,
		Timeout: timeout,
		Logger:  logger,
	}
}

// Invoke executes the program and waits for it to exit.
func (p *ProcessInvoker) Invoke(
	ctx context.Context,
	inv Invocation,
) (Output, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args()...)

	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.Logger.DebugContext(ctx, "starting program",
		slog.String("variant", inv.Variant.Label),
		slog.String("binary", inv.Path),
		slog.Int("threads", inv.Threads),
	)

	wallStart := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Wall:   time.Since(wallStart),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("launch %s: %w", inv.Path, err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("run %s: %w", inv.Path, ctxErr)
		}

		out.ExitCode = exitErr.ExitCode()
	}

	p.Logger.DebugContext(ctx, "program finished",
		slog.String("variant", inv.Variant.Label),
		slog.Int("exit_code", out.ExitCode),
		slog.Duration("wall_time", out.Wall),
	)

	return out, nil
}
