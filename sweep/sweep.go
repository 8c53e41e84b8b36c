// Package sweep drives benchmark programs across thread counts and
// reduces repeated runs to per-configuration means.
package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weiihann/threadbench/harness"
	"github.com/weiihann/threadbench/report"
)

// KeyColumn names the thread-count column of the result table.
const KeyColumn = "num_threads"

// Sampler produces one timing sample per call.
type Sampler interface {
	Sample(
		ctx context.Context,
		variant harness.Variant,
		dataset string,
		threads int,
	) (harness.Sample, error)
}

// Plan fixes everything a sweep varies over.
type Plan struct {
	Variants []harness.Variant
	Dataset  string
	Threads  []int
	Runs     int
}

// Point is the reduced outcome of one (variant, thread count) pair.
type Point struct {
	Variant   string           `json:"variant"`
	Threads   int              `json:"threads"`
	Samples   []harness.Sample `json:"samples"`
	Mean      float64          `json:"mean_ms"`
	Fallbacks int              `json:"fallbacks"`
}

// Degraded reports whether any sample of p was a fallback.
func (p Point) Degraded() bool {
	return p.Fallbacks > 0
}

// Result is the outcome of a full sweep.
type Result struct {
	Dataset string        `json:"dataset"`
	Runs    int           `json:"runs"`
	Points  []Point       `json:"points"`
	Table   *report.Table `json:"-"`
}

// Degraded returns the points whose mean includes fallback samples.
func (r *Result) Degraded() []Point {
	var out []Point

	for _, p := range r.Points {
		if p.Degraded() {
			out = append(out, p)
		}
	}

	return out
}

// Sweeper runs a Plan. Runs are strictly sequential so that the
// programs being timed never compete with each other for CPUs.
type Sweeper struct {
	plan    Plan
	sampler Sampler
	logger  *slog.Logger
}

// New creates a Sweeper for plan.
func New(plan Plan, sampler Sampler, logger *slog.Logger) (*Sweeper, error) {
	if plan.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", plan.Runs)
	}

	if len(plan.Threads) == 0 {
		return nil, fmt.Errorf("no thread counts to sweep")
	}

	return &Sweeper{
		plan:    plan,
		sampler: sampler,
		logger:  logger,
	}, nil
}

// Means samples variant at every thread count of the plan, in plan
// order, and returns one point per thread count.
func (s *Sweeper) Means(
	ctx context.Context,
	variant harness.Variant,
) ([]Point, error) {
	logger := s.logger.With(slog.String("variant", variant.Label))
	points := make([]Point, 0, len(s.plan.Threads))

	for _, n := range s.plan.Threads {
		samples := make([]harness.Sample, 0, s.plan.Runs)

		for run := 0; run < s.plan.Runs; run++ {
			sample, err := s.sampler.Sample(ctx, variant, s.plan.Dataset, n)
			if err != nil {
				return nil, fmt.Errorf(
					"%s threads=%d run=%d: %w", variant.Label, n, run, err,
				)
			}

			logger.DebugContext(ctx, "sample",
				slog.Int("threads", n),
				slog.Int("run", run),
				slog.Int64("ms", sample.Millis),
				slog.String("outcome", sample.Outcome.String()),
			)

			samples = append(samples, sample)
		}

		p := Point{
			Variant:   variant.Label,
			Threads:   n,
			Samples:   samples,
			Mean:      Mean(samples),
			Fallbacks: countFallbacks(samples),
		}

		if p.Degraded() {
			logger.WarnContext(ctx, "mean includes fallback samples",
				slog.Int("threads", n),
				slog.Int("fallbacks", p.Fallbacks),
				slog.Int("runs", len(samples)),
			)
		}

		logger.InfoContext(ctx, "configuration done",
			slog.Int("threads", n),
			slog.Float64("mean_ms", p.Mean),
		)

		points = append(points, p)
	}

	return points, nil
}

// Run sweeps every variant of the plan and assembles the result table,
// one column per variant in plan order. The first error aborts the
// sweep and no partial result is returned.
func (s *Sweeper) Run(ctx context.Context) (*Result, error) {
	table := report.NewTable(KeyColumn, s.plan.Threads)
	result := &Result{
		Dataset: s.plan.Dataset,
		Runs:    s.plan.Runs,
	}

	for _, v := range s.plan.Variants {
		s.logger.InfoContext(ctx, "sweeping variant",
			slog.String("variant", v.Label),
			slog.String("program", v.Program),
		)

		points, err := s.Means(ctx, v)
		if err != nil {
			return nil, err
		}

		means := make([]float64, len(points))
		for i, p := range points {
			means[i] = p.Mean
		}

		if err := table.AddColumn(v.Label, means); err != nil {
			return nil, fmt.Errorf("assemble table: %w", err)
		}

		result.Points = append(result.Points, points...)
	}

	result.Table = table

	return result, nil
}

// Mean returns the arithmetic mean of the sample timings, fallbacks
// included. An empty slice has mean zero.
func Mean(samples []harness.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var total int64
	for _, s := range samples {
		total += s.Millis
	}

	return float64(total) / float64(len(samples))
}

func countFallbacks(samples []harness.Sample) int {
	n := 0

	for _, s := range samples {
		if s.IsFallback() {
			n++
		}
	}

	return n
}
