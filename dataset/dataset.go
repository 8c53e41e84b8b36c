// Package dataset generates deterministic synthetic graphs in Matrix
// Market coordinate format, the input the benchmarked programs read.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	mrand "math/rand"
)

// Header is the Matrix Market banner for an unweighted edge list.
const Header = "%%MatrixMarket matrix coordinate pattern general"

// Summary contains statistics about the generated graph.
type Summary struct {
	Nodes int
	Edges int
}

// Config controls graph generation parameters.
type Config struct {
	Nodes        int
	Edges        int
	Distribution string
	Seed         int64
}

// zipfExponent skews power-law graphs towards low node ids.
const zipfExponent = 1.1

// Distributions lists the supported endpoint distributions.
func Distributions() []string {
	return []string{"uniform", "power-law"}
}

// MaxEdges returns the number of distinct undirected edges without
// self loops on n nodes.
func MaxEdges(n int) int {
	if n < 2 {
		return 0
	}

	return n * (n - 1) / 2
}

// Validate reports whether the requested graph can be generated.
func (c Config) Validate() error {
	if c.Nodes < 1 {
		return fmt.Errorf("nodes must be positive, got %d", c.Nodes)
	}

	if c.Edges < 0 {
		return fmt.Errorf("edges must not be negative, got %d", c.Edges)
	}

	if c.Edges > MaxEdges(c.Nodes) {
		return fmt.Errorf(
			"%d edges requested, at most %d fit on %d nodes",
			c.Edges, MaxEdges(c.Nodes), c.Nodes,
		)
	}

	return nil
}

// Generator produces deterministic graphs from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

type edge struct{ u, v int }

// maxRejections bounds consecutive duplicate draws before the next
// free edge is taken deterministically.
const maxRejections = 64

// Generate writes the graph to w and returns a Summary. Node ids are
// 1-based; no edge is a self loop and no undirected edge repeats.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	var summary Summary

	if err := g.cfg.Validate(); err != nil {
		return summary, err
	}

	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return summary, fmt.Errorf("write header: %w", err)
	}

	if _, err := fmt.Fprintf(bw, "%d %d %d\n",
		g.cfg.Nodes, g.cfg.Nodes, g.cfg.Edges); err != nil {
		return summary, fmt.Errorf("write size line: %w", err)
	}

	summary.Nodes = g.cfg.Nodes

	pick := g.picker()
	seen := make(map[edge]struct{}, g.cfg.Edges)
	rejected := 0

	for summary.Edges < g.cfg.Edges {
		u, v := pick(), pick()
		k := edge{min(u, v), max(u, v)}

		_, dup := seen[k]
		if u == v || dup {
			rejected++
			if rejected < maxRejections {
				continue
			}

			u, v = g.nextFree(seen)
			k = edge{u, v}
		}

		rejected = 0

		seen[k] = struct{}{}

		if _, err := fmt.Fprintf(bw, "%d %d\n", u, v); err != nil {
			return summary, fmt.Errorf("write edge: %w", err)
		}

		summary.Edges++
	}

	if err := bw.Flush(); err != nil {
		return summary, fmt.Errorf("flush: %w", err)
	}

	return summary, nil
}

// picker returns a function drawing 1-based node ids.
func (g *Generator) picker() func() int {
	n := g.cfg.Nodes

	switch g.cfg.Distribution {
	case "power-law":
		if n < 2 {
			return func() int { return 1 }
		}

		zipf := mrand.NewZipf(g.rng, zipfExponent, 1, uint64(n-1))
		return func() int {
			return int(zipf.Uint64()) + 1
		}

	default:
		// Fall back to uniform if unknown distribution.
		return func() int {
			return g.rng.Intn(n) + 1
		}
	}
}

// nextFree returns the first unused edge in a random starting row.
func (g *Generator) nextFree(seen map[edge]struct{}) (int, int) {
	n := g.cfg.Nodes
	start := g.rng.Intn(n) + 1

	for i := 0; i < n; i++ {
		u := (start+i-1)%n + 1
		for v := u + 1; v <= n; v++ {
			if _, ok := seen[edge{u, v}]; !ok {
				return u, v
			}
		}
	}

	// Validate guarantees a free edge remains.
	panic("dataset: no free edge left")
}
