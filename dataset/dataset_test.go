package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func generate(t *testing.T, cfg Config) (string, Summary) {
	t.Helper()

	var buf bytes.Buffer
	summary, err := NewGenerator(cfg).Generate(&buf)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	return buf.String(), summary
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{Nodes: 500, Edges: 2000, Distribution: "power-law", Seed: 42}

	out1, _ := generate(t, cfg)
	out2, _ := generate(t, cfg)

	if out1 != out2 {
		t.Error("same seed produced different graphs")
	}

	cfg.Seed = 43
	out3, _ := generate(t, cfg)

	if out1 == out3 {
		t.Error("different seeds produced identical graphs")
	}
}

func TestGenerateFormat(t *testing.T) {
	for _, dist := range Distributions() {
		t.Run(dist, func(t *testing.T) {
			cfg := Config{Nodes: 100, Edges: 1000, Distribution: dist, Seed: 7}
			out, summary := generate(t, cfg)

			if summary.Nodes != 100 || summary.Edges != 1000 {
				t.Errorf("summary = %+v", summary)
			}

			checkGraph(t, out, cfg)
		})
	}
}

func TestGenerateComplete(t *testing.T) {
	cfg := Config{Nodes: 12, Edges: MaxEdges(12), Seed: 1}
	out, summary := generate(t, cfg)

	if summary.Edges != 66 {
		t.Errorf("edges = %d, want 66", summary.Edges)
	}

	checkGraph(t, out, cfg)
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{Nodes: 0, Edges: 0},
		{Nodes: 10, Edges: -1},
		{Nodes: 4, Edges: 7},
	}

	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}

		var buf bytes.Buffer
		if _, err := NewGenerator(cfg).Generate(&buf); err == nil {
			t.Errorf("Generate accepted %+v", cfg)
		}
	}

	if err := (Config{Nodes: 4, Edges: 6}).Validate(); err != nil {
		t.Errorf("complete graph rejected: %v", err)
	}
}

func checkGraph(t *testing.T, out string, cfg Config) {
	t.Helper()

	sc := bufio.NewScanner(strings.NewReader(out))

	if !sc.Scan() || sc.Text() != Header {
		t.Fatalf("missing header, got %q", sc.Text())
	}

	if !sc.Scan() || sc.Text() != fmt.Sprintf("%d %d %d", cfg.Nodes, cfg.Nodes, cfg.Edges) {
		t.Fatalf("bad size line %q", sc.Text())
	}

	seen := make(map[[2]int]bool)
	lines := 0

	for sc.Scan() {
		var u, v int
		if _, err := fmt.Sscanf(sc.Text(), "%d %d", &u, &v); err != nil {
			t.Fatalf("bad edge line %q: %v", sc.Text(), err)
		}

		if u < 1 || u > cfg.Nodes || v < 1 || v > cfg.Nodes {
			t.Errorf("edge %d-%d out of range", u, v)
		}
		if u == v {
			t.Errorf("self loop on %d", u)
		}

		k := [2]int{min(u, v), max(u, v)}
		if seen[k] {
			t.Errorf("duplicate edge %d-%d", u, v)
		}
		seen[k] = true
		lines++
	}

	if lines != cfg.Edges {
		t.Errorf("edge lines = %d, want %d", lines, cfg.Edges)
	}
}
