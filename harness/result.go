// Package harness runs benchmark executables and turns their output into
// timing samples.
package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// FallbackMillis is the value recorded for a run whose output could not
// be used as a measurement.
const FallbackMillis int64 = 0

// Outcome tells a genuine measurement apart from a fallback.
type Outcome int

const (
	Measured Outcome = iota
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Measured:
		return "measured"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Sample is the result of a single program invocation.
type Sample struct {
	Millis  int64   `json:"millis"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Measurement returns a measured sample.
func Measurement(ms int64) Sample {
	return Sample{Millis: ms, Outcome: Measured}
}

// FallbackSample returns a fallback sample with the given reason.
func FallbackSample(reason string) Sample {
	return Sample{
		Millis:  FallbackMillis,
		Outcome: Fallback,
		Reason:  reason,
	}
}

// IsFallback reports whether s was substituted for an unusable run.
func (s Sample) IsFallback() bool {
	return s.Outcome == Fallback
}

// ParseSample interprets a program's standard output as elapsed
// milliseconds. The trimmed output must be exactly one non-negative
// decimal integer; anything else yields a fallback sample.
func ParseSample(stdout string) Sample {
	text := strings.TrimSpace(stdout)
	if text == "" {
		return FallbackSample("empty output")
	}

	ms, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return FallbackSample(fmt.Sprintf("unparseable output %q", truncate(text, 64)))
	}

	if ms < 0 {
		return FallbackSample(fmt.Sprintf("negative timing %d", ms))
	}

	return Measurement(ms)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
