// Package report formats sweep results into comparison tables.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// FormatMean renders a mean timing. Whole numbers keep one decimal
// place so that columns read as real-valued ("150.0").
func FormatMean(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OutputName returns the CSV file name for a sweep over dataset, e.g.
// "syn/fixedNodes/syn_50k_2M.mtx" and "RustvsSpark" give
// "syn_50k_2M_RustvsSpark.csv".
func OutputName(dataset, comparison string) string {
	stem := strings.TrimSuffix(filepath.Base(dataset), filepath.Ext(dataset))
	if comparison == "" {
		return stem + ".csv"
	}

	return stem + "_" + comparison + ".csv"
}

// WriteCSV writes the table as a header row followed by one record per
// key, in table order.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range t.Rows() {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, strconv.Itoa(row.Key))

		for _, v := range row.Values {
			record = append(record, FormatMean(v))
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row.Key, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Render writes an aligned console view of the table.
func Render(w io.Writer, t *Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Header())
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, row := range t.Rows() {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, strconv.Itoa(row.Key))

		for _, v := range row.Values {
			record = append(record, FormatMean(v))
		}

		tw.Append(record)
	}

	tw.Render()
}

// Generate writes a markdown comparison for the table. Speedups are
// relative to the baseline column at one thread, or at the first row
// when the sweep has no single-thread row.
func Generate(w io.Writer, t *Table, baseline string) error {
	columns := t.Columns()
	if len(columns) == 0 {
		return fmt.Errorf("no results to report")
	}

	if baseline == "" {
		baseline = columns[0].Name
	}

	ref, refKey, ok := reference(t, baseline)
	if !ok {
		return fmt.Errorf("baseline column %s not in table", baseline)
	}

	header := t.Header()
	rows := t.Rows()

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mean wall-clock time per run:")
	fmt.Fprintln(w)

	writeMarkdownHeader(w, header)

	for _, row := range rows {
		cells := make([]string, 0, len(row.Values)+1)
		cells = append(cells, strconv.Itoa(row.Key))

		for _, v := range row.Values {
			cells = append(cells, formatMs(v))
		}

		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Speedup relative to %s at %d threads:\n", baseline, refKey)
	fmt.Fprintln(w)

	writeMarkdownHeader(w, header)

	for _, row := range rows {
		cells := make([]string, 0, len(row.Values)+1)
		cells = append(cells, strconv.Itoa(row.Key))

		for _, v := range row.Values {
			if v > 0 && ref > 0 {
				cells = append(cells, fmt.Sprintf("%.2fx", ref/v))
			} else {
				cells = append(cells, "-")
			}
		}

		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}

	return nil
}

// GenerateJSON writes v as indented JSON to w.
func GenerateJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func reference(t *Table, baseline string) (float64, int, bool) {
	if v, ok := t.Value(baseline, 1); ok {
		return v, 1, true
	}

	keys := t.Keys()
	if len(keys) == 0 {
		return 0, 0, false
	}

	v, ok := t.Value(baseline, keys[0])

	return v, keys[0], ok
}

func writeMarkdownHeader(w io.Writer, header []string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))

	seps := make([]string, len(header))
	for i, h := range header {
		seps[i] = strings.Repeat("-", max(3, len(h)))
	}

	fmt.Fprintf(w, "|%s|\n", "-"+strings.Join(seps, "-|-")+"-")
}

func formatMs(ms float64) string {
	if ms == 0 {
		return "-"
	}

	if ms < 1000 {
		return fmt.Sprintf("%.1fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}
