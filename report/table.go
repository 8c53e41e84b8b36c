package report

import (
	"fmt"
	"slices"
)

// Column is one named series of values, aligned with the table keys.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Table is an ordered result grid. Rows keep the order of the keys they
// were created with and columns keep the order they were added in;
// nothing is ever sorted.
type Table struct {
	keyName string
	keys    []int
	columns []Column
}

// NewTable creates an empty table whose rows are keyed by keys.
func NewTable(keyName string, keys []int) *Table {
	return &Table{
		keyName: keyName,
		keys:    slices.Clone(keys),
	}
}

// AddColumn appends a column. It must hold exactly one value per key
// and its name must not collide with another column or the key column.
func (t *Table) AddColumn(name string, values []float64) error {
	if len(values) != len(t.keys) {
		return fmt.Errorf(
			"column %s has %d values, table has %d rows",
			name, len(values), len(t.keys),
		)
	}

	if name == t.keyName {
		return fmt.Errorf("column %s collides with key column", name)
	}

	for _, c := range t.columns {
		if c.Name == name {
			return fmt.Errorf("duplicate column %s", name)
		}
	}

	t.columns = append(t.columns, Column{
		Name:   name,
		Values: slices.Clone(values),
	})

	return nil
}

// KeyName returns the name of the key column.
func (t *Table) KeyName() string { return t.keyName }

// Keys returns the row keys in order.
func (t *Table) Keys() []int { return slices.Clone(t.keys) }

// Columns returns a copy of the value columns in order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	for i, c := range t.columns {
		out[i] = Column{Name: c.Name, Values: slices.Clone(c.Values)}
	}

	return out
}

// Header returns the key column name followed by the column names.
func (t *Table) Header() []string {
	header := make([]string, 0, len(t.columns)+1)
	header = append(header, t.keyName)

	for _, c := range t.columns {
		header = append(header, c.Name)
	}

	return header
}

// Row is one key with its value from every column.
type Row struct {
	Key    int
	Values []float64
}

// Rows returns the table rows in key order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.keys))

	for i, k := range t.keys {
		values := make([]float64, len(t.columns))
		for j, c := range t.columns {
			values[j] = c.Values[i]
		}

		rows[i] = Row{Key: k, Values: values}
	}

	return rows
}

// Value returns the value at key in the named column.
func (t *Table) Value(column string, key int) (float64, bool) {
	i := slices.Index(t.keys, key)
	if i < 0 {
		return 0, false
	}

	for _, c := range t.columns {
		if c.Name == column {
			return c.Values[i], true
		}
	}

	return 0, false
}
