// Package table holds the in-memory tabular dataset passed between pipeline stages.
//
// A Dataset is an ordered list of unique column names and row-major string
// cells. Every row has exactly one cell per column. Datasets are never mutated
// after construction: transforms return a new Dataset, and accessors hand out
// copies.
package table

import (
	"fmt"
	"slices"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
)

// Dataset is an immutable table of string cells.
type Dataset struct {
	source  string
	columns []string
	index   map[string]int
	rows    [][]string
	// lines[i] is the 1-based source line of rows[i]; nil when rows were not read from text.
	lines []int
}

// Option configures New.
type Option func(*Dataset)

// WithSource names where the data came from; it is used in error messages.
func WithSource(source string) Option {
	return func(d *Dataset) { d.source = source }
}

// WithLines records the 1-based source line of each row. len(lines) must equal len(rows).
func WithLines(lines []int) Option {
	return func(d *Dataset) { d.lines = slices.Clone(lines) }
}

// New builds a Dataset from column names and rows.
//
// Duplicate column names yield a *core.SchemaError. A row whose width differs
// from len(columns) yields a *core.ParseError naming the row's line.
func New(columns []string, rows [][]string, opts ...Option) (*Dataset, error) {
	d := &Dataset{}
	for _, opt := range opts {
		opt(d)
	}
	if d.lines != nil && len(d.lines) != len(rows) {
		return nil, fmt.Errorf("table: %d line numbers for %d rows", len(d.lines), len(rows))
	}

	index, err := buildIndex(d.source, columns)
	if err != nil {
		return nil, err
	}
	d.columns = slices.Clone(columns)
	d.index = index

	d.rows = make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, &core.ParseError{
				Source: d.source,
				Line:   d.Line(i),
				Err:    fmt.Errorf("row has %d fields, want %d", len(row), len(columns)),
			}
		}
		d.rows[i] = slices.Clone(row)
	}
	return d, nil
}

func buildIndex(source string, columns []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, &core.SchemaError{
				Source: source,
				Reason: fmt.Sprintf("duplicate column name %q", name),
			}
		}
		index[name] = i
	}
	return index, nil
}

// Source returns the name passed to WithSource, or "".
func (d *Dataset) Source() string { return d.source }

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string { return slices.Clone(d.columns) }

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.columns) }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string { return slices.Clone(d.rows[i]) }

// Rows returns a copy of all rows.
func (d *Dataset) Rows() [][]string {
	out := make([][]string, len(d.rows))
	for i := range d.rows {
		out[i] = slices.Clone(d.rows[i])
	}
	return out
}

// Line returns the 1-based source line of row i. Without recorded lines it is i+1.
func (d *Dataset) Line(i int) int {
	if d.lines != nil {
		return d.lines[i]
	}
	return i + 1
}

// Index returns the position of column name, or -1.
func (d *Dataset) Index(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Value returns the cell at row i, column name.
func (d *Dataset) Value(i int, name string) (string, bool) {
	c, ok := d.index[name]
	if !ok {
		return "", false
	}
	return d.rows[i][c], true
}

// Relabel returns the same rows under new column names.
func (d *Dataset) Relabel(columns []string) (*Dataset, error) {
	if len(columns) != len(d.columns) {
		return nil, &core.SchemaError{
			Source: d.source,
			Reason: fmt.Sprintf("cannot relabel %d columns with %d names", len(d.columns), len(columns)),
		}
	}
	index, err := buildIndex(d.source, columns)
	if err != nil {
		return nil, err
	}
	out := d.shallow()
	out.columns = slices.Clone(columns)
	out.index = index
	return out, nil
}

// Rename returns a dataset whose column from is called to.
//
// Renaming onto an existing column name is a *core.SchemaError.
func (d *Dataset) Rename(from, to string) (*Dataset, error) {
	i, ok := d.index[from]
	if !ok {
		return nil, &core.MissingColumnError{Column: from, Available: d.Columns()}
	}
	if from == to {
		return d, nil
	}
	cols := d.Columns()
	cols[i] = to
	return d.Relabel(cols)
}

// Filter returns the rows for which keep reports true, in their original order.
//
// keep must not modify row. The first error returned by keep aborts the filter.
func (d *Dataset) Filter(keep func(i int, row []string) (bool, error)) (*Dataset, error) {
	out := d.shallow()
	out.rows = make([][]string, 0, len(d.rows))
	if d.lines != nil {
		out.lines = make([]int, 0, len(d.rows))
	}
	for i, row := range d.rows {
		ok, err := keep(i, row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out.rows = append(out.rows, row)
		if d.lines != nil {
			out.lines = append(out.lines, d.lines[i])
		}
	}
	return out, nil
}

// shallow copies the header state and shares row storage, which is never written.
func (d *Dataset) shallow() *Dataset {
	return &Dataset{
		source:  d.source,
		columns: d.columns,
		index:   d.index,
		rows:    d.rows,
		lines:   d.lines,
	}
}
