package schema

import (
	"fmt"
	"strconv"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// Type names the logical type of a field's text cells.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
)

// Field captures the minimal behavior-relevant schema fields.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
}

// DatasetContract is a fixed, ordered column layout for headerless input.
type DatasetContract struct {
	Name   string
	Fields []Field
}

// HitContract is the BLAST tabular (-outfmt 6) column layout.
var HitContract = DatasetContract{
	Name: "blast outfmt 6",
	Fields: []Field{
		{Name: "qseqid", Type: TypeString},
		{Name: "sseqid", Type: TypeString},
		{Name: "pident", Type: TypeFloat},
		{Name: "length", Type: TypeInt},
		{Name: "mismatch", Type: TypeInt},
		{Name: "gapopen", Type: TypeInt},
		{Name: "qstart", Type: TypeInt},
		{Name: "qend", Type: TypeInt},
		{Name: "sstart", Type: TypeInt},
		{Name: "send", Type: TypeInt},
		{Name: "evalue", Type: TypeFloat},
		{Name: "bitscore", Type: TypeFloat},
	},
}

// Names returns the field names in order.
func (c DatasetContract) Names() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Field looks up a field by name.
func (c DatasetContract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Bind labels a headerless dataset with the contract's field names.
//
// The dataset must be exactly as wide as the contract; anything else is a
// *core.SchemaError pointing at the first row. An empty dataset binds to an
// empty table with the contract's columns.
func Bind(ds *table.Dataset, c DatasetContract) (*table.Dataset, error) {
	names := c.Names()
	if ds.Len() == 0 {
		return table.New(names, nil, table.WithSource(ds.Source()))
	}
	if ds.Width() != len(names) {
		return nil, &core.SchemaError{
			Source: ds.Source(),
			Line:   ds.Line(0),
			Reason: fmt.Sprintf("row has %d fields, want %d (%s)", ds.Width(), len(names), c.Name),
		}
	}
	return ds.Relabel(names)
}

// Float parses the cell at row i, column name as a float64.
//
// A missing column or a non-numeric cell is a *core.ParseError naming the row's line.
func Float(ds *table.Dataset, i int, name string) (float64, error) {
	raw, ok := ds.Value(i, name)
	if !ok {
		return 0, &core.MissingColumnError{Column: name, Available: ds.Columns()}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &core.ParseError{
			Source: ds.Source(),
			Line:   ds.Line(i),
			Column: name,
			Err:    fmt.Errorf("not a number: %q", raw),
		}
	}
	return v, nil
}
