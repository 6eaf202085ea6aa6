package pipeline

import (
	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// DefaultColumns returns the stable report header.
func DefaultColumns() []string {
	return []string{
		"qseqid",
		"pident",
		"depth",
		"lat_lon",
	}
}

// Project selects columns from the joined records, in the given order.
//
// Metadata cells of unmatched hits are empty. A column that is not part of the
// merged schema is a *core.MissingColumnError; naming a column twice is a
// *core.SchemaError.
func Project(j *Joined, columns []string) (*table.Dataset, error) {
	refs := make([]cellRef, len(columns))
	for i, c := range columns {
		ref, ok := j.lookup[c]
		if !ok {
			return nil, &core.MissingColumnError{Column: c, Available: j.Columns()}
		}
		refs[i] = ref
	}

	rows := make([][]string, len(j.records))
	for r, rec := range j.records {
		row := make([]string, len(refs))
		for i, ref := range refs {
			switch {
			case !ref.meta:
				row[i] = rec.Hit[ref.idx]
			case rec.Meta != nil:
				row[i] = rec.Meta[ref.idx]
			}
		}
		rows[r] = row
	}
	return table.New(columns, rows)
}
