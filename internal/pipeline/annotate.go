package pipeline

import (
	"fmt"
	"math"

	"github.com/palantir/blastomatic/pkg/pipeline/schema"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

type Options struct {
	// MinIdentity is the inclusive pident threshold. Zero keeps every hit with a numeric pident.
	MinIdentity float64
	// Columns is the report header. Empty means DefaultColumns().
	Columns []string
}

// Stats summarizes one Annotate run.
type Stats struct {
	Hits      int
	Retained  int
	Matched   int
	Unmatched int
	Rows      int
}

// Report is the annotated output of one run.
type Report struct {
	Data  *table.Dataset
	Stats Stats
}

// Annotate binds headerless hit rows to the BLAST schema, drops hits below the
// identity threshold, left-joins the rest with metadata, and projects the
// report columns.
//
// Filtering happens before the join, so dropped hits never meet metadata.
func Annotate(rawHits, meta *table.Dataset, opts Options) (Report, error) {
	if math.IsNaN(opts.MinIdentity) {
		return Report{}, fmt.Errorf("minimum identity must be a number")
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = DefaultColumns()
	}

	hits, err := schema.Bind(rawHits, schema.HitContract)
	if err != nil {
		return Report{}, err
	}
	kept, err := FilterIdentity(hits, opts.MinIdentity)
	if err != nil {
		return Report{}, err
	}
	meta, err = NormalizeKey(meta)
	if err != nil {
		return Report{}, err
	}
	joined, err := Join(kept, meta)
	if err != nil {
		return Report{}, err
	}
	out, err := Project(joined, columns)
	if err != nil {
		return Report{}, err
	}

	matched := joined.Matched()
	return Report{
		Data: out,
		Stats: Stats{
			Hits:      hits.Len(),
			Retained:  kept.Len(),
			Matched:   matched,
			Unmatched: joined.Len() - matched,
			Rows:      out.Len(),
		},
	}, nil
}
