package pipeline

import (
	"slices"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// Column name suffixes for a non-key column present on both sides of the join.
const (
	HitSuffix  = "_x"
	MetaSuffix = "_y"
)

// Merged pairs one hit row with one metadata row. Meta is nil when the hit had
// no metadata.
type Merged struct {
	Hit  []string
	Meta []string
}

// Joined is the result of a left-outer join of hits with metadata.
//
// Its schema is every hit column followed by every metadata column except the
// key. A non-key name found on both sides is suffixed with HitSuffix and
// MetaSuffix respectively.
type Joined struct {
	columns []string
	lookup  map[string]cellRef
	records []Merged
}

type cellRef struct {
	meta bool
	idx  int
}

// Columns returns the merged column names in order.
func (j *Joined) Columns() []string { return slices.Clone(j.columns) }

// Len returns the number of merged records.
func (j *Joined) Len() int { return len(j.records) }

// Record returns merged record i. The returned slices must not be modified.
func (j *Joined) Record(i int) Merged { return j.records[i] }

// Matched counts the records that carry a metadata row.
func (j *Joined) Matched() int {
	n := 0
	for _, r := range j.records {
		if r.Meta != nil {
			n++
		}
	}
	return n
}

// Join left-outer joins hits with meta on qseqid.
//
// Metadata rows are indexed by key in file order. Each hit, in order, yields
// one record per metadata row with an equal key (so duplicate metadata keys
// multiply the hit), or a single record with no metadata when none match.
// Keys compare as exact strings. meta must already carry qseqid (see
// NormalizeKey); without it Join returns a *core.MissingKeyError.
func Join(hits, meta *table.Dataset) (*Joined, error) {
	metaKey := meta.Index(KeyColumn)
	if metaKey < 0 {
		return nil, &core.MissingKeyError{Source: meta.Source(), Accepted: []string{KeyColumn, AltKeyColumn}}
	}
	hitKey := hits.Index(KeyColumn)
	if hitKey < 0 {
		return nil, &core.MissingKeyError{Source: hits.Source(), Accepted: []string{KeyColumn}}
	}

	j := &Joined{lookup: make(map[string]cellRef)}
	j.buildSchema(hits.Columns(), meta.Columns(), metaKey)

	metaRows := meta.Rows()
	index := make(map[string][]int, len(metaRows))
	for i, row := range metaRows {
		k := row[metaKey]
		index[k] = append(index[k], i)
	}

	j.records = make([]Merged, 0, hits.Len())
	for i := 0; i < hits.Len(); i++ {
		hit := hits.Row(i)
		matches := index[hit[hitKey]]
		if len(matches) == 0 {
			j.records = append(j.records, Merged{Hit: hit})
			continue
		}
		for _, m := range matches {
			j.records = append(j.records, Merged{Hit: hit, Meta: metaRows[m]})
		}
	}
	return j, nil
}

func (j *Joined) buildSchema(hitCols, metaCols []string, metaKey int) {
	inMeta := make(map[string]bool, len(metaCols))
	for i, c := range metaCols {
		if i != metaKey {
			inMeta[c] = true
		}
	}
	inHits := make(map[string]bool, len(hitCols))
	for _, c := range hitCols {
		inHits[c] = true
	}

	for i, c := range hitCols {
		name := c
		if c != KeyColumn && inMeta[c] {
			name = c + HitSuffix
		}
		j.add(name, cellRef{idx: i})
	}
	for i, c := range metaCols {
		if i == metaKey {
			continue
		}
		name := c
		if inHits[c] {
			name = c + MetaSuffix
		}
		j.add(name, cellRef{meta: true, idx: i})
	}
}

func (j *Joined) add(name string, ref cellRef) {
	if _, taken := j.lookup[name]; taken {
		// A suffixed name collided with a literal one; the first wins.
		return
	}
	j.columns = append(j.columns, name)
	j.lookup[name] = ref
}
