package pipeline

import "github.com/palantir/blastomatic/pkg/pipeline/table"

const (
	// KeyColumn joins hits to metadata.
	KeyColumn = "qseqid"
	// AltKeyColumn is accepted on metadata in place of KeyColumn.
	AltKeyColumn = "seq_id"
)

// NormalizeKey renames a metadata seq_id column to qseqid when qseqid is absent.
//
// Any other dataset, including one with neither column, is returned unchanged;
// Join reports the missing key.
func NormalizeKey(meta *table.Dataset) (*table.Dataset, error) {
	if meta.Has(KeyColumn) || !meta.Has(AltKeyColumn) {
		return meta, nil
	}
	return meta.Rename(AltKeyColumn, KeyColumn)
}
