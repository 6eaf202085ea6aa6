package local

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/delim"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// LoadOptions controls how Load splits delimited text.
type LoadOptions struct {
	// Comma is the field delimiter. Zero means delim.Default.
	Comma rune
	// HasHeader makes the first record supply the column names.
	HasHeader bool
	// Source names the input in error messages.
	Source string
}

// Load reads delimited text into a Dataset.
//
// A field that opens with a quote is read as a quoted field, so it may hold the
// delimiter. A quote anywhere else is kept as a literal character, as in
// 40°26'46"N. Cells are kept exactly as read: no trimming
// and no type conversion. Every record must have as many fields as the header
// (or, without a header, as the first record); the first one that does not is
// reported as a *core.ParseError with its 1-based line. Headerless datasets get
// the positional column names "0", "1", ...
//
// A UTF-8 byte-order mark is dropped and BOM-marked UTF-16 is transcoded.
func Load(r io.Reader, opts LoadOptions) (*table.Dataset, error) {
	comma := opts.Comma
	if comma == 0 {
		comma = delim.Default
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		header     []string
		headerLine int
		rows       [][]string
		lines      []int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(opts.Source, err)
		}
		line, _ := cr.FieldPos(0)

		if opts.HasHeader && header == nil {
			header = rec
			headerLine = line
			continue
		}

		want := len(header)
		if !opts.HasHeader && len(rows) > 0 {
			want = len(rows[0])
		}
		if (opts.HasHeader || len(rows) > 0) && len(rec) != want {
			return nil, &core.ParseError{
				Source: opts.Source,
				Line:   line,
				Err:    fmt.Errorf("row has %d fields, want %d", len(rec), want),
			}
		}
		rows = append(rows, rec)
		lines = append(lines, line)
	}

	if opts.HasHeader && header == nil {
		return nil, &core.ParseError{Source: opts.Source, Line: 1, Err: errors.New("missing header row")}
	}
	if !opts.HasHeader {
		header = positionalColumns(rows)
	}

	ds, err := table.New(header, rows, table.WithSource(opts.Source), table.WithLines(lines))
	if err != nil {
		var se *core.SchemaError
		if errors.As(err, &se) && se.Line == 0 {
			se.Line = headerLine
		}
		return nil, err
	}
	return ds, nil
}

func positionalColumns(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, len(rows[0]))
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	return cols
}

func readError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &core.ParseError{Source: source, Line: pe.Line, Err: pe.Err}
	}
	if source != "" {
		return fmt.Errorf("read %s: %w", source, err)
	}
	return fmt.Errorf("read: %w", err)
}

// FileSource loads a Dataset from a local file.
type FileSource struct {
	Path string
	// Comma overrides the delimiter inferred from Path when non-zero.
	Comma     rune
	HasHeader bool
}

// Delimiter returns the delimiter Load will use for the file.
func (s FileSource) Delimiter() rune {
	if s.Comma != 0 {
		return s.Comma
	}
	return delim.Infer(s.Path)
}

func (s FileSource) Load(ctx context.Context) (*table.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	return Load(rc, LoadOptions{
		Comma:     s.Delimiter(),
		HasHeader: s.HasHeader,
		Source:    s.Path,
	})
}
