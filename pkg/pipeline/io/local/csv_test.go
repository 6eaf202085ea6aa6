package local_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/io/local"
)

func TestLoad(t *testing.T) {
	t.Run("header supplies column names", func(t *testing.T) {
		in := "qseqid,depth,lat_lon\nS1,10,\"1,2\"\nS2,20,\"3,4\"\n"
		ds, err := local.Load(strings.NewReader(in), local.LoadOptions{Comma: ',', HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ds.Columns(); !reflect.DeepEqual(got, []string{"qseqid", "depth", "lat_lon"}) {
			t.Fatalf("unexpected columns: %#v", got)
		}
		if ds.Len() != 2 {
			t.Fatalf("expected 2 rows, got %d", ds.Len())
		}
		if got := ds.Row(0); !reflect.DeepEqual(got, []string{"S1", "10", "1,2"}) {
			t.Fatalf("unexpected row[0]: %#v", got)
		}
		if ds.Line(1) != 3 {
			t.Fatalf("row[1] line=%d want=3", ds.Line(1))
		}
	})

	t.Run("headerless gets positional names", func(t *testing.T) {
		in := "S1\tX\t95.0\nS2\tY\t80.0\n"
		ds, err := local.Load(strings.NewReader(in), local.LoadOptions{Comma: '\t'})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ds.Columns(); !reflect.DeepEqual(got, []string{"0", "1", "2"}) {
			t.Fatalf("unexpected columns: %#v", got)
		}
		if got := ds.Row(1); !reflect.DeepEqual(got, []string{"S2", "Y", "80.0"}) {
			t.Fatalf("unexpected row[1]: %#v", got)
		}
	})

	t.Run("quotes inside unquoted cells are literal", func(t *testing.T) {
		in := "qseqid,depth,lat_lon\nS1,10,40°26'46\"N 79°58'56\"W\nS2,20,\"1,2\"\n"
		ds, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := ds.Value(0, "lat_lon"); got != `40°26'46"N 79°58'56"W` {
			t.Fatalf("unexpected lat_lon[0]: %q", got)
		}
		if got, _ := ds.Value(1, "lat_lon"); got != "1,2" {
			t.Fatalf("unexpected lat_lon[1]: %q", got)
		}
	})

	t.Run("cells are not trimmed or converted", func(t *testing.T) {
		in := "id,v\n a ,007\n"
		ds, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ds.Row(0); !reflect.DeepEqual(got, []string{" a ", "007"}) {
			t.Fatalf("unexpected row: %#v", got)
		}
	})

	t.Run("utf-8 bom is dropped from first header", func(t *testing.T) {
		in := "\uFEFFseq_id,depth\nS1,10\n"
		ds, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ds.Has("seq_id") {
			t.Fatalf("expected seq_id column, got %#v", ds.Columns())
		}
	})

	t.Run("utf-16 with bom is transcoded", func(t *testing.T) {
		// "a,b\n1,2\n" as UTF-16LE with BOM.
		raw := []byte{0xFF, 0xFE}
		for _, c := range "a,b\n1,2\n" {
			raw = append(raw, byte(c), 0)
		}
		ds, err := local.Load(strings.NewReader(string(raw)), local.LoadOptions{HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ds.Row(0); !reflect.DeepEqual(got, []string{"1", "2"}) {
			t.Fatalf("unexpected row: %#v", got)
		}
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		in := "a,b\n\n1,2\n\n3,4\n"
		ds, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Len() != 2 || ds.Line(1) != 5 {
			t.Fatalf("unexpected rows=%d line=%d", ds.Len(), ds.Line(1))
		}
	})

	t.Run("empty headerless input is an empty dataset", func(t *testing.T) {
		ds, err := local.Load(strings.NewReader(""), local.LoadOptions{Comma: '\t'})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Len() != 0 || ds.Width() != 0 {
			t.Fatalf("expected empty dataset, got %dx%d", ds.Len(), ds.Width())
		}
	})

	t.Run("header only gives zero rows", func(t *testing.T) {
		ds, err := local.Load(strings.NewReader("qseqid,depth\n"), local.LoadOptions{HasHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ds.Len() != 0 || ds.Width() != 2 {
			t.Fatalf("expected 0 rows x 2 columns, got %dx%d", ds.Len(), ds.Width())
		}
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		_, err := local.Load(strings.NewReader(""), local.LoadOptions{HasHeader: true, Source: "meta.csv"})
		var pe *core.ParseError
		if !errors.As(err, &pe) || pe.Line != 1 || pe.Source != "meta.csv" {
			t.Fatalf("expected ParseError at meta.csv line 1, got %v", err)
		}
	})

	t.Run("short row against header", func(t *testing.T) {
		in := "a,b,c\n1,2,3\n4,5\n"
		_, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		var pe *core.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
		if pe.Line != 3 {
			t.Fatalf("line=%d want=3", pe.Line)
		}
	})

	t.Run("long row against first headerless row", func(t *testing.T) {
		in := "1\t2\n3\t4\n5\t6\t7\n"
		_, err := local.Load(strings.NewReader(in), local.LoadOptions{Comma: '\t'})
		var pe *core.ParseError
		if !errors.As(err, &pe) || pe.Line != 3 {
			t.Fatalf("expected ParseError at line 3, got %v", err)
		}
		if !strings.Contains(pe.Error(), "3 fields, want 2") {
			t.Fatalf("unexpected message: %q", pe.Error())
		}
	})

	t.Run("line numbers count quoted newlines", func(t *testing.T) {
		in := "a,b\n\"multi\nline\",2\n3\n"
		_, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		var pe *core.ParseError
		if !errors.As(err, &pe) || pe.Line != 4 {
			t.Fatalf("expected ParseError at line 4, got %v", err)
		}
	})

	t.Run("duplicate header names", func(t *testing.T) {
		in := "qseqid,depth,depth\nS1,1,2\n"
		_, err := local.Load(strings.NewReader(in), local.LoadOptions{HasHeader: true})
		var se *core.SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("expected SchemaError, got %v", err)
		}
		if se.Line != 1 {
			t.Fatalf("line=%d want=1", se.Line)
		}
	})
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hits.tsv")
	if err := os.WriteFile(path, []byte("S1\tX\t95.0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src := local.FileSource{Path: path}
	if src.Delimiter() != '\t' {
		t.Fatalf("expected inferred tab delimiter")
	}
	ds, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Width() != 3 || ds.Source() != path {
		t.Fatalf("unexpected dataset: width=%d source=%q", ds.Width(), ds.Source())
	}

	override := local.FileSource{Path: path, Comma: ','}
	ds, err = override.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Width() != 1 {
		t.Fatalf("expected one column with comma override, got %d", ds.Width())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
