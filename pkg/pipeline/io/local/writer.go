package local

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/delim"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// Write writes ds as delimited text: one header line, then one line per row.
//
// Cells are written exactly as stored, so numeric text keeps its precision.
// Fields containing the delimiter, quotes or newlines are quoted.
func Write(w io.Writer, ds *table.Dataset, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(ds.Columns()); err != nil {
		return err
	}
	for i := 0; i < ds.Len(); i++ {
		if err := cw.Write(ds.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileSink writes a Dataset to a local file.
type FileSink struct {
	Path string
	// Delimiter is the requested output delimiter. delim.Default (or zero)
	// means "infer from Path"; see delim.ForOutput.
	Delimiter rune
}

// Comma returns the delimiter Store will write with.
func (s FileSink) Comma() rune {
	requested := s.Delimiter
	if requested == 0 {
		requested = delim.Default
	}
	return delim.ForOutput(requested, s.Path)
}

// Store writes ds to Path. The file only appears once it is completely written.
func (s FileSink) Store(ctx context.Context, ds *table.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	comma := s.Comma()
	return WriteFileAtomic(s.Path, func(w io.Writer) error {
		return Write(w, ds, comma)
	})
}

// WriteFileAtomic calls write with a temporary file in path's directory and
// renames it onto path only if write and the flush to disk succeed. A .gz or
// .zst path is compressed accordingly.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := writeCompressed(bw, CompressionFor(path), write); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, publishMode(path)); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

// publishMode keeps the permissions of a file being replaced. New files get
// 0644 regardless of the umask.
func publishMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		return fi.Mode().Perm()
	}
	return 0o644
}

func writeCompressed(w io.Writer, c Compression, write func(io.Writer) error) error {
	switch c {
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		if err := write(zw); err != nil {
			return err
		}
		return zw.Close()
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := write(zw); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	default:
		return write(w)
	}
}

var (
	_ core.InputAdapter[*table.Dataset]  = FileSource{}
	_ core.OutputAdapter[*table.Dataset] = FileSink{}
)
