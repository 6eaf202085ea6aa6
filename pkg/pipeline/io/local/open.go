package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
)

// Compression identifies the stream codec implied by a file name.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// CompressionFor returns the codec implied by path's final extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Stat reports a *core.NotFoundError unless path names an existing regular file.
func Stat(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &core.NotFoundError{Path: path}
		}
		return err
	}
	if fi.IsDir() {
		return &core.NotFoundError{Path: path}
	}
	return nil
}

// Open opens a local input file, decompressing .gz and .zst files on the fly.
func Open(path string) (io.ReadCloser, error) {
	if err := Stat(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch CompressionFor(path) {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		return &stackedReadCloser{Reader: zr, close: []func() error{zr.Close, f.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open zstd %s: %w", path, err)
		}
		return &stackedReadCloser{Reader: zr, close: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

// stackedReadCloser closes a decoder and then the file beneath it.
type stackedReadCloser struct {
	io.Reader
	close []func() error
}

func (s *stackedReadCloser) Close() error {
	var errs []error
	for _, c := range s.close {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
