package core

import (
	"fmt"
	"io/fs"
	"strings"
)

// NotFoundError reports an input path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "no such file or directory"
	}
	return fmt.Sprintf("no such file or directory: %q", e.Path)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match.
func (e *NotFoundError) Unwrap() error {
	return fs.ErrNotExist
}

// ParseError reports a row that could not be read or interpreted.
//
// Line is the 1-based physical line of the record in Source. Column is set
// when a single cell was at fault (e.g. a non-numeric identity value).
type ParseError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	parts := []string{"parse error"}
	parts = append(parts, location(e.Source, e.Line)...)
	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", e.Column))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SchemaError reports input whose shape does not fit the expected schema:
// a hit row that is not exactly the bound width, or a header with duplicate
// column names.
type SchemaError struct {
	Source string
	Line   int
	Reason string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "schema error"
	}
	parts := []string{"schema error"}
	parts = append(parts, location(e.Source, e.Line)...)
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, ": ")
}

// MissingKeyError reports a metadata dataset without any accepted join key column.
type MissingKeyError struct {
	Source string
	// Accepted lists the column names that would have been used as the key.
	Accepted []string
}

func (e *MissingKeyError) Error() string {
	if e == nil {
		return "missing join key"
	}
	msg := fmt.Sprintf("missing join key: expected one of columns %s", quoteAll(e.Accepted))
	if e.Source != "" {
		msg += " in " + e.Source
	}
	return msg
}

// MissingColumnError reports a requested output column that the merged data does not have.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	if e == nil {
		return "missing column"
	}
	msg := fmt.Sprintf("missing column %q", e.Column)
	if len(e.Available) > 0 {
		msg += " (available: " + strings.Join(e.Available, ", ") + ")"
	}
	return msg
}

func location(source string, line int) []string {
	var out []string
	if source != "" {
		out = append(out, source)
	}
	if line > 0 {
		out = append(out, fmt.Sprintf("line %d", line))
	}
	return out
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, " or ")
}
