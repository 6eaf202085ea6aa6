// Package delim picks field delimiters for delimited text files from their names.
package delim

import (
	"path/filepath"
	"strings"
)

const (
	// Default is the delimiter used when nothing else applies, and the value the
	// CLI passes when the caller did not pick an output delimiter.
	Default rune = ','
	Tab     rune = '\t'
)

// tabExtensions lists the extensions (lower-case, with dot) treated as tab-separated.
var tabExtensions = map[string]struct{}{
	".tsv": {},
	".tab": {},
	".txt": {},
}

// compressionSuffixes are stripped before looking at the extension.
var compressionSuffixes = []string{".gz", ".zst"}

// Infer returns the delimiter implied by filename's extension.
//
// Only the name is inspected, never the file contents.
func Infer(filename string) rune {
	name := strings.ToLower(filepath.Base(filename))
	for _, suffix := range compressionSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			name = trimmed
			break
		}
	}
	if _, ok := tabExtensions[filepath.Ext(name)]; ok {
		return Tab
	}
	return Default
}

// ForOutput resolves the delimiter for an output file.
//
// A requested delimiter equal to Default is treated as "not chosen" and the
// delimiter is re-inferred from filename. Any other value is used verbatim, so
// asking for ',' explicitly on a .tsv output still yields tabs.
func ForOutput(requested rune, filename string) rune {
	if requested == Default {
		return Infer(filename)
	}
	return requested
}

// Parse converts a configured delimiter string to a rune.
//
// Accepts a single character or the escapes `\t` and "tab".
func Parse(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return Tab, true
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '\r' || r[0] == '\n' || r[0] == '"' {
		return 0, false
	}
	return r[0], true
}
