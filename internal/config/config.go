// Package config resolves run configuration from defaults, an optional YAML
// file, and BLASTOMATIC_* environment variables. Command-line flags are applied
// on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palantir/blastomatic/internal/pipeline"
	"github.com/palantir/blastomatic/pkg/pipeline/delim"
	sqliteio "github.com/palantir/blastomatic/pkg/pipeline/io/sqlite"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "BLASTOMATIC_"

// Config is the full configuration of one annotate run.
type Config struct {
	Hits        string `yaml:"hits"`
	Annotations string `yaml:"annotations"`
	Output      string `yaml:"output"`

	// Delimiter is the requested output delimiter. The default "," defers to
	// the output file extension.
	Delimiter string `yaml:"delimiter"`
	// HitsDelimiter and AnnotationsDelimiter override the delimiter inferred
	// from the input file names when set.
	HitsDelimiter        string `yaml:"hits_delimiter"`
	AnnotationsDelimiter string `yaml:"annotations_delimiter"`

	MinIdentity float64  `yaml:"min_identity"`
	Columns     []string `yaml:"columns"`

	// SQLite, when set, also stores the report in this SQLite database.
	SQLite      string `yaml:"sqlite"`
	SQLiteTable string `yaml:"sqlite_table"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Output:      "out.csv",
		Delimiter:   string(delim.Default),
		MinIdentity: 0,
		Columns:     pipeline.DefaultColumns(),
		SQLiteTable: sqliteio.DefaultTable,
		LogFormat:   "text",
		LogLevel:    "info",
	}
}

// LoadFile overlays the YAML document at path onto base. Unknown keys are an error.
func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(b, base)
}

// Parse overlays a YAML document onto base.
func Parse(b []byte, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config YAML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays BLASTOMATIC_* variables read through getenv onto cfg.
// Empty variables are ignored.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	str("HITS", &cfg.Hits)
	str("ANNOTATIONS", &cfg.Annotations)
	str("OUTPUT", &cfg.Output)
	str("SQLITE", &cfg.SQLite)
	str("SQLITE_TABLE", &cfg.SQLiteTable)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("LOG_LEVEL", &cfg.LogLevel)

	// Delimiters may legitimately be a tab, so they are not trimmed.
	raw := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	raw("DELIMITER", &cfg.Delimiter)
	raw("HITS_DELIMITER", &cfg.HitsDelimiter)
	raw("ANNOTATIONS_DELIMITER", &cfg.AnnotationsDelimiter)

	minIdentity, err := envFloat(getenv, EnvPrefix+"PCTID", cfg.MinIdentity)
	if err != nil {
		return Config{}, err
	}
	cfg.MinIdentity = minIdentity

	if v := strings.TrimSpace(getenv(EnvPrefix + "COLUMNS")); v != "" {
		cfg.Columns = SplitList(v)
	}
	return cfg, nil
}

func envFloat(getenv func(string) string, varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first problem that would stop a run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Hits) == "" {
		return errors.New("hits file is required")
	}
	if strings.TrimSpace(c.Annotations) == "" {
		return errors.New("annotations file is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output file is required")
	}
	if _, ok := delim.Parse(c.Delimiter); !ok {
		return fmt.Errorf("invalid delimiter %q: must be a single character", c.Delimiter)
	}
	for _, in := range []struct{ name, v string }{
		{"hits delimiter", c.HitsDelimiter},
		{"annotations delimiter", c.AnnotationsDelimiter},
	} {
		if in.v == "" {
			continue
		}
		if _, ok := delim.Parse(in.v); !ok {
			return fmt.Errorf("invalid %s %q: must be a single character", in.name, in.v)
		}
	}
	if math.IsNaN(c.MinIdentity) || math.IsInf(c.MinIdentity, 0) {
		return fmt.Errorf("invalid minimum identity %v", c.MinIdentity)
	}
	if len(c.Columns) == 0 {
		return errors.New("at least one output column is required")
	}
	if c.SQLite != "" && strings.TrimSpace(c.SQLiteTable) == "" {
		return errors.New("sqlite table name is required when sqlite output is enabled")
	}
	return nil
}

// OutputDelimiter returns the requested output delimiter.
func (c Config) OutputDelimiter() rune {
	r, ok := delim.Parse(c.Delimiter)
	if !ok {
		return delim.Default
	}
	return r
}

// HitsComma returns the hits delimiter override, or 0 to infer it.
func (c Config) HitsComma() rune { return optionalDelim(c.HitsDelimiter) }

// AnnotationsComma returns the annotations delimiter override, or 0 to infer it.
func (c Config) AnnotationsComma() rune { return optionalDelim(c.AnnotationsDelimiter) }

func optionalDelim(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := delim.Parse(s)
	return r
}
