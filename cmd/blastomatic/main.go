package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/palantir/blastomatic/internal/app"
	"github.com/palantir/blastomatic/internal/config"
	"github.com/palantir/blastomatic/internal/logging"
	"github.com/palantir/blastomatic/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "blastomatic %s\n", version.Current)
		return 0
	case "annotate":
		return runAnnotate(ctx, args[1:], stdout, stderr, getenv)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func runAnnotate(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	defaults := config.Default()

	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath string
	var hits, annotations, outfile, delimiter string
	var hitsDelimiter, annotationsDelimiter string
	var pctid float64
	var columns string
	var sqlitePath, sqliteTable string
	var logFormat, logLevel string

	fs.StringVar(&configPath, "config", "", "Optional YAML config file")
	fs.StringVar(&hits, "hits", "", "BLAST -outfmt 6 file (env: BLASTOMATIC_HITS)")
	fs.StringVar(&hits, "b", "", "Shorthand for --hits")
	fs.StringVar(&annotations, "annotations", "", "Annotations file (env: BLASTOMATIC_ANNOTATIONS)")
	fs.StringVar(&annotations, "a", "", "Shorthand for --annotations")
	fs.StringVar(&outfile, "outfile", defaults.Output, "Output file (env: BLASTOMATIC_OUTPUT)")
	fs.StringVar(&outfile, "o", defaults.Output, "Shorthand for --outfile")
	fs.StringVar(&delimiter, "delimiter", defaults.Delimiter, `Output field delimiter; "," defers to the output extension (env: BLASTOMATIC_DELIMITER)`)
	fs.StringVar(&delimiter, "d", defaults.Delimiter, "Shorthand for --delimiter")
	fs.Float64Var(&pctid, "pctid", defaults.MinIdentity, "Minimum percent identity (env: BLASTOMATIC_PCTID)")
	fs.Float64Var(&pctid, "p", defaults.MinIdentity, "Shorthand for --pctid")
	fs.StringVar(&columns, "columns", "", "Comma-separated report columns (env: BLASTOMATIC_COLUMNS)")
	fs.StringVar(&hitsDelimiter, "hits-delimiter", "", "Override the delimiter inferred for the hits file")
	fs.StringVar(&annotationsDelimiter, "annotations-delimiter", "", "Override the delimiter inferred for the annotations file")
	fs.StringVar(&sqlitePath, "sqlite", "", "Also store the report in this SQLite database (env: BLASTOMATIC_SQLITE)")
	fs.StringVar(&sqliteTable, "sqlite-table", defaults.SQLiteTable, "SQLite table name (env: BLASTOMATIC_SQLITE_TABLE)")
	fs.StringVar(&logFormat, "log-format", defaults.LogFormat, "Log format: text|json (env: BLASTOMATIC_LOG_FORMAT)")
	fs.StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level: debug|info|warn|error (env: BLASTOMATIC_LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	cfg := defaults
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath, cfg); err != nil {
			_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
			return 2
		}
	}
	cfg, err := config.ApplyEnv(cfg, getenv)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}

	// Only flags given on the command line override file and environment values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hits", "b":
			cfg.Hits = hits
		case "annotations", "a":
			cfg.Annotations = annotations
		case "outfile", "o":
			cfg.Output = outfile
		case "delimiter", "d":
			cfg.Delimiter = delimiter
		case "pctid", "p":
			cfg.MinIdentity = pctid
		case "columns":
			cfg.Columns = config.SplitList(columns)
		case "hits-delimiter":
			cfg.HitsDelimiter = hitsDelimiter
		case "annotations-delimiter":
			cfg.AnnotationsDelimiter = annotationsDelimiter
		case "sqlite":
			cfg.SQLite = sqlitePath
		case "sqlite-table":
			cfg.SQLiteTable = sqliteTable
		case "log-format":
			cfg.LogFormat = logFormat
		case "log-level":
			cfg.LogLevel = logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}
	logger, err := logging.New(stderr, cfg.LogFormat, level)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config error: %s\n", err)
		return 2
	}

	res, err := app.RunLocal(ctx, cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "annotate failed: %s\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "Exported %d to %s.\n", res.Rows, strconv.Quote(res.Output))
	return 0
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `blastomatic: annotate BLAST hits with sample metadata

Usage:
  blastomatic <command> [flags]

Commands:
  annotate  Join a BLAST -outfmt 6 file with an annotations file
  version   Print the version
  help      Show this help

Examples:
  blastomatic annotate -b hits.tsv -a meta.csv -o out.csv -p 90
  blastomatic annotate --hits hits.tsv.gz --annotations meta.csv --outfile out.tsv --sqlite report.db

Input delimiters are inferred from file names: .tsv, .tab and .txt are
tab-delimited, everything else is comma-delimited. A trailing .gz or .zst is
decompressed transparently.

Environment:
  BLASTOMATIC_HITS, BLASTOMATIC_ANNOTATIONS, BLASTOMATIC_OUTPUT
  BLASTOMATIC_DELIMITER, BLASTOMATIC_HITS_DELIMITER, BLASTOMATIC_ANNOTATIONS_DELIMITER
  BLASTOMATIC_PCTID, BLASTOMATIC_COLUMNS
  BLASTOMATIC_SQLITE, BLASTOMATIC_SQLITE_TABLE
  BLASTOMATIC_LOG_FORMAT, BLASTOMATIC_LOG_LEVEL

`)
}
