package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/palantir/blastomatic/internal/config"
	"github.com/palantir/blastomatic/internal/pipeline"
	"github.com/palantir/blastomatic/pkg/pipeline/core"
	localio "github.com/palantir/blastomatic/pkg/pipeline/io/local"
	sqliteio "github.com/palantir/blastomatic/pkg/pipeline/io/sqlite"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// Result describes a completed run.
type Result struct {
	Rows   int
	Output string
	Stats  pipeline.Stats
}

// RunLocal annotates the hits file named in cfg with its metadata file and
// writes the report to cfg.Output (and to SQLite when cfg.SQLite is set).
//
// Both inputs are checked for existence before either is parsed.
func RunLocal(ctx context.Context, cfg config.Config, logger *slog.Logger) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	logger = logger.With("run", runID)
	runStart := time.Now()

	for _, p := range []string{cfg.Hits, cfg.Annotations} {
		if err := localio.Stat(p); err != nil {
			return Result{}, err
		}
	}

	hitsSrc := localio.FileSource{Path: cfg.Hits, Comma: cfg.HitsComma()}
	metaSrc := localio.FileSource{Path: cfg.Annotations, Comma: cfg.AnnotationsComma(), HasHeader: true}

	hits, err := load(ctx, logger, hitsSrc)
	if err != nil {
		return Result{}, err
	}
	meta, err := load(ctx, logger, metaSrc)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	report, err := pipeline.Annotate(hits, meta, pipeline.Options{
		MinIdentity: cfg.MinIdentity,
		Columns:     cfg.Columns,
	})
	if err != nil {
		return Result{}, err
	}
	logger.Info("annotated hits",
		"hits", report.Stats.Hits,
		"retained", report.Stats.Retained,
		"matched", report.Stats.Matched,
		"unmatched", report.Stats.Unmatched,
		"min_identity", cfg.MinIdentity,
	)

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	defer closeSinks()

	for _, s := range sinks {
		writeStart := time.Now()
		if err := s.out.Store(ctx, report.Data); err != nil {
			return Result{}, fmt.Errorf("store %s: %w", s.name, err)
		}
		logger.Debug("stored report", "sink", s.name, "rows", report.Data.Len(), "elapsed", time.Since(writeStart).Round(time.Millisecond))
	}

	logger.Info("run complete",
		"rows", report.Data.Len(),
		"output", cfg.Output,
		"elapsed", time.Since(runStart).Round(time.Millisecond),
	)
	return Result{Rows: report.Data.Len(), Output: cfg.Output, Stats: report.Stats}, nil
}

func load(ctx context.Context, logger *slog.Logger, src localio.FileSource) (*table.Dataset, error) {
	start := time.Now()
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded input",
		"source", src.Path,
		"delimiter", string(src.Delimiter()),
		"rows", ds.Len(),
		"columns", ds.Width(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return ds, nil
}

type namedSink struct {
	name string
	out  core.OutputAdapter[*table.Dataset]
}

// openSinks returns the configured outputs in publish order. SQLite commits
// before the output file is renamed into place, so a failed database write
// leaves no output file behind.
func openSinks(ctx context.Context, cfg config.Config) ([]namedSink, func(), error) {
	file := namedSink{
		name: cfg.Output,
		out:  localio.FileSink{Path: cfg.Output, Delimiter: cfg.OutputDelimiter()},
	}
	if cfg.SQLite == "" {
		return []namedSink{file}, func() {}, nil
	}
	db, err := sqliteio.Open(ctx, cfg.SQLite, cfg.SQLiteTable)
	if err != nil {
		return nil, nil, err
	}
	sinks := []namedSink{{name: cfg.SQLite + "#" + db.Table, out: db}, file}
	return sinks, func() { _ = db.Close() }, nil
}
