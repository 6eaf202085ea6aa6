// Package sqlite stores report datasets in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/palantir/blastomatic/pkg/pipeline/core"
	"github.com/palantir/blastomatic/pkg/pipeline/table"
)

// DefaultTable is the table Open selects when given an empty name.
const DefaultTable = "annotated_hits"

// Sink writes a Dataset into one table, replacing its previous contents.
//
// Every column is stored as TEXT so cell values round-trip unchanged.
type Sink struct {
	db    *sql.DB
	Table string
}

var _ core.OutputAdapter[*table.Dataset] = (*Sink)(nil)

// Open opens (creating if needed) the SQLite database at dsn. An empty
// tableName selects DefaultTable.
func Open(ctx context.Context, dsn string, tableName string) (*Sink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if tableName == "" {
		tableName = DefaultTable
	}
	return &Sink{db: db, Table: tableName}, nil
}

func (s *Sink) Close() error { return s.db.Close() }

// DB exposes the underlying handle, mainly for inspection in tests.
func (s *Sink) DB() *sql.DB { return s.db }

// Store drops and recreates the table, then inserts all rows in one transaction.
func (s *Sink) Store(ctx context.Context, ds *table.Dataset) error {
	if ds.Width() == 0 {
		return errors.New("sqlite: cannot store a dataset without columns")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlIdent(s.Table)); err != nil {
		return fmt.Errorf("drop table %s: %w", s.Table, err)
	}
	if _, err := tx.ExecContext(ctx, buildCreateSQL(s.Table, ds.Columns())); err != nil {
		return fmt.Errorf("create table %s: %w", s.Table, err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertSQL(s.Table, ds.Columns()))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", s.Table, err)
	}
	defer stmt.Close()

	args := make([]any, ds.Width())
	for i := 0; i < ds.Len(); i++ {
		for c, v := range ds.Row(i) {
			args[c] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", i+1, s.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", s.Table, err)
	}
	return nil
}

func buildCreateSQL(name string, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(sqlIdent(name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	return b.String()
}

func buildInsertSQL(name string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = sqlIdent(c)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(columns)), ",")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", sqlIdent(name), strings.Join(quoted, ", "), ph)
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
