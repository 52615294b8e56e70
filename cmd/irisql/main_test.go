package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/pthm/irisql/internal/cli"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/introspect"
	"github.com/pthm/irisql/internal/sqlgen"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		verbosity int
		quiet     bool
		enabled   slog.Level
		disabled  slog.Level
	}{
		{name: "default", enabled: slog.LevelWarn, disabled: slog.LevelInfo},
		{name: "verbose", verbosity: 1, enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{name: "very verbose", verbosity: 3, enabled: slog.LevelDebug, disabled: slog.LevelDebug - 4},
		{name: "quiet", verbosity: 2, quiet: true, enabled: slog.LevelError, disabled: slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLogger(tt.verbosity, tt.quiet)
			assert.True(t, l.Enabled(ctx, tt.enabled))
			assert.False(t, l.Enabled(ctx, tt.disabled))
		})
	}
}

func TestResolveString(t *testing.T) {
	assert.Equal(t, "flag", resolveString("flag", "config"))
	assert.Equal(t, "config", resolveString("", "config"))
	assert.Equal(t, "", resolveString("", ""))
}

func TestRenderDocumentSelect(t *testing.T) {
	path := writeDoc(t, "page.yaml", `
select:
  columns: [{col: p.id}, {col: p.name}]
  from: [{table: person, as: p}]
  where: {lookup: gt, left: {col: p.age}, right: {value: 18}}
  order_by: [{col: p.name}]
  offset: 3
  limit: 4
`)
	_, qs, err := renderDocument(path, dialect.Default(), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeQueries(&buf, qs, "sql"))
	assert.Equal(t,
		`SELECT * FROM (SELECT "p"."id", "p"."name", ROW_NUMBER() OVER (ORDER BY "p"."name" ASC) AS "row_number" FROM "person" "p" WHERE "p"."age" > ?) WHERE "row_number" BETWEEN 4 AND 7 ORDER BY "row_number";`+"\n"+
			"-- args: 18\n",
		buf.String())
}

func TestRenderDocumentTable(t *testing.T) {
	path := writeDoc(t, "tag.json", `{"table": {"name": "tag", "columns": [{"name": "id", "kind": "AutoField", "primary_key": true}]}}`)

	doc, qs, err := renderDocument(path, dialect.Default(), false)
	require.NoError(t, err)
	assert.True(t, doc.IsDDL())
	require.Len(t, qs, 1)
	assert.Equal(t,
		`CREATE TABLE "tag" ("id" INTEGER AUTO_INCREMENT NOT NULL PRIMARY KEY) WITH %CLASSPARAMETER ALLOWIDENTITYINSERT = 1`,
		qs[0].SQL)
	assert.Empty(t, qs[0].Args)
}

func TestRenderDocumentErrors(t *testing.T) {
	_, _, err := renderDocument(filepath.Join(t.TempDir(), "missing.yaml"), dialect.Default(), false)
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitRender, exitErr.Code)

	path := writeDoc(t, "bad.yaml", `
select:
  columns: [{col: id}]
  from: [{query: {columns: [{col: id}], from: [{table: person}]}}]
`)
	_, _, err = renderDocument(path, dialect.Default(), false)
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitRender, exitErr.Code)
}

func TestRenderTableRejectsStatements(t *testing.T) {
	path := writeDoc(t, "del.yaml", `delete: {table: person}`)
	doc, qs, err := renderDocument(path, dialect.Default(), false)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "person"`, qs[0].SQL)

	_, err = renderTable(doc, dialect.Default())
	assert.ErrorContains(t, err, "does not define a table")
}

func TestWriteQueriesYAML(t *testing.T) {
	qs := []sqlgen.Query{
		{SQL: `SELECT "name" FROM "person" WHERE "id" = ?`, Args: []any{int64(7)}},
		{SQL: `DELETE FROM "person"`},
	}
	var buf bytes.Buffer
	require.NoError(t, writeQueries(&buf, qs, "yaml"))

	var got []struct {
		SQL  string `json:"sql"`
		Args []any  `json:"args"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, qs[0].SQL, got[0].SQL)
	assert.Equal(t, []any{float64(7)}, got[0].Args)
	assert.Nil(t, got[1].Args)
}

func TestWriteQueriesUnknownFormat(t *testing.T) {
	err := writeQueries(&bytes.Buffer{}, nil, "csv")
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitConfig, exitErr.Code)
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, `NULL, "it's", 3, 2.5, true`, formatArgs([]any{nil, "it's", int64(3), 2.5, true}))
}

func TestWriteRows(t *testing.T) {
	var buf bytes.Buffer
	writeRows(&buf, [][]any{{int64(1), []byte("Ann"), nil}})
	assert.Equal(t, "1\tAnn\tNULL\n", buf.String())
}

func TestDescribeTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`ATTACH DATABASE ':memory:' AS information_schema`,
		`CREATE TABLE information_schema.COLUMNS (
			TABLE_SCHEMA TEXT, TABLE_NAME TEXT, COLUMN_NAME TEXT, DATA_TYPE TEXT,
			CHARACTER_MAXIMUM_LENGTH INTEGER, NUMERIC_PRECISION INTEGER, NUMERIC_SCALE INTEGER,
			IS_NULLABLE TEXT, AUTO_INCREMENT TEXT, ORDINAL_POSITION INTEGER)`,
		`CREATE TABLE information_schema.KEY_COLUMN_USAGE (
			TABLE_SCHEMA TEXT, TABLE_NAME TEXT, CONSTRAINT_NAME TEXT, COLUMN_NAME TEXT,
			REFERENCED_TABLE_NAME TEXT, REFERENCED_COLUMN_NAME TEXT, ORDINAL_POSITION INTEGER)`,
		`CREATE TABLE information_schema.TABLE_CONSTRAINTS (
			TABLE_SCHEMA TEXT, TABLE_NAME TEXT, CONSTRAINT_NAME TEXT, CONSTRAINT_TYPE TEXT)`,
		`CREATE TABLE information_schema.INDEXES (
			TABLE_SCHEMA TEXT, TABLE_NAME TEXT, INDEX_NAME TEXT, COLUMN_NAME TEXT,
			PRIMARY_KEY INTEGER, NON_UNIQUE INTEGER, ASC_OR_DESC TEXT, ORDINAL_POSITION INTEGER)`,
		`INSERT INTO information_schema.COLUMNS VALUES
			('SQLUser', 'pet', 'id', 'integer', NULL, 10, 0, 'NO', 'YES', 1),
			('SQLUser', 'pet', 'owner_id', 'integer', NULL, 10, 0, 'YES', 'NO', 2)`,
		`INSERT INTO information_schema.KEY_COLUMN_USAGE VALUES
			('SQLUser', 'pet', 'PETPKEY', 'id', NULL, NULL, 1),
			('SQLUser', 'pet', 'PETOWNER', 'owner_id', 'person', 'id', 1)`,
		`INSERT INTO information_schema.TABLE_CONSTRAINTS VALUES
			('SQLUser', 'pet', 'PETPKEY', 'PRIMARY KEY'),
			('SQLUser', 'pet', 'PETOWNER', 'FOREIGN KEY')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	ctx := context.Background()
	report, err := describeTable(ctx, introspect.New(db), "pet")
	require.NoError(t, err)
	assert.Equal(t, "SQLUser", report.Schema)
	assert.Equal(t, "id", report.PrimaryKey)
	require.Len(t, report.Fields, 2)
	assert.Equal(t, dialect.AutoField, report.Fields[0].Kind)
	assert.Equal(t, dialect.IntegerField, report.Fields[1].Kind)
	assert.Equal(t, introspect.Relation{Column: "id", Table: "person"}, report.Relations["owner_id"])
	assert.Equal(t, []introspect.Sequence{{Table: "pet", Column: "id"}}, report.Sequences)

	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, report))
	assert.Contains(t, buf.String(), "primary_key: id")
	assert.Contains(t, buf.String(), "kind: AutoField")

	_, err = describeTable(ctx, introspect.New(db), "missing")
	assert.ErrorContains(t, err, "table missing not found in schema SQLUser")
}
