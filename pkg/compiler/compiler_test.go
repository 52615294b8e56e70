package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/irisql/pkg/compiler"
)

func TestRenderSelectWindow(t *testing.T) {
	r := compiler.New(compiler.DefaultDialect())
	q, err := r.RenderSelect(&compiler.Select{
		Columns: []compiler.SelectItem{compiler.Item(compiler.C("p", "name"))},
		From:    []compiler.From{compiler.T("person", "p")},
		OrderBy: []compiler.OrderBy{compiler.Asc(compiler.C("p", "name"))},
		Window:  compiler.Window{Low: 3, High: compiler.Mark(7)},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM (SELECT "p"."name", ROW_NUMBER() OVER (ORDER BY "p"."name" ASC) AS "row_number" FROM "person" "p") WHERE "row_number" BETWEEN 4 AND 7 ORDER BY "row_number"`,
		q.SQL)
	assert.Empty(t, q.Args)
}

func TestDocumentAndEditor(t *testing.T) {
	doc, err := compiler.ParseDocument([]byte(`{"table": {"name": "tag", "columns": [{"name": "id", "kind": "AutoField", "primary_key": true}]}}`))
	require.NoError(t, err)

	stmts, err := doc.RenderTable(compiler.NewEditor(compiler.DefaultDialect()))
	require.NoError(t, err)
	assert.Equal(t, []string{
		`CREATE TABLE "tag" ("id" INTEGER AUTO_INCREMENT NOT NULL PRIMARY KEY) WITH %CLASSPARAMETER ALLOWIDENTITYINSERT = 1`,
	}, stmts)
}

func TestAdapt(t *testing.T) {
	v, err := compiler.Adapt(true, compiler.CodecOptions(compiler.DefaultDialect()))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
