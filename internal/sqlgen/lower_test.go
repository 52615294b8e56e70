package sqlgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/dialect"
)

// assertGolden compares rendered statements with testdata/golden/<name>.golden.
// Run with -update to regenerate.
func assertGolden(t *testing.T, name string, queries ...Query) {
	t.Helper()

	var sb strings.Builder
	for _, q := range queries {
		require.NoError(t, q.Validate())
		fmt.Fprintf(&sb, "%s\n-- args: %v\n", q.SQL, q.Args)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sb.String()))
}

// personQuery is SELECT p.id, p.name FROM person p WHERE p.age > 18 ORDER BY p.name.
func personQuery() *Select {
	return &Select{
		Columns: []SelectItem{Item(C("p", "id")), Item(C("p", "name"))},
		From:    []From{T("person", "p")},
		Where:   Cmp(Gt, C("p", "age"), V(18)),
		OrderBy: []OrderBy{Asc(C("p", "name"))},
	}
}

func TestRenderSelectGolden(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		build func() *Select
	}{
		{
			name:  "select_plain",
			build: personQuery,
		},
		{
			name: "select_top",
			build: func() *Select {
				s := personQuery()
				s.Window = Window{High: Mark(5)}
				return s
			},
		},
		{
			name: "select_distinct_top",
			build: func() *Select {
				s := personQuery()
				s.Distinct = true
				s.Window = Window{High: Mark(10)}
				return s
			},
		},
		{
			name: "select_offset",
			build: func() *Select {
				s := personQuery()
				s.Window = Window{Low: 3, High: Mark(7)}
				return s
			},
		},
		{
			name: "select_offset_unbounded",
			build: func() *Select {
				s := personQuery()
				s.Window = Window{Low: 10}
				return s
			},
		},
		{
			name: "select_offset_first_column",
			build: func() *Select {
				return &Select{
					Columns: []SelectItem{
						As(Concat{Args: []Expr{C("p", "name"), V("!")}}, "shout"),
						Item(C("p", "id")),
					},
					From:   []From{T("person", "p")},
					Window: Window{Low: 2, High: Mark(4)},
				}
			},
		},
		{
			name: "select_subquery_reprojection",
			build: func() *Select {
				return &Select{
					Distinct:    true,
					Columns:     []SelectItem{Item(C("p", "id"))},
					ExtraSelect: []SelectItem{Item(C("p", "name"))},
					From:        []From{T("person", "p")},
					OrderBy:     []OrderBy{Asc(C("p", "name"))},
					Window:      Window{Low: 5, High: Mark(10)},
					Subquery:    true,
				}
			},
		},
		{
			name: "select_col_aliases",
			opts: []Option{WithColAliases(true)},
			build: func() *Select {
				return &Select{
					Columns:     []SelectItem{Item(C("p", "id")), As(C("p", "name"), "n")},
					ExtraSelect: []SelectItem{Item(C("p", "age"))},
					From:        []From{T("person", "p")},
					OrderBy:     []OrderBy{Desc(C("p", "age"))},
					Subquery:    true,
				}
			},
		},
		{
			name: "select_group_having",
			build: func() *Select {
				count := F("COUNT", Star{})
				return &Select{
					Columns: []SelectItem{Item(C("p", "city")), As(count, "total")},
					From:    []From{T("person", "p")},
					GroupBy: []Expr{C("p", "city")},
					Having:  Cmp(Gt, count, V(2)),
					OrderBy: []OrderBy{Desc(count)},
					Window:  Window{High: Mark(3)},
				}
			},
		},
		{
			name: "select_join_exists",
			build: func() *Select {
				return &Select{
					Columns: []SelectItem{
						Item(C("p", "name")),
						As(Exists{Query: petSubquery()}, "has_pet"),
					},
					From: []From{T("person", "p")},
					Joins: []Join{{
						Kind:   LeftJoin,
						Source: T("city", "c"),
						On:     Eq(C("c", "id"), C("p", "city_id")),
					}},
					Where: Eq(C("c", "name"), V("Boston")),
				}
			},
		},
		{
			name: "select_explain",
			build: func() *Select {
				s := personQuery()
				s.Explain = true
				s.Window = Window{Low: 1, High: Mark(2)}
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(dialect.Default(), tt.opts...)
			q, err := r.RenderSelect(tt.build())
			require.NoError(t, err)
			assertGolden(t, tt.name, q)
		})
	}
}

func TestRenderInsertGolden(t *testing.T) {
	r := New(dialect.Default())

	qs, err := r.RenderInsert(&Insert{
		Table:   "person",
		Columns: []string{"name", "age"},
		Rows: [][]Expr{
			{V("Ann"), V(30)},
			{V("Bob"), V(41)},
		},
	})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assertGolden(t, "insert_rows", qs...)

	qs, err = r.RenderInsert(&Insert{Table: "person", PK: "id"})
	require.NoError(t, err)
	assertGolden(t, "insert_default_values", qs...)
}

func TestRenderInsertBulk(t *testing.T) {
	cfg := dialect.Default()
	cfg.SupportsBulkInsert = true

	qs, err := New(cfg).RenderInsert(&Insert{
		Table:   "person",
		Columns: []string{"name"},
		Rows:    [][]Expr{{V("a")}, {V("b")}},
	})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, `INSERT INTO "person" ("name") VALUES (?), (?)`, qs[0].SQL)
	assert.Equal(t, []any{"a", "b"}, qs[0].Args)
}

func TestRenderInsertErrors(t *testing.T) {
	r := New(dialect.Default())

	_, err := r.RenderInsert(&Insert{Table: "person"})
	assert.ErrorContains(t, err, "primary key")

	_, err = r.RenderInsert(&Insert{Table: "person", Columns: []string{"a", "b"}, Rows: [][]Expr{{V(1)}}})
	assert.ErrorContains(t, err, "1 values for 2 columns")

	_, err = r.RenderInsert(&Insert{Table: "app.person", PK: "id"})
	assert.True(t, irisql.IsInvalidIdentifierErr(err))
}

func TestRenderUpdateGolden(t *testing.T) {
	r := New(dialect.Default())

	q, err := r.RenderUpdate(&Update{
		Table: "person",
		Set: []Assignment{
			{Column: "name", Value: V("Ann")},
			{Column: "active", Value: Eq(C("", "age"), V(18))},
		},
		Where:   Eq(C("", "id"), V(7)),
		NoCheck: true,
	})
	require.NoError(t, err)
	assertGolden(t, "update_nocheck", q)

	q, err = r.RenderUpdate(&Update{Table: "person", Set: []Assignment{{Column: "age", Value: V(1)}}})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "person" SET "age" = ?`, q.SQL)

	_, err = r.RenderUpdate(&Update{Table: "person"})
	assert.Error(t, err)
}

func TestRenderDeleteGolden(t *testing.T) {
	r := New(dialect.Default())

	q, err := r.RenderDelete(&Delete{Table: "person", Where: Cmp(In, C("", "id"), Values(1, 2))})
	require.NoError(t, err)
	assertGolden(t, "delete", q)

	q, err = r.RenderDelete(&Delete{Table: "person"})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "person"`, q.SQL)
}

func TestRenderAggregateGolden(t *testing.T) {
	r := New(dialect.Default())

	q, err := r.RenderAggregate(&Aggregate{
		Inner: &Select{
			Columns: []SelectItem{Item(C("p", "age"))},
			From:    []From{T("person", "p")},
			Window:  Window{Low: 2, High: Mark(5)},
		},
		Columns: []SelectItem{As(F("AVG", C("subquery", "age")), "avg_age")},
	})
	require.NoError(t, err)
	assertGolden(t, "aggregate", q)

	_, err = r.RenderAggregate(&Aggregate{Inner: personQuery()})
	assert.Error(t, err)
}

func TestNullsOrderingDropped(t *testing.T) {
	r := New(dialect.Default())
	q, err := r.RenderSelect(&Select{
		Columns: []SelectItem{Item(C("p", "id"))},
		From:    []From{T("person", "p")},
		OrderBy: []OrderBy{
			{Expr: C("p", "name"), Nulls: NullsLast},
			{Expr: C("p", "id"), Desc: true, Nulls: NullsFirst},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "p"."id" FROM "person" "p" ORDER BY "p"."name" ASC, "p"."id" DESC`, q.SQL)
}

func TestBooleanFoldingInStatement(t *testing.T) {
	r := New(dialect.Default())
	pred := Cmp(Gt, C("p", "age"), V(18))

	q, err := r.RenderSelect(&Select{
		Columns: []SelectItem{As(pred, "adult")},
		From:    []From{T("person", "p")},
		Where:   pred,
		OrderBy: []OrderBy{Desc(pred)},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT CASE WHEN "p"."age" > ? THEN 1 ELSE 0 END AS "adult" FROM "person" "p" `+
			`WHERE "p"."age" > ? ORDER BY CASE WHEN "p"."age" > ? THEN 1 ELSE 0 END DESC`,
		q.SQL)
	assert.Equal(t, []any{18, 18, 18}, q.Args)
}

func TestDerivedTable(t *testing.T) {
	r := New(dialect.Default())
	q, err := r.RenderSelect(&Select{
		Columns: []SelectItem{Item(C("d", "id"))},
		From:    []From{Derived(&Select{Columns: []SelectItem{Item(C("p", "id"))}, From: []From{T("person", "p")}}, "d")},
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "d"."id" FROM (SELECT "p"."id" FROM "person" "p") "d"`, q.SQL)

	_, err = r.RenderSelect(&Select{From: []From{Derived(personQuery(), "")}})
	assert.ErrorContains(t, err, "alias")
}

func TestDistinctOnRejected(t *testing.T) {
	r := New(dialect.Default())

	s := personQuery()
	s.DistinctFields = []Expr{C("p", "name")}
	_, err := r.RenderSelect(s)
	require.Error(t, err)
	assert.True(t, irisql.IsUnsupportedConstructErr(err))
	assert.Contains(t, err.Error(), "DISTINCT ON fields")

	s.GroupBy = []Expr{C("p", "name")}
	s.Window = Window{Low: 1, High: Mark(3)}
	_, err = r.RenderSelect(s)
	require.Error(t, err)
	assert.True(t, irisql.IsUnsupportedConstructErr(err))
	assert.Contains(t, err.Error(), "GROUP BY combined with DISTINCT ON fields")
}

func TestForUpdateIgnoresWindow(t *testing.T) {
	r := New(dialect.Default())
	q, err := r.RenderSelect(&Select{
		Columns:   []SelectItem{Item(C("p", "id"))},
		From:      []From{T("person", "p")},
		Window:    Window{Low: 2, High: Mark(4)},
		ForUpdate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "p"."id" FROM "person" "p" FOR UPDATE`, q.SQL)
}

func TestNegativeLowMark(t *testing.T) {
	_, err := New(dialect.Default()).RenderSelect(&Select{Window: Window{Low: -1}})
	assert.ErrorContains(t, err, "must not be negative")
}

func TestPlaceholderInvariantThroughNesting(t *testing.T) {
	r := New(dialect.Default(), WithColAliases(true))

	older := Cmp(Gt, C("q", "age"), V(30))
	inner := &Select{
		Distinct:    true,
		Columns:     []SelectItem{Item(Concat{Args: []Expr{C("q", "name"), V("-")}})},
		ExtraSelect: []SelectItem{Item(F("UPPER", C("q", "city"))), Item(older)},
		From:        []From{T("person", "q")},
		Where:       Cmp(Contains, C("q", "name"), V("a")),
		OrderBy:     []OrderBy{Desc(older)},
		Window:      Window{Low: 1, High: Mark(10)},
	}
	outer := &Select{
		Columns: []SelectItem{
			Item(C("p", "id")),
			As(Exists{Query: inner}, "matched"),
		},
		From:    []From{T("person", "p")},
		Where:   And(Cmp(In, C("p", "name"), Subquery{Query: inner}), Not(Eq(C("p", "id"), V(0)))),
		OrderBy: []OrderBy{Asc(F("LOG", V(2), C("p", "id")))},
		Window:  Window{Low: 4, High: Mark(8)},
	}

	q, err := r.RenderSelect(outer)
	require.NoError(t, err)
	require.NoError(t, q.Validate())
	assert.Equal(t, CountPlaceholders(q.SQL), len(q.Args))
	assert.NotEmpty(t, q.Args)

	agg, err := r.RenderAggregate(&Aggregate{Inner: outer, Columns: []SelectItem{As(F("COUNT", Star{}), "n")}})
	require.NoError(t, err)
	require.NoError(t, agg.Validate())
}
