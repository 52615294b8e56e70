package sqlgen

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/dialect"
)

func renderExpr(t *testing.T, r *Renderer, e Expr) Query {
	t.Helper()
	q, err := r.Expr(e)
	require.NoError(t, err)
	require.NoError(t, q.Validate())
	return q
}

func renderPredicate(t *testing.T, r *Renderer, e Expr) Query {
	t.Helper()
	q, err := r.Predicate(e)
	require.NoError(t, err)
	require.NoError(t, q.Validate())
	return q
}

func TestConcat(t *testing.T) {
	r := New(dialect.Default())
	bio := C("p", "bio").Typed("LONGVARCHAR")
	node := Concat{Args: []Expr{C("p", "first"), V(" "), bio}}

	q := renderExpr(t, r, node)
	assert.Equal(t, `('' || "p"."first" || ? || CONVERT(VARCHAR, "p"."bio"))`, q.SQL)
	assert.Equal(t, []any{" "}, q.Args)

	// rendering leaves the node as it was
	assert.Equal(t, bio, node.Args[2])

	q = renderExpr(t, r, F("concat", C("p", "a"), C("p", "b")))
	assert.Equal(t, `('' || "p"."a" || "p"."b")`, q.SQL)

	q = renderExpr(t, r, Concat{})
	assert.Equal(t, `''`, q.SQL)
}

func TestFunctions(t *testing.T) {
	r := New(dialect.Default())

	tests := []struct {
		name     string
		expr     Expr
		wantSQL  string
		wantArgs []any
	}{
		{"random", F("RANDOM"), "$RANDOM(1000000000)", nil},
		{"now", F("now"), "CURRENT_TIMESTAMP(6)", nil},
		{"ln", F("LN", C("t", "x")), `{fn LOG("t"."x")}`, nil},
		{"log one arg", F("LOG", C("t", "x")), `{fn LOG("t"."x")}`, nil},
		{"log change of base", F("LOG", V(2), V(8)), "(LOG10(?) / LOG10(?))", []any{8, 2}},
		{"escaped lowercase", F("cos", C("t", "x")), `{fn COS("t"."x")}`, nil},
		{"escaped two args", F("ATAN2", C("t", "y"), C("t", "x")), `{fn ATAN2("t"."y", "t"."x")}`, nil},
		{"pi", F("PI"), "{fn PI()}", nil},
		{"plain", F("upper", C("t", "x")), `UPPER("t"."x")`, nil},
		{"instr wraps streams", F("INSTR", C("p", "bio").Typed("LONGVARCHAR"), V("x")), `INSTR(CONVERT(VARCHAR, "p"."bio"), ?)`, []any{"x"}},
		{"strpos", F("STRPOS", C("p", "name"), V("x")), `INSTR("p"."name", ?)`, []any{"x"}},
		{"position takes the needle first", F("POSITION", V("x"), C("p", "bio").Typed("LONGVARCHAR")), `INSTR(CONVERT(VARCHAR, "p"."bio"), ?)`, []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := renderExpr(t, r, tt.expr)
			assert.Equal(t, tt.wantSQL, q.SQL)
			assert.Equal(t, tt.wantArgs, q.Args)
		})
	}

	_, err := r.Expr(F("DROP TABLE x; --"))
	assert.ErrorContains(t, err, "invalid function name")
}

func TestLogOperandOrder(t *testing.T) {
	q := renderExpr(t, New(dialect.Default()), F("LOG", Raw{SQL: "2"}, Raw{SQL: "8"}))
	assert.Contains(t, q.SQL, "LOG10(8) / LOG10(2)")
}

func TestRandomConfigurable(t *testing.T) {
	cfg := dialect.Default()
	cfg.RandomFunction = "RAND"
	cfg.RandomUpperBound = 10
	q := renderExpr(t, New(cfg), F("random"))
	assert.Equal(t, "RAND(10)", q.SQL)
}

func TestBooleanFolding(t *testing.T) {
	r := New(dialect.Default())
	pred := Eq(C("p", "age"), V(18))

	q := renderExpr(t, r, pred)
	assert.Equal(t, `CASE WHEN "p"."age" = ? THEN 1 ELSE 0 END`, q.SQL)

	q = renderPredicate(t, r, pred)
	assert.Equal(t, `"p"."age" = ?`, q.SQL)

	q = renderExpr(t, r, Cast{Expr: Cmp(Gt, C("p", "a"), V(1)), Type: "INTEGER"})
	assert.Equal(t, `CAST(CASE WHEN "p"."a" > ? THEN 1 ELSE 0 END AS INTEGER)`, q.SQL)

	q = renderExpr(t, r, Cast{Expr: C("p", "a"), Type: "VARCHAR(10)"})
	assert.Equal(t, `CAST("p"."a" AS VARCHAR(10))`, q.SQL)

	_, err := r.Expr(Cast{Expr: C("p", "a"), Type: "INT; DROP"})
	assert.Error(t, err)
}

func petSubquery() *Select {
	return &Select{
		Columns: []SelectItem{Item(Raw{SQL: "1"})},
		From:    []From{T("pet", "")},
		Where:   Eq(C("pet", "owner_id"), C("p", "id")),
	}
}

func TestExists(t *testing.T) {
	const sub = `SELECT 1 FROM "pet" WHERE "pet"."owner_id" = "p"."id"`

	r := New(dialect.Default())
	q := renderPredicate(t, r, Exists{Query: petSubquery()})
	assert.Equal(t, "EXISTS ("+sub+")", q.SQL)

	q = renderExpr(t, r, Exists{Query: petSubquery()})
	assert.Equal(t, "CASE WHEN EXISTS ("+sub+") THEN 1 ELSE 0 END", q.SQL)

	cfg := dialect.Default()
	cfg.Exists = dialect.ExistsCount
	rc := New(cfg)

	q = renderPredicate(t, rc, Exists{Query: petSubquery()})
	assert.Equal(t, "(SELECT COUNT(*) FROM ("+sub+")) > 0", q.SQL)

	q = renderExpr(t, rc, Exists{Query: petSubquery()})
	assert.Equal(t, "(SELECT COUNT(*) FROM ("+sub+"))", q.SQL)

	q = renderPredicate(t, rc, Not(Exists{Query: petSubquery()}))
	assert.Equal(t, "NOT ((SELECT COUNT(*) FROM ("+sub+")) > 0)", q.SQL)

	q = renderPredicate(t, rc, Cmp(Gt, Exists{Query: petSubquery()}, V(0)))
	assert.Equal(t, "(SELECT COUNT(*) FROM ("+sub+")) > ?", q.SQL)
	assert.Equal(t, []any{0}, q.Args)
}

func TestKeyAccess(t *testing.T) {
	q := renderExpr(t, New(dialect.Default()), KeyAccess{Container: C("p", "data"), Keys: []string{"address", "city"}})
	assert.Equal(t, `"p"."data__address__city"`, q.SQL)

	_, err := New(dialect.Default()).Expr(KeyAccess{Container: C("p", "data")})
	assert.Error(t, err)
}

func TestLookups(t *testing.T) {
	a := C("p", "a")

	tests := []struct {
		name     string
		expr     Expr
		wantSQL  string
		wantArgs []any
	}{
		{"exact", Eq(a, V(1)), `"p"."a" = ?`, []any{1}},
		{"exact null", Eq(a, V(nil)), `"p"."a" IS NULL`, nil},
		{"ne", Cmp(Ne, a, V(1)), `"p"."a" <> ?`, []any{1}},
		{"ne null", Cmp(Ne, a, V(nil)), `"p"."a" IS NOT NULL`, nil},
		{"gt", Cmp(Gt, a, V(1)), `"p"."a" > ?`, []any{1}},
		{"gte", Cmp(Gte, a, V(1)), `"p"."a" >= ?`, []any{1}},
		{"lt", Cmp(Lt, a, V(1)), `"p"."a" < ?`, []any{1}},
		{"lte", Cmp(Lte, a, V(1)), `"p"."a" <= ?`, []any{1}},
		{"contains escapes", Cmp(Contains, a, V(`50%_off\`)), `"p"."a" LIKE ? ESCAPE '\'`, []any{`%50\%\_off\\%`}},
		{"icontains", Cmp(IContains, a, V("x")), `"p"."a" LIKE ? ESCAPE '\'`, []any{"%x%"}},
		{"iexact", Cmp(IExact, a, V("Bob")), `"p"."a" LIKE ? ESCAPE '\'`, []any{"Bob"}},
		{"endswith", Cmp(EndsWith, a, V("x")), `"p"."a" LIKE ? ESCAPE '\'`, []any{"%x"}},
		{"iendswith", Cmp(IEndsWith, a, V("x")), `"p"."a" LIKE ? ESCAPE '\'`, []any{"%x"}},
		{"startswith", Cmp(StartsWith, a, V("ab")), `"p"."a" %STARTSWITH ?`, []any{"ab"}},
		{"istartswith", Cmp(IStartsWith, a, V("ab")), `"p"."a" %STARTSWITH ?`, []any{"ab"}},
		{"contains column", Cmp(IContains, a, C("p", "b")), `"p"."a" LIKE ('%' || "p"."b" || '%') ESCAPE '\'`, nil},
		{"in", Cmp(In, a, Values(1, 2, 3)), `"p"."a" IN (?, ?, ?)`, []any{1, 2, 3}},
		{"in empty", Cmp(In, a, List{}), `1 = 0`, nil},
		{"in subquery", Cmp(In, a, Subquery{Query: &Select{Columns: []SelectItem{Item(C("q", "id"))}, From: []From{T("q", "")}}}), `"p"."a" IN (SELECT "q"."id" FROM "q")`, nil},
		{"isnull true", Cmp(IsNull, a, V(true)), `"p"."a" IS NULL`, nil},
		{"isnull false", Cmp(IsNull, a, V(false)), `"p"."a" IS NOT NULL`, nil},
		{"range", Cmp(Range, a, Values(1, 5)), `"p"."a" BETWEEN ? AND ?`, []any{1, 5}},
	}
	r := New(dialect.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := renderPredicate(t, r, tt.expr)
			assert.Equal(t, tt.wantSQL, q.SQL)
			assert.Equal(t, tt.wantArgs, q.Args)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	r := New(dialect.Default())
	a := C("p", "a")

	_, err := r.Predicate(Cmp("regex", a, V("x")))
	assert.True(t, irisql.IsUnsupportedConstructErr(err))

	_, err = r.Predicate(Cmp(Range, a, Values(1)))
	assert.ErrorContains(t, err, "two bounds")

	_, err = r.Predicate(Cmp(IsNull, a, V("yes")))
	assert.ErrorContains(t, err, "boolean")

	_, err = r.Predicate(Cmp(In, a, V(1)))
	assert.ErrorContains(t, err, "list or subquery")
}

func TestConnectives(t *testing.T) {
	r := New(dialect.Default())
	e := And(
		Eq(C("p", "a"), V(1)),
		Or(Eq(C("p", "b"), V(2)), Not(Eq(C("p", "c"), V(3)))),
	)

	q := renderPredicate(t, r, e)
	assert.Equal(t, `("p"."a" = ? AND ("p"."b" = ? OR NOT ("p"."c" = ?)))`, q.SQL)
	assert.Equal(t, []any{1, 2, 3}, q.Args)

	q = renderExpr(t, r, e)
	assert.True(t, strings.HasPrefix(q.SQL, "CASE WHEN ("))
	assert.True(t, strings.HasSuffix(q.SQL, ") THEN 1 ELSE 0 END"))
}

func TestValues(t *testing.T) {
	r := New(dialect.Default())

	q := renderExpr(t, r, V(true))
	assert.Equal(t, []any{1}, q.Args)

	q = renderExpr(t, r, V(time.Unix(0, 0).UTC()))
	assert.Equal(t, []any{int64(1) << 60}, q.Args)

	q = renderExpr(t, r, Value{V: time.Date(2020, 1, 2, 15, 0, 0, 0, time.UTC), Kind: dialect.DateField})
	assert.Equal(t, []any{"2020-01-02"}, q.Args)

	q = renderExpr(t, r, Value{V: 90 * time.Minute, Kind: dialect.TimeField})
	assert.Equal(t, []any{"01:30:00.000000"}, q.Args)

	_, err := r.Expr(V(time.Date(2020, 1, 2, 0, 0, 0, 0, time.FixedZone("X", 3600))))
	assert.True(t, irisql.IsUnsupportedTimezoneErr(err))
}

func TestRawAndBinary(t *testing.T) {
	r := New(dialect.Default())

	q := renderExpr(t, r, Binary{Op: "+", Left: C("p", "a"), Right: Raw{SQL: "? * 2", Args: []any{false}}})
	assert.Equal(t, `("p"."a" + ? * 2)`, q.SQL)
	assert.Equal(t, []any{0}, q.Args)

	_, err := r.Expr(Raw{SQL: "? + ?", Args: []any{1}})
	assert.ErrorContains(t, err, "2 placeholders but 1 args")

	_, err = r.Expr(Binary{Op: "%", Left: V(1), Right: V(2)})
	assert.True(t, irisql.IsUnsupportedConstructErr(err))
}

func TestIdentifiers(t *testing.T) {
	r := New(dialect.Default())

	q := renderExpr(t, r, C("", "name"))
	assert.Equal(t, `"name"`, q.SQL)

	q = renderExpr(t, r, C(`"P"`, "name"))
	assert.Equal(t, `"P"."name"`, q.SQL)

	q = renderExpr(t, r, Star{Table: "p"})
	assert.Equal(t, `"p".*`, q.SQL)

	_, err := r.Expr(C("p", strings.Repeat("x", 61)))
	assert.True(t, irisql.IsInvalidIdentifierErr(err))

	_, err = r.Expr(C("p", strings.Repeat("x", 60)))
	assert.NoError(t, err)

	_, err = r.Expr(nil)
	assert.Error(t, err)
}

func TestCountPlaceholders(t *testing.T) {
	tests := []struct {
		sql  string
		want int
	}{
		{"", 0},
		{"SELECT ?", 1},
		{"a = ? AND b = ?", 2},
		{"a = '?'", 0},
		{`"we?rd" = ?`, 1},
		{"a = 'it''s ?' AND b = ?", 1},
		{`a LIKE ? ESCAPE '\'`, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountPlaceholders(tt.sql), tt.sql)
	}

	assert.NoError(t, Query{SQL: "a = ?", Args: []any{1}}.Validate())
	assert.Error(t, Query{SQL: "a = ?"}.Validate())
}
