package sqldsl

// SelectItem is one entry of a select list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// Item is shorthand for an unaliased select item.
func Item(e Expr) SelectItem { return SelectItem{Expr: e} }

// As is shorthand for an aliased select item.
func As(e Expr, alias string) SelectItem { return SelectItem{Expr: e, Alias: alias} }

// From is a table source: either a named table or a derived table.
type From struct {
	Table string
	Query *Select
	Alias string
}

// T creates a table source. alias may be empty.
func T(table, alias string) From {
	return From{Table: table, Alias: alias}
}

// Derived creates a derived-table source.
func Derived(q *Select, alias string) From {
	return From{Query: q, Alias: alias}
}

// Name returns the identifier columns use to reference this source.
func (f From) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Table
}

// JoinKind is the join type keyword.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT OUTER JOIN"
	CrossJoin JoinKind = "CROSS JOIN"
)

// Join is a joined table source.
type Join struct {
	Kind   JoinKind
	Source From
	On     Expr
}

// Window is a row window. Low is the number of rows skipped; High is the
// exclusive end mark, nil meaning unbounded.
type Window struct {
	Low  int
	High *int
}

// Mark returns a pointer to n for use as a Window high mark.
func Mark(n int) *int {
	return &n
}

// IsSet reports whether the window restricts the row set at all.
func (w Window) IsSet() bool {
	return w.Low > 0 || w.High != nil
}

// Offset returns the 1-based first row number of the window, or 0 when no
// rows are skipped.
func (w Window) Offset() int {
	if w.Low > 0 {
		return w.Low + 1
	}
	return 0
}

// Select is a SELECT statement.
type Select struct {
	Distinct bool
	// DistinctFields requests DISTINCT ON, which IRIS cannot express.
	DistinctFields []Expr

	Columns []SelectItem
	// ExtraSelect holds ordering-only columns that must be projected to satisfy
	// DISTINCT with ORDER BY.
	ExtraSelect []SelectItem

	From    []From
	Joins   []Join
	Where   Expr
	GroupBy []Expr
	Having  Expr
	OrderBy []OrderBy
	Window  Window

	ForUpdate bool
	// Subquery marks a statement nested in another statement.
	Subquery bool
	Explain  bool
}

// Assignment is one SET entry of an UPDATE.
type Assignment struct {
	Column string
	Value  Expr
}

// Insert is an INSERT of one or more rows. An empty Columns list inserts a
// row of defaults keyed on PK.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]Expr
	PK      string
}

// Update is an UPDATE statement. NoCheck disables constraint checking.
type Update struct {
	Table   string
	Set     []Assignment
	Where   Expr
	NoCheck bool
}

// Delete is a DELETE statement.
type Delete struct {
	Table string
	Where Expr
}

// Aggregate computes aggregates over the rows of an inner query.
type Aggregate struct {
	Inner   *Select
	Columns []SelectItem
}
