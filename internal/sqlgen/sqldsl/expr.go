package sqldsl

import "github.com/pthm/irisql/internal/dialect"

// Expr is a scalar expression node. The set of implementations is closed.
type Expr interface {
	exprNode()
}

// Col is a column reference. Storage is the declared column type when it is
// known; the renderer uses it to detect stream columns.
type Col struct {
	Table   string
	Name    string
	Storage string
}

// C creates a column reference. An empty table renders the bare column name.
func C(table, name string) Col {
	return Col{Table: table, Name: name}
}

// Typed returns a copy of c with its declared storage type set.
func (c Col) Typed(dbType string) Col {
	c.Storage = dbType
	return c
}

// Value is a literal bound as a positional parameter. Kind, when set, tells
// the codec how to encode V (a time.Time with DateField is sent as a date).
type Value struct {
	V    any
	Kind dialect.FieldKind
}

// V creates a parameterized literal.
func V(v any) Value {
	return Value{V: v}
}

// Raw is an escape hatch for SQL the node set cannot express. The number of
// ? markers in SQL must equal len(Args).
type Raw struct {
	SQL  string
	Args []any
}

// Star renders * or "t".*.
type Star struct {
	Table string
}

// Func is a scalar function call.
type Func struct {
	Name string
	Args []Expr
}

// F creates a function call node.
func F(name string, args ...Expr) Func {
	return Func{Name: name, Args: args}
}

// Concat joins its arguments as strings.
type Concat struct {
	Args []Expr
}

// Exists tests whether a subquery returns rows.
type Exists struct {
	Query *Select
}

// Subquery is a scalar subquery.
type Subquery struct {
	Query *Select
}

// Cast converts an expression to a target SQL type.
type Cast struct {
	Expr Expr
	Type string
}

// KeyAccess reads a key of a JSON container. IRIS has no JSON path operator,
// so the access is rendered as the pre-materialized column field__key.
type KeyAccess struct {
	Container Col
	Keys      []string
}

// Binary is an arithmetic operation such as + or *.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// NullsOrder requests NULL placement in an ordering term.
type NullsOrder int

const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// OrderBy is an ordering term.
type OrderBy struct {
	Expr  Expr
	Desc  bool
	Nulls NullsOrder
}

// Asc orders by e ascending.
func Asc(e Expr) OrderBy { return OrderBy{Expr: e} }

// Desc orders by e descending.
func Desc(e Expr) OrderBy { return OrderBy{Expr: e, Desc: true} }

func (Col) exprNode()       {}
func (Value) exprNode()     {}
func (Raw) exprNode()       {}
func (Star) exprNode()      {}
func (Func) exprNode()      {}
func (Concat) exprNode()    {}
func (Exists) exprNode()    {}
func (Subquery) exprNode()  {}
func (Cast) exprNode()      {}
func (KeyAccess) exprNode() {}
func (Binary) exprNode()    {}
func (Compare) exprNode()   {}
func (AndExpr) exprNode()   {}
func (OrExpr) exprNode()    {}
func (NotExpr) exprNode()   {}
