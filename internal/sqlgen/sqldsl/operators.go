package sqldsl

// Lookup names a comparison operator.
type Lookup string

const (
	Exact       Lookup = "exact"
	IExact      Lookup = "iexact"
	Contains    Lookup = "contains"
	IContains   Lookup = "icontains"
	Gt          Lookup = "gt"
	Gte         Lookup = "gte"
	Lt          Lookup = "lt"
	Lte         Lookup = "lte"
	StartsWith  Lookup = "startswith"
	IStartsWith Lookup = "istartswith"
	EndsWith    Lookup = "endswith"
	IEndsWith   Lookup = "iendswith"
	In          Lookup = "in"
	IsNull      Lookup = "isnull"
	Range       Lookup = "range"
	Ne          Lookup = "ne"
)

// Lookups lists every supported lookup.
var Lookups = []Lookup{
	Exact, IExact, Contains, IContains, Gt, Gte, Lt, Lte,
	StartsWith, IStartsWith, EndsWith, IEndsWith, In, IsNull, Range, Ne,
}

// Valid reports whether l is a known lookup.
func (l Lookup) Valid() bool {
	for _, k := range Lookups {
		if k == l {
			return true
		}
	}
	return false
}

// Pattern reports whether the lookup is rendered with LIKE and needs its
// string operand escaped.
func (l Lookup) Pattern() bool {
	switch l {
	case IExact, Contains, IContains, EndsWith, IEndsWith:
		return true
	}
	return false
}

// Compare is a predicate applying a lookup to two operands.
//
// Right depends on the lookup: In takes a List or a Subquery, Range takes a
// List of two bounds, IsNull takes a Value holding a bool.
type Compare struct {
	Lookup Lookup
	Left   Expr
	Right  Expr
}

// Cmp creates a comparison.
func Cmp(l Lookup, left, right Expr) Compare {
	return Compare{Lookup: l, Left: left, Right: right}
}

// Eq is shorthand for an exact comparison.
func Eq(left, right Expr) Compare {
	return Compare{Lookup: Exact, Left: left, Right: right}
}

// List is the operand of IN and RANGE lookups.
type List []Expr

func (List) exprNode() {}

// Values builds a List of parameterized literals.
func Values(vs ...any) List {
	l := make(List, len(vs))
	for i, v := range vs {
		l[i] = V(v)
	}
	return l
}

// AndExpr is a conjunction.
type AndExpr struct {
	Exprs []Expr
}

// OrExpr is a disjunction.
type OrExpr struct {
	Exprs []Expr
}

// NotExpr negates a predicate.
type NotExpr struct {
	Expr Expr
}

// filterNilExprs removes nil expressions from the slice.
func filterNilExprs(exprs []Expr) []Expr {
	filtered := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// And combines predicates. Nil entries are dropped; a single remaining
// predicate is returned as is and none at all yields nil.
func And(exprs ...Expr) Expr {
	exprs = filterNilExprs(exprs)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return AndExpr{Exprs: exprs}
}

// Or combines predicates with the same nil handling as And.
func Or(exprs ...Expr) Expr {
	exprs = filterNilExprs(exprs)
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	return OrExpr{Exprs: exprs}
}

// Not negates e.
func Not(e Expr) NotExpr {
	return NotExpr{Expr: e}
}

// IsPredicate reports whether e produces a boolean rather than a value.
func IsPredicate(e Expr) bool {
	switch e.(type) {
	case Compare, AndExpr, OrExpr, NotExpr, Exists:
		return true
	}
	return false
}
