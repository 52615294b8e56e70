// This file re-exports the node types of the sqldsl package so callers of the
// renderer can build trees without a second import.

package sqlgen

import "github.com/pthm/irisql/internal/sqlgen/sqldsl"

// Expression nodes
type (
	Expr       = sqldsl.Expr
	Col        = sqldsl.Col
	Value      = sqldsl.Value
	Raw        = sqldsl.Raw
	Star       = sqldsl.Star
	Func       = sqldsl.Func
	Concat     = sqldsl.Concat
	Exists     = sqldsl.Exists
	Subquery   = sqldsl.Subquery
	Cast       = sqldsl.Cast
	KeyAccess  = sqldsl.KeyAccess
	Binary     = sqldsl.Binary
	Compare    = sqldsl.Compare
	List       = sqldsl.List
	AndExpr    = sqldsl.AndExpr
	OrExpr     = sqldsl.OrExpr
	NotExpr    = sqldsl.NotExpr
	OrderBy    = sqldsl.OrderBy
	NullsOrder = sqldsl.NullsOrder
	Lookup     = sqldsl.Lookup
)

// Statements
type (
	Select     = sqldsl.Select
	SelectItem = sqldsl.SelectItem
	From       = sqldsl.From
	Join       = sqldsl.Join
	JoinKind   = sqldsl.JoinKind
	Window     = sqldsl.Window
	Insert     = sqldsl.Insert
	Update     = sqldsl.Update
	Assignment = sqldsl.Assignment
	Delete     = sqldsl.Delete
	Aggregate  = sqldsl.Aggregate
)

// Lookups
const (
	Exact       = sqldsl.Exact
	IExact      = sqldsl.IExact
	Contains    = sqldsl.Contains
	IContains   = sqldsl.IContains
	Gt          = sqldsl.Gt
	Gte         = sqldsl.Gte
	Lt          = sqldsl.Lt
	Lte         = sqldsl.Lte
	StartsWith  = sqldsl.StartsWith
	IStartsWith = sqldsl.IStartsWith
	EndsWith    = sqldsl.EndsWith
	IEndsWith   = sqldsl.IEndsWith
	In          = sqldsl.In
	IsNull      = sqldsl.IsNull
	Range       = sqldsl.Range
	Ne          = sqldsl.Ne
)

// Ordering and joins
const (
	NullsDefault = sqldsl.NullsDefault
	NullsFirst   = sqldsl.NullsFirst
	NullsLast    = sqldsl.NullsLast

	InnerJoin = sqldsl.InnerJoin
	LeftJoin  = sqldsl.LeftJoin
	CrossJoin = sqldsl.CrossJoin
)

// Builders
var (
	C       = sqldsl.C
	V       = sqldsl.V
	F       = sqldsl.F
	Cmp     = sqldsl.Cmp
	Eq      = sqldsl.Eq
	Values  = sqldsl.Values
	And     = sqldsl.And
	Or      = sqldsl.Or
	Not     = sqldsl.Not
	Asc     = sqldsl.Asc
	Desc    = sqldsl.Desc
	Item    = sqldsl.Item
	As      = sqldsl.As
	T       = sqldsl.T
	Derived = sqldsl.Derived
	Mark    = sqldsl.Mark
	Relabel = sqldsl.Relabel
)
