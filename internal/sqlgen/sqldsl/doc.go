// Package sqldsl provides the immutable node types the IRIS renderer lowers
// to SQL.
//
// # Overview
//
// Nodes are plain values. They carry no rendering logic of their own: the
// dialect rules live in the sqlgen package, which dispatches over the closed
// set of node kinds defined here. Any rewrite the renderer needs (wrapping a
// stream column in CONVERT, relabeling a table alias for a re-projection)
// produces a new node and leaves the caller's tree untouched.
//
// # Expression Types
//
//	C("p", "name")                     // column reference: "p"."name"
//	C("p", "bio").Typed("LONGVARCHAR") // column with a declared storage type
//	V(42)                              // bound parameter: ?
//	Raw{SQL: "1 = ?", Args: []any{1}}  // escape hatch, placeholder count checked
//	F("UPPER", C("p", "name"))         // function call
//	Concat{Args: []Expr{a, b}}         // ('' || a || b)
//	Exists{Query: sub}                 // EXISTS (sub)
//	Cmp(Gt, C("p", "age"), V(18))      // "p"."age" > ?
//	And(e1, e2), Or(e1, e2), Not(e)    // boolean connectives
//	Cast{Expr: e, Type: "INTEGER"}     // CAST(e AS INTEGER)
//	KeyAccess{Container: c, Keys: k}   // flattened JSON key column
//
// # Statement Types
//
//	Select{Columns, From, Joins, Where, GroupBy, Having, OrderBy, Window, ...}
//	Insert{Table, Columns, Rows, PK}
//	Update{Table, Set, Where, NoCheck}
//	Delete{Table, Where}
//	Aggregate{Inner, Columns}
//
// A row window is expressed with Window{Low, High}: Low is the number of rows
// to skip and High the exclusive end mark, nil meaning unbounded.
package sqldsl
