// Package irisql lowers portable relational queries to InterSystems IRIS SQL.
//
// IRIS SQL lacks several standard constructs: there is no LIMIT/OFFSET, no
// NULLS FIRST/LAST, no boolean-typed expression usable as a scalar value, and
// timestamps travel over the wire as biased integers. irisql renders queries
// around those gaps and converts scalar values to and from the native wire
// representation.
//
// # Module Structure
//
//   - internal/codec: datetime, date, time and boolean codecs.
//   - internal/sqlgen/sqldsl: immutable scalar-expression and statement nodes.
//   - internal/sqlgen: expression rendering and statement lowering, including
//     the ROW_NUMBER() pagination rewrite.
//   - internal/ddl: CREATE/ALTER/RENAME/INDEX/FOREIGN KEY templates and value quoting.
//   - internal/introspect: INFORMATION_SCHEMA based table descriptions.
//   - internal/dbapi: thin wrapper over database/sql for executing rendered SQL.
//   - internal/querydoc: YAML/JSON query documents decoded into nodes.
//   - internal/doctor: configuration and schema health checks.
//   - pkg/compiler: public entrypoints over the internal renderer.
//   - cmd/irisql: the command line interface.
//
// # Rendering
//
//	r := compiler.New(compiler.DefaultDialect())
//	q, err := r.RenderSelect(&compiler.Select{
//	    Columns: []compiler.SelectItem{compiler.Item(compiler.C("p", "name"))},
//	    From:    []compiler.From{compiler.T("person", "p")},
//	    OrderBy: []compiler.OrderBy{compiler.Asc(compiler.C("p", "name"))},
//	    Window:  compiler.Window{Low: 3, High: compiler.Mark(7)},
//	})
//	// q.SQL:  SELECT * FROM (SELECT "p"."name", ROW_NUMBER() OVER (ORDER BY "p"."name" ASC) AS "row_number"
//	//         FROM "person" "p") WHERE "row_number" BETWEEN 4 AND 7 ORDER BY "row_number"
//	// q.Args: []
//
// Every rendered Query carries exactly one argument per "?" marker in its text.
//
// # Errors
//
// Errors are matched with errors.Is against the sentinels in this package;
// see ErrUnsupportedConstruct, ErrInvalidIdentifier, ErrUnsupportedTimezone and
// ErrRenderFallback.
package irisql
