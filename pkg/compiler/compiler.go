// Package compiler provides public APIs for rendering IRIS SQL.
//
// This is a thin wrapper around internal/sqlgen, internal/ddl and
// internal/codec that exposes only the types and functions needed by external
// consumers. Executing rendered queries is left to database/sql.
package compiler

import (
	"github.com/pthm/irisql/internal/codec"
	"github.com/pthm/irisql/internal/ddl"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/querydoc"
	"github.com/pthm/irisql/internal/sqlgen"
)

// Dialect holds the IRIS dialect settings a renderer is built with.
type Dialect = dialect.Config

// ExistsStrategy selects how EXISTS subqueries are rendered.
type ExistsStrategy = dialect.ExistsStrategy

// FieldKind names a column type for DDL and value decoding.
type FieldKind = dialect.FieldKind

// Renderer lowers statement trees to IRIS SQL. Safe for concurrent use.
type Renderer = sqlgen.Renderer

// Option configures a Renderer.
type Option = sqlgen.Option

// Query is rendered SQL text with one argument per "?" marker.
type Query = sqlgen.Query

// Editor renders DDL statements.
type Editor = ddl.Editor

// Table, Column and Index describe a table for Editor.CreateTable.
type (
	Table  = ddl.Table
	Column = ddl.Column
	Index  = ddl.Index
)

// Document is a parsed YAML or JSON query document.
type Document = querydoc.Document

// Statement and expression nodes.
type (
	Expr       = sqlgen.Expr
	Col        = sqlgen.Col
	Value      = sqlgen.Value
	Func       = sqlgen.Func
	Compare    = sqlgen.Compare
	OrderBy    = sqlgen.OrderBy
	Select     = sqlgen.Select
	SelectItem = sqlgen.SelectItem
	From       = sqlgen.From
	Join       = sqlgen.Join
	Window     = sqlgen.Window
	Insert     = sqlgen.Insert
	Update     = sqlgen.Update
	Assignment = sqlgen.Assignment
	Delete     = sqlgen.Delete
	Aggregate  = sqlgen.Aggregate
)

// DefaultDialect returns the IRIS defaults.
var DefaultDialect = dialect.Default

// New creates a Renderer for a dialect.
var New = sqlgen.New

// Renderer options.
var (
	WithLogger       = sqlgen.WithLogger
	WithFallbackHook = sqlgen.WithFallbackHook
	WithColAliases   = sqlgen.WithColAliases
)

// NewEditor creates a DDL Editor for a dialect.
var NewEditor = ddl.New

// ParseDocument and LoadDocument read query documents.
var (
	ParseDocument = querydoc.Parse
	LoadDocument  = querydoc.Load
)

// Node builders.
var (
	C       = sqlgen.C
	V       = sqlgen.V
	F       = sqlgen.F
	Eq      = sqlgen.Eq
	Cmp     = sqlgen.Cmp
	And     = sqlgen.And
	Or      = sqlgen.Or
	Not     = sqlgen.Not
	Asc     = sqlgen.Asc
	Desc    = sqlgen.Desc
	Item    = sqlgen.Item
	As      = sqlgen.As
	T       = sqlgen.T
	Derived = sqlgen.Derived
	Mark    = sqlgen.Mark
	Values  = sqlgen.Values
)

// Adapt converts a Go value to the representation the IRIS driver expects.
var Adapt = codec.Adapt

// DecodeDatetime converts a native IRIS timestamp to a time.Time.
var DecodeDatetime = codec.DecodeDatetime

// CodecOptions derives value conversion settings from a dialect.
var CodecOptions = codec.OptionsFrom
