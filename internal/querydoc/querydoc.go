// Package querydoc reads statements and table definitions from YAML or JSON
// documents. A document holds exactly one top-level key:
//
//	select:    a query
//	insert:    rows for one table
//	update:    assignments and a filter
//	delete:    a filter
//	aggregate: aggregates over an inner query
//	table:     a table definition for CREATE TABLE
//
// Documents are decoded with sigs.k8s.io/yaml, so JSON is accepted too and
// unknown keys are rejected.
package querydoc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/pthm/irisql/internal/ddl"
	"github.com/pthm/irisql/internal/sqlgen"
	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

// Document is one decoded file.
type Document struct {
	Select    *Select    `json:"select,omitempty"`
	Insert    *Insert    `json:"insert,omitempty"`
	Update    *Update    `json:"update,omitempty"`
	Delete    *Delete    `json:"delete,omitempty"`
	Aggregate *Aggregate `json:"aggregate,omitempty"`
	Table     *ddl.Table `json:"table,omitempty"`
}

// Item is a select-list entry.
type Item struct {
	Expr
	As string `json:"as,omitempty"`
}

// Order is an ORDER BY term. Nulls is "first", "last" or empty.
type Order struct {
	Expr
	Desc  bool   `json:"desc,omitempty"`
	Nulls string `json:"nulls,omitempty"`
}

// Source is a table or a derived table in FROM.
type Source struct {
	Table string  `json:"table,omitempty"`
	Query *Select `json:"query,omitempty"`
	As    string  `json:"as,omitempty"`
}

// Join is a joined source. Kind is "inner" (the default), "left" or "cross".
type Join struct {
	Source
	Kind string `json:"kind,omitempty"`
	On   *Expr  `json:"on,omitempty"`
}

// Select is the document form of a query. Offset and Limit form the row
// window; a nil Limit leaves it unbounded.
type Select struct {
	Distinct   bool     `json:"distinct,omitempty"`
	DistinctOn []Expr   `json:"distinct_on,omitempty"`
	Columns    []Item   `json:"columns"`
	Extra      []Item   `json:"extra_select,omitempty"`
	From       []Source `json:"from,omitempty"`
	Joins      []Join   `json:"joins,omitempty"`
	Where      *Expr    `json:"where,omitempty"`
	GroupBy    []Expr   `json:"group_by,omitempty"`
	Having     *Expr    `json:"having,omitempty"`
	OrderBy    []Order  `json:"order_by,omitempty"`
	Offset     int      `json:"offset,omitempty"`
	Limit      *int     `json:"limit,omitempty"`
	ForUpdate  bool     `json:"for_update,omitempty"`
	Explain    bool     `json:"explain,omitempty"`
}

// Insert is the document form of an INSERT. Rows without Columns insert
// default rows keyed on PK.
type Insert struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]Expr `json:"rows"`
	PK      string   `json:"pk,omitempty"`
}

// Assignment is one SET entry.
type Assignment struct {
	Column string `json:"column"`
	Value  Expr   `json:"value"`
}

// Update is the document form of an UPDATE.
type Update struct {
	Table   string       `json:"table"`
	Set     []Assignment `json:"set"`
	Where   *Expr        `json:"where,omitempty"`
	NoCheck bool         `json:"no_check,omitempty"`
}

// Delete is the document form of a DELETE.
type Delete struct {
	Table string `json:"table"`
	Where *Expr  `json:"where,omitempty"`
}

// Aggregate is the document form of an aggregate over an inner query.
type Aggregate struct {
	Inner   Select `json:"inner"`
	Columns []Item `json:"columns"`
}

// Parse decodes a YAML or JSON document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if n := doc.count(); n != 1 {
		return nil, fmt.Errorf("document must hold exactly one of select, insert, update, delete, aggregate, table; found %d", n)
	}
	if doc.Table != nil {
		if err := normalizeDefaults(doc.Table); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (d *Document) count() int {
	n := 0
	for _, set := range []bool{
		d.Select != nil, d.Insert != nil, d.Update != nil,
		d.Delete != nil, d.Aggregate != nil, d.Table != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// IsDDL reports whether the document defines a table.
func (d *Document) IsDDL() bool {
	return d.Table != nil
}

// Render lowers a statement document to queries. Table documents are
// rendered with RenderTable instead.
func (d *Document) Render(r *sqlgen.Renderer) ([]sqlgen.Query, error) {
	switch {
	case d.Select != nil:
		s, err := d.Select.node()
		if err != nil {
			return nil, err
		}
		q, err := r.RenderSelect(s)
		if err != nil {
			return nil, err
		}
		return []sqlgen.Query{q}, nil
	case d.Insert != nil:
		ins, err := d.Insert.node()
		if err != nil {
			return nil, err
		}
		return r.RenderInsert(ins)
	case d.Update != nil:
		u, err := d.Update.node()
		if err != nil {
			return nil, err
		}
		q, err := r.RenderUpdate(u)
		if err != nil {
			return nil, err
		}
		return []sqlgen.Query{q}, nil
	case d.Delete != nil:
		where, err := optional(d.Delete.Where)
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		q, err := r.RenderDelete(&sqldsl.Delete{Table: d.Delete.Table, Where: where})
		if err != nil {
			return nil, err
		}
		return []sqlgen.Query{q}, nil
	case d.Aggregate != nil:
		a, err := d.Aggregate.node()
		if err != nil {
			return nil, err
		}
		q, err := r.RenderAggregate(a)
		if err != nil {
			return nil, err
		}
		return []sqlgen.Query{q}, nil
	}
	return nil, errors.New("document holds no statement")
}

// RenderTable returns the CREATE TABLE statements of a table document.
func (d *Document) RenderTable(e *ddl.Editor) ([]string, error) {
	if d.Table == nil {
		return nil, errors.New("document holds no table")
	}
	return e.CreateTable(*d.Table)
}

func (s *Select) node() (*sqldsl.Select, error) {
	out := &sqldsl.Select{
		Distinct:  s.Distinct,
		ForUpdate: s.ForUpdate,
		Explain:   s.Explain,
		Window:    sqldsl.Window{Low: s.Offset},
	}
	if s.Limit != nil {
		out.Window.High = sqldsl.Mark(s.Offset + *s.Limit)
	}

	var err error
	if out.DistinctFields, err = nodes(s.DistinctOn); err != nil {
		return nil, fmt.Errorf("distinct_on: %w", err)
	}
	if out.Columns, err = items(s.Columns); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if out.ExtraSelect, err = items(s.Extra); err != nil {
		return nil, fmt.Errorf("extra_select: %w", err)
	}
	for _, src := range s.From {
		f, err := src.node()
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		out.From = append(out.From, f)
	}
	for _, j := range s.Joins {
		join, err := j.node()
		if err != nil {
			return nil, fmt.Errorf("join: %w", err)
		}
		out.Joins = append(out.Joins, join)
	}
	if out.Where, err = optional(s.Where); err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	if out.GroupBy, err = nodes(s.GroupBy); err != nil {
		return nil, fmt.Errorf("group_by: %w", err)
	}
	if out.Having, err = optional(s.Having); err != nil {
		return nil, fmt.Errorf("having: %w", err)
	}
	for _, o := range s.OrderBy {
		term, err := o.node()
		if err != nil {
			return nil, fmt.Errorf("order_by: %w", err)
		}
		out.OrderBy = append(out.OrderBy, term)
	}
	return out, nil
}

func (src Source) node() (sqldsl.From, error) {
	switch {
	case src.Table != "" && src.Query != nil:
		return sqldsl.From{}, errors.New("source sets both table and query")
	case src.Query != nil:
		q, err := src.Query.node()
		if err != nil {
			return sqldsl.From{}, err
		}
		return sqldsl.Derived(q, src.As), nil
	case src.Table != "":
		return sqldsl.T(src.Table, src.As), nil
	}
	return sqldsl.From{}, errors.New("source needs a table or a query")
}

func (j Join) node() (sqldsl.Join, error) {
	src, err := j.Source.node()
	if err != nil {
		return sqldsl.Join{}, err
	}
	out := sqldsl.Join{Source: src}
	switch strings.ToLower(j.Kind) {
	case "", "inner":
		out.Kind = sqldsl.InnerJoin
	case "left":
		out.Kind = sqldsl.LeftJoin
	case "cross":
		out.Kind = sqldsl.CrossJoin
	default:
		return sqldsl.Join{}, fmt.Errorf("unknown join kind %q", j.Kind)
	}
	if out.On, err = optional(j.On); err != nil {
		return sqldsl.Join{}, fmt.Errorf("on: %w", err)
	}
	return out, nil
}

func (o Order) node() (sqldsl.OrderBy, error) {
	x, err := o.Expr.Node()
	if err != nil {
		return sqldsl.OrderBy{}, err
	}
	out := sqldsl.OrderBy{Expr: x, Desc: o.Desc}
	switch strings.ToLower(o.Nulls) {
	case "":
	case "first":
		out.Nulls = sqldsl.NullsFirst
	case "last":
		out.Nulls = sqldsl.NullsLast
	default:
		return sqldsl.OrderBy{}, fmt.Errorf("unknown nulls ordering %q", o.Nulls)
	}
	return out, nil
}

func (ins *Insert) node() (*sqldsl.Insert, error) {
	out := &sqldsl.Insert{Table: ins.Table, Columns: ins.Columns, PK: ins.PK}
	for i, row := range ins.Rows {
		xs, err := nodes(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out.Rows = append(out.Rows, xs)
	}
	return out, nil
}

func (u *Update) node() (*sqldsl.Update, error) {
	out := &sqldsl.Update{Table: u.Table, NoCheck: u.NoCheck}
	for _, a := range u.Set {
		v, err := a.Value.Node()
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", a.Column, err)
		}
		out.Set = append(out.Set, sqldsl.Assignment{Column: a.Column, Value: v})
	}
	var err error
	if out.Where, err = optional(u.Where); err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	return out, nil
}

func (a *Aggregate) node() (*sqldsl.Aggregate, error) {
	inner, err := a.Inner.node()
	if err != nil {
		return nil, fmt.Errorf("inner: %w", err)
	}
	cols, err := items(a.Columns)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	return &sqldsl.Aggregate{Inner: inner, Columns: cols}, nil
}

func items(docs []Item) ([]sqldsl.SelectItem, error) {
	out := make([]sqldsl.SelectItem, 0, len(docs))
	for i := range docs {
		x, err := docs[i].Expr.Node()
		if err != nil {
			return nil, err
		}
		out = append(out, sqldsl.SelectItem{Expr: x, Alias: docs[i].As})
	}
	return out, nil
}

func optional(e *Expr) (sqldsl.Expr, error) {
	if e == nil {
		return nil, nil
	}
	return e.Node()
}

// normalizeDefaults turns integral column defaults into int64 so QuoteValue
// renders them without an exponent.
func normalizeDefaults(t *ddl.Table) error {
	for i := range t.Columns {
		c := &t.Columns[i]
		switch v := c.Default.(type) {
		case float64:
			if v == float64(int64(v)) {
				c.Default = int64(v)
			}
		case map[string]any, []any:
			return fmt.Errorf("column %s: default must be a scalar, got %T", c.Name, v)
		}
	}
	return nil
}
