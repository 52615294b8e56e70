package sqlgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/codec"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

// renderCtx is where an expression appears.
type renderCtx int

const (
	// predicateCtx is a top-level WHERE, HAVING or JOIN condition.
	predicateCtx renderCtx = iota
	// scalarCtx is anywhere a value is expected.
	scalarCtx
)

// Expr renders e as a value, as it would appear in a select list.
func (r *Renderer) Expr(e sqldsl.Expr) (Query, error) {
	var b builder
	if err := r.expr(&b, e, scalarCtx); err != nil {
		return Query{}, err
	}
	return b.query(), nil
}

// Predicate renders e as a condition, as it would appear after WHERE.
func (r *Renderer) Predicate(e sqldsl.Expr) (Query, error) {
	var b builder
	if err := r.expr(&b, e, predicateCtx); err != nil {
		return Query{}, err
	}
	return b.query(), nil
}

func (r *Renderer) expr(b *builder, e sqldsl.Expr, ctx renderCtx) error {
	switch n := e.(type) {
	case nil:
		return fmt.Errorf("nil expression")
	case sqldsl.Col:
		return r.col(b, n)
	case sqldsl.Value:
		return r.value(b, n)
	case sqldsl.Raw:
		return r.raw(b, n)
	case sqldsl.Star:
		if n.Table == "" {
			b.write("*")
			return nil
		}
		q, err := r.cfg.QuoteName(n.Table)
		if err != nil {
			return err
		}
		b.write(q + ".*")
		return nil
	case sqldsl.Func:
		return r.function(b, n)
	case sqldsl.Concat:
		return r.concat(b, n.Args)
	case sqldsl.Exists:
		return r.exists(b, n, ctx)
	case sqldsl.Subquery:
		return r.subquery(b, n.Query)
	case sqldsl.Cast:
		return r.cast(b, n)
	case sqldsl.KeyAccess:
		return r.keyAccess(b, n)
	case sqldsl.Binary:
		return r.binary(b, n)
	case sqldsl.List:
		return r.list(b, n)
	case sqldsl.Compare, sqldsl.AndExpr, sqldsl.OrExpr, sqldsl.NotExpr:
		if ctx == scalarCtx {
			return r.foldBoolean(b, n)
		}
		return r.predicate(b, n)
	}
	return fmt.Errorf("unknown expression node %T", e)
}

func (r *Renderer) col(b *builder, c sqldsl.Col) error {
	name, err := r.cfg.QuoteName(c.Name)
	if err != nil {
		return err
	}
	if c.Table != "" {
		table, err := r.cfg.QuoteName(c.Table)
		if err != nil {
			return err
		}
		b.write(table + ".")
	}
	b.write(name)
	return nil
}

func (r *Renderer) value(b *builder, v sqldsl.Value) error {
	x := v.V
	switch v.Kind {
	case dialect.DateField:
		if t, ok := x.(time.Time); ok {
			x = codec.Date{Time: t}
		}
	case dialect.TimeField:
		switch t := x.(type) {
		case time.Duration:
			x = codec.TimeOfDay(t)
		case time.Time:
			d, err := codec.DecodeTime(t)
			if err != nil {
				return err
			}
			x = codec.TimeOfDay(d)
		}
	}
	adapted, err := codec.Adapt(x, r.codec)
	if err != nil {
		return err
	}
	b.param(adapted)
	return nil
}

func (r *Renderer) raw(b *builder, n sqldsl.Raw) error {
	q := Query{SQL: n.SQL, Args: n.Args}
	if err := q.Validate(); err != nil {
		return fmt.Errorf("raw fragment: %w", err)
	}
	args, err := codec.AdaptAll(n.Args, r.codec)
	if err != nil {
		return err
	}
	b.add(Query{SQL: n.SQL, Args: args})
	return nil
}

func (r *Renderer) exists(b *builder, n sqldsl.Exists, ctx renderCtx) error {
	sub, err := r.nested(n.Query)
	if err != nil {
		return err
	}
	if r.cfg.Exists == dialect.ExistsCount {
		b.write("(SELECT COUNT(*) FROM (")
		b.add(sub)
		b.write("))")
		if ctx == predicateCtx {
			b.write(" > 0")
		}
		return nil
	}
	if ctx == scalarCtx {
		b.write("CASE WHEN EXISTS (")
		b.add(sub)
		b.write(") THEN 1 ELSE 0 END")
		return nil
	}
	b.write("EXISTS (")
	b.add(sub)
	b.write(")")
	return nil
}

func (r *Renderer) subquery(b *builder, s *sqldsl.Select) error {
	sub, err := r.nested(s)
	if err != nil {
		return err
	}
	b.write("(")
	b.add(sub)
	b.write(")")
	return nil
}

// nested renders s as a statement embedded in another one.
func (r *Renderer) nested(s *sqldsl.Select) (Query, error) {
	if s == nil {
		return Query{}, fmt.Errorf("nil subquery")
	}
	clone := *s
	clone.Subquery = true
	clone.Explain = false
	return r.RenderSelect(&clone)
}

func (r *Renderer) cast(b *builder, n sqldsl.Cast) error {
	if !validTypeName(n.Type) {
		return fmt.Errorf("invalid cast target type %q", n.Type)
	}
	b.write("CAST(")
	// a comparison being cast is folded to 0/1 by the scalar context
	if err := r.expr(b, n.Expr, scalarCtx); err != nil {
		return err
	}
	b.write(" AS " + n.Type + ")")
	return nil
}

func (r *Renderer) keyAccess(b *builder, n sqldsl.KeyAccess) error {
	if len(n.Keys) == 0 {
		return fmt.Errorf("key access on %q without keys", n.Container.Name)
	}
	flat := n.Container
	flat.Name = flat.Name + "__" + strings.Join(n.Keys, "__")
	return r.col(b, flat)
}

var binaryOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}

func (r *Renderer) binary(b *builder, n sqldsl.Binary) error {
	if !binaryOps[n.Op] {
		return irisql.Unsupported("arithmetic operator %q", n.Op)
	}
	b.write("(")
	if err := r.expr(b, n.Left, scalarCtx); err != nil {
		return err
	}
	b.write(" " + n.Op + " ")
	if err := r.expr(b, n.Right, scalarCtx); err != nil {
		return err
	}
	b.write(")")
	return nil
}

func (r *Renderer) list(b *builder, l sqldsl.List) error {
	b.write("(")
	for i, e := range l {
		if i > 0 {
			b.write(", ")
		}
		if err := r.expr(b, e, scalarCtx); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

// foldBoolean renders a predicate as an integer value.
func (r *Renderer) foldBoolean(b *builder, e sqldsl.Expr) error {
	b.write("CASE WHEN ")
	if err := r.predicate(b, e); err != nil {
		return err
	}
	b.write(" THEN 1 ELSE 0 END")
	return nil
}

// validTypeName accepts type names such as INTEGER, VARCHAR(255) and
// NUMERIC(10, 2).
func validTypeName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == ' ' || c == '(' || c == ')' || c == ',' || c == '_':
		default:
			return false
		}
	}
	return true
}
