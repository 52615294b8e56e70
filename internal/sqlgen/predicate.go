package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

// likeEscape is the ESCAPE clause of every LIKE lookup.
const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var comparisonOps = map[sqldsl.Lookup]string{
	sqldsl.Exact: "=",
	sqldsl.Ne:    "<>",
	sqldsl.Gt:    ">",
	sqldsl.Gte:   ">=",
	sqldsl.Lt:    "<",
	sqldsl.Lte:   "<=",
}

// predicate renders a boolean-valued node in predicate context.
func (r *Renderer) predicate(b *builder, e sqldsl.Expr) error {
	switch n := e.(type) {
	case sqldsl.Compare:
		return r.compare(b, n)
	case sqldsl.AndExpr:
		return r.connective(b, n.Exprs, " AND ")
	case sqldsl.OrExpr:
		return r.connective(b, n.Exprs, " OR ")
	case sqldsl.NotExpr:
		b.write("NOT (")
		if err := r.expr(b, n.Expr, predicateCtx); err != nil {
			return err
		}
		b.write(")")
		return nil
	}
	return r.expr(b, e, predicateCtx)
}

func (r *Renderer) connective(b *builder, exprs []sqldsl.Expr, sep string) error {
	if len(exprs) == 0 {
		return fmt.Errorf("empty boolean connective")
	}
	b.write("(")
	for i, e := range exprs {
		if i > 0 {
			b.write(sep)
		}
		if err := r.expr(b, e, predicateCtx); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

func isNullValue(e sqldsl.Expr) bool {
	v, ok := e.(sqldsl.Value)
	return ok && v.V == nil
}

func (r *Renderer) compare(b *builder, c sqldsl.Compare) error {
	if c.Left == nil || c.Right == nil {
		return fmt.Errorf("%s lookup needs two operands", c.Lookup)
	}

	switch c.Lookup {
	case sqldsl.Exact, sqldsl.Ne:
		if isNullValue(c.Right) {
			if err := r.expr(b, c.Left, scalarCtx); err != nil {
				return err
			}
			if c.Lookup == sqldsl.Exact {
				b.write(" IS NULL")
			} else {
				b.write(" IS NOT NULL")
			}
			return nil
		}
		return r.binaryCompare(b, c.Left, comparisonOps[c.Lookup], c.Right)

	case sqldsl.Gt, sqldsl.Gte, sqldsl.Lt, sqldsl.Lte:
		return r.binaryCompare(b, c.Left, comparisonOps[c.Lookup], c.Right)

	case sqldsl.StartsWith, sqldsl.IStartsWith:
		return r.binaryCompare(b, c.Left, "%STARTSWITH", c.Right)

	case sqldsl.IExact, sqldsl.Contains, sqldsl.IContains, sqldsl.EndsWith, sqldsl.IEndsWith:
		return r.like(b, c)

	case sqldsl.In:
		return r.in(b, c)

	case sqldsl.IsNull:
		v, ok := c.Right.(sqldsl.Value)
		isNull, isBool := v.V.(bool)
		if !ok || !isBool {
			return fmt.Errorf("isnull lookup expects a boolean value, got %T", c.Right)
		}
		if err := r.expr(b, c.Left, scalarCtx); err != nil {
			return err
		}
		if isNull {
			b.write(" IS NULL")
		} else {
			b.write(" IS NOT NULL")
		}
		return nil

	case sqldsl.Range:
		bounds, ok := c.Right.(sqldsl.List)
		if !ok || len(bounds) != 2 {
			return fmt.Errorf("range lookup expects a list of two bounds")
		}
		if err := r.expr(b, c.Left, scalarCtx); err != nil {
			return err
		}
		b.write(" BETWEEN ")
		if err := r.expr(b, bounds[0], scalarCtx); err != nil {
			return err
		}
		b.write(" AND ")
		return r.expr(b, bounds[1], scalarCtx)
	}
	return irisql.Unsupported("lookup %q", c.Lookup)
}

func (r *Renderer) binaryCompare(b *builder, left sqldsl.Expr, op string, right sqldsl.Expr) error {
	if err := r.expr(b, left, scalarCtx); err != nil {
		return err
	}
	b.write(" " + op + " ")
	return r.expr(b, right, scalarCtx)
}

// like renders the LIKE based lookups. String values are escaped and wrapped
// with wildcards; other operands are wrapped with concatenation.
func (r *Renderer) like(b *builder, c sqldsl.Compare) error {
	var prefix, suffix string
	switch c.Lookup {
	case sqldsl.Contains, sqldsl.IContains:
		prefix, suffix = "%", "%"
	case sqldsl.EndsWith, sqldsl.IEndsWith:
		prefix = "%"
	}

	if err := r.expr(b, c.Left, scalarCtx); err != nil {
		return err
	}
	b.write(" LIKE ")

	if v, ok := c.Right.(sqldsl.Value); ok {
		if s, ok := v.V.(string); ok {
			b.param(prefix + likeEscaper.Replace(s) + suffix)
			b.write(likeEscape)
			return nil
		}
	}

	b.write("(")
	if prefix != "" {
		b.write("'" + prefix + "' || ")
	}
	if err := r.expr(b, c.Right, scalarCtx); err != nil {
		return err
	}
	if suffix != "" {
		b.write(" || '" + suffix + "'")
	}
	b.write(")")
	b.write(likeEscape)
	return nil
}

func (r *Renderer) in(b *builder, c sqldsl.Compare) error {
	switch rhs := c.Right.(type) {
	case sqldsl.List:
		if len(rhs) == 0 {
			// an empty IN list matches nothing
			b.write("1 = 0")
			return nil
		}
		if err := r.expr(b, c.Left, scalarCtx); err != nil {
			return err
		}
		b.write(" IN ")
		return r.list(b, rhs)
	case sqldsl.Subquery:
		if err := r.expr(b, c.Left, scalarCtx); err != nil {
			return err
		}
		b.write(" IN ")
		return r.subquery(b, rhs.Query)
	}
	return fmt.Errorf("in lookup expects a list or subquery, got %T", c.Right)
}
