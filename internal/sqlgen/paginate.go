package sqlgen

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

// paginate emulates LIMIT/OFFSET, which IRIS does not have.
//
// With only a limit the statement is rendered with TOP n, or through the
// ROW_NUMBER() path below when the dialect has no TOP. With an offset the
// statement gets a ROW_NUMBER() column ordered like the query (or by its
// first column) and is wrapped as
//
//	SELECT * FROM (inner) WHERE "row_number" BETWEEN offset AND limit ORDER BY "row_number"
//
// where offset is the 1-based number of the first row kept and limit the
// high mark. A DISTINCT statement is numbered in a layer of its own. A
// nested statement is then re-projected to its requested columns so neither
// the row number nor ordering-only extras leak out.
//
// A failed rewrite falls back to standard rendering without the window,
// reported through the logger and the fallback hook. Unsupported constructs
// and invalid identifiers are returned as they are.
func (r *Renderer) paginate(s *sqldsl.Select) (Query, error) {
	if !s.Window.IsSet() || s.ForUpdate {
		return r.standard(s)
	}

	q, err := r.windowed(s)
	if err == nil {
		return q, nil
	}
	if surfaced(err) {
		return Query{}, err
	}

	fallback := fmt.Errorf("%w: %w", irisql.ErrRenderFallback, err)
	r.log.Warn("row window rewrite failed, rendering without window",
		"err", err,
		"low_mark", s.Window.Low,
		"high_mark", highMark(s.Window),
	)
	if r.onFallback != nil {
		r.onFallback(fallback)
	}
	return r.standard(s)
}

// surfaced reports whether err must reach the caller instead of triggering
// the fallback.
func surfaced(err error) bool {
	return errors.Is(err, irisql.ErrUnsupportedConstruct) ||
		errors.Is(err, irisql.ErrInvalidIdentifier) ||
		errors.Is(err, irisql.ErrUnsupportedTimezone)
}

func highMark(w sqldsl.Window) any {
	if w.High == nil {
		return nil
	}
	return *w.High
}

func (r *Renderer) windowed(s *sqldsl.Select) (Query, error) {
	offset := s.Window.Offset()

	if offset == 0 && r.cfg.SupportsTop {
		reproject := s.Subquery && len(s.ExtraSelect) > 0
		q, err := r.selectCore(s, selectMode{top: s.Window.High, aliasAll: reproject})
		if err != nil {
			return Query{}, err
		}
		if reproject {
			return r.reproject(s, q)
		}
		return q, nil
	}
	if offset == 0 {
		offset = 1
	}

	var inner Query
	var err error
	if s.Distinct {
		inner, err = r.distinctNumbered(s)
	} else {
		inner, err = r.selectCore(s, selectMode{rowNumber: true, aliasAll: s.Subquery})
	}
	if err != nil {
		return Query{}, err
	}
	rn, err := r.cfg.QuoteName(r.cfg.RowNumberAlias)
	if err != nil {
		return Query{}, err
	}

	var b builder
	b.write("SELECT * FROM (")
	b.add(inner)
	if s.Window.High != nil {
		b.writef(") WHERE %s BETWEEN %d AND %d ORDER BY %s", rn, offset, *s.Window.High, rn)
	} else {
		b.writef(") WHERE %s >= %d ORDER BY %s", rn, offset, rn)
	}
	q := b.query()

	if s.Subquery {
		return r.reproject(s, q)
	}
	return q, nil
}

// distinctNumbered numbers the rows of a DISTINCT statement in a layer above
// it, so the row number takes no part in removing duplicates:
//
//	SELECT "subquery".*, ROW_NUMBER() OVER (ORDER BY "subquery"."name") AS "row_number"
//	FROM (SELECT DISTINCT ... ) "subquery"
//
// Every ordering term must be one of the projected items.
func (r *Renderer) distinctNumbered(s *sqldsl.Select) (Query, error) {
	items := selectList(s)
	aliases := r.columnAliases(items, true)

	inner, err := r.selectCore(s, selectMode{aliasAll: true, unordered: true})
	if err != nil {
		return Query{}, err
	}

	var terms []sqldsl.OrderBy
	if len(s.OrderBy) == 0 {
		if len(items) == 0 || aliases[0] == "" {
			return Query{}, fmt.Errorf("no ordering available for ROW_NUMBER(): select list has no first column")
		}
		terms = []sqldsl.OrderBy{sqldsl.Asc(sqldsl.C(subqueryAlias, aliases[0]))}
	} else {
		rendered := make([]Query, len(items))
		for i, item := range items {
			if rendered[i], err = r.Expr(item.Expr); err != nil {
				return Query{}, fmt.Errorf("select item %d: %w", i+1, err)
			}
		}
		for k, t := range s.OrderBy {
			want, err := r.Expr(t.Expr)
			if err != nil {
				return Query{}, fmt.Errorf("order by: %w", err)
			}
			i := matchingItem(rendered, aliases, want)
			if i < 0 {
				return Query{}, irisql.Unsupported("ORDER BY term %d of a paginated DISTINCT query is not in its select list", k+1)
			}
			terms = append(terms, sqldsl.OrderBy{Expr: sqldsl.C(subqueryAlias, aliases[i]), Desc: t.Desc, Nulls: t.Nulls})
		}
	}
	order, err := r.orderBy(terms)
	if err != nil {
		return Query{}, err
	}

	alias, err := r.cfg.QuoteName(subqueryAlias)
	if err != nil {
		return Query{}, err
	}
	rn, err := r.cfg.QuoteName(r.cfg.RowNumberAlias)
	if err != nil {
		return Query{}, err
	}

	var b builder
	b.write("SELECT " + alias + ".*, ROW_NUMBER() OVER (ORDER BY ")
	b.add(order)
	b.write(") AS " + rn + " FROM (")
	b.add(inner)
	b.write(") " + alias)
	return b.query(), nil
}

// matchingItem returns the index of the named item rendering exactly as want,
// or -1.
func matchingItem(items []Query, aliases []string, want Query) int {
	for i, q := range items {
		if aliases[i] != "" && q.SQL == want.SQL && reflect.DeepEqual(q.Args, want.Args) {
			return i
		}
	}
	return -1
}
