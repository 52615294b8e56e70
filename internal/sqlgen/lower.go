package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

// subqueryAlias names the derived table of re-projections and aggregates.
const subqueryAlias = "subquery"

// selectMode controls the parts of a SELECT that depend on the row window.
type selectMode struct {
	// top emits TOP n after DISTINCT.
	top *int
	// rowNumber appends ROW_NUMBER() OVER (ORDER BY ...) to the select list
	// and drops the trailing ORDER BY.
	rowNumber bool
	// aliasAll names every projected item so an outer layer can refer to it.
	aliasAll bool
	// unordered drops the trailing ORDER BY.
	unordered bool
}

// RenderSelect lowers a SELECT, emulating LIMIT/OFFSET when s has a row
// window. See paginate.go.
func (r *Renderer) RenderSelect(s *sqldsl.Select) (Query, error) {
	if s == nil {
		return Query{}, fmt.Errorf("nil select")
	}
	if s.Window.Low < 0 {
		return Query{}, fmt.Errorf("row window low mark must not be negative, got %d", s.Window.Low)
	}
	if len(s.DistinctFields) > 0 {
		if len(s.GroupBy) > 0 {
			return Query{}, irisql.Unsupported("GROUP BY combined with DISTINCT ON fields")
		}
		return Query{}, irisql.Unsupported("DISTINCT ON fields")
	}

	q, err := r.paginate(s)
	if err != nil {
		return Query{}, err
	}
	if s.Explain {
		q.SQL = "EXPLAIN " + q.SQL
	}
	return q, nil
}

// standard renders s without any row window emulation.
func (r *Renderer) standard(s *sqldsl.Select) (Query, error) {
	reproject := s.Subquery && len(s.ExtraSelect) > 0
	q, err := r.selectCore(s, selectMode{aliasAll: reproject})
	if err != nil {
		return Query{}, err
	}
	if reproject {
		return r.reproject(s, q)
	}
	return q, nil
}

// selectCore renders the SELECT ... FROM ... [ORDER BY] statement itself.
func (r *Renderer) selectCore(s *sqldsl.Select, m selectMode) (Query, error) {
	var b builder
	b.write("SELECT ")
	if s.Distinct {
		b.write("DISTINCT ")
	}
	if m.top != nil {
		b.writef("TOP %d ", *m.top)
	}

	items := selectList(s)
	aliases := r.columnAliases(items, m.aliasAll)
	var first *Query
	if len(items) == 0 {
		b.write("*")
	}
	for i, item := range items {
		if i > 0 {
			b.write(", ")
		}
		q, err := r.Expr(item.Expr)
		if err != nil {
			return Query{}, fmt.Errorf("select item %d: %w", i+1, err)
		}
		if i == 0 {
			if _, star := item.Expr.(sqldsl.Star); !star {
				first = &q
			}
		}
		b.add(q)
		if aliases[i] != "" {
			alias, err := r.cfg.QuoteName(aliases[i])
			if err != nil {
				return Query{}, err
			}
			b.write(" AS " + alias)
		}
	}

	order, err := r.orderBy(s.OrderBy)
	if err != nil {
		return Query{}, err
	}

	if m.rowNumber {
		if order.SQL == "" {
			if first == nil {
				return Query{}, fmt.Errorf("no ordering available for ROW_NUMBER(): select list has no first column")
			}
			order = *first
		}
		alias, err := r.cfg.QuoteName(r.cfg.RowNumberAlias)
		if err != nil {
			return Query{}, err
		}
		b.write(", ROW_NUMBER() OVER (ORDER BY ")
		b.add(order)
		b.write(") AS " + alias)
	}

	if err := r.fromClause(&b, s); err != nil {
		return Query{}, err
	}

	if s.Where != nil {
		b.write(" WHERE ")
		if err := r.expr(&b, s.Where, predicateCtx); err != nil {
			return Query{}, fmt.Errorf("where: %w", err)
		}
	}

	if len(s.GroupBy) > 0 {
		b.write(" GROUP BY ")
		for i, g := range s.GroupBy {
			if i > 0 {
				b.write(", ")
			}
			if err := r.expr(&b, g, scalarCtx); err != nil {
				return Query{}, fmt.Errorf("group by: %w", err)
			}
		}
	}

	if s.Having != nil {
		b.write(" HAVING ")
		if err := r.expr(&b, s.Having, predicateCtx); err != nil {
			return Query{}, fmt.Errorf("having: %w", err)
		}
	}

	if !m.rowNumber && !m.unordered && order.SQL != "" {
		b.write(" ORDER BY ")
		b.add(order)
	}

	if s.ForUpdate {
		b.write(" FOR UPDATE")
	}
	return b.query(), nil
}

// selectList returns the projected items including ordering-only extras.
func selectList(s *sqldsl.Select) []sqldsl.SelectItem {
	items := make([]sqldsl.SelectItem, 0, len(s.Columns)+len(s.ExtraSelect))
	items = append(items, s.Columns...)
	return append(items, s.ExtraSelect...)
}

// columnAliases returns the alias of every item: its own, or colN when column
// aliasing is on. With force every item but a star is named, a bare column by
// its own name while that is still free. Generated names never repeat an
// explicit alias.
func (r *Renderer) columnAliases(items []sqldsl.SelectItem, force bool) []string {
	used := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Alias != "" {
			used[item.Alias] = true
		}
	}

	aliases := make([]string, len(items))
	n := 0
	for i, item := range items {
		if item.Alias != "" {
			aliases[i] = item.Alias
			continue
		}
		if _, star := item.Expr.(sqldsl.Star); star {
			continue
		}
		if !r.colAliases {
			if !force {
				continue
			}
			if c, ok := item.Expr.(sqldsl.Col); ok && !used[c.Name] {
				aliases[i] = c.Name
				used[c.Name] = true
				continue
			}
		}
		for {
			n++
			name := fmt.Sprintf("col%d", n)
			if !used[name] {
				aliases[i] = name
				used[name] = true
				break
			}
		}
	}
	return aliases
}

func (r *Renderer) orderBy(terms []sqldsl.OrderBy) (Query, error) {
	parts := make([]Query, 0, len(terms))
	for _, t := range terms {
		q, err := r.orderTerm(t)
		if err != nil {
			return Query{}, fmt.Errorf("order by: %w", err)
		}
		parts = append(parts, q)
	}
	return joinQueries(parts, ", "), nil
}

// orderTerm renders expr ASC|DESC. IRIS has no NULLS FIRST/LAST; a requested
// NULL placement is dropped.
func (r *Renderer) orderTerm(t sqldsl.OrderBy) (Query, error) {
	if t.Nulls != sqldsl.NullsDefault && !r.cfg.SupportsNullsOrder {
		r.log.Debug("dropping unsupported NULLS ordering", "nulls", t.Nulls)
		t.Nulls = sqldsl.NullsDefault
	}
	var b builder
	if err := r.expr(&b, t.Expr, scalarCtx); err != nil {
		return Query{}, err
	}
	if t.Desc {
		b.write(" DESC")
	} else {
		b.write(" ASC")
	}
	switch t.Nulls {
	case sqldsl.NullsFirst:
		b.write(" NULLS FIRST")
	case sqldsl.NullsLast:
		b.write(" NULLS LAST")
	}
	return b.query(), nil
}

func (r *Renderer) fromClause(b *builder, s *sqldsl.Select) error {
	if len(s.From) == 0 {
		if len(s.Joins) > 0 {
			return fmt.Errorf("joins without a FROM source")
		}
		return nil
	}
	b.write(" FROM ")
	for i, f := range s.From {
		if i > 0 {
			b.write(", ")
		}
		if err := r.source(b, f); err != nil {
			return err
		}
	}
	for _, j := range s.Joins {
		kind := j.Kind
		if kind == "" {
			kind = sqldsl.InnerJoin
		}
		b.write(" " + string(kind) + " ")
		if err := r.source(b, j.Source); err != nil {
			return err
		}
		if kind == sqldsl.CrossJoin {
			continue
		}
		if j.On == nil {
			return fmt.Errorf("%s %s without ON condition", kind, j.Source.Name())
		}
		b.write(" ON ")
		if err := r.expr(b, j.On, predicateCtx); err != nil {
			return fmt.Errorf("join condition: %w", err)
		}
	}
	return nil
}

// source renders a table or derived table with its alias.
func (r *Renderer) source(b *builder, f sqldsl.From) error {
	switch {
	case f.Query != nil:
		if f.Alias == "" {
			return fmt.Errorf("derived table needs an alias")
		}
		if err := r.subquery(b, f.Query); err != nil {
			return err
		}
	case f.Table != "":
		t, err := r.cfg.QuoteName(f.Table)
		if err != nil {
			return err
		}
		b.write(t)
	default:
		return fmt.Errorf("empty FROM source")
	}
	if f.Alias != "" {
		a, err := r.cfg.QuoteName(f.Alias)
		if err != nil {
			return err
		}
		b.write(" " + a)
	}
	return nil
}

// reproject wraps q so that only the requested columns of s are returned,
// hiding ordering-only extras and the row number column. q must have been
// rendered with aliasAll; the outer layer refers to those names only.
func (r *Renderer) reproject(s *sqldsl.Select, q Query) (Query, error) {
	alias, err := r.cfg.QuoteName(subqueryAlias)
	if err != nil {
		return Query{}, err
	}
	aliases := r.columnAliases(selectList(s), true)

	var b builder
	b.write("SELECT ")
	if len(s.Columns) == 0 {
		b.write("*")
	}
	for i := range s.Columns {
		if i > 0 {
			b.write(", ")
		}
		if aliases[i] == "" {
			b.write(alias + ".*")
			continue
		}
		name, err := r.cfg.QuoteName(aliases[i])
		if err != nil {
			return Query{}, err
		}
		b.write(alias + "." + name)
	}
	b.write(" FROM (")
	b.add(q)
	b.write(") " + alias)
	return b.query(), nil
}

// RenderInsert lowers an INSERT to one statement per row, or a single
// multi-row statement when the dialect supports bulk inserts.
func (r *Renderer) RenderInsert(ins *sqldsl.Insert) ([]Query, error) {
	if ins == nil {
		return nil, fmt.Errorf("nil insert")
	}
	table, err := r.cfg.QuoteTable(ins.Table)
	if err != nil {
		return nil, err
	}

	if len(ins.Columns) == 0 {
		if ins.PK == "" {
			return nil, fmt.Errorf("insert into %s without columns needs a primary key column", ins.Table)
		}
		pk, err := r.cfg.QuoteName(ins.PK)
		if err != nil {
			return nil, err
		}
		n := len(ins.Rows)
		if n == 0 {
			n = 1
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) DEFAULT VALUES", table, pk)
		out := make([]Query, n)
		for i := range out {
			out[i] = Query{SQL: stmt}
		}
		return out, nil
	}

	cols := make([]string, len(ins.Columns))
	for i, c := range ins.Columns {
		if cols[i], err = r.cfg.QuoteName(c); err != nil {
			return nil, err
		}
	}
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))

	rows := make([]Query, len(ins.Rows))
	for i, row := range ins.Rows {
		if len(row) != len(ins.Columns) {
			return nil, fmt.Errorf("insert row %d has %d values for %d columns", i+1, len(row), len(ins.Columns))
		}
		var b builder
		if err := r.list(&b, sqldsl.List(row)); err != nil {
			return nil, fmt.Errorf("insert row %d: %w", i+1, err)
		}
		rows[i] = b.query()
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s has columns but no rows", ins.Table)
	}

	if r.cfg.SupportsBulkInsert {
		var b builder
		b.write(head)
		b.add(joinQueries(rows, ", "))
		return []Query{b.query()}, nil
	}
	out := make([]Query, len(rows))
	for i, row := range rows {
		var b builder
		b.write(head)
		b.add(row)
		out[i] = b.query()
	}
	return out, nil
}

// RenderUpdate lowers an UPDATE. NoCheck renders UPDATE %NOCHECK, which
// skips foreign key and uniqueness checks.
func (r *Renderer) RenderUpdate(u *sqldsl.Update) (Query, error) {
	if u == nil {
		return Query{}, fmt.Errorf("nil update")
	}
	if len(u.Set) == 0 {
		return Query{}, fmt.Errorf("update of %s sets no columns", u.Table)
	}
	table, err := r.cfg.QuoteTable(u.Table)
	if err != nil {
		return Query{}, err
	}

	var b builder
	b.write("UPDATE ")
	if u.NoCheck {
		b.write("%NOCHECK ")
	}
	b.write(table + " SET ")
	for i, a := range u.Set {
		if i > 0 {
			b.write(", ")
		}
		col, err := r.cfg.QuoteName(a.Column)
		if err != nil {
			return Query{}, err
		}
		b.write(col + " = ")
		if err := r.expr(&b, a.Value, scalarCtx); err != nil {
			return Query{}, fmt.Errorf("set %s: %w", a.Column, err)
		}
	}
	if u.Where != nil {
		b.write(" WHERE ")
		if err := r.expr(&b, u.Where, predicateCtx); err != nil {
			return Query{}, fmt.Errorf("where: %w", err)
		}
	}
	return b.query(), nil
}

// RenderDelete lowers a DELETE.
func (r *Renderer) RenderDelete(d *sqldsl.Delete) (Query, error) {
	if d == nil {
		return Query{}, fmt.Errorf("nil delete")
	}
	table, err := r.cfg.QuoteTable(d.Table)
	if err != nil {
		return Query{}, err
	}
	var b builder
	b.write("DELETE FROM " + table)
	if d.Where != nil {
		b.write(" WHERE ")
		if err := r.expr(&b, d.Where, predicateCtx); err != nil {
			return Query{}, fmt.Errorf("where: %w", err)
		}
	}
	return b.query(), nil
}

// RenderAggregate computes aggregates over the rows of an inner query:
// SELECT aggs FROM (inner) "subquery".
func (r *Renderer) RenderAggregate(a *sqldsl.Aggregate) (Query, error) {
	if a == nil || a.Inner == nil {
		return Query{}, fmt.Errorf("aggregate needs an inner query")
	}
	if len(a.Columns) == 0 {
		return Query{}, fmt.Errorf("aggregate selects no columns")
	}
	inner, err := r.nested(a.Inner)
	if err != nil {
		return Query{}, err
	}
	alias, err := r.cfg.QuoteName(subqueryAlias)
	if err != nil {
		return Query{}, err
	}

	var b builder
	b.write("SELECT ")
	for i, item := range a.Columns {
		if i > 0 {
			b.write(", ")
		}
		if err := r.expr(&b, item.Expr, scalarCtx); err != nil {
			return Query{}, err
		}
		if item.Alias != "" {
			name, err := r.cfg.QuoteName(item.Alias)
			if err != nil {
				return Query{}, err
			}
			b.write(" AS " + name)
		}
	}
	b.write(" FROM (")
	b.add(inner)
	b.write(") " + alias)
	return b.query(), nil
}
