package dbapi

import (
	"context"
	"fmt"

	"github.com/pthm/irisql/internal/sqlgen"
)

// lastInsertIDQuery selects the highest primary key of table. IRIS drivers do
// not report generated keys, so the newest row is read back instead.
func (c *Conn) lastInsertIDQuery(table, pk string) (sqlgen.Query, error) {
	return c.renderer.RenderSelect(&sqlgen.Select{
		Columns: []sqlgen.SelectItem{sqlgen.Item(sqlgen.C("", pk))},
		From:    []sqlgen.From{sqlgen.T(table, "")},
		OrderBy: []sqlgen.OrderBy{sqlgen.Desc(sqlgen.C("", pk))},
		Window:  sqlgen.Window{High: sqlgen.Mark(1)},
	})
}

// LastInsertID returns the highest primary key value of table.
func (c *Conn) LastInsertID(ctx context.Context, table, pk string) (int64, error) {
	q, err := c.lastInsertIDQuery(table, pk)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := c.db.QueryRowContext(ctx, q.SQL, q.Args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading last insert id of %s: %w", table, err)
	}
	return id, nil
}

// IsUsable reports whether the connection still answers a trivial query.
func (c *Conn) IsUsable(ctx context.Context) bool {
	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		c.log.Debug("connection not usable", "err", err)
		return false
	}
	return true
}

// Flush deletes every row of tables, in the given order.
func (c *Conn) Flush(ctx context.Context, tables []string) error {
	stmts, err := c.editor.FlushSQL(tables)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := c.Exec(ctx, sqlgen.Query{SQL: stmt}); err != nil {
			return err
		}
	}
	return nil
}
