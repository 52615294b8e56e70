// Package dbapi executes rendered statements over database/sql.
//
// The IRIS driver itself is an external collaborator: any database/sql driver
// registered under the configured name will do. Conn only adapts parameters
// through the codec, strips statement terminators the driver rejects and
// decodes fetched values by field kind.
package dbapi

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pthm/irisql/internal/codec"
	"github.com/pthm/irisql/internal/ddl"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/sqlgen"
)

// Execer is the minimal interface needed to run statements.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn runs rendered statements against one Execer.
type Conn struct {
	db       Execer
	cfg      dialect.Config
	codec    codec.Options
	log      *slog.Logger
	renderer *sqlgen.Renderer
	editor   *ddl.Editor
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the logger statements are traced to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.log = l
		}
	}
}

// New wraps db.
func New(db Execer, cfg dialect.Config, opts ...Option) *Conn {
	c := &Conn{
		db:    db,
		cfg:   cfg,
		codec: codec.OptionsFrom(cfg),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.renderer = sqlgen.New(cfg, sqlgen.WithLogger(c.log))
	c.editor = ddl.New(cfg)
	return c
}

// Renderer returns the renderer bound to the connection's dialect.
func (c *Conn) Renderer() *sqlgen.Renderer {
	return c.renderer
}

// prepare strips whitespace and a trailing statement terminator.
func prepare(query string) string {
	query = strings.TrimSpace(query)
	return strings.TrimSpace(strings.TrimSuffix(query, ";"))
}

// Exec runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, q sqlgen.Query) (sql.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	args, err := codec.AdaptAll(q.Args, c.codec)
	if err != nil {
		return nil, err
	}
	query := prepare(q.SQL)
	c.log.Debug("exec", "sql", query, "args", len(args))
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec %q: %w", query, err)
	}
	return res, nil
}

// ExecMany runs query once per parameter row. An empty rows slice is a no-op.
func (c *Conn) ExecMany(ctx context.Context, query string, rows [][]any) error {
	for i, args := range rows {
		if _, err := c.Exec(ctx, sqlgen.Query{SQL: query, Args: args}); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

// ExecAll runs statements in order, as produced by RenderInsert.
func (c *Conn) ExecAll(ctx context.Context, qs []sqlgen.Query) error {
	for _, q := range qs {
		if _, err := c.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Query runs q and returns every row. Column i is decoded with kinds[i] when
// given; an empty kind or a missing entry leaves the driver value as is.
func (c *Conn) Query(ctx context.Context, q sqlgen.Query, kinds ...dialect.FieldKind) ([][]any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	args, err := codec.AdaptAll(q.Args, c.codec)
	if err != nil {
		return nil, err
	}
	query := prepare(q.SQL)
	c.log.Debug("query", "sql", query, "args", len(args))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				// drivers may reuse the buffer on the next Scan
				vals[i] = append([]byte(nil), b...)
			}
			if i >= len(kinds) || kinds[i] == "" {
				continue
			}
			if vals[i], err = codec.Decode(kinds[i], vals[i], c.codec); err != nil {
				return nil, fmt.Errorf("column %s: %w", cols[i], err)
			}
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// Select renders s and runs it.
func (c *Conn) Select(ctx context.Context, s *sqlgen.Select, kinds ...dialect.FieldKind) ([][]any, error) {
	q, err := c.renderer.RenderSelect(s)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, q, kinds...)
}
