package ddl

import (
	"context"
	"database/sql"
	"fmt"
)

// Execer runs a statement. Implemented by *sql.DB, *sql.Tx and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply executes stmts in order and stops at the first failure. IRIS commits
// DDL implicitly, so statements before the failing one stay applied.
func Apply(ctx context.Context, db Execer, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying statement %d: %w", i+1, err)
		}
	}
	return nil
}
