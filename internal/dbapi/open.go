package dbapi

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/pthm/irisql"
)

// DefaultDriver is the database/sql driver name of the IRIS driver.
const DefaultDriver = "iris"

// Registered reports whether a database/sql driver named name is linked in.
func Registered(name string) bool {
	return slices.Contains(sql.Drivers(), name)
}

// Open opens a pool for dsn with the named driver. It does not connect.
func Open(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty connection string", irisql.ErrImproperlyConfigured)
	}
	if !Registered(driver) {
		return nil, fmt.Errorf("%w: no database/sql driver registered as %q", irisql.ErrImproperlyConfigured, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", driver, err)
	}
	return db, nil
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return db, nil
}
