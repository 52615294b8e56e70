// Package testutil provides shared test utilities for irisql integration tests.
//
// Tests call DB for a connection to a shared IRIS instance, or Namespace for
// a private namespace cloned from the configured one. Both skip the test when
// no database/sql driver is registered as "iris".
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pthm/irisql/internal/dbapi"
	"github.com/pthm/irisql/internal/ddl"
	"github.com/pthm/irisql/internal/dialect"
)

const irisPort = "1972/tcp"

// Singleton instance state
var (
	singletonOnce sync.Once
	singletonCfg  DatabaseConfig
	singletonHost string
	singletonPort int
	singletonErr  error
)

// ensureSingleton lazily starts the IRIS container, unless a remote instance
// is configured. Safe for concurrent access via sync.Once.
func ensureSingleton() (DatabaseConfig, error) {
	singletonOnce.Do(func() {
		cfg := GetDatabaseConfig()
		if cfg.URL != "" {
			singletonCfg = cfg
			return
		}

		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        cfg.Image,
				ExposedPorts: []string{irisPort},
				Env: map[string]string{
					"IRIS_USERNAME":  cfg.User,
					"IRIS_PASSWORD":  cfg.Password,
					"IRIS_NAMESPACE": cfg.Namespace,
				},
				WaitingFor: wait.ForListeningPort(irisPort).WithStartupTimeout(3 * time.Minute),
			},
			Started: true,
		})
		if err != nil {
			singletonErr = fmt.Errorf("failed to start IRIS container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get IRIS container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, irisPort)
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get IRIS container port: %w", err)
			return
		}

		singletonHost, singletonPort = host, port.Int()
		singletonCfg = cfg
		singletonCfg.URL, singletonErr = cfg.DSN(singletonHost, singletonPort)
		// Container is not stored - ryuk will handle cleanup automatically
	})

	return singletonCfg, singletonErr
}

func requireDriver(tb testing.TB) {
	tb.Helper()
	if !dbapi.Registered(dbapi.DefaultDriver) {
		tb.Skipf("no database/sql driver registered as %q", dbapi.DefaultDriver)
	}
}

func connect(tb testing.TB, cfg DatabaseConfig, dsn string) *sql.DB {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := dbapi.Connect(ctx, dbapi.DefaultDriver, dsn)
	require.NoError(tb, err, "failed to connect to IRIS")
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	return db
}

// DB returns a connection to the configured namespace of the shared instance.
// The connection is closed when the test completes.
// Works with both *testing.T and *testing.B.
func DB(tb testing.TB) *sql.DB {
	tb.Helper()
	requireDriver(tb)

	cfg, err := ensureSingleton()
	require.NoError(tb, err, "failed to start IRIS")

	db := connect(tb, cfg, cfg.URL)
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

// Namespace clones the configured namespace into a new uniquely named one and
// returns a connection to it with the namespace name. The namespace is dropped
// when the test completes. Cloning needs the discrete host and port, so it is
// only available against the container or IRISQL_TEST_HOST.
func Namespace(tb testing.TB) (*sql.DB, string) {
	tb.Helper()
	admin := DB(tb)

	cfg, _ := ensureSingleton()
	host, port := singletonHost, singletonPort
	if host == "" {
		host, port = getEnv("IRISQL_TEST_HOST", ""), getEnvInt("IRISQL_TEST_PORT", 1972)
	}
	if host == "" {
		tb.Skip("namespace cloning needs IRISQL_TEST_HOST when IRISQL_TEST_URL is set")
	}

	name := UniqueNamespace("TEST")
	e := ddl.New(dialect.Default())

	ctx := context.Background()
	stmts, err := e.CloneDatabase(cfg.Namespace, name)
	require.NoError(tb, err)
	require.NoError(tb, ddl.Apply(ctx, admin, stmts), "failed to clone namespace %s", cfg.Namespace)

	dsn, err := cfg.dsnFor(host, port, name)
	require.NoError(tb, err)
	db := connect(tb, cfg, dsn)

	tb.Cleanup(func() {
		_ = db.Close()
		drop, err := e.DropDatabase(name)
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = admin.ExecContext(ctx, drop)
	})
	return db, name
}

// UniqueNamespace returns prefix followed by an upper-case random suffix,
// valid as an unquoted namespace name.
func UniqueNamespace(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + strings.ToUpper(id[:12])
}
