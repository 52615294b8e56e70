package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/cli"
	"github.com/pthm/irisql/internal/dbapi"
	"github.com/pthm/irisql/internal/dialect"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Persistent flags
	cfgFile string
	verbose int
	quiet   bool

	// Database flags, registered per command by addDBFlags
	dbURL    string
	dbDriver string
)

var rootCmd = &cobra.Command{
	Use:   "irisql",
	Short: "SQL lowering for InterSystems IRIS",
	Long: `irisql - SQL lowering for InterSystems IRIS

irisql renders portable query documents to IRIS SQL, emulating LIMIT/OFFSET
with ROW_NUMBER(), folding boolean predicates into scalar context and
converting datetimes to the native wire encoding.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verbose, quiet)

		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		logger.Debug("configuration loaded", "path", configPath)

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupRender   = "render"
	groupDatabase = "database"
	groupUtility  = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover irisql.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	// Define command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: groupRender, Title: "Render:"},
		&cobra.Group{ID: groupDatabase, Title: "Database:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	// Render commands
	renderCmd.GroupID = groupRender
	ddlCmd.GroupID = groupRender
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(ddlCmd)

	// Database commands
	inspectCmd.GroupID = groupDatabase
	pingCmd.GroupID = groupDatabase
	doctorCmd.GroupID = groupDatabase
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(doctorCmd)

	// Utility commands
	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// newLogger maps -v and -q to a stderr text logger. Warnings are shown by
// default so pagination fallbacks are never silent.
func newLogger(verbosity int, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func addDBFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&dbURL, "db", "", "database URL (overrides database.url)")
	f.StringVar(&dbDriver, "driver", "", "database/sql driver name (overrides database.driver)")
}

// resolveDSN returns the --db flag if set, otherwise the DSN built from
// configuration.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return "", cli.ConfigError("database configuration", err)
	}
	return dsn, nil
}

// resolveDialect returns the validated dialect settings of the loaded
// configuration.
func resolveDialect() (dialect.Config, error) {
	d, err := cfg.ResolvedDialect()
	if err != nil {
		return dialect.Config{}, cli.ConfigError("dialect configuration", err)
	}
	return d, nil
}

// openDB opens a pool without connecting.
func openDB() (*sql.DB, error) {
	dsn, err := resolveDSN(dbURL)
	if err != nil {
		return nil, err
	}
	db, err := dbapi.Open(resolveString(dbDriver, cfg.DriverName()), dsn)
	if err != nil {
		return nil, cli.ConfigError("database configuration", err)
	}
	return db, nil
}

// connectDB opens a pool and verifies it with a ping.
func connectDB(ctx context.Context) (*sql.DB, error) {
	dsn, err := resolveDSN(dbURL)
	if err != nil {
		return nil, err
	}
	db, err := dbapi.Connect(ctx, resolveString(dbDriver, cfg.DriverName()), dsn)
	if err != nil {
		if errors.Is(err, irisql.ErrImproperlyConfigured) {
			return nil, cli.ConfigError("database configuration", err)
		}
		return nil, cli.DBConnectError("connecting to database", err)
	}
	logger.Info("connected", "driver", resolveString(dbDriver, cfg.DriverName()))
	return db, nil
}
