package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/irisql/internal/cli"
	"github.com/pthm/irisql/internal/dbapi"
	"github.com/pthm/irisql/internal/doctor"
	"github.com/pthm/irisql/internal/introspect"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long:  `Run health checks on the dialect configuration, the connection and the tables of the configured schema.`,
	Example: `  # Run health checks
  irisql doctor

  # Show details for every check
  irisql doctor -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDialect()
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if !quiet {
			fmt.Println("irisql doctor - Health Check")
		}

		doc := doctor.New(d,
			dbapi.New(db, d, dbapi.WithLogger(logger)),
			introspect.New(db, introspect.WithSchema(cfg.Database.Schema)))
		report, err := doc.Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running doctor", err)
		}

		report.Print(os.Stdout, verbose > 0)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	addDBFlags(doctorCmd)
}
