package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/irisql/internal/cli"
	"github.com/pthm/irisql/internal/ddl"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/querydoc"
)

var (
	ddlFile  string
	ddlApply bool
)

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Render CREATE TABLE statements",
	Long: `Render the CREATE TABLE statement of a table document, followed by the
index and foreign key statements its columns need.`,
	Example: `  # Print the statements
  irisql ddl -f tables/tag.yaml

  # Apply them to the configured database
  irisql ddl -f tables/tag.yaml --apply`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDialect()
		if err != nil {
			return err
		}

		doc, err := querydoc.Load(ddlFile)
		if err != nil {
			return cli.RenderError("loading document", err)
		}
		stmts, err := renderTable(doc, d)
		if err != nil {
			return err
		}

		if !ddlApply {
			writeStatements(os.Stdout, stmts)
			return nil
		}

		db, err := connectDB(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := ddl.Apply(cmd.Context(), db, stmts); err != nil {
			return cli.GeneralError("applying table", err)
		}
		if !quiet {
			fmt.Printf("Table %s created (%d statements).\n", doc.Table.Name, len(stmts))
		}
		return nil
	},
}

func init() {
	f := ddlCmd.Flags()
	f.StringVarP(&ddlFile, "file", "f", "", "table document (YAML or JSON)")
	f.BoolVar(&ddlApply, "apply", false, "execute the statements instead of printing them")
	addDBFlags(ddlCmd)
	_ = ddlCmd.MarkFlagRequired("file")
}

func renderTable(doc *querydoc.Document, d dialect.Config) ([]string, error) {
	if !doc.IsDDL() {
		return nil, cli.RenderError("rendering table", errors.New("document does not define a table"))
	}
	stmts, err := doc.RenderTable(ddl.New(d))
	if err != nil {
		return nil, cli.RenderError(fmt.Sprintf("rendering table %s", doc.Table.Name), err)
	}
	return stmts, nil
}

func writeStatements(w io.Writer, stmts []string) {
	for _, s := range stmts {
		_, _ = fmt.Fprintf(w, "%s;\n", s)
	}
}
