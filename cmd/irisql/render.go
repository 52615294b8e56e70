package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/irisql/internal/cli"
	"github.com/pthm/irisql/internal/dbapi"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/querydoc"
	"github.com/pthm/irisql/internal/sqlgen"
)

var (
	renderFile       string
	renderColAliases bool
	renderOutput     string
	renderExec       bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a query document to IRIS SQL",
	Long: `Render a YAML or JSON query document to IRIS SQL.

The document holds exactly one of select, insert, update, delete, aggregate
or table. Each rendered statement is printed followed by its parameters.`,
	Example: `  # Render a select
  irisql render -f queries/people_page.yaml

  # Render as YAML with parameters
  irisql render -f queries/people_page.yaml -o yaml

  # Render and run against the configured database
  irisql render -f queries/people_page.yaml --exec`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDialect()
		if err != nil {
			return err
		}

		doc, qs, err := renderDocument(renderFile, d, renderColAliases || cfg.Render.ColAliases)
		if err != nil {
			return err
		}

		if renderExec {
			return execQueries(cmd.Context(), os.Stdout, d, doc, qs)
		}
		return writeQueries(os.Stdout, qs, renderOutput)
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFile, "file", "f", "", "query document (YAML or JSON)")
	f.BoolVar(&renderColAliases, "col-aliases", false, "label unaliased select items col1, col2, ...")
	f.StringVarP(&renderOutput, "output", "o", "sql", "output format: sql or yaml")
	f.BoolVar(&renderExec, "exec", false, "execute the rendered statements")
	addDBFlags(renderCmd)
	_ = renderCmd.MarkFlagRequired("file")
}

// renderDocument loads path and lowers it. Table documents render their
// CREATE TABLE statements as parameterless queries.
func renderDocument(path string, d dialect.Config, colAliases bool) (*querydoc.Document, []sqlgen.Query, error) {
	doc, err := querydoc.Load(path)
	if err != nil {
		return nil, nil, cli.RenderError("loading document", err)
	}

	if doc.IsDDL() {
		stmts, err := renderTable(doc, d)
		if err != nil {
			return nil, nil, err
		}
		qs := make([]sqlgen.Query, len(stmts))
		for i, s := range stmts {
			qs[i] = sqlgen.Query{SQL: s}
		}
		return doc, qs, nil
	}

	r := sqlgen.New(d,
		sqlgen.WithLogger(logger),
		sqlgen.WithColAliases(colAliases),
	)
	qs, err := doc.Render(r)
	if err != nil {
		return nil, nil, cli.RenderError(fmt.Sprintf("rendering %s", path), err)
	}
	logger.Debug("rendered document", "path", path, "statements", len(qs))
	return doc, qs, nil
}

type renderedQuery struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

func writeQueries(w io.Writer, qs []sqlgen.Query, format string) error {
	switch format {
	case "sql", "":
		for _, q := range qs {
			_, _ = fmt.Fprintf(w, "%s;\n", q.SQL)
			if len(q.Args) > 0 {
				_, _ = fmt.Fprintf(w, "-- args: %s\n", formatArgs(q.Args))
			}
		}
		return nil
	case "yaml":
		out := make([]renderedQuery, len(qs))
		for i, q := range qs {
			out[i] = renderedQuery{SQL: q.SQL, Args: q.Args}
		}
		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return cli.ConfigError(fmt.Sprintf("unknown output format %q (want sql or yaml)", format), nil)
	}
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case nil:
			parts[i] = "NULL"
		case string:
			parts[i] = strconv.Quote(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ", ")
}

// execQueries runs qs on the configured database. Select documents print
// their rows tab separated; other statements print a count.
func execQueries(ctx context.Context, w io.Writer, d dialect.Config, doc *querydoc.Document, qs []sqlgen.Query) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	conn := dbapi.New(db, d, dbapi.WithLogger(logger))
	if doc.Select != nil || doc.Aggregate != nil {
		rows, err := conn.Query(ctx, qs[0])
		if err != nil {
			return cli.GeneralError("running query", err)
		}
		writeRows(w, rows)
		return nil
	}

	if err := conn.ExecAll(ctx, qs); err != nil {
		return cli.GeneralError("executing statements", err)
	}
	if !quiet {
		_, _ = fmt.Fprintf(w, "%d statements executed\n", len(qs))
	}
	return nil
}

func writeRows(w io.Writer, rows [][]any) {
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			if b, ok := v.([]byte); ok {
				cells[i] = string(b)
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}
