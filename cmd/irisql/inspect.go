package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/irisql/internal/cli"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/introspect"
)

var inspectTable string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Describe database tables",
	Long: `List the tables of the configured schema, or describe one table: its
columns with their field kinds, primary key, constraints and foreign keys.`,
	Example: `  # List tables
  irisql inspect

  # Describe one table
  irisql inspect --table person`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		insp := introspect.New(db, introspect.WithSchema(cfg.Database.Schema))
		if inspectTable == "" {
			tables, err := insp.TableList(ctx)
			if err != nil {
				return cli.GeneralError("listing tables", err)
			}
			return writeYAML(os.Stdout, tables)
		}

		report, err := describeTable(ctx, insp, inspectTable)
		if err != nil {
			return cli.GeneralError(fmt.Sprintf("describing %s", inspectTable), err)
		}
		return writeYAML(os.Stdout, report)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectTable, "table", "", "table to describe")
	addDBFlags(inspectCmd)
}

type fieldReport struct {
	introspect.FieldInfo
	Kind dialect.FieldKind `json:"kind,omitempty"`
}

type tableReport struct {
	Schema      string                            `json:"schema"`
	Table       string                            `json:"table"`
	PrimaryKey  string                            `json:"primary_key,omitempty"`
	Fields      []fieldReport                     `json:"fields"`
	Constraints map[string]*introspect.Constraint `json:"constraints,omitempty"`
	Relations   map[string]introspect.Relation    `json:"relations,omitempty"`
	Sequences   []introspect.Sequence             `json:"sequences,omitempty"`
}

func describeTable(ctx context.Context, insp *introspect.Inspector, table string) (*tableReport, error) {
	fields, err := insp.TableDescription(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table %s not found in schema %s", table, insp.Schema())
	}

	report := &tableReport{Schema: insp.Schema(), Table: table}
	for _, f := range fields {
		kind, _ := introspect.FieldKind(f)
		report.Fields = append(report.Fields, fieldReport{FieldInfo: f, Kind: kind})
	}
	if report.PrimaryKey, err = insp.PrimaryKeyColumn(ctx, table); err != nil {
		return nil, err
	}
	if report.Constraints, err = insp.Constraints(ctx, table); err != nil {
		return nil, err
	}
	if report.Relations, err = insp.Relations(ctx, table); err != nil {
		return nil, err
	}
	if report.Sequences, err = insp.Sequences(ctx, table); err != nil {
		return nil, err
	}
	return report, nil
}

func writeYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
