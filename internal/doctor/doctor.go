// Package doctor provides health checks for an IRIS deployment used through
// irisql.
//
// The doctor command validates that the dialect configuration is coherent,
// that the database answers, and that the tables of the configured schema can
// be described and addressed by the renderer.
//
// Example usage:
//
//	d := doctor.New(cfg, conn, introspect.New(db))
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/introspect"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Dialect", "Connection", "Schema").
	Category string

	// Name is a short identifier for the check.
	Name string

	Status  Status
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Pinger reports whether a connection answers. Implemented by *dbapi.Conn.
type Pinger interface {
	IsUsable(ctx context.Context) bool
}

// Doctor performs health checks against one configuration and database.
type Doctor struct {
	cfg       dialect.Config
	conn      Pinger
	inspector *introspect.Inspector
}

// New creates a new Doctor instance.
func New(cfg dialect.Config, conn Pinger, inspector *introspect.Inspector) *Doctor {
	return &Doctor{cfg: cfg, conn: conn, inspector: inspector}
}

// Run executes all health checks and returns a report. Schema checks are
// skipped when the connection check fails.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkDialect(report)
	if !d.checkConnection(ctx, report) {
		return report, nil
	}
	if err := d.checkSchema(ctx, report); err != nil {
		return nil, fmt.Errorf("checking schema: %w", err)
	}
	return report, nil
}

func (d *Doctor) checkDialect(report *Report) {
	if err := d.cfg.Validate(); err != nil {
		report.AddCheck(CheckResult{
			Category: "Dialect",
			Name:     "valid",
			Status:   StatusFail,
			Message:  "Dialect configuration is invalid",
			Details:  err.Error(),
			FixHint:  "Review the dialect section of irisql.yaml",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Dialect",
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Dialect configuration is valid (exists strategy %q)", d.cfg.Exists),
	})

	if d.cfg.UseTZ {
		report.AddCheck(CheckResult{
			Category: "Dialect",
			Name:     "timezone",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Datetimes are converted to %s before storage", d.cfg.Loc()),
		})
	} else {
		report.AddCheck(CheckResult{
			Category: "Dialect",
			Name:     "timezone",
			Status:   StatusPass,
			Message:  "Datetimes are stored as naive UTC wall clock values",
			Details:  "Parameters carrying any other location are rejected",
		})
	}
}

func (d *Doctor) checkConnection(ctx context.Context, report *Report) bool {
	if !d.conn.IsUsable(ctx) {
		report.AddCheck(CheckResult{
			Category: "Connection",
			Name:     "usable",
			Status:   StatusFail,
			Message:  "Database does not answer SELECT 1",
			FixHint:  "Check the database section of irisql.yaml and that the instance is running",
		})
		return false
	}
	report.AddCheck(CheckResult{
		Category: "Connection",
		Name:     "usable",
		Status:   StatusPass,
		Message:  "Database connection is usable",
	})
	return true
}

// checkSchema describes every table of the inspected schema and reports
// names the renderer would reject, tables without a primary key and column
// types with no field kind.
func (d *Doctor) checkSchema(ctx context.Context, report *Report) error {
	schema := d.inspector.Schema()
	tables, err := d.inspector.TableList(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		report.AddCheck(CheckResult{
			Category: "Schema",
			Name:     "tables",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("No tables found in schema %s", schema),
			FixHint:  "Set database.schema to the schema holding your tables",
		})
		return nil
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	report.AddCheck(CheckResult{
		Category: "Schema",
		Name:     "tables",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Found %d tables in schema %s", len(tables), schema),
		Details:  strings.Join(names, "\n"),
	})

	var badNames, noPK, unmapped []string
	for _, t := range tables {
		if _, err := d.cfg.QuoteTable(t.Name); err != nil {
			badNames = append(badNames, err.Error())
		}

		fields, err := d.inspector.TableDescription(ctx, t.Name)
		if err != nil {
			return err
		}
		for _, f := range fields {
			if _, err := d.cfg.QuoteName(f.Name); err != nil {
				badNames = append(badNames, fmt.Sprintf("%s: %v", t.Name, err))
			}
			if _, ok := introspect.FieldKind(f); !ok {
				unmapped = append(unmapped, fmt.Sprintf("%s.%s (%s)", t.Name, f.Name, f.DataType))
			}
		}

		pk, err := d.inspector.PrimaryKeyColumn(ctx, t.Name)
		if err != nil {
			return err
		}
		if pk == "" {
			noPK = append(noPK, t.Name)
		}
	}

	addList(report, "identifiers", badNames,
		"All table and column names are valid identifiers",
		"%d names cannot be rendered",
		fmt.Sprintf("Rename them or raise dialect.max_name_length (currently %d)", d.cfg.MaxNameLength))
	addList(report, "primary keys", noPK,
		"Every table has a primary key",
		"%d tables have no primary key",
		"LastInsertID and default-value inserts need a primary key column")
	addList(report, "column types", unmapped,
		"Every column type maps to a field kind",
		"%d columns have types with no field kind",
		"Values of these columns are returned undecoded")
	return nil
}

// addList records a pass when items is empty and a warning listing items
// otherwise.
func addList(report *Report, name string, items []string, passMsg, warnFormat, hint string) {
	if len(items) == 0 {
		report.AddCheck(CheckResult{Category: "Schema", Name: name, Status: StatusPass, Message: passMsg})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Schema",
		Name:     name,
		Status:   StatusWarn,
		Message:  fmt.Sprintf(warnFormat, len(items)),
		Details:  strings.Join(items, "\n"),
		FixHint:  hint,
	})
}
