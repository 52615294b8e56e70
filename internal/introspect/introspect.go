// Package introspect reads table, column, constraint and index descriptions
// from the IRIS INFORMATION_SCHEMA.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/pthm/irisql/internal/dialect"
)

// DefaultSchema is the schema IRIS places unqualified SQL tables in.
const DefaultSchema = "SQLUser"

// Querier is the read side of database/sql. Implemented by *sql.DB, *sql.Tx
// and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspector reads schema descriptions for one schema.
type Inspector struct {
	db     Querier
	schema string
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithSchema selects the schema to inspect. Empty keeps DefaultSchema.
func WithSchema(schema string) Option {
	return func(i *Inspector) {
		if schema != "" {
			i.schema = schema
		}
	}
}

// New creates an Inspector over db.
func New(db Querier, opts ...Option) *Inspector {
	i := &Inspector{db: db, schema: DefaultSchema}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Schema returns the inspected schema name.
func (i *Inspector) Schema() string {
	return i.schema
}

// TableInfo names a table. Type is "t" for tables.
type TableInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldInfo describes one column.
type FieldInfo struct {
	Name          string `json:"name"`
	DataType      string `json:"data_type"`
	Length        *int64 `json:"length,omitempty"`
	Precision     *int64 `json:"precision,omitempty"`
	Scale         *int64 `json:"scale,omitempty"`
	Nullable      bool   `json:"nullable"`
	AutoIncrement bool   `json:"auto_increment"`
}

// Relation is the target of a foreign key column.
type Relation struct {
	Column string `json:"column"`
	Table  string `json:"table"`
}

// Constraint describes a key, constraint or index over one or more columns.
type Constraint struct {
	Columns    []string  `json:"columns"`
	PrimaryKey bool      `json:"primary_key"`
	Unique     bool      `json:"unique"`
	Index      bool      `json:"index"`
	Check      bool      `json:"check"`
	ForeignKey *Relation `json:"foreign_key,omitempty"`
	// Orders holds ASC or DESC per column, for indexes only.
	Orders []string `json:"orders,omitempty"`
}

// Sequence names an identity column.
type Sequence struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// TableList returns the tables of the schema.
func (i *Inspector) TableList(ctx context.Context) ([]TableInfo, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME`, i.schema)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, TableInfo{Name: name, Type: "t"})
	}
	return tables, rows.Err()
}

// TableDescription returns the columns of table in ordinal order.
func (i *Inspector) TableDescription(ctx context.Context, table string) ([]FieldInfo, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			CHARACTER_MAXIMUM_LENGTH,
			NUMERIC_PRECISION,
			NUMERIC_SCALE,
			IS_NULLABLE,
			AUTO_INCREMENT
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, i.schema, table)
	if err != nil {
		return nil, fmt.Errorf("describing table %s: %w", table, err)
	}
	defer rows.Close()

	var fields []FieldInfo
	for rows.Next() {
		var (
			f                        FieldInfo
			length, precision, scale sql.NullInt64
			nullable, autoIncrement  sql.NullString
		)
		if err := rows.Scan(&f.Name, &f.DataType, &length, &precision, &scale, &nullable, &autoIncrement); err != nil {
			return nil, err
		}
		f.Length = nullInt(length)
		f.Precision = nullInt(precision)
		f.Scale = nullInt(scale)
		f.Nullable = nullable.String == "YES"
		f.AutoIncrement = autoIncrement.String == "YES"
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", i.schema, table)
	}
	return fields, nil
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// FieldKind maps an introspected column back to a field kind. Auto-increment
// integer columns report AutoField.
func FieldKind(f FieldInfo) (dialect.FieldKind, bool) {
	kind, ok := dialect.KindForDataType(f.DataType)
	if !ok {
		return "", false
	}
	if f.AutoIncrement {
		switch kind {
		case dialect.BigIntegerField, dialect.IntegerField, dialect.SmallIntegerField:
			return dialect.AutoField, true
		}
	}
	return kind, true
}

// Sequences returns the identity column of table, if it has one.
func (i *Inspector) Sequences(ctx context.Context, table string) ([]Sequence, error) {
	fields, err := i.TableDescription(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.AutoIncrement {
			return []Sequence{{Table: table, Column: f.Name}}, nil
		}
	}
	return nil, nil
}

// Relations maps each foreign key column of table to its target.
func (i *Inspector) Relations(ctx context.Context, table string) (map[string]Relation, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT COLUMN_NAME, REFERENCED_COLUMN_NAME, REFERENCED_TABLE_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
			AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
			AND REFERENCED_COLUMN_NAME IS NOT NULL`, i.schema, table)
	if err != nil {
		return nil, fmt.Errorf("reading relations of %s: %w", table, err)
	}
	defer rows.Close()

	rels := make(map[string]Relation)
	for rows.Next() {
		var column string
		var rel Relation
		if err := rows.Scan(&column, &rel.Column, &rel.Table); err != nil {
			return nil, err
		}
		rels[column] = rel
	}
	return rels, rows.Err()
}

// Constraints returns the keys, constraints and indexes of table by name.
// Check constraints are not introspected.
func (i *Inspector) Constraints(ctx context.Context, table string) (map[string]*Constraint, error) {
	constraints := make(map[string]*Constraint)
	if err := i.keyConstraints(ctx, table, constraints); err != nil {
		return nil, err
	}
	if err := i.indexes(ctx, table, constraints); err != nil {
		return nil, err
	}
	return constraints, nil
}

func (i *Inspector) keyConstraints(ctx context.Context, table string, out map[string]*Constraint) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT kc.CONSTRAINT_NAME, kc.COLUMN_NAME,
			kc.REFERENCED_TABLE_NAME, kc.REFERENCED_COLUMN_NAME,
			c.CONSTRAINT_TYPE
		FROM
			INFORMATION_SCHEMA.KEY_COLUMN_USAGE AS kc,
			INFORMATION_SCHEMA.TABLE_CONSTRAINTS AS c
		WHERE
			kc.TABLE_SCHEMA = ? AND
			c.TABLE_SCHEMA = kc.TABLE_SCHEMA AND
			c.CONSTRAINT_NAME = kc.CONSTRAINT_NAME AND
			c.CONSTRAINT_TYPE != 'CHECK' AND
			kc.TABLE_NAME = ?
		ORDER BY kc.ORDINAL_POSITION`, i.schema, table)
	if err != nil {
		return fmt.Errorf("reading constraints of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, column, kind string
		var refTable, refColumn sql.NullString
		if err := rows.Scan(&name, &column, &refTable, &refColumn, &kind); err != nil {
			return err
		}
		c, ok := out[name]
		if !ok {
			c = &Constraint{
				PrimaryKey: kind == "PRIMARY KEY",
				Unique:     kind == "PRIMARY KEY" || kind == "UNIQUE",
			}
			if refColumn.Valid {
				c.ForeignKey = &Relation{Table: refTable.String, Column: refColumn.String}
			}
			out[name] = c
		}
		c.Columns = appendUnique(c.Columns, column)
	}
	return rows.Err()
}

func (i *Inspector) indexes(ctx context.Context, table string, out map[string]*Constraint) error {
	rows, err := i.db.QueryContext(ctx, `
		SELECT INDEX_NAME, COLUMN_NAME, PRIMARY_KEY, NON_UNIQUE, ASC_OR_DESC
		FROM INFORMATION_SCHEMA.INDEXES
		WHERE TABLE_SCHEMA = ?
			AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, i.schema, table)
	if err != nil {
		return fmt.Errorf("reading indexes of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, column string
		var primary, nonUnique sql.NullInt64
		var order sql.NullString
		if err := rows.Scan(&name, &column, &primary, &nonUnique, &order); err != nil {
			return err
		}
		c, ok := out[name]
		if !ok {
			c = &Constraint{
				PrimaryKey: primary.Int64 == 1,
				Unique:     nonUnique.Int64 == 0,
				Index:      true,
			}
			out[name] = c
		}
		if slices.Contains(c.Columns, column) {
			continue
		}
		c.Columns = append(c.Columns, column)
		if order.String == "D" {
			c.Orders = append(c.Orders, "DESC")
		} else {
			c.Orders = append(c.Orders, "ASC")
		}
	}
	return rows.Err()
}

// PrimaryKeyColumn returns the first column of the primary key of table, or
// "" when it has none.
func (i *Inspector) PrimaryKeyColumn(ctx context.Context, table string) (string, error) {
	constraints, err := i.Constraints(ctx, table)
	if err != nil {
		return "", err
	}
	for _, c := range constraints {
		if c.PrimaryKey && len(c.Columns) > 0 {
			return c.Columns[0], nil
		}
	}
	return "", nil
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
