// Package ddl renders IRIS schema statements: CREATE/DROP/RENAME TABLE,
// column changes, indexes, foreign keys and the namespace cloning used by
// test setups.
//
// DDL statements carry no bind parameters. Literal defaults are inlined with
// QuoteValue, and every identifier is checked before any text is produced.
package ddl

import (
	"fmt"
	"strings"

	"github.com/pthm/irisql/internal/codec"
	"github.com/pthm/irisql/internal/dialect"
)

// Editor renders DDL for one dialect configuration.
type Editor struct {
	cfg   dialect.Config
	codec codec.Options
}

// New creates an Editor for cfg.
func New(cfg dialect.Config) *Editor {
	return &Editor{cfg: cfg, codec: codec.OptionsFrom(cfg)}
}

// QuoteName quotes an identifier, leaving already quoted names alone.
func (e *Editor) QuoteName(name string) (string, error) {
	return e.cfg.QuoteName(name)
}

// ColumnType returns the declared type of c.
func (e *Editor) ColumnType(c Column) (string, error) {
	if c.Type != "" {
		return c.Type, nil
	}
	if c.Kind == "" {
		return "", fmt.Errorf("column %q has neither a type nor a kind", c.Name)
	}
	return dialect.ColumnType(c.Kind, c.params())
}

// columnDefinition renders everything after the column name:
// type [COLLATE c] [DEFAULT v] NULL|NOT NULL [PRIMARY KEY|UNIQUE].
func (e *Editor) columnDefinition(c Column) (string, error) {
	typ, err := e.ColumnType(c)
	if err != nil {
		return "", err
	}
	parts := []string{typ}
	if c.Collation != "" {
		if !validCollation(c.Collation) {
			return "", fmt.Errorf("column %q: invalid collation %q", c.Name, c.Collation)
		}
		parts = append(parts, "COLLATE "+c.Collation)
	}
	if c.Default != nil {
		lit, err := e.QuoteValue(c.Default)
		if err != nil {
			return "", fmt.Errorf("column %q default: %w", c.Name, err)
		}
		parts = append(parts, "DEFAULT "+lit)
	}
	if c.Null && !c.PrimaryKey {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	switch {
	case c.PrimaryKey:
		parts = append(parts, "PRIMARY KEY")
	case c.Unique:
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " "), nil
}

// CreateTable renders the CREATE TABLE statement for t followed by its
// indexes and foreign keys.
func (e *Editor) CreateTable(t Table) ([]string, error) {
	table, err := e.cfg.QuoteTable(t.Name)
	if err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", t.Name)
	}

	defs := make([]string, 0, len(t.Columns)+len(t.Unique))
	var deferred []string
	for _, c := range t.Columns {
		name, err := e.cfg.QuoteName(c.Name)
		if err != nil {
			return nil, err
		}
		def, err := e.columnDefinition(c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, name+" "+def)

		follow, err := e.columnFollowUps(t.Name, c)
		if err != nil {
			return nil, err
		}
		deferred = append(deferred, follow...)
	}
	for _, cols := range t.Unique {
		name, err := e.cfg.QuoteName(e.constraintName(t.Name, cols, "_uniq"))
		if err != nil {
			return nil, err
		}
		list, err := e.columnList(cols)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", name, list))
	}
	for _, idx := range t.Indexes {
		stmt, err := e.CreateIndex(t.Name, idx)
		if err != nil {
			return nil, err
		}
		deferred = append(deferred, stmt)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if e.cfg.AllowIdentityInsert {
		create += " WITH %CLASSPARAMETER ALLOWIDENTITYINSERT = 1"
	}
	return append([]string{create}, deferred...), nil
}

// columnFollowUps returns the index and foreign key statements a column
// needs after it exists.
func (e *Editor) columnFollowUps(table string, c Column) ([]string, error) {
	var out []string
	if (c.Index || c.References != nil) && !c.Unique && !c.PrimaryKey {
		stmt, err := e.CreateIndex(table, Index{Columns: []string{c.Name}})
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	if c.References != nil {
		stmt, err := e.AddForeignKey(table, c.Name, *c.References)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

// DeleteTable renders DROP TABLE.
func (e *Editor) DeleteTable(name string) (string, error) {
	table, err := e.cfg.QuoteTable(name)
	if err != nil {
		return "", err
	}
	return "DROP TABLE " + table + " CASCADE", nil
}

// RenameTable renders ALTER TABLE "old" RENAME "new".
func (e *Editor) RenameTable(oldName, newName string) (string, error) {
	from, err := e.cfg.QuoteTable(oldName)
	if err != nil {
		return "", err
	}
	to, err := e.cfg.QuoteTable(newName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME %s", from, to), nil
}

// AddColumn renders ADD COLUMN plus the column's index and foreign key.
func (e *Editor) AddColumn(table string, c Column) ([]string, error) {
	t, err := e.cfg.QuoteTable(table)
	if err != nil {
		return nil, err
	}
	name, err := e.cfg.QuoteName(c.Name)
	if err != nil {
		return nil, err
	}
	def, err := e.columnDefinition(c)
	if err != nil {
		return nil, err
	}
	follow, err := e.columnFollowUps(table, c)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", t, name, def)
	return append([]string{stmt}, follow...), nil
}

// DropColumn renders DROP COLUMN.
func (e *Editor) DropColumn(table, column string) (string, error) {
	return e.alterTable(table, func(t string) (string, error) {
		c, err := e.cfg.QuoteName(column)
		if err != nil {
			return "", err
		}
		return "DROP COLUMN " + c + " CASCADE", nil
	})
}

// AlterColumnType renders ALTER COLUMN "c" <type> using the type of c.
func (e *Editor) AlterColumnType(table string, c Column) (string, error) {
	typ, err := e.ColumnType(c)
	if err != nil {
		return "", err
	}
	return e.alterColumn(table, c.Name, typ)
}

// AlterColumnNull renders ALTER COLUMN "c" NULL or NOT NULL.
func (e *Editor) AlterColumnNull(table, column string, null bool) (string, error) {
	if null {
		return e.alterColumn(table, column, "NULL")
	}
	return e.alterColumn(table, column, "NOT NULL")
}

// AlterColumnDefault renders ALTER COLUMN "c" DEFAULT <literal>.
func (e *Editor) AlterColumnDefault(table, column string, v any) (string, error) {
	lit, err := e.QuoteValue(v)
	if err != nil {
		return "", err
	}
	return e.alterColumn(table, column, "DEFAULT "+lit)
}

// DropColumnDefault renders ALTER COLUMN "c" DROP DEFAULT.
func (e *Editor) DropColumnDefault(table, column string) (string, error) {
	return e.alterColumn(table, column, "DROP DEFAULT")
}

// AlterColumnCollation renders ALTER COLUMN "c" COLLATE <collation>.
func (e *Editor) AlterColumnCollation(table, column, collation string) (string, error) {
	if !validCollation(collation) {
		return "", fmt.Errorf("invalid collation %q", collation)
	}
	return e.alterColumn(table, column, "COLLATE "+collation)
}

// RenameColumn renders ALTER TABLE "t" ALTER COLUMN "a" RENAME "b".
func (e *Editor) RenameColumn(table, oldName, newName string) (string, error) {
	to, err := e.cfg.QuoteName(newName)
	if err != nil {
		return "", err
	}
	return e.alterColumn(table, oldName, "RENAME "+to)
}

func (e *Editor) alterColumn(table, column, action string) (string, error) {
	return e.alterTable(table, func(string) (string, error) {
		c, err := e.cfg.QuoteName(column)
		if err != nil {
			return "", err
		}
		return "ALTER COLUMN " + c + " " + action, nil
	})
}

func (e *Editor) alterTable(table string, change func(t string) (string, error)) (string, error) {
	t, err := e.cfg.QuoteTable(table)
	if err != nil {
		return "", err
	}
	c, err := change(t)
	if err != nil {
		return "", err
	}
	return "ALTER TABLE " + t + " " + c, nil
}

// CreateIndex renders CREATE [UNIQUE] INDEX. An unnamed index gets a
// generated name.
func (e *Editor) CreateIndex(table string, idx Index) (string, error) {
	if len(idx.Columns) == 0 {
		return "", fmt.Errorf("index on %q has no columns", table)
	}
	t, err := e.cfg.QuoteTable(table)
	if err != nil {
		return "", err
	}
	name := idx.Name
	if name == "" {
		name = e.constraintName(table, idx.Columns, "")
	}
	n, err := e.cfg.QuoteName(name)
	if err != nil {
		return "", err
	}
	list, err := e.columnList(idx.Columns)
	if err != nil {
		return "", err
	}
	kw := "INDEX"
	if idx.Unique {
		kw = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kw, n, t, list), nil
}

// DropIndex renders DROP INDEX "name" ON "t".
func (e *Editor) DropIndex(table, name string) (string, error) {
	t, err := e.cfg.QuoteTable(table)
	if err != nil {
		return "", err
	}
	n, err := e.cfg.QuoteName(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DROP INDEX %s ON %s", n, t), nil
}

// AddForeignKey renders ADD CONSTRAINT ... FOREIGN KEY with the ON DELETE
// action of ref.
func (e *Editor) AddForeignKey(table, column string, ref Reference) (string, error) {
	switch ref.OnDelete {
	case NoAction, Cascade, SetNull:
	default:
		return "", fmt.Errorf("unknown on_delete action %q", ref.OnDelete)
	}
	return e.alterTable(table, func(string) (string, error) {
		name, err := e.cfg.QuoteName(e.constraintName(table, []string{column}, "_fk_"+ref.Table+"_"+ref.Column))
		if err != nil {
			return "", err
		}
		col, err := e.cfg.QuoteName(column)
		if err != nil {
			return "", err
		}
		toTable, err := e.cfg.QuoteTable(ref.Table)
		if err != nil {
			return "", err
		}
		toCol, err := e.cfg.QuoteName(ref.Column)
		if err != nil {
			return "", err
		}
		s := fmt.Sprintf("ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)", name, col, toTable, toCol)
		if ref.OnDelete != NoAction {
			s += " ON DELETE " + string(ref.OnDelete)
		}
		return s, nil
	})
}

// AddUnique renders ADD CONSTRAINT ... UNIQUE over columns.
func (e *Editor) AddUnique(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("unique constraint on %q has no columns", table)
	}
	return e.alterTable(table, func(string) (string, error) {
		name, err := e.cfg.QuoteName(e.constraintName(table, columns, "_uniq"))
		if err != nil {
			return "", err
		}
		list, err := e.columnList(columns)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ADD CONSTRAINT %s UNIQUE (%s)", name, list), nil
	})
}

// DropConstraint renders DROP CONSTRAINT, used for foreign keys and unique
// constraints alike.
func (e *Editor) DropConstraint(table, name string) (string, error) {
	return e.alterTable(table, func(string) (string, error) {
		n, err := e.cfg.QuoteName(name)
		if err != nil {
			return "", err
		}
		return "DROP CONSTRAINT " + n, nil
	})
}

// FlushSQL renders one DELETE FROM per table. IRIS has no TRUNCATE ...
// CASCADE, so callers list referencing tables themselves.
func (e *Editor) FlushSQL(tables []string) ([]string, error) {
	out := make([]string, 0, len(tables))
	for _, name := range tables {
		t, err := e.cfg.QuoteTable(name)
		if err != nil {
			return nil, err
		}
		out = append(out, "DELETE FROM "+t)
	}
	return out, nil
}

func (e *Editor) columnList(cols []string) (string, error) {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		q, err := e.cfg.QuoteName(c)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

// validCollation accepts IRIS collation names such as %EXACT, %SQLUPPER and
// %SQLSTRING(100).
func validCollation(s string) bool {
	if len(s) < 2 || s[0] != '%' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '(' || c == ')':
		default:
			return false
		}
	}
	return true
}
