package ddl

import "github.com/pthm/irisql/internal/dialect"

// OnDelete is the referential action of a foreign key.
type OnDelete string

const (
	// NoAction leaves the ON DELETE clause out.
	NoAction OnDelete = ""
	Cascade  OnDelete = "CASCADE"
	SetNull  OnDelete = "SET NULL"
)

// Reference is the target of a foreign key column.
type Reference struct {
	Table    string   `json:"table"`
	Column   string   `json:"column"`
	OnDelete OnDelete `json:"on_delete,omitempty"`
}

// Column describes one column of a table.
type Column struct {
	Name string            `json:"name"`
	Kind dialect.FieldKind `json:"kind,omitempty"`

	// Type overrides the type derived from Kind.
	Type          string `json:"type,omitempty"`
	MaxLength     int    `json:"max_length,omitempty"`
	MaxDigits     int    `json:"max_digits,omitempty"`
	DecimalPlaces int    `json:"decimal_places,omitempty"`

	Null       bool `json:"null,omitempty"`
	PrimaryKey bool `json:"primary_key,omitempty"`
	Unique     bool `json:"unique,omitempty"`
	Index      bool `json:"index,omitempty"`

	// Default is rendered as a literal with QuoteValue. A nil Default means
	// no DEFAULT clause.
	Default    any        `json:"default,omitempty"`
	Collation  string     `json:"collation,omitempty"`
	References *Reference `json:"references,omitempty"`
}

// Index describes a secondary index.
type Index struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// Table is the input of CreateTable.
type Table struct {
	Name    string     `json:"name"`
	Columns []Column   `json:"columns"`
	Unique  [][]string `json:"unique,omitempty"`
	Indexes []Index    `json:"indexes,omitempty"`
}

// PrimaryKey returns the primary key column name, or "".
func (t Table) PrimaryKey() string {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c.Name
		}
	}
	return ""
}

func (c Column) params() dialect.TypeParams {
	return dialect.TypeParams{
		MaxLength:     c.MaxLength,
		MaxDigits:     c.MaxDigits,
		DecimalPlaces: c.DecimalPlaces,
	}
}
