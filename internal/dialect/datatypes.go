package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind is the portable name of a column's logical type.
type FieldKind string

const (
	AutoField                 FieldKind = "AutoField"
	BigAutoField              FieldKind = "BigAutoField"
	SmallAutoField            FieldKind = "SmallAutoField"
	BinaryField               FieldKind = "BinaryField"
	BooleanField              FieldKind = "BooleanField"
	CharField                 FieldKind = "CharField"
	DateField                 FieldKind = "DateField"
	DateTimeField             FieldKind = "DateTimeField"
	DecimalField              FieldKind = "DecimalField"
	DurationField             FieldKind = "DurationField"
	FileField                 FieldKind = "FileField"
	FilePathField             FieldKind = "FilePathField"
	FloatField                FieldKind = "FloatField"
	IntegerField              FieldKind = "IntegerField"
	BigIntegerField           FieldKind = "BigIntegerField"
	SmallIntegerField         FieldKind = "SmallIntegerField"
	IPAddressField            FieldKind = "IPAddressField"
	GenericIPAddressField     FieldKind = "GenericIPAddressField"
	JSONField                 FieldKind = "JSONField"
	OneToOneField             FieldKind = "OneToOneField"
	PositiveBigIntegerField   FieldKind = "PositiveBigIntegerField"
	PositiveIntegerField      FieldKind = "PositiveIntegerField"
	PositiveSmallIntegerField FieldKind = "PositiveSmallIntegerField"
	SlugField                 FieldKind = "SlugField"
	TextField                 FieldKind = "TextField"
	TimeField                 FieldKind = "TimeField"
	UUIDField                 FieldKind = "UUIDField"
)

// dataTypes maps field kinds to IRIS column type templates. Placeholders are
// %(max_length)s, %(max_digits)s and %(decimal_places)s.
var dataTypes = map[FieldKind]string{
	AutoField:                 "INTEGER AUTO_INCREMENT",
	BigAutoField:              "BIGINT AUTO_INCREMENT",
	BinaryField:               "LONG BINARY",
	BooleanField:              "BIT",
	CharField:                 "VARCHAR(%(max_length)s)",
	DateField:                 "DATE",
	DateTimeField:             "TIMESTAMP",
	DecimalField:              "NUMERIC(%(max_digits)s, %(decimal_places)s)",
	DurationField:             "BIGINT",
	FileField:                 "VARCHAR(%(max_length)s)",
	FilePathField:             "VARCHAR(%(max_length)s)",
	FloatField:                "DOUBLE PRECISION",
	IntegerField:              "INTEGER",
	BigIntegerField:           "BIGINT",
	IPAddressField:            "CHAR(15)",
	GenericIPAddressField:     "CHAR(39)",
	JSONField:                 "VARCHAR(32768)",
	OneToOneField:             "INTEGER",
	PositiveBigIntegerField:   "BIGINT",
	PositiveIntegerField:      "INTEGER",
	PositiveSmallIntegerField: "SMALLINT",
	SlugField:                 "VARCHAR(%(max_length)s)",
	SmallAutoField:            "SMALLINT AUTO_INCREMENT",
	SmallIntegerField:         "SMALLINT",
	// Streams are not supported by the DB-API driver yet.
	TextField: "VARCHAR(255)",
	TimeField: "TIME(6)",
	UUIDField: "CHAR(32)",
}

// dataTypesReverse maps INFORMATION_SCHEMA data types back to field kinds.
var dataTypesReverse = map[string]FieldKind{
	"bigint":        BigIntegerField,
	"varchar":       CharField,
	"integer":       IntegerField,
	"bit":           BooleanField,
	"date":          DateField,
	"timestamp":     DateTimeField,
	"numeric":       IntegerField,
	"double":        FloatField,
	"varbinary":     BinaryField,
	"longvarchar":   TextField,
	"longvarbinary": BinaryField,
	"time":          TimeField,
	"smallint":      SmallIntegerField,
	"tinyint":       SmallIntegerField,
}

// TypeParams carries the size parameters substituted into type templates.
type TypeParams struct {
	MaxLength     int
	MaxDigits     int
	DecimalPlaces int
}

// ColumnType renders the column type for kind.
func ColumnType(kind FieldKind, p TypeParams) (string, error) {
	tmpl, ok := dataTypes[kind]
	if !ok {
		return "", fmt.Errorf("no IRIS column type for field kind %q", kind)
	}
	if strings.Contains(tmpl, "%(max_length)s") && p.MaxLength <= 0 {
		return "", fmt.Errorf("field kind %q requires max_length", kind)
	}
	if strings.Contains(tmpl, "%(max_digits)s") && p.MaxDigits <= 0 {
		return "", fmt.Errorf("field kind %q requires max_digits", kind)
	}
	r := strings.NewReplacer(
		"%(max_length)s", strconv.Itoa(p.MaxLength),
		"%(max_digits)s", strconv.Itoa(p.MaxDigits),
		"%(decimal_places)s", strconv.Itoa(p.DecimalPlaces),
	)
	return r.Replace(tmpl), nil
}

// KindForDataType maps an introspected data type to a field kind. Unknown
// types report ok=false.
func KindForDataType(dataType string) (FieldKind, bool) {
	k, ok := dataTypesReverse[strings.ToLower(strings.TrimSpace(dataType))]
	return k, ok
}

// IsAutoIncrement reports whether kind is an identity column kind.
func (k FieldKind) IsAutoIncrement() bool {
	switch k {
	case AutoField, BigAutoField, SmallAutoField:
		return true
	}
	return false
}
