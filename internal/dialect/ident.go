package dialect

import (
	"strings"

	"github.com/pthm/irisql"
)

// IsQuoted reports whether name is already a delimited identifier.
func IsQuoted(name string) bool {
	return len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`)
}

// QuoteName quotes an identifier. Names that are already quoted are returned
// unchanged; dotted names are quoted per segment. Every segment is checked
// against MaxNameLength.
func (c Config) QuoteName(name string) (string, error) {
	if IsQuoted(name) {
		if err := c.checkSegment(name, name[1:len(name)-1]); err != nil {
			return "", err
		}
		return name, nil
	}
	if name == "" {
		return "", &irisql.IdentifierError{Name: name, Reason: "empty identifier"}
	}
	segments := strings.Split(name, ".")
	for i, seg := range segments {
		if err := c.checkSegment(name, seg); err != nil {
			return "", err
		}
		segments[i] = `"` + seg + `"`
	}
	return strings.Join(segments, "."), nil
}

// QuoteTable quotes a table name. Unlike QuoteName it rejects dots, which IRIS
// reserves for schema qualification.
func (c Config) QuoteTable(name string) (string, error) {
	bare := name
	if IsQuoted(name) {
		bare = name[1 : len(name)-1]
	}
	if strings.Contains(bare, ".") {
		return "", &irisql.IdentifierError{Name: name, Reason: "table names must not contain '.'"}
	}
	return c.QuoteName(name)
}

func (c Config) checkSegment(name, seg string) error {
	switch {
	case seg == "":
		return &irisql.IdentifierError{Name: name, Reason: "empty identifier segment"}
	case strings.Contains(seg, `"`):
		return &irisql.IdentifierError{Name: name, Reason: "contains a double quote"}
	case c.MaxNameLength > 0 && len(seg) > c.MaxNameLength:
		return &irisql.IdentifierError{Name: name, Reason: "longer than the identifier length limit"}
	}
	return nil
}
