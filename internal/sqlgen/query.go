package sqlgen

import (
	"fmt"
	"strings"
)

// Query is rendered SQL text with its positional parameters. Every ? marker
// outside string literals and delimited identifiers has exactly one
// corresponding entry in Args.
type Query struct {
	SQL  string
	Args []any
}

// String returns the SQL text.
func (q Query) String() string {
	return q.SQL
}

// Validate checks the placeholder invariant.
func (q Query) Validate() error {
	if n := CountPlaceholders(q.SQL); n != len(q.Args) {
		return fmt.Errorf("query has %d placeholders but %d args: %s", n, len(q.Args), q.SQL)
	}
	return nil
}

// CountPlaceholders counts ? markers that are not inside '...' string
// literals or "..." delimited identifiers.
func CountPlaceholders(sql string) int {
	n := 0
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				// a doubled quote is an escaped quote character
				if i+1 < len(sql) && sql[i+1] == quote {
					i++
					continue
				}
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
		}
	}
	return n
}

// builder accumulates SQL text and args in lockstep.
type builder struct {
	sb   strings.Builder
	args []any
}

func (b *builder) write(s string) {
	b.sb.WriteString(s)
}

func (b *builder) writef(format string, args ...any) {
	fmt.Fprintf(&b.sb, format, args...)
}

// param writes a single placeholder bound to v.
func (b *builder) param(v any) {
	b.sb.WriteByte('?')
	b.args = append(b.args, v)
}

// add appends a rendered fragment.
func (b *builder) add(q Query) {
	b.sb.WriteString(q.SQL)
	b.args = append(b.args, q.Args...)
}

func (b *builder) len() int {
	return b.sb.Len()
}

func (b *builder) query() Query {
	return Query{SQL: b.sb.String(), Args: b.args}
}

// joinQueries joins fragments with sep, keeping args in order.
func joinQueries(parts []Query, sep string) Query {
	var b builder
	for i, p := range parts {
		if i > 0 {
			b.write(sep)
		}
		b.add(p)
	}
	return b.query()
}
