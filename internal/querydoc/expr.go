package querydoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pthm/irisql/internal/codec"
	"github.com/pthm/irisql/internal/dialect"
	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

// Expr is the document form of an expression. Exactly one of the node keys
// must be set; Storage, Kind, Keys, Type, Params, Left and Right qualify the
// node they belong to.
//
//	col: p.name              column, "p.*" or "*" for a star
//	value: 42                bound parameter; kind: DateField, TimeField,
//	                         DateTimeField or DurationField parses strings
//	raw: "? + 1"             SQL fragment with params
//	func: UPPER              function call with args
//	concat: [...]            string concatenation
//	cast: {...}              CAST(x AS type)
//	exists: {...}            EXISTS (select)
//	subquery: {...}          (select)
//	lookup: gt               comparison of left and right
//	op: "+"                  arithmetic of left and right
//	and/or: [...], not: {...}
//	list: [...]              parenthesized list, the right side of "in"
type Expr struct {
	Col     string            `json:"col,omitempty"`
	Storage string            `json:"storage,omitempty"`
	Keys    []string          `json:"keys,omitempty"`
	Value   json.RawMessage   `json:"value,omitempty"`
	Kind    dialect.FieldKind `json:"kind,omitempty"`
	Raw     string            `json:"raw,omitempty"`
	Params  []json.RawMessage `json:"params,omitempty"`

	Func   string `json:"func,omitempty"`
	Args   []Expr `json:"args,omitempty"`
	Concat []Expr `json:"concat,omitempty"`
	Cast   *Expr  `json:"cast,omitempty"`
	Type   string `json:"type,omitempty"`

	Exists   *Select `json:"exists,omitempty"`
	Subquery *Select `json:"subquery,omitempty"`

	Lookup string `json:"lookup,omitempty"`
	Op     string `json:"op,omitempty"`
	Left   *Expr  `json:"left,omitempty"`
	Right  *Expr  `json:"right,omitempty"`

	And  []Expr `json:"and,omitempty"`
	Or   []Expr `json:"or,omitempty"`
	Not  *Expr  `json:"not,omitempty"`
	List []Expr `json:"list,omitempty"`
}

func (e *Expr) nodeKeys() []string {
	var keys []string
	set := func(name string, ok bool) {
		if ok {
			keys = append(keys, name)
		}
	}
	set("col", e.Col != "")
	set("value", e.Value != nil)
	set("raw", e.Raw != "")
	set("func", e.Func != "")
	set("concat", e.Concat != nil)
	set("cast", e.Cast != nil)
	set("exists", e.Exists != nil)
	set("subquery", e.Subquery != nil)
	set("lookup", e.Lookup != "")
	set("op", e.Op != "")
	set("and", e.And != nil)
	set("or", e.Or != nil)
	set("not", e.Not != nil)
	set("list", e.List != nil)
	return keys
}

// Node converts the document to an expression tree.
func (e *Expr) Node() (sqldsl.Expr, error) {
	keys := e.nodeKeys()
	switch len(keys) {
	case 0:
		return nil, errors.New("empty expression")
	case 1:
	default:
		return nil, fmt.Errorf("expression sets more than one of %s", strings.Join(keys, ", "))
	}

	switch keys[0] {
	case "col":
		return e.column()
	case "value":
		return e.value()
	case "raw":
		args := make([]any, len(e.Params))
		for i, p := range e.Params {
			v, err := scalar(p)
			if err != nil {
				return nil, fmt.Errorf("raw param %d: %w", i+1, err)
			}
			args[i] = v
		}
		return sqldsl.Raw{SQL: e.Raw, Args: args}, nil
	case "func":
		args, err := nodes(e.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Func, err)
		}
		return sqldsl.Func{Name: e.Func, Args: args}, nil
	case "concat":
		args, err := nodes(e.Concat)
		if err != nil {
			return nil, fmt.Errorf("concat: %w", err)
		}
		return sqldsl.Concat{Args: args}, nil
	case "cast":
		if e.Type == "" {
			return nil, errors.New("cast without type")
		}
		x, err := e.Cast.Node()
		if err != nil {
			return nil, fmt.Errorf("cast: %w", err)
		}
		return sqldsl.Cast{Expr: x, Type: e.Type}, nil
	case "exists":
		q, err := e.Exists.node()
		if err != nil {
			return nil, fmt.Errorf("exists: %w", err)
		}
		return sqldsl.Exists{Query: q}, nil
	case "subquery":
		q, err := e.Subquery.node()
		if err != nil {
			return nil, fmt.Errorf("subquery: %w", err)
		}
		return sqldsl.Subquery{Query: q}, nil
	case "lookup":
		l := sqldsl.Lookup(e.Lookup)
		if !l.Valid() {
			return nil, fmt.Errorf("unknown lookup %q", e.Lookup)
		}
		left, right, err := e.operands()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Lookup, err)
		}
		return sqldsl.Compare{Lookup: l, Left: left, Right: right}, nil
	case "op":
		left, right, err := e.operands()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Op, err)
		}
		return sqldsl.Binary{Op: e.Op, Left: left, Right: right}, nil
	case "and":
		xs, err := nodes(e.And)
		if err != nil {
			return nil, fmt.Errorf("and: %w", err)
		}
		return sqldsl.AndExpr{Exprs: xs}, nil
	case "or":
		xs, err := nodes(e.Or)
		if err != nil {
			return nil, fmt.Errorf("or: %w", err)
		}
		return sqldsl.OrExpr{Exprs: xs}, nil
	case "not":
		x, err := e.Not.Node()
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return sqldsl.NotExpr{Expr: x}, nil
	default: // list
		xs, err := nodes(e.List)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		return sqldsl.List(xs), nil
	}
}

func (e *Expr) column() (sqldsl.Expr, error) {
	table, name := splitQualified(e.Col)
	if name == "*" {
		return sqldsl.Star{Table: table}, nil
	}
	c := sqldsl.C(table, name)
	if e.Storage != "" {
		c = c.Typed(e.Storage)
	}
	if len(e.Keys) > 0 {
		return sqldsl.KeyAccess{Container: c, Keys: e.Keys}, nil
	}
	return c, nil
}

func (e *Expr) operands() (sqldsl.Expr, sqldsl.Expr, error) {
	if e.Left == nil || e.Right == nil {
		return nil, nil, errors.New("needs left and right")
	}
	left, err := e.Left.Node()
	if err != nil {
		return nil, nil, err
	}
	right, err := e.Right.Node()
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// value decodes the literal and applies its kind. Date, time and datetime
// literals are written as strings in the IRIS text formats; datetimes may
// also carry an RFC 3339 offset.
func (e *Expr) value() (sqldsl.Expr, error) {
	v, err := scalar(e.Value)
	if err != nil {
		return nil, err
	}
	s, isString := v.(string)
	if e.Kind == "" || v == nil || !isString {
		return sqldsl.Value{V: v, Kind: e.Kind}, nil
	}

	switch e.Kind {
	case dialect.DateField:
		t, err := codec.DecodeDate(s)
		if err != nil {
			return nil, err
		}
		return sqldsl.Value{V: t, Kind: dialect.DateField}, nil
	case dialect.TimeField:
		d, err := codec.DecodeTime(s)
		if err != nil {
			return nil, err
		}
		return sqldsl.Value{V: d, Kind: dialect.TimeField}, nil
	case dialect.DateTimeField:
		t, err := parseDatetime(s)
		if err != nil {
			return nil, err
		}
		return sqldsl.Value{V: t, Kind: dialect.DateTimeField}, nil
	case dialect.DurationField:
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return sqldsl.Value{V: d, Kind: dialect.DurationField}, nil
	}
	return sqldsl.Value{V: s, Kind: e.Kind}, nil
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// scalar decodes a JSON literal. Integral numbers become int64.
func scalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid value: %w", err)
	}
	return normalize(v)
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		return x.Float64()
	case map[string]any, []any:
		return nil, fmt.Errorf("value must be a scalar, got %T", v)
	}
	return v, nil
}

func nodes(docs []Expr) ([]sqldsl.Expr, error) {
	out := make([]sqldsl.Expr, len(docs))
	for i := range docs {
		x, err := docs[i].Node()
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func splitQualified(s string) (string, string) {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}
