package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pthm/irisql/internal/sqlgen/sqldsl"
)

var funcName = regexp.MustCompile(`^[A-Za-z_%$][A-Za-z0-9_%$.]*$`)

// function renders a call, applying the IRIS specific rewrites.
func (r *Renderer) function(b *builder, f sqldsl.Func) error {
	if !funcName.MatchString(f.Name) {
		return fmt.Errorf("invalid function name %q", f.Name)
	}
	name := strings.ToUpper(f.Name)

	switch name {
	case "RANDOM":
		b.writef("%s(%d)", r.cfg.RandomFunction, r.cfg.RandomUpperBound)
		return nil

	case "NOW", "CURRENT_TIMESTAMP":
		b.writef("CURRENT_TIMESTAMP(%d)", r.cfg.CurrentTimestampPrecision)
		return nil

	case "CONCAT":
		return r.concat(b, f.Args)

	case "INSTR", "STRPOS":
		return r.call(b, "INSTR", r.wrapLargeText(f.Args), false)

	case "POSITION":
		// POSITION(sub IN str) names the needle first
		if len(f.Args) != 2 {
			return fmt.Errorf("POSITION takes two arguments, got %d", len(f.Args))
		}
		return r.call(b, "INSTR", r.wrapLargeText([]sqldsl.Expr{f.Args[1], f.Args[0]}), false)

	case "LN":
		// IRIS spells the natural logarithm LOG
		if len(f.Args) != 1 {
			return fmt.Errorf("LN takes one argument, got %d", len(f.Args))
		}
		return r.call(b, "LOG", f.Args, r.cfg.Escaped("LN"))

	case "LOG":
		if len(f.Args) == 2 {
			return r.changeOfBase(b, f.Args[0], f.Args[1])
		}
	}

	return r.call(b, name, f.Args, r.cfg.Escaped(name))
}

// changeOfBase renders log(base, x) as LOG10(x) / LOG10(base).
func (r *Renderer) changeOfBase(b *builder, base, x sqldsl.Expr) error {
	b.write("(")
	if err := r.call(b, "LOG10", []sqldsl.Expr{x}, false); err != nil {
		return err
	}
	b.write(" / ")
	if err := r.call(b, "LOG10", []sqldsl.Expr{base}, false); err != nil {
		return err
	}
	b.write(")")
	return nil
}

// call renders NAME(args), wrapped in {fn ...} when escaped.
func (r *Renderer) call(b *builder, name string, args []sqldsl.Expr, escaped bool) error {
	if escaped {
		b.write("{fn ")
	}
	b.write(name + "(")
	for i, a := range args {
		if i > 0 {
			b.write(", ")
		}
		if err := r.expr(b, a, scalarCtx); err != nil {
			return err
		}
	}
	b.write(")")
	if escaped {
		b.write("}")
	}
	return nil
}

// concat renders ('' || a || b). Stream columns are converted to VARCHAR
// first. The leading empty string makes the result NULL only when no argument
// is non-NULL in IRIS, which differs from standard || semantics.
func (r *Renderer) concat(b *builder, args []sqldsl.Expr) error {
	if len(args) == 0 {
		b.write("''")
		return nil
	}
	b.write("(''")
	for _, a := range r.wrapLargeText(args) {
		b.write(" || ")
		if err := r.expr(b, a, scalarCtx); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

// wrapLargeText returns a copy of args with stream columns wrapped in
// CONVERT(VARCHAR, col). args itself is not modified.
func (r *Renderer) wrapLargeText(args []sqldsl.Expr) []sqldsl.Expr {
	out := make([]sqldsl.Expr, len(args))
	for i, a := range args {
		if c, ok := a.(sqldsl.Col); ok && r.cfg.IsLargeText(c.Storage) {
			out[i] = sqldsl.Func{Name: "CONVERT", Args: []sqldsl.Expr{sqldsl.Raw{SQL: "VARCHAR"}, c}}
			continue
		}
		out[i] = a
	}
	return out
}
