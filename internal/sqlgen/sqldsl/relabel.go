package sqldsl

// Relabel returns a copy of e with every column's table reference renamed
// according to change. The input tree is not modified. Nested statements
// (Exists, Subquery) open their own scope and are left as they are.
func Relabel(e Expr, change map[string]string) Expr {
	if e == nil || len(change) == 0 {
		return e
	}
	switch n := e.(type) {
	case Col:
		if to, ok := change[n.Table]; ok {
			n.Table = to
		}
		return n
	case Star:
		if to, ok := change[n.Table]; ok {
			n.Table = to
		}
		return n
	case Func:
		return Func{Name: n.Name, Args: relabelAll(n.Args, change)}
	case Concat:
		return Concat{Args: relabelAll(n.Args, change)}
	case Cast:
		return Cast{Expr: Relabel(n.Expr, change), Type: n.Type}
	case KeyAccess:
		c, _ := Relabel(n.Container, change).(Col)
		return KeyAccess{Container: c, Keys: append([]string(nil), n.Keys...)}
	case Binary:
		return Binary{Op: n.Op, Left: Relabel(n.Left, change), Right: Relabel(n.Right, change)}
	case Compare:
		return Compare{Lookup: n.Lookup, Left: Relabel(n.Left, change), Right: Relabel(n.Right, change)}
	case List:
		return List(relabelAll(n, change))
	case AndExpr:
		return AndExpr{Exprs: relabelAll(n.Exprs, change)}
	case OrExpr:
		return OrExpr{Exprs: relabelAll(n.Exprs, change)}
	case NotExpr:
		return NotExpr{Expr: Relabel(n.Expr, change)}
	}
	return e
}

func relabelAll(exprs []Expr, change map[string]string) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Relabel(e, change)
	}
	return out
}
