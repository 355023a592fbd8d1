package memory

import (
	"errors"
	"fmt"
	"strings"

	"pets-provider/internal/domain/pets"
)

// El fake no es un motor SQL: entiende conjunciones (AND) de comparaciones
// "col OP ?" y "col IS [NOT] NULL". Alcanza para lo que arma el Provider
// (_id = ?) y para los filtros típicos de la UI.

var errUnsupportedFilter = errors.New("unsupported filter")

type op string

const (
	opEq        op = "="
	opNe        op = "!="
	opLt        op = "<"
	opLe        op = "<="
	opGt        op = ">"
	opGe        op = ">="
	opIsNull    op = "IS NULL"
	opIsNotNull op = "IS NOT NULL"
)

type cond struct {
	column string
	op     op
	arg    any
}

type filter []cond

// parseFilter traduce Selection a condiciones. Where vacío = todas las filas.
func parseFilter(sel pets.Selection) (filter, error) {
	where := strings.TrimSpace(sel.Where)
	if where == "" {
		if len(sel.Args) > 0 {
			return nil, invalidFilter(fmt.Errorf("%d args without placeholders", len(sel.Args)))
		}
		return filter{}, nil
	}

	args := sel.Args
	out := filter{}
	for _, term := range splitAnd(where) {
		c, usesArg, err := parseCond(term)
		if err != nil {
			return nil, invalidFilter(err)
		}
		if usesArg {
			if len(args) == 0 {
				return nil, invalidFilter(errors.New("not enough args for placeholders"))
			}
			c.arg = args[0]
			args = args[1:]
		}
		out = append(out, c)
	}
	if len(args) > 0 {
		return nil, invalidFilter(fmt.Errorf("%d unused args", len(args)))
	}
	return out, nil
}

func splitAnd(where string) []string {
	fields := strings.Fields(where)
	terms := make([]string, 0)
	cur := make([]string, 0)
	for _, f := range fields {
		if strings.EqualFold(f, "AND") {
			terms = append(terms, strings.Join(cur, " "))
			cur = cur[:0]
			continue
		}
		cur = append(cur, f)
	}
	return append(terms, strings.Join(cur, " "))
}

func parseCond(term string) (cond, bool, error) {
	upper := strings.ToUpper(term)
	for _, suffix := range []op{opIsNotNull, opIsNull} {
		if strings.HasSuffix(upper, " "+string(suffix)) {
			col := strings.TrimSpace(term[:len(term)-len(suffix)])
			if !pets.IsKnownColumn(col) {
				return cond{}, false, fmt.Errorf("unknown column %q", col)
			}
			return cond{column: col, op: suffix}, false, nil
		}
	}

	// Operadores de dos caracteres primero para no partir "<=" en "<".
	for _, o := range []string{"<=", ">=", "!=", "<>", "=", "<", ">"} {
		i := strings.Index(term, o)
		if i < 0 {
			continue
		}
		col := strings.TrimSpace(term[:i])
		rhs := strings.TrimSpace(term[i+len(o):])
		if !pets.IsKnownColumn(col) {
			return cond{}, false, fmt.Errorf("unknown column %q", col)
		}
		if rhs != "?" {
			return cond{}, false, fmt.Errorf("only ? placeholders are supported, got %q", rhs)
		}
		if o == "<>" {
			o = string(opNe)
		}
		return cond{column: col, op: op(o)}, true, nil
	}
	return cond{}, false, fmt.Errorf("cannot parse %q", term)
}

func (f filter) matches(row pets.Values) bool {
	for _, c := range f {
		if !c.matches(row[c.column]) {
			return false
		}
	}
	return true
}

func (c cond) matches(v any) bool {
	switch c.op {
	case opIsNull:
		return v == nil
	case opIsNotNull:
		return v != nil
	}
	// Como en SQL: cualquier comparación contra NULL es falsa.
	if v == nil || c.arg == nil {
		return false
	}
	cmp := compare(c.column, v, c.arg)
	switch c.op {
	case opEq:
		return cmp == 0
	case opNe:
		return cmp != 0
	case opLt:
		return cmp < 0
	case opLe:
		return cmp <= 0
	case opGt:
		return cmp > 0
	case opGe:
		return cmp >= 0
	default:
		return false
	}
}

// compare usa orden numérico en columnas enteras y orden de texto en el resto.
func compare(column string, a, b any) int {
	va, vb := pets.Values{"a": a}, pets.Values{"b": b}
	if isIntegerColumn(column) {
		x, okA := va.Int64("a")
		y, okB := vb.Int64("b")
		if okA && okB {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	sa, _ := va.String("a")
	sb, _ := vb.String("b")
	return strings.Compare(sa, sb)
}

func invalidFilter(err error) error {
	return &pets.StorageError{
		Code: pets.StorageInvalidFilter,
		Err:  fmt.Errorf("%w: %v", errUnsupportedFilter, err),
	}
}

func isIntegerColumn(column string) bool {
	switch column {
	case pets.ColumnID, pets.ColumnGender, pets.ColumnWeight:
		return true
	default:
		return false
	}
}
