package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"pets-provider/internal/domain/pets"

	"github.com/jackc/pgx/v5"
)

// Armado de SQL. Son funciones puras para poder testearlas sin base.

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// rebind traduce placeholders "?" a "$n" empezando en start+1.
// Respeta literales entre comillas simples ('a?b' queda igual).
func rebind(where string, start int) (string, int) {
	var b strings.Builder
	n := start
	inQuote := false
	for _, r := range where {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString("$" + strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), n - start
}

func whereClause(sel pets.Selection, start int) (string, error) {
	where := strings.TrimSpace(sel.Where)
	if where == "" {
		if len(sel.Args) > 0 {
			return "", fmt.Errorf("postgres: %d args without a filter", len(sel.Args))
		}
		return "", nil
	}
	bound, placeholders := rebind(where, start)
	if placeholders != len(sel.Args) {
		return "", fmt.Errorf("postgres: filter has %d placeholders but %d args", placeholders, len(sel.Args))
	}
	return " WHERE " + bound, nil
}

func buildSelect(table string, q pets.QuerySpec) (string, []any, error) {
	columns := q.Projection
	if len(columns) == 0 {
		columns = pets.Columns
	}
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if !pets.IsKnownColumn(c) {
			return "", nil, fmt.Errorf("postgres: unknown column %q", c)
		}
		cols = append(cols, ident(c))
	}

	where, err := whereClause(q.Selection, 0)
	if err != nil {
		return "", nil, err
	}

	order := pets.ParseOrder(q.OrderBy)
	if order == nil {
		return "", nil, fmt.Errorf("postgres: invalid order %q", q.OrderBy)
	}
	orderBy := ""
	if len(order) > 0 {
		terms := make([]string, 0, len(order))
		for _, t := range order {
			dir := "ASC"
			if t.Desc {
				dir = "DESC"
			}
			terms = append(terms, ident(t.Column)+" "+dir)
		}
		orderBy = " ORDER BY " + strings.Join(terms, ", ")
	}

	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + ident(table) + where + orderBy
	return query, q.Selection.Args, nil
}

func buildInsert(table string, values pets.Values) (string, []any) {
	if len(values) == 0 {
		return "INSERT INTO " + ident(table) + " DEFAULT VALUES RETURNING " + ident(pets.ColumnID), nil
	}

	keys := values.Keys()
	cols := make([]string, 0, len(keys))
	marks := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		cols = append(cols, ident(k))
		marks = append(marks, "$"+strconv.Itoa(i+1))
		args = append(args, values[k])
	}

	query := "INSERT INTO " + ident(table) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")" +
		" RETURNING " + ident(pets.ColumnID)
	return query, args
}

func buildUpdate(table string, values pets.Values, sel pets.Selection) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("postgres: update without values")
	}

	keys := values.Keys()
	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+len(sel.Args))
	for i, k := range keys {
		sets = append(sets, ident(k)+" = $"+strconv.Itoa(i+1))
		args = append(args, values[k])
	}

	where, err := whereClause(sel, len(keys))
	if err != nil {
		return "", nil, err
	}
	args = append(args, sel.Args...)

	return "UPDATE " + ident(table) + " SET " + strings.Join(sets, ", ") + where, args, nil
}

func buildDelete(table string, sel pets.Selection) (string, []any, error) {
	where, err := whereClause(sel, 0)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + ident(table) + where, sel.Args, nil
}
