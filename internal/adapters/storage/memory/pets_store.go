package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pets-provider/internal/domain/pets"
)

var (
	ErrUnknownTable = errors.New("unknown table")
)

// petStore es un pets.Store en memoria con las mismas restricciones que la
// tabla real: _id autoincremental, name y gender NOT NULL (gender con
// default 0), weight >= 0.
type petStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]pets.Values
}

func NewPetStore() pets.Store {
	return &petStore{
		nextID: 1,
		byID:   make(map[int64]pets.Values),
	}
}

func (s *petStore) Query(ctx context.Context, table string, q pets.QuerySpec) (pets.Cursor, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	f, err := parseFilter(q.Selection)
	if err != nil {
		return nil, err
	}
	order := pets.ParseOrder(q.OrderBy)
	if order == nil {
		return nil, invalidFilter(fmt.Errorf("invalid order %q", q.OrderBy))
	}

	columns := q.Projection
	if len(columns) == 0 {
		columns = pets.Columns
	}

	s.mu.RLock()
	matched := make([]pets.Values, 0)
	for _, row := range s.byID {
		if f.matches(row) {
			matched = append(matched, row)
		}
	}
	s.mu.RUnlock()

	sortRows(matched, order)

	// Copiamos solo las columnas proyectadas: el cursor no comparte mapas
	// con el store.
	rows := make([]pets.Values, 0, len(matched))
	for _, row := range matched {
		out := make(pets.Values, len(columns))
		for _, c := range columns {
			out[c] = row[c]
		}
		rows = append(rows, out)
	}

	return &cursor{columns: append([]string(nil), columns...), rows: rows, pos: -1}, nil
}

func (s *petStore) Insert(ctx context.Context, table string, values pets.Values) (int64, error) {
	if err := checkTable(table); err != nil {
		return -1, err
	}

	row := pets.Values{}
	for _, c := range pets.Columns {
		row[c] = nil
	}
	row[pets.ColumnGender] = int64(pets.GenderUnknown)
	for k, v := range values {
		if k == pets.ColumnID || !pets.IsKnownColumn(k) {
			return -1, &pets.StorageError{Code: pets.StorageOther, Column: k, Err: errors.New("no such column")}
		}
		row[k] = normalize(k, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkRow(row); err != nil {
		return -1, err
	}

	id := s.nextID
	s.nextID++
	row[pets.ColumnID] = id
	s.byID[id] = row
	return id, nil
}

func (s *petStore) Update(ctx context.Context, table string, values pets.Values, sel pets.Selection) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	f, err := parseFilter(sel)
	if err != nil {
		return 0, err
	}
	for k := range values {
		if k == pets.ColumnID || !pets.IsKnownColumn(k) {
			return 0, &pets.StorageError{Code: pets.StorageOther, Column: k, Err: errors.New("no such column")}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Primero armamos y validamos todas las filas nuevas; si alguna viola una
	// restricción no se aplica ninguna (una sentencia = atómica).
	updated := make(map[int64]pets.Values)
	for id, row := range s.byID {
		if !f.matches(row) {
			continue
		}
		next := make(pets.Values, len(row))
		for k, v := range row {
			next[k] = v
		}
		for k, v := range values {
			next[k] = normalize(k, v)
		}
		if err := checkRow(next); err != nil {
			return 0, err
		}
		updated[id] = next
	}

	for id, row := range updated {
		s.byID[id] = row
	}
	return int64(len(updated)), nil
}

func (s *petStore) Delete(ctx context.Context, table string, sel pets.Selection) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	f, err := parseFilter(sel)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, row := range s.byID {
		if f.matches(row) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

func checkTable(table string) error {
	if table != pets.TableName {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return nil
}

// checkRow replica las restricciones de la tabla.
func checkRow(row pets.Values) error {
	for _, c := range []string{pets.ColumnName, pets.ColumnGender} {
		if row[c] == nil {
			return &pets.StorageError{Code: pets.StorageNotNullViolation, Column: c}
		}
	}
	if w, ok := row.Int64(pets.ColumnWeight); ok && w < 0 {
		return &pets.StorageError{Code: pets.StorageCheckViolation, Column: pets.ColumnWeight}
	}
	return nil
}

// normalize guarda enteros como int64 y texto como string, como haría el motor.
func normalize(column string, v any) any {
	return pets.Values{column: v}.Normalized()[column]
}

// sortRows ordena por los términos dados; sin términos, por _id. NULL primero.
func sortRows(rows []pets.Values, order []pets.OrderTerm) {
	if len(order) == 0 {
		order = []pets.OrderTerm{{Column: pets.ColumnID}}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range order {
			a, b := rows[i][t.Column], rows[j][t.Column]
			var cmp int
			switch {
			case a == nil && b == nil:
				cmp = 0
			case a == nil:
				cmp = -1
			case b == nil:
				cmp = 1
			default:
				cmp = compare(t.Column, a, b)
			}
			if cmp == 0 {
				continue
			}
			if t.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

type cursor struct {
	columns []string
	rows    []pets.Values
	pos     int
	closed  bool
}

func (c *cursor) Columns() []string { return c.columns }

func (c *cursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *cursor) Row() pets.Values {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

func (c *cursor) Err() error { return nil }

func (c *cursor) Close() error {
	c.closed = true
	return nil
}
