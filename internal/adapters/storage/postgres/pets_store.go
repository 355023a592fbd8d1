package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"pets-provider/internal/domain/pets"
)

// ErrStoreClosed se devuelve en cualquier operación posterior a Close.
var ErrStoreClosed = errors.New("postgres: store closed")

// PetsStore implementa pets.Store sobre Postgres.
// La conexión se abre recién en el primer uso y se comparte de ahí en más;
// lectura y escritura usan el mismo pool. Si la apertura falla, el error
// queda cacheado (no se reintenta).
type PetsStore struct {
	opts Options
	open func(Options) (*sql.DB, error)

	mu      sync.Mutex
	opened  bool
	closed  bool
	db      *sql.DB
	openErr error
}

func NewPetsStore(opts Options) *PetsStore {
	return &PetsStore{opts: opts, open: Open}
}

// NewPetsStoreWithDB usa un *sql.DB ya abierto (tests, o si el caller maneja el pool).
func NewPetsStoreWithDB(db *sql.DB) *PetsStore {
	return &PetsStore{db: db, opened: true}
}

func (s *PetsStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if !s.opened {
		s.opened = true
		s.db, s.openErr = s.open(s.opts)
	}
	return s.db, s.openErr
}

// Close cierra el pool si llegó a abrirse. Después de Close el store no
// vuelve a abrir conexiones.
func (s *PetsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PetsStore) Query(ctx context.Context, table string, q pets.QuerySpec) (pets.Cursor, error) {
	query, args, err := buildSelect(table, q)
	if err != nil {
		return nil, &pets.StorageError{Code: pets.StorageInvalidFilter, Err: err}
	}

	db, err := s.handle()
	if err != nil {
		return nil, classify(err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, classify(err)
	}
	return &rowsCursor{rows: rows, columns: columns}, nil
}

func (s *PetsStore) Insert(ctx context.Context, table string, values pets.Values) (int64, error) {
	query, args := buildInsert(table, values)

	db, err := s.handle()
	if err != nil {
		return -1, classify(err)
	}

	var id int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return -1, classify(err)
	}
	return id, nil
}

func (s *PetsStore) Update(ctx context.Context, table string, values pets.Values, sel pets.Selection) (int64, error) {
	query, args, err := buildUpdate(table, values, sel)
	if err != nil {
		return 0, &pets.StorageError{Code: pets.StorageInvalidFilter, Err: err}
	}
	return s.exec(ctx, query, args)
}

func (s *PetsStore) Delete(ctx context.Context, table string, sel pets.Selection) (int64, error) {
	query, args, err := buildDelete(table, sel)
	if err != nil {
		return 0, &pets.StorageError{Code: pets.StorageInvalidFilter, Err: err}
	}
	return s.exec(ctx, query, args)
}

func (s *PetsStore) exec(ctx context.Context, query string, args []any) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, classify(err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// rowsCursor adapta *sql.Rows a pets.Cursor. Las filas se leen de a una.
type rowsCursor struct {
	rows    *sql.Rows
	columns []string
	current pets.Values
	err     error
}

func (c *rowsCursor) Columns() []string { return c.columns }

func (c *rowsCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	dest := make([]any, len(c.columns))
	ptrs := make([]any, len(c.columns))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = classify(err)
		return false
	}

	row := make(pets.Values, len(c.columns))
	for i, col := range c.columns {
		if b, ok := dest[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = dest[i]
	}
	c.current = row
	return true
}

func (c *rowsCursor) Row() pets.Values { return c.current }

func (c *rowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return classify(c.rows.Err())
}

func (c *rowsCursor) Close() error {
	return c.rows.Close()
}
