package pets

import "context"

// Selection es el filtro parametrizado: Where usa "?" como placeholder y
// Args aporta los valores en orden. Where vacío = sin filtro.
type Selection struct {
	Where string
	Args  []any
}

// QuerySpec es todo lo que necesita el storage para leer.
type QuerySpec struct {
	Projection []string // vacío = todas las columnas
	Selection  Selection
	OrderBy    string
}

// Store es el handle al motor relacional, inyectado en el Provider.
// Cada método es una única sentencia contra una tabla.
type Store interface {
	Query(ctx context.Context, table string, q QuerySpec) (Cursor, error)
	// Insert devuelve el _id asignado por el motor.
	Insert(ctx context.Context, table string, values Values) (int64, error)
	Update(ctx context.Context, table string, values Values, sel Selection) (int64, error)
	Delete(ctx context.Context, table string, sel Selection) (int64, error)
}

// Cursor es una secuencia perezosa de filas. El que lo recibe lo cierra.
type Cursor interface {
	Columns() []string
	Next() bool
	// Row devuelve la fila actual como columna -> valor (nil = NULL).
	Row() Values
	Err() error
	Close() error
}

// ScanPet arma un Pet a partir de una fila con todas las columnas.
func ScanPet(row Values) Pet {
	p := Pet{}
	p.ID, _ = row.Int64(ColumnID)
	p.Name, _ = row.String(ColumnName)
	if b, ok := row.String(ColumnBreed); ok {
		p.Breed = &b
	}
	if g, ok := row.Int64(ColumnGender); ok {
		p.Gender = Gender(g)
	}
	if w, ok := row.Int64(ColumnWeight); ok {
		p.Weight = &w
	}
	return p
}

// CollectPets drena el cursor y lo cierra.
func CollectPets(c Cursor) ([]Pet, error) {
	defer c.Close()

	out := make([]Pet, 0)
	for c.Next() {
		out = append(out, ScanPet(c.Row()))
	}
	return out, c.Err()
}
