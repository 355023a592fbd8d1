package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pets-provider/internal/platform/logger"

	"github.com/google/uuid"
)

// Provider rutea cada request por su URI, valida y ejecuta contra el Store.
// No tiene estado por request; el Store es el único recurso compartido.
type Provider struct {
	store   Store
	matcher *Matcher
	log     logger.Logger
	newOpID func() string
}

func NewProvider(store Store, log logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{
		store:   store,
		matcher: defaultMatcher,
		log:     log.With(map[string]any{"component": "pets-provider"}),
		newOpID: uuid.NewString,
	}
}

// Query devuelve un cursor perezoso. Para una URI de item el filtro del caller
// se reemplaza por el _id de la URI.
func (p *Provider) Query(ctx context.Context, uri string, projection []string, selection string, selectionArgs []any, sortOrder string) (Cursor, error) {
	addr := p.matcher.Match(uri)
	log := p.opLogger("query", uri, addr)

	sel := Selection{Where: selection, Args: selectionArgs}
	switch addr.Kind {
	case KindCollection:
	case KindItem:
		sel = itemSelection(addr.ID)
	default:
		return nil, fmt.Errorf("%w: cannot query unknown URI %s", ErrInvalidRequest, uri)
	}

	if err := validateProjection(projection); err != nil {
		return nil, err
	}
	order, err := NormalizeOrder(sortOrder)
	if err != nil {
		return nil, err
	}

	c, err := p.store.Query(ctx, TableName, QuerySpec{
		Projection: projection,
		Selection:  sel,
		OrderBy:    order,
	})
	if err != nil {
		log.Error("query failed", map[string]any{"error": err.Error()})
		return nil, storageFailure(err)
	}
	log.Debug("query ok", nil)
	return c, nil
}

// Insert solo acepta la colección. Devuelve la URI del item creado.
// Si el motor no crea la fila, se loguea y se devuelve "" sin error: el caller
// distingue "no se creó nada" de "request rechazado" (que sí es error).
func (p *Provider) Insert(ctx context.Context, uri string, values Values) (string, error) {
	addr := p.matcher.Match(uri)
	log := p.opLogger("insert", uri, addr)

	switch addr.Kind {
	case KindCollection:
		return p.insertPet(ctx, log, uri, values)
	default:
		return "", fmt.Errorf("%w: insertion is not supported for %s", ErrUnsupportedOperation, uri)
	}
}

func (p *Provider) insertPet(ctx context.Context, log logger.Logger, uri string, values Values) (string, error) {
	if err := ValidateForInsert(values); err != nil {
		return "", err
	}

	id, err := p.store.Insert(ctx, TableName, values.Normalized())
	if err != nil {
		log.Error("Failed to insert row for "+uri, map[string]any{"error": err.Error()})
		return "", nil
	}
	if id < 0 {
		log.Error("Failed to insert row for "+uri, map[string]any{"id": id})
		return "", nil
	}

	log.Debug("insert ok", map[string]any{"id": id})
	return ItemURI(id), nil
}

// Update acepta colección (filtro del caller) o item (filtro forzado al _id).
func (p *Provider) Update(ctx context.Context, uri string, values Values, selection string, selectionArgs []any) (int64, error) {
	addr := p.matcher.Match(uri)
	log := p.opLogger("update", uri, addr)

	switch addr.Kind {
	case KindCollection:
		return p.updatePet(ctx, log, values, Selection{Where: selection, Args: selectionArgs})
	case KindItem:
		return p.updatePet(ctx, log, values, itemSelection(addr.ID))
	default:
		return 0, fmt.Errorf("%w: update is not supported for %s", ErrUnsupportedOperation, uri)
	}
}

func (p *Provider) updatePet(ctx context.Context, log logger.Logger, values Values, sel Selection) (int64, error) {
	if err := ValidateForUpdate(values); err != nil {
		return 0, err
	}

	// Nada que actualizar: no tocamos el storage.
	if len(values) == 0 {
		return 0, nil
	}

	n, err := p.store.Update(ctx, TableName, values.Normalized(), sel)
	if err != nil {
		log.Error("update failed", map[string]any{"error": err.Error()})
		return 0, storageFailure(err)
	}
	log.Debug("update ok", map[string]any{"rows": n})
	return n, nil
}

// Delete sobre la colección sin filtro borra toda la tabla (sin guard).
func (p *Provider) Delete(ctx context.Context, uri string, selection string, selectionArgs []any) (int64, error) {
	addr := p.matcher.Match(uri)
	log := p.opLogger("delete", uri, addr)

	var sel Selection
	switch addr.Kind {
	case KindCollection:
		sel = Selection{Where: selection, Args: selectionArgs}
	case KindItem:
		sel = itemSelection(addr.ID)
	default:
		return 0, fmt.Errorf("%w: deletion is not supported for %s", ErrUnsupportedOperation, uri)
	}

	n, err := p.store.Delete(ctx, TableName, sel)
	if err != nil {
		log.Error("delete failed", map[string]any{"error": err.Error()})
		return 0, storageFailure(err)
	}
	log.Debug("delete ok", map[string]any{"rows": n})
	return n, nil
}

// Type devuelve el tipo MIME-like de la URI. Una URI desconocida acá es
// ErrIllegalState, no ErrUnsupportedOperation.
func (p *Provider) Type(uri string) (string, error) {
	addr := p.matcher.Match(uri)
	switch addr.Kind {
	case KindCollection:
		return ContentListType, nil
	case KindItem:
		return ContentItemType, nil
	default:
		return "", fmt.Errorf("%w: unknown URI %s with match %s", ErrIllegalState, uri, addr.Kind)
	}
}

func (p *Provider) opLogger(op, uri string, addr Address) logger.Logger {
	fields := map[string]any{
		"op":     op,
		"op_id":  p.newOpID(),
		"uri":    uri,
		"target": addr.Kind.String(),
	}
	if addr.Kind == KindItem {
		fields["id"] = addr.ID
	}
	return p.log.With(fields)
}

func itemSelection(id int64) Selection {
	return Selection{Where: ColumnID + " = ?", Args: []any{id}}
}

func validateProjection(projection []string) error {
	for _, c := range projection {
		if !IsKnownColumn(c) {
			return invalidField(c, "unknown column in projection")
		}
	}
	return nil
}

// NormalizeOrder valida un ORDER BY del estilo "name ASC, _id DESC" y lo
// devuelve normalizado. Solo se aceptan columnas de la tabla.
func NormalizeOrder(sortOrder string) (string, error) {
	sortOrder = strings.TrimSpace(sortOrder)
	if sortOrder == "" {
		return "", nil
	}

	terms := ParseOrder(sortOrder)
	if terms == nil {
		return "", invalidField("sort_order", "invalid sort order "+sortOrder)
	}

	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts = append(parts, t.Column+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

// OrderTerm es un término de ORDER BY ya validado.
type OrderTerm struct {
	Column string
	Desc   bool
}

// ParseOrder devuelve nil si algún término es inválido.
func ParseOrder(sortOrder string) []OrderTerm {
	sortOrder = strings.TrimSpace(sortOrder)
	if sortOrder == "" {
		return []OrderTerm{}
	}

	out := make([]OrderTerm, 0)
	for _, raw := range strings.Split(sortOrder, ",") {
		fields := strings.Fields(raw)
		if len(fields) == 0 || len(fields) > 2 || !IsKnownColumn(fields[0]) {
			return nil
		}
		t := OrderTerm{Column: fields[0]}
		if len(fields) == 2 {
			switch strings.ToUpper(fields[1]) {
			case "ASC":
			case "DESC":
				t.Desc = true
			default:
				return nil
			}
		}
		out = append(out, t)
	}
	return out
}

func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	// *StorageError ya matchea ErrStorageFailure con errors.Is.
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
