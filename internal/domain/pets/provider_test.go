package pets

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// -------------------------
// Test store (recording)
// -------------------------

type call struct {
	op     string
	table  string
	values Values
	sel    Selection
	query  QuerySpec
}

type recordingStore struct {
	calls []call

	insertID  int64
	insertErr error
	rows      int64
	err       error
}

func (s *recordingStore) Query(ctx context.Context, table string, q QuerySpec) (Cursor, error) {
	s.calls = append(s.calls, call{op: "query", table: table, query: q, sel: q.Selection})
	if s.err != nil {
		return nil, s.err
	}
	return &sliceCursor{pos: -1}, nil
}

func (s *recordingStore) Insert(ctx context.Context, table string, values Values) (int64, error) {
	s.calls = append(s.calls, call{op: "insert", table: table, values: values})
	return s.insertID, s.insertErr
}

func (s *recordingStore) Update(ctx context.Context, table string, values Values, sel Selection) (int64, error) {
	s.calls = append(s.calls, call{op: "update", table: table, values: values, sel: sel})
	return s.rows, s.err
}

func (s *recordingStore) Delete(ctx context.Context, table string, sel Selection) (int64, error) {
	s.calls = append(s.calls, call{op: "delete", table: table, sel: sel})
	return s.rows, s.err
}

type sliceCursor struct {
	rows []Values
	pos  int
}

func (c *sliceCursor) Columns() []string { return Columns }
func (c *sliceCursor) Next() bool {
	if c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}
func (c *sliceCursor) Row() Values  { return c.rows[c.pos] }
func (c *sliceCursor) Err() error   { return nil }
func (c *sliceCursor) Close() error { return nil }

func newTestProvider(store Store) *Provider {
	p := NewProvider(store, nil)
	p.newOpID = func() string { return "op-test" }
	return p
}

var idFilter = func(id int64) Selection {
	return Selection{Where: "_id = ?", Args: []any{id}}
}

// -------------------------
// Query
// -------------------------

func TestProvider_Query_CollectionKeepsCallerFilter(t *testing.T) {
	store := &recordingStore{}
	p := newTestProvider(store)

	c, err := p.Query(context.Background(), ContentURI, []string{ColumnName}, "gender = ?", []any{1}, "name desc")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	_ = c.Close()

	if len(store.calls) != 1 {
		t.Fatalf("expected 1 store call, got %d", len(store.calls))
	}
	got := store.calls[0]
	if got.table != TableName {
		t.Fatalf("expected table %q, got %q", TableName, got.table)
	}
	want := QuerySpec{
		Projection: []string{ColumnName},
		Selection:  Selection{Where: "gender = ?", Args: []any{1}},
		OrderBy:    "name DESC",
	}
	if !reflect.DeepEqual(got.query, want) {
		t.Fatalf("unexpected query spec %#v", got.query)
	}
}

func TestProvider_Query_ItemOverridesFilter(t *testing.T) {
	store := &recordingStore{}
	p := newTestProvider(store)

	_, err := p.Query(context.Background(), ItemURI(5), nil, "name = ?", []any{"Rex"}, "")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if !reflect.DeepEqual(store.calls[0].sel, idFilter(5)) {
		t.Fatalf("expected id filter, got %#v", store.calls[0].sel)
	}
}

func TestProvider_Query_UnknownURI(t *testing.T) {
	store := &recordingStore{}
	p := newTestProvider(store)

	_, err := p.Query(context.Background(), "/dogs", nil, "", nil, "")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("store should not be called")
	}
}

func TestProvider_Query_RejectsUnknownColumns(t *testing.T) {
	store := &recordingStore{}
	p := newTestProvider(store)

	if _, err := p.Query(context.Background(), ContentURI, []string{"owner"}, "", nil, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("projection: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := p.Query(context.Background(), ContentURI, nil, "", nil, "owner; DROP TABLE pets"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("order: expected ErrInvalidArgument, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("store should not be called")
	}
}

func TestProvider_Query_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	store := &recordingStore{err: boom}
	p := newTestProvider(store)

	_, err := p.Query(context.Background(), ContentURI, nil, "", nil, "")
	if !errors.Is(err, ErrStorageFailure) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage failure, got %v", err)
	}
}

// -------------------------
// Insert
// -------------------------

func TestProvider_Insert_ReturnsItemURI(t *testing.T) {
	store := &recordingStore{insertID: 12}
	p := newTestProvider(store)

	uri, err := p.Insert(context.Background(), ContentURI, Values{ColumnName: "Rex", ColumnGender: 1})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if uri != ItemURI(12) {
		t.Fatalf("expected %q, got %q", ItemURI(12), uri)
	}

	got := store.calls[0].values
	if got[ColumnName] != "Rex" || got[ColumnGender] != int64(1) {
		t.Fatalf("unexpected values sent to store %#v", got)
	}
	if got.Has(ColumnWeight) {
		t.Fatalf("weight should not be added when absent")
	}
}

func TestProvider_Insert_ValidationFailsWithoutMutation(t *testing.T) {
	cases := []Values{
		{ColumnName: nil, ColumnGender: 1},
		{ColumnName: "Rex", ColumnGender: nil},
		{ColumnName: "Rex", ColumnGender: 3},
		{ColumnName: "Rex", ColumnGender: 1, ColumnWeight: -1},
	}
	for _, v := range cases {
		store := &recordingStore{insertID: 1}
		p := newTestProvider(store)

		uri, err := p.Insert(context.Background(), ContentURI, v)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Insert(%v): expected ErrInvalidArgument, got %v", v, err)
		}
		if uri != "" {
			t.Fatalf("Insert(%v): expected empty uri", v)
		}
		if len(store.calls) != 0 {
			t.Fatalf("Insert(%v): store must not be called", v)
		}
	}
}

func TestProvider_Insert_OnlyCollection(t *testing.T) {
	for _, uri := range []string{ItemURI(3), "/dogs", ""} {
		store := &recordingStore{}
		p := newTestProvider(store)

		_, err := p.Insert(context.Background(), uri, Values{ColumnName: "Rex", ColumnGender: 1})
		if !errors.Is(err, ErrUnsupportedOperation) {
			t.Fatalf("Insert(%q): expected ErrUnsupportedOperation, got %v", uri, err)
		}
		if len(store.calls) != 0 {
			t.Fatalf("Insert(%q): store must not be called", uri)
		}
	}
}

func TestProvider_Insert_StorageFailureReturnsEmpty(t *testing.T) {
	store := &recordingStore{insertID: -1, insertErr: &StorageError{Code: StorageUniqueViolation}}
	p := newTestProvider(store)

	uri, err := p.Insert(context.Background(), ContentURI, Values{ColumnName: "Rex", ColumnGender: 1})
	if err != nil {
		t.Fatalf("storage failure must not be returned as error, got %v", err)
	}
	if uri != "" {
		t.Fatalf("expected empty uri, got %q", uri)
	}

	// -1 sin error también cuenta como "no se creó nada"
	store = &recordingStore{insertID: -1}
	p = newTestProvider(store)
	uri, err = p.Insert(context.Background(), ContentURI, Values{ColumnName: "Rex", ColumnGender: 1})
	if err != nil || uri != "" {
		t.Fatalf("expected empty uri and nil error, got %q, %v", uri, err)
	}
}

// -------------------------
// Update
// -------------------------

func TestProvider_Update_ItemRewritesFilter(t *testing.T) {
	store := &recordingStore{rows: 1}
	p := newTestProvider(store)

	n, err := p.Update(context.Background(), ItemURI(9), Values{ColumnName: "Tom"}, "1 = 1", []any{"ignored"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	if !reflect.DeepEqual(store.calls[0].sel, idFilter(9)) {
		t.Fatalf("expected id filter, got %#v", store.calls[0].sel)
	}
}

func TestProvider_Update_CollectionKeepsCallerFilter(t *testing.T) {
	store := &recordingStore{rows: 4}
	p := newTestProvider(store)

	n, err := p.Update(context.Background(), ContentURI, Values{ColumnWeight: 3}, "gender = ?", []any{2})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
	want := Selection{Where: "gender = ?", Args: []any{2}}
	if !reflect.DeepEqual(store.calls[0].sel, want) {
		t.Fatalf("unexpected selection %#v", store.calls[0].sel)
	}
}

func TestProvider_Update_EmptyValuesIsNoop(t *testing.T) {
	for _, uri := range []string{ContentURI, ItemURI(1)} {
		store := &recordingStore{rows: 99}
		p := newTestProvider(store)

		n, err := p.Update(context.Background(), uri, Values{}, "", nil)
		if err != nil {
			t.Fatalf("Update(%q) error: %v", uri, err)
		}
		if n != 0 {
			t.Fatalf("Update(%q): expected 0, got %d", uri, n)
		}
		if len(store.calls) != 0 {
			t.Fatalf("Update(%q): store must not be called", uri)
		}
	}
}

func TestProvider_Update_InvalidGenderOnItem(t *testing.T) {
	store := &recordingStore{rows: 1}
	p := newTestProvider(store)

	n, err := p.Update(context.Background(), ItemURI(1), Values{ColumnGender: 5}, "", nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if n != 0 || len(store.calls) != 0 {
		t.Fatalf("expected no rows and no store call, got n=%d calls=%d", n, len(store.calls))
	}
}

func TestProvider_Update_UnknownURI(t *testing.T) {
	store := &recordingStore{}
	p := newTestProvider(store)

	_, err := p.Update(context.Background(), "/pets/x", Values{ColumnName: "Tom"}, "", nil)
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}

func TestProvider_Update_StorageErrorPropagates(t *testing.T) {
	store := &recordingStore{err: &StorageError{Code: StorageCheckViolation, Column: ColumnWeight}}
	p := newTestProvider(store)

	_, err := p.Update(context.Background(), ContentURI, Values{ColumnName: "Tom"}, "", nil)
	var se *StorageError
	if !errors.Is(err, ErrStorageFailure) || !errors.As(err, &se) || se.Code != StorageCheckViolation {
		t.Fatalf("expected storage error, got %v", err)
	}
}

// -------------------------
// Delete
// -------------------------

func TestProvider_Delete(t *testing.T) {
	store := &recordingStore{rows: 3}
	p := newTestProvider(store)

	n, err := p.Delete(context.Background(), ContentURI, "", nil)
	if err != nil || n != 3 {
		t.Fatalf("Delete collection: n=%d err=%v", n, err)
	}
	if !reflect.DeepEqual(store.calls[0].sel, Selection{}) {
		t.Fatalf("expected empty selection, got %#v", store.calls[0].sel)
	}

	_, err = p.Delete(context.Background(), ItemURI(2), "name = ?", []any{"Rex"})
	if err != nil {
		t.Fatalf("Delete item: %v", err)
	}
	if !reflect.DeepEqual(store.calls[1].sel, idFilter(2)) {
		t.Fatalf("expected id filter, got %#v", store.calls[1].sel)
	}

	_, err = p.Delete(context.Background(), "content://other/pets", "", nil)
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
	if len(store.calls) != 2 {
		t.Fatalf("unknown uri must not reach the store")
	}
}

// -------------------------
// Type
// -------------------------

func TestProvider_Type(t *testing.T) {
	p := newTestProvider(&recordingStore{})

	if got, err := p.Type(ContentURI); err != nil || got != ContentListType {
		t.Fatalf("Type(collection) = %q, %v", got, err)
	}
	if got, err := p.Type(ItemURI(1)); err != nil || got != ContentItemType {
		t.Fatalf("Type(item) = %q, %v", got, err)
	}
	_, err := p.Type("/nope")
	if !errors.Is(err, ErrIllegalState) {
		t.Fatalf("expected ErrIllegalState, got %v", err)
	}
	if errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("Type must not report ErrUnsupportedOperation")
	}
}

func TestNormalizeOrder(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"name":                  "name ASC",
		" name desc , _id asc ": "name DESC, _id ASC",
		"weight DESC":           "weight DESC",
	}
	for in, want := range cases {
		got, err := NormalizeOrder(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeOrder(%q) = %q, %v want %q", in, got, err, want)
		}
	}

	for _, in := range []string{"owner", "name sideways", "name asc extra", ",", "name,"} {
		if _, err := NormalizeOrder(in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("NormalizeOrder(%q) expected ErrInvalidArgument, got %v", in, err)
		}
	}
}
