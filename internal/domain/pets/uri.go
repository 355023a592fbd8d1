package pets

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Kind es el resultado del match de una URI.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindCollection
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindItem:
		return "item"
	default:
		return "unrecognized"
	}
}

// Address es la URI ya clasificada. ID solo tiene sentido con KindItem.
// El zero value es Unrecognized, así que un match fallido nunca "cae" en
// colección por accidente.
type Address struct {
	Kind Kind
	ID   int64
}

// Matcher clasifica URIs contra los dos patrones de la tabla.
// Se arma una sola vez y después es de solo lectura; Match es seguro para
// uso concurrente (cada llamada usa su propio route context).
type Matcher struct {
	mux *chi.Mux
}

const idParam = "id"

func NewMatcher() *Matcher {
	// Reusamos el árbol de rutas de chi como matcher; los handlers nunca se
	// ejecutan.
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	mux := chi.NewRouter()
	mux.Method(http.MethodGet, "/"+PathPets, noop)
	mux.Method(http.MethodGet, "/"+PathPets+"/{"+idParam+":[0-9]+}", noop)

	return &Matcher{mux: mux}
}

// defaultMatcher es configuración de proceso: se construye en init y no se muta.
var defaultMatcher = NewMatcher()

// Match clasifica con el matcher del proceso.
func Match(uri string) Address {
	return defaultMatcher.Match(uri)
}

func (m *Matcher) Match(uri string) Address {
	path, ok := resourcePath(uri)
	if !ok {
		return Address{}
	}

	rctx := chi.NewRouteContext()
	if !m.mux.Match(rctx, http.MethodGet, path) {
		return Address{}
	}

	raw := rctx.URLParam(idParam)
	if raw == "" {
		return Address{Kind: KindCollection}
	}

	// El patrón solo acepta dígitos; lo único que puede fallar es overflow.
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Address{}
	}
	return Address{Kind: KindItem, ID: id}
}

// resourcePath extrae el path a matchear. Acepta content://<authority>/...
// o un path pelado ("/pets/3", "pets/3"). Otra authority o scheme => no match.
func resourcePath(uri string) (string, bool) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", false
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}

	switch {
	case u.Scheme == "" && u.Host == "":
		// path relativo o absoluto sin authority
	case u.Scheme == ContentScheme && u.Host == ContentAuthority:
	default:
		return "", false
	}

	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, true
}
