package pets

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Values es el set columna -> valor que reciben Insert y Update.
// Una key presente con valor nil significa "NULL explícito".
type Values map[string]any

func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// Keys devuelve las columnas ordenadas (útil para SQL estable en tests/logs).
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String devuelve el valor como texto. ok=false si falta o es nil.
func (v Values) String(key string) (string, bool) {
	raw, exists := v[key]
	if !exists || raw == nil {
		return "", false
	}
	switch x := raw.(type) {
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case []byte:
		return string(x), true
	}
	if n, ok := toInt64(raw); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// Int64 devuelve el valor como entero. ok=false si falta, es nil o no es
// convertible (p.ej. "abc" o 1.5): para los validadores eso cuenta como nil.
func (v Values) Int64(key string) (int64, bool) {
	raw, exists := v[key]
	if !exists || raw == nil {
		return 0, false
	}
	return toInt64(raw)
}

// Normalized devuelve una copia con las columnas enteras como int64 y las de
// texto como string, que es lo que guardan los motores. Lo no convertible
// queda tal cual (el motor decide).
func (v Values) Normalized() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
		if x == nil {
			continue
		}
		switch k {
		case ColumnID, ColumnGender, ColumnWeight:
			if n, ok := v.Int64(k); ok {
				out[k] = n
			}
		case ColumnName, ColumnBreed:
			if s, ok := v.String(k); ok {
				out[k] = s
			}
		}
	}
	return out
}

func toInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case Gender:
		return int64(x), true
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case *int64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
