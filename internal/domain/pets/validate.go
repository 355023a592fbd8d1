package pets

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validator.Validate cachea reglas y es seguro para uso concurrente.
var validate = validator.New()

// ValidateName falla si el nombre falta, es nil o queda vacío.
func ValidateName(v Values) error {
	name, ok := v.String(ColumnName)
	if !ok {
		return invalidField(ColumnName, "Pet requires a name")
	}
	if err := validate.Var(strings.TrimSpace(name), "required"); err != nil {
		return invalidField(ColumnName, "Pet requires a name")
	}
	return nil
}

// ValidateGender falla si falta, es nil o no pertenece a {unknown, male, female}.
func ValidateGender(v Values) error {
	code, ok := v.Int64(ColumnGender)
	if !ok || code < 0 || code > int64(GenderFemale) || !IsValidGender(int(code)) {
		return invalidField(ColumnGender, "Pet requires valid gender")
	}
	return nil
}

// ValidateWeight acepta ausente o nil; si viene, tiene que ser >= 0.
func ValidateWeight(v Values) error {
	raw, exists := v[ColumnWeight]
	if !exists || raw == nil {
		return nil
	}
	w, ok := v.Int64(ColumnWeight)
	if !ok {
		return invalidField(ColumnWeight, "Pet requires valid weight")
	}
	if err := validate.Var(w, "gte=0"); err != nil {
		return invalidField(ColumnWeight, "Pet requires valid weight")
	}
	return nil
}

// validateKeys rechaza el _id (lo asigna el motor y es inmutable) y columnas
// que no existen en la tabla.
func validateKeys(v Values) error {
	for _, k := range v.Keys() {
		if k == ColumnID {
			return invalidField(ColumnID, "identifier is assigned by storage")
		}
		if !IsKnownColumn(k) {
			return invalidField(k, "unknown column")
		}
	}
	return nil
}

// ValidateForInsert: name y gender obligatorios, weight solo si viene.
// Breed no se valida.
func ValidateForInsert(v Values) error {
	if err := validateKeys(v); err != nil {
		return err
	}
	if err := ValidateName(v); err != nil {
		return err
	}
	if err := ValidateGender(v); err != nil {
		return err
	}
	return ValidateWeight(v)
}

// ValidateForUpdate solo valida lo que viene en el set (PATCH real).
func ValidateForUpdate(v Values) error {
	if err := validateKeys(v); err != nil {
		return err
	}
	if v.Has(ColumnName) {
		if err := ValidateName(v); err != nil {
			return err
		}
	}
	if v.Has(ColumnGender) {
		if err := ValidateGender(v); err != nil {
			return err
		}
	}
	if v.Has(ColumnWeight) {
		return ValidateWeight(v)
	}
	return nil
}
