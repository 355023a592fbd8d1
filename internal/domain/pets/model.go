package pets

import "strconv"

// Contrato de la tabla pets: authority, paths, columnas y dominios válidos.
// Todo es constante; nada aquí tiene estado.
const (
	ContentAuthority = "com.kosbaship.android.pets"
	ContentScheme    = "content"
	BaseContentURI   = ContentScheme + "://" + ContentAuthority

	PathPets = "pets"

	// ContentURI apunta a la colección completa.
	ContentURI = BaseContentURI + "/" + PathPets

	// Tipos MIME-like devueltos por Type(). No participan del ruteo.
	cursorDirBaseType  = "vnd.android.cursor.dir"
	cursorItemBaseType = "vnd.android.cursor.item"

	ContentListType = cursorDirBaseType + "/" + ContentAuthority + "/" + PathPets
	ContentItemType = cursorItemBaseType + "/" + ContentAuthority + "/" + PathPets
)

// Tabla y columnas.
const (
	TableName = "pets"

	ColumnID     = "_id"
	ColumnName   = "name"
	ColumnBreed  = "breed"
	ColumnGender = "gender"
	ColumnWeight = "weight"
)

// Gender define el sexo de la mascota.
// @Enum 0 unknown, 1 male, 2 female
type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Columns en orden de tabla (usado cuando la proyección viene vacía).
var Columns = []string{ColumnID, ColumnName, ColumnBreed, ColumnGender, ColumnWeight}

// IsValidGender es total: true solo para unknown, male y female.
func IsValidGender(code int) bool {
	switch Gender(code) {
	case GenderUnknown, GenderMale, GenderFemale:
		return true
	default:
		return false
	}
}

func IsKnownColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ItemURI es el equivalente de "withAppendedId" sobre ContentURI.
func ItemURI(id int64) string {
	return ContentURI + "/" + strconv.FormatInt(id, 10)
}

// Pet es la vista tipada de una fila. Weight nil = sin peso cargado.
type Pet struct {
	ID     int64
	Name   string
	Breed  *string
	Gender Gender
	Weight *int64
}

// Values convierte un Pet (sin ID) al set de valores para Insert.
func (p Pet) Values() Values {
	v := Values{
		ColumnName:   p.Name,
		ColumnGender: int64(p.Gender),
	}
	if p.Breed != nil {
		v[ColumnBreed] = *p.Breed
	}
	if p.Weight != nil {
		v[ColumnWeight] = *p.Weight
	}
	return v
}
