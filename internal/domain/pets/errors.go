package pets

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument: validación de campos (nombre, género, peso, columnas).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidRequest: Query sobre una URI que no matchea.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnsupportedOperation: Insert/Update/Delete sobre una URI no soportada.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrIllegalState: Type sobre una URI que no matchea.
	ErrIllegalState = errors.New("illegal state")
	// ErrStorageFailure envuelve cualquier error del motor de storage.
	ErrStorageFailure = errors.New("storage failure")
)

// FieldError es un error de validación asociado a una columna.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidField(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// StorageCode clasifica fallas del motor en algo con lo que se pueda decidir.
type StorageCode string

const (
	StorageOther            StorageCode = "other"
	StorageUniqueViolation  StorageCode = "unique_violation"
	StorageNotNullViolation StorageCode = "not_null_violation"
	StorageCheckViolation   StorageCode = "check_violation"
	StorageInvalidFilter    StorageCode = "invalid_filter"
)

// StorageError lo devuelven los adapters cuando el motor rechaza una operación.
type StorageError struct {
	Code   StorageCode
	Column string
	// DatabaseCode es el código nativo del motor (SQLSTATE en postgres).
	DatabaseCode string
	Err          error
}

func (e *StorageError) Error() string {
	msg := "storage: " + string(e.Code)
	if e.Column != "" {
		msg += " on " + e.Column
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}
