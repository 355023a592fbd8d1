package postgres

import (
	"errors"

	"pets-provider/internal/domain/pets"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE que nos interesa distinguir.
const (
	sqlStateNotNullViolation = "23502"
	sqlStateUniqueViolation  = "23505"
	sqlStateCheckViolation   = "23514"
	sqlStateSyntaxError      = "42601"
	sqlStateUndefinedColumn  = "42703"
)

// classify convierte errores del driver en *pets.StorageError.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &pets.StorageError{Code: pets.StorageOther, Err: err}
	}

	code := pets.StorageOther
	switch pgErr.Code {
	case sqlStateNotNullViolation:
		code = pets.StorageNotNullViolation
	case sqlStateUniqueViolation:
		code = pets.StorageUniqueViolation
	case sqlStateCheckViolation:
		code = pets.StorageCheckViolation
	case sqlStateSyntaxError, sqlStateUndefinedColumn:
		code = pets.StorageInvalidFilter
	}

	return &pets.StorageError{
		Code:         code,
		Column:       pgErr.ColumnName,
		DatabaseCode: pgErr.Code,
		Err:          err,
	}
}
