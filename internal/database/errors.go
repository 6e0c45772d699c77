package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the stores translate into domain errors.
const (
	codeUndefinedTable      = "42P01"
	codeForeignKeyViolation = "23503"
)

// IsUndefinedTable reports whether err is a "relation does not exist" error.
func IsUndefinedTable(err error) bool {
	return hasCode(err, codeUndefinedTable)
}

// IsForeignKeyViolation reports whether err was raised by a foreign-key constraint.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == code
}
