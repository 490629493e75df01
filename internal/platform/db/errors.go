package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// (duplicate bed number, duplicate token, ...).
func IsUniqueViolation(err error) bool {
	return pgErrCode(err) == uniqueViolationCode
}

// IsForeignKeyViolation reports whether err is a foreign-key violation, e.g.
// deleting a department that still has beds.
func IsForeignKeyViolation(err error) bool {
	return pgErrCode(err) == foreignKeyViolationCode
}

// IsCheckViolation reports whether err is a check-constraint violation, e.g.
// driving current_stock negative.
func IsCheckViolation(err error) bool {
	return pgErrCode(err) == checkViolationCode
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
