package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeExclusionViolation   = "23P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a duplicate key error.
func IsUniqueViolation(err error) bool {
	return err != nil && pgCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports a missing referenced row.
func IsForeignKeyViolation(err error) bool {
	return err != nil && pgCode(err) == codeForeignKeyViolation
}

// IsSerializationFailure reports a SERIALIZABLE conflict.
func IsSerializationFailure(err error) bool {
	return err != nil && pgCode(err) == codeSerializationFailure
}

// IsExclusionViolation reports a violated EXCLUDE constraint
// (room_charges date ranges).
func IsExclusionViolation(err error) bool {
	return err != nil && pgCode(err) == codeExclusionViolation
}
