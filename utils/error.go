package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// MySQL server error numbers for integrity violations.
const (
	mysqlErrDuplicateEntry   = 1062
	mysqlErrForeignKeyChild  = 1451
	mysqlErrForeignKeyParent = 1452
)

func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

func IsForeignKeyViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlErrForeignKeyParent || mysqlErr.Number == mysqlErrForeignKeyChild
}

// IntegrityErrorMessage maps a persistence error to the message the API
// returns with a 400, or falls back to the given default.
func IntegrityErrorMessage(err error, fallback string) string {
	switch {
	case IsDuplicateEntry(err):
		return "record already exists"
	case IsForeignKeyViolation(err):
		return "referenced record not present"
	default:
		return fallback
	}
}
