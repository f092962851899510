package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// IsDuplicateKey reports whether err is a unique constraint violation on
// any of the supported dialects.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	s := strings.ToLower(err.Error())

	return strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "sqlstate 23505")
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isExistingIndex(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1061
	}

	s := strings.ToLower(err.Error())

	return strings.Contains(s, "already exists") && strings.Contains(s, "index")
}
