package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLState returns the Postgres SQLSTATE carried by err, if any.
func SQLState(err error) string {
	if err == nil {
		return ""
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsConstraintViolation reports whether the database refused the row itself:
// SQLSTATE class 22 (data exception) or 23 (integrity constraint violation).
// SQLite has no SQLSTATE, so its constraint messages are matched as text.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if state := SQLState(err); len(state) == 5 {
		return strings.HasPrefix(state, "22") || strings.HasPrefix(state, "23")
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint failed") || strings.Contains(msg, "datatype mismatch")
}
