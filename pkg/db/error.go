package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if code := postgresCode(err); code != "" {
		return code == pgUniqueViolation
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		return true
	case strings.Contains(msg, "Error 1062"): // MySQL
		return true
	case strings.Contains(msg, "UNIQUE constraint failed"): // SQLite
		return true
	}
	return false
}

// IsForeignKeyErr reports a referential integrity failure, e.g. an API write
// racing a dimension delete.
func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if code := postgresCode(err); code != "" {
		return code == pgForeignKeyViolation
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "violates foreign key constraint"):
		return true
	case strings.Contains(msg, "Error 1452"): // MySQL
		return true
	case strings.Contains(msg, "FOREIGN KEY constraint failed"): // SQLite
		return true
	}
	return false
}

// postgresCode extracts the SQLSTATE from either postgres driver in use:
// pgx behind gorm, lib/pq behind golang-migrate.
func postgresCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
