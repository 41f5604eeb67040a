package database

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool returns a pgxmock pool that satisfies DBTX. Expected SQL is
// matched as a regular expression against the whitespace-collapsed query,
// so tests can expect on a leading fragment such as "INSERT INTO users".
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
}

// UniqueViolation builds the error Postgres returns when an insert or update
// collides with constraint.
func UniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           CodeUniqueViolation,
		ConstraintName: constraint,
		Message:        fmt.Sprintf("duplicate key value violates unique constraint %q", constraint),
	}
}

// ForeignKeyViolation builds the error Postgres returns when a referenced
// row does not exist.
func ForeignKeyViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           CodeForeignKeyViolation,
		ConstraintName: constraint,
		Message:        fmt.Sprintf("insert or update violates foreign key constraint %q", constraint),
	}
}
