package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// translateError maps driver errors onto the repository sentinels
func translateError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", what, repositories.ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// expectAffected returns ErrNotFound when a write touched no row
func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	return nil
}
