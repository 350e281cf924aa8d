package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"eventbuddy/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeInvalidTextRepr     = "22P02"
	classConnectionFailure  = "08"
	classInsufficientRes    = "53"
	classOperatorIntervened = "57"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

// isUnreachable reports whether err means the database could not be reached or
// gave up on the connection, as opposed to rejecting the statement.
func isUnreachable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case classConnectionFailure, classInsufficientRes, classOperatorIntervened:
			return true
		}
	}
	return false
}

// readError maps a failed query to the domain taxonomy. A malformed id can never
// match a uuid column, so it reads as not found.
func readError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound(op)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInvalidTextRepr {
		return domain.NewNotFound(op)
	}
	if isUnreachable(err) {
		return domain.NewUnreachable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func writeError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInvalidTextRepr {
		return domain.NewNotFound(op)
	}
	if isUnreachable(err) {
		return domain.NewUnreachable(op, err)
	}
	return domain.NewWriteFailed(op, err)
}

// affectedOne turns a zero-row UPDATE or DELETE into NotFound.
func affectedOne(op string, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return domain.NewWriteFailed(op, err)
	}
	if n == 0 {
		return domain.NewNotFound(op)
	}
	return nil
}
