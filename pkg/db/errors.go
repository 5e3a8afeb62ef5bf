package db

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes that signal a lost race rather than a broken store.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateUniqueViolation      = "23505"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == sqlStateUniqueViolation {
		return constraintName == "" || strings.Contains(err.Error(), constraintName)
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

// IsConcurrencyFailure reports whether err came from a serialization failure,
// a deadlock or an exhausted lock wait. Such transactions were rolled back by
// the server and may be retried.
func IsConcurrencyFailure(err error) bool {
	if err == nil {
		return false
	}
	switch sqlState(err) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return true
	}
	// SQLite reports writer contention as SQLITE_BUSY / SQLITE_LOCKED text.
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// IsTimeout reports whether err is a context deadline surfaced by the driver.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func sqlState(err error) string {
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

// MapError converts a failure raised inside a transaction into a typed error.
// Typed domain errors pass through untouched. Lost races become retryable
// conflicts and everything else is a dependency failure.
func MapError(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeDependency, pkgerrors.CodeInternal:
		default:
			return err
		}
	}
	if IsConcurrencyFailure(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConcurrentUpdate, err, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
