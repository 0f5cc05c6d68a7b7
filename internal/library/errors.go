package library

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound indicates the requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a foreign key, check or not-null violation.
	ErrConstraint = errors.New("constraint violation")

	// ErrNotConnected indicates the store has no open database handle.
	ErrNotConnected = errors.New("store is not connected")

	// ErrTxAborted indicates a transaction was rolled back or failed to commit.
	ErrTxAborted = errors.New("transaction aborted")

	// ErrInvalidQuery indicates a query referenced an unknown ordering or media type.
	ErrInvalidQuery = errors.New("invalid query")
)

// Error is a storage failure tagged with the operation that produced it.
// Kind is one of the package sentinels, or nil when the driver error could not be classified.
type Error struct {
	Location string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Location, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Location, e.Kind)
	default:
		return fmt.Sprintf("%s: %v", e.Location, e.Err)
	}
}

// Unwrap exposes both the kind sentinel and the driver error to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classify maps SQLite errors to a sentinel kind.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, sql.ErrConnDone) {
		return ErrNotConnected
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrDuplicate
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return ErrConstraint
		}
		if se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return nil
		}
	}
	// Errors from other layers carry only the message text.
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "UNIQUE constraint failed"),
		strings.Contains(errStr, "PRIMARY KEY constraint failed"):
		return ErrDuplicate
	case strings.Contains(errStr, "FOREIGN KEY constraint failed"),
		strings.Contains(errStr, "CHECK constraint failed"),
		strings.Contains(errStr, "NOT NULL constraint failed"),
		strings.Contains(errStr, "constraint failed"):
		return ErrConstraint
	case strings.Contains(errStr, "database is closed"):
		return ErrNotConnected
	}
	return nil
}

// wrapErr tags err with location. Errors that already carry a location keep the innermost one.
func wrapErr(location string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	for _, kind := range []error{ErrNotFound, ErrDuplicate, ErrConstraint, ErrNotConnected, ErrTxAborted, ErrInvalidQuery} {
		if err == kind {
			return &Error{Location: location, Kind: kind}
		}
		if errors.Is(err, kind) {
			return &Error{Location: location, Kind: kind, Err: err}
		}
	}
	return &Error{Location: location, Kind: classify(err), Err: err}
}

func notFound(location string) error {
	return &Error{Location: location, Kind: ErrNotFound}
}
