package fault

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Kind classifies an error at a component boundary. Upstream code matches on
// the kind and never inspects raw driver or provider error shapes.
type Kind int

const (
	// KindUnknown covers network, serialization and everything unclassified.
	KindUnknown Kind = iota
	// KindNotAvailable means the backing schema or function has not been
	// provisioned yet. Callers degrade to a neutral result instead of failing.
	KindNotAvailable
	// KindValidation means malformed identifiers or out-of-range input.
	KindValidation
	// KindUnauthorized means a policy or ownership rejection.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotAvailable:
		return "not_available"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is the single error type crossing component boundaries.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NotAvailable builds a schema-missing error.
func NotAvailable(msg string, err error) *Error {
	return &Error{Kind: KindNotAvailable, Msg: msg, Err: err}
}

// Validation builds a bad-input error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Unauthorized builds a policy-rejection error.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Unknown wraps everything else.
func Unknown(msg string, err error) *Error {
	return &Error{Kind: KindUnknown, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsNotAvailable reports whether err is a schema-missing condition.
func IsNotAvailable(err error) bool {
	return err != nil && KindOf(err) == KindNotAvailable
}

// Postgres error codes that mean the migration has not run yet.
const (
	pgUndefinedTable    = "42P01"
	pgUndefinedFunction = "42883"
)

// FromPG converts a database error into the boundary taxonomy. sql.ErrNoRows
// is left untouched so repositories can keep their not-found handling.
func FromPG(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUndefinedTable, pgUndefinedFunction:
			return NotAvailable(op, err)
		case "42501":
			return Unauthorized(op)
		}
	}
	return Unknown(op, err)
}
