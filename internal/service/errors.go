package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/store"
)

// Kind classifies an expected failure. The API layer maps each kind to a
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvariant
	KindForbidden
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvariant:
		return "invariant"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is an expected, caller-visible failure.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func conflict(field, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: fmt.Sprintf(format, args...)}
}

func invariant(format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}

func forbidden(err error) *Error {
	msg := err.Error()
	if after, ok := strings.CutPrefix(msg, auth.ErrForbidden.Error()+": "); ok {
		msg = after
	}
	return &Error{Kind: KindForbidden, Message: msg, Err: err}
}

// storeErr converts store failures into service errors. entity names the
// row the operation targeted.
func storeErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity)
	}
	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case store.ConstraintUnique:
			return &Error{Kind: KindConflict, Message: fmt.Sprintf("%s already exists (%s)", entity, ce.Constraint), Err: err}
		default:
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("referenced entity not found (%s)", ce.Constraint), Err: err}
		}
	}
	return err
}
