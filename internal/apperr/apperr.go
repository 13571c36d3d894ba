// Package apperr holds the error taxonomy shared by every resource service.
//
// Services return errors that match exactly one kind sentinel through
// errors.Is. The HTTP layer only ever switches on kinds, never on driver
// errors.
package apperr

import (
	"context"
	"errors"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("store unavailable")
	ErrStore        = errors.New("store failure")
)

type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }

func (e *kindError) Unwrap() error { return e.kind }

// New returns an error whose message is safe to show to clients and which
// matches kind under errors.Is.
func New(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

func Validation(message string) error { return New(ErrValidation, message) }

func NotFound(message string) error { return New(ErrNotFound, message) }

type storeError struct {
	op   string
	kind error
	err  error
}

func (e *storeError) Error() string { return e.op + ": " + e.err.Error() }

func (e *storeError) Unwrap() []error { return []error{e.kind, e.err} }

// Store wraps a persistence failure. Errors that already carry a kind pass
// through untouched; deadlines become ErrUnavailable.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if HasKind(err) {
		return err
	}
	kind := ErrStore
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrUnavailable
	}
	return &storeError{op: op, kind: kind, err: err}
}

// HasKind reports whether err already belongs to the taxonomy.
func HasKind(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized, ErrForbidden, ErrUnavailable, ErrStore} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
