package engine

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when an operation has no caller identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// NotFoundError reports a missing or inactive entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ValidationError is a rejected input; Field names the offending parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure. Nothing was committed when a
// mutation returns one.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

// storeErr wraps err unless it already carries a domain classification.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		nf NotFoundError
		ve ValidationError
		se StoreError
	)
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &se) || errors.Is(err, ErrUnauthenticated) {
		return err
	}
	return StoreError{Op: op, Err: err}
}
