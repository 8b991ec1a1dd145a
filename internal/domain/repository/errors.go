package repository

import (
	"errors"
	"fmt"
	"strings"
)

// Conflict names a single uniqueness collision.
type Conflict struct {
	Field string
	Value string
}

// AlreadyExistsError is returned when a write would violate a uniqueness
// invariant. When both email and cpf collide the two conflicts are
// reported together in a single error.
type AlreadyExistsError struct {
	Conflicts []Conflict
}

func (e *AlreadyExistsError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("record with %s: %s already exists", c.Field, c.Value))
	}
	return strings.Join(parts, "; ")
}

// Has reports whether the error includes a conflict on the given field.
func (e *AlreadyExistsError) Has(field string) bool {
	for _, c := range e.Conflicts {
		if c.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError is returned when an update or delete targets a record
// that cannot be found by its lookup key.
type NotFoundError struct {
	Kind string // "user" or "product of interest"
	Key  string // lookup key description, e.g. "cpf: 123"
}

func (e *NotFoundError) Error() string {
	return e.Kind + " with " + e.Key + " not found"
}

func IsAlreadyExists(err error) bool {
	var ae *AlreadyExistsError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
