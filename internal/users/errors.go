package users

import (
	"errors"
	"fmt"
	"strings"
)

// ModelName is the collection name used in store-style error messages.
const ModelName = "users"

var (
	// ErrNotFound is returned when no user matches the requested id.
	ErrNotFound = errors.New("user not found")
)

// CastError reports a value that could not be converted to the type of its path.
type CastError struct {
	Kind  string // "string", "Number", "ObjectId"
	Value any
	Path  string
	Model string // only set for identifier casts
}

func (e *CastError) Error() string {
	msg := fmt.Sprintf(`Cast to %s failed for value "%s" (type %s) at path "%s"`, e.Kind, render(e.Value), typeName(e.Value), e.Path)
	if e.Model != "" {
		msg += fmt.Sprintf(` for model "%s"`, e.Model)
	}
	return msg
}

// ValidationError collects per-path failures of the schema step.
// Paths keeps schema order so messages are stable.
type ValidationError struct {
	Model  string
	Paths  []string
	Errors map[string]error
}

func (e *ValidationError) add(path string, err error) {
	if e.Errors == nil {
		e.Errors = map[string]error{}
	}
	if _, dup := e.Errors[path]; dup {
		return
	}
	e.Paths = append(e.Paths, path)
	e.Errors[path] = err
}

func (e *ValidationError) empty() bool { return len(e.Paths) == 0 }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Paths))
	for _, p := range e.Paths {
		parts = append(parts, p+": "+e.Errors[p].Error())
	}
	return fmt.Sprintf("%s validation failed: %s", e.Model, strings.Join(parts, ", "))
}

// requiredError is the per-path message for a missing required value.
type requiredError struct{ path string }

func (e requiredError) Error() string { return fmt.Sprintf("Path `%s` is required.", e.path) }

// IsInvalid reports whether err is a client input problem (validation or cast)
// rather than a store failure.
func IsInvalid(err error) bool {
	var ve *ValidationError
	var ce *CastError
	return errors.As(err, &ve) || errors.As(err, &ce)
}

// RequiredFieldsError builds the validation error reported when the given
// paths are missing from a document of model.
func RequiredFieldsError(model string, paths ...string) *ValidationError {
	ve := &ValidationError{Model: model}
	for _, p := range paths {
		ve.add(p, requiredError{path: p})
	}
	return ve
}
