package jsonapi

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateSchema is returned when a model type or type name is registered twice
	ErrDuplicateSchema = errors.New("schema already registered")

	// ErrDuplicateField is returned when a schema declares the same wire field twice
	ErrDuplicateField = errors.New("duplicate field mapping")

	// ErrFieldOverride is returned when a schema redeclares a field inherited from its parent
	ErrFieldOverride = errors.New("field overrides inherited mapping")

	// ErrRegistryFrozen is returned when registering into a frozen registry
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidNestedValue is returned when a nested attribute holds neither an object nor an array
	ErrInvalidNestedValue = errors.New("nested value must be an object or an array of objects")

	// ErrInvalidValue is returned when a Go value cannot be represented on the wire
	ErrInvalidValue = errors.New("value cannot be represented")

	// ErrUnknownMode is returned when parsing an unknown encoder mode
	ErrUnknownMode = errors.New("unknown encoder mode")

	// ErrUnknownKind is returned when parsing an unknown mapping kind
	ErrUnknownKind = errors.New("unknown mapping kind")
)

// FieldError reports a failure while encoding one field of a resource
type FieldError struct {
	Type  string
	Field string
	Kind  Kind
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s (%s): %v", e.Type, e.Field, e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(typ string, m FieldMapping, err error) error {
	return &FieldError{Type: typ, Field: m.Name, Kind: m.Kind, Err: err}
}
