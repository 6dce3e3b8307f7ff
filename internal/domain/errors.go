package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction signals a schema that cannot build documents (missing primary key).
	ErrConstruction = errors.New("document construction failed")
	// ErrConversion signals a raw value that cannot be coerced to a field kind.
	ErrConversion = errors.New("value conversion failed")
	// ErrUnknownSchema signals a model tag without a registered schema.
	ErrUnknownSchema = errors.New("unknown schema")
	// ErrParse signals a malformed or header-less response body.
	ErrParse = errors.New("response parse failed")
	// ErrEmptyInput signals an empty document batch or an empty query.
	ErrEmptyInput = errors.New("empty input")

	// ErrAlreadyRegistered signals a duplicate schema registration.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrUnavailable signals that the search service is not reachable.
	ErrUnavailable = errors.New("search service unavailable")
)

// ConversionError wraps ErrConversion with the offending field and raw value.
type ConversionError struct {
	Field string
	Kind  string
	Raw   any
	Err   error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: field %q (%s) raw %q", ErrConversion.Error(), e.Field, e.Kind, fmt.Sprint(e.Raw))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return ErrConversion }

// NewConversion creates a conversion error.
func NewConversion(fieldName, kind string, raw any, cause error) error {
	return &ConversionError{Field: fieldName, Kind: kind, Raw: raw, Err: cause}
}

// UnknownSchemaError wraps ErrUnknownSchema with the model tag that failed lookup.
type UnknownSchemaError struct {
	ModelTag string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("%s: model tag %q", ErrUnknownSchema.Error(), e.ModelTag)
}

func (e *UnknownSchemaError) Unwrap() error { return ErrUnknownSchema }

// NewUnknownSchema creates an unknown schema error.
func NewUnknownSchema(modelTag string) error {
	return &UnknownSchemaError{ModelTag: modelTag}
}
