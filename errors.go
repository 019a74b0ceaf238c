package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrAttributeNotFound attribute is neither stored, declared, mutated nor a loaded relation
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrRelationNotFound relation is not registered on the definition
	ErrRelationNotFound = errors.New("relation not found")
	// ErrRelationNotLoaded relation is registered but was never loaded
	ErrRelationNotLoaded = errors.New("relation not loaded")
	// ErrUnsupportedOperation the query builder can't perform the operation, e.g. limit without LimitBuilder
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrMethodNotSupported method name is not in the pass-through allow-list
	ErrMethodNotSupported = errors.New("method not supported")
	// ErrInvalidArgument arguments don't match the method signature
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPrimaryKeyRequired primary key required
	ErrPrimaryKeyRequired = errors.New("primary key required")
	// ErrInvalidDefinition invalid definition
	ErrInvalidDefinition = errors.New("invalid definition")
	// ErrMissingDriver missing driver
	ErrMissingDriver = errors.New("missing driver")
	// ErrMalformedUTF8 a string value is not valid UTF-8
	ErrMalformedUTF8 = errors.New("malformed UTF-8 characters, possibly incorrectly encoded")
)

// JSONEncodingError is returned when a model, or one of its attributes, can't be encoded as JSON
type JSONEncodingError struct {
	Model     string
	Attribute string
	Err       error
}

func (e *JSONEncodingError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("unable to encode attribute [%s] for model [%s] to JSON: %v", e.Attribute, e.Model, e.Err)
	}
	return fmt.Sprintf("error encoding model [%s] to JSON: %v", e.Model, e.Err)
}

func (e *JSONEncodingError) Unwrap() error {
	return e.Err
}
