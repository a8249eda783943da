package models

import "fmt"

// ValidationError reports missing or malformed operator input. Nothing is
// written to the store when one is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}
