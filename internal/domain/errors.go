package domain

import "fmt"

// ValidationError is returned when a submitted result misses a required
// field or carries a value outside its domain.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "required"}
}
