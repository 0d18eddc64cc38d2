package center

import "errors"

var (
	ErrCenterNotFound = errors.New("center not found")
	ErrInvalidStatus  = errors.New("invalid center status")
)

// ValidationError carries per-field failures from the domain-level check.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "center validation failed" }
