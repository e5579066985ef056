package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrSymbolNotFound      = errors.New("symbol not found")
	ErrUpstream            = errors.New("market data provider error")
	ErrProviderUnsupported = errors.New("operation not supported by provider")
	ErrNotConfigured       = errors.New("market data provider not configured")
)

// InvalidInputError reports a single field that violates its bounds.
type InvalidInputError struct {
	Field  string
	Reason string
}

func NewInvalidInput(field, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
