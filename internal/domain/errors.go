package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeExtraction   ErrorType = "extraction"
	ErrorTypeGeneration   ErrorType = "generation"
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypePrecondition ErrorType = "precondition"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeConflict     ErrorType = "conflict"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func GenerationError(message string, err error) *DomainError {
	return NewError(ErrorTypeGeneration, message, err)
}

func ParseError(message string, err error) *DomainError {
	return NewError(ErrorTypeParse, message, err)
}

func PreconditionError(message string, err error) *DomainError {
	return NewError(ErrorTypePrecondition, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func ConflictError(message string, err error) *DomainError {
	return NewError(ErrorTypeConflict, message, err)
}

// Sentinels compared with errors.Is.
var (
	// ErrNoContent is returned when a generation response carries no candidate text.
	ErrNoContent = GenerationError("no content returned", nil)

	// ErrMissingCredential is returned by every generation call when no API key is configured.
	ErrMissingCredential = GenerationError("API key is not configured", nil)

	// ErrBusy is returned when an operation of the same kind is already in flight.
	ErrBusy = ConflictError("operation already in progress", nil)
)

// IsType reports whether err is a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == errType
	}
	return false
}

// UserMessage renders err for display, without the type tag.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if !errors.As(err, &de) {
		return err.Error()
	}
	if de.Err != nil {
		return fmt.Sprintf("%s: %v", de.Message, de.Err)
	}
	return de.Message
}
