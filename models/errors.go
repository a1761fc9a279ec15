package models

import "fmt"

// DomainError represents a business-rule violation raised by a model operation
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a DomainError with the given code and message
func NewDomainError(code, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error codes returned by model operations. Controllers map these onto HTTP
// status codes and response envelopes.
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodeCapacityExceeded       = "CAPACITY_EXCEEDED"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeDuplicateOrderNumber   = "DUPLICATE_ORDER_NUMBER"
)

// IsDomainError reports whether err is a DomainError with the given code
func IsDomainError(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
