package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeStore      = "STORE_ERROR"
	CodeTransport  = "TRANSPORT_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

type BotError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

// StoreError reports a failed read or write against the membership backend.
type StoreError struct {
	*BotError
	Operation string
	Key       string
}

func NewStoreError(message, operation, key string, cause error) *StoreError {
	return &StoreError{
		BotError: &BotError{
			Message: message,
			Code:    CodeStore,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// TransportError reports a failed call to the messaging platform.
type TransportError struct {
	*BotError
	Operation string
}

func NewTransportError(message, operation string, cause error) *TransportError {
	return &TransportError{
		BotError: &BotError{
			Message: message,
			Code:    CodeTransport,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

type ValidationError struct {
	*BotError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		BotError: &BotError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// IsStoreError reports whether err carries a StoreError anywhere in its chain.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return stderrors.As(err, &storeErr)
}

// IsTransportError reports whether err carries a TransportError anywhere in its chain.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return stderrors.As(err, &transportErr)
}
