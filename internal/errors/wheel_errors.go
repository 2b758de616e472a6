package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the different failure kinds the engine surfaces
type ErrorCategory string

const (
	// Malformed or out-of-range numeric input; never retried
	ErrorCategoryInvalidInput ErrorCategory = "INVALID_INPUT"

	// Too few valid price points for an estimator; callers may degrade
	ErrorCategoryInsufficientData ErrorCategory = "INSUFFICIENT_DATA"

	// Illegal state-machine action; always surfaced, never retried
	ErrorCategoryInvalidState ErrorCategory = "INVALID_STATE"

	// Bad blend weights, unknown profile, or invalid configuration values
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
)

// WheelError is a categorized error with component and operation context
type WheelError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *WheelError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *WheelError) Unwrap() error {
	return e.Underlying
}

// WithContext adds context information to the error
func (e *WheelError) WithContext(key string, value interface{}) *WheelError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new categorized wheel error
func New(category ErrorCategory, component, operation, message string) *WheelError {
	return &WheelError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with wheel error context
func Wrap(err error, category ErrorCategory, component, operation string) *WheelError {
	if err == nil {
		return nil
	}
	return &WheelError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// IsCategory reports whether err is a WheelError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var we *WheelError
	if errors.As(err, &we) {
		return we.Category == category
	}
	return false
}

// Common error constructors

// NewInvalidInputError reports malformed or out-of-range numeric input
func NewInvalidInputError(component, operation, message string) *WheelError {
	return New(ErrorCategoryInvalidInput, component, operation, message)
}

// NewInsufficientDataError reports that too few valid data points remain
// for a computation to proceed
func NewInsufficientDataError(component, operation, message string) *WheelError {
	return New(ErrorCategoryInsufficientData, component, operation, message)
}

// NewInvalidStateError reports a rejected state-machine action. The message
// always names both the rejected action and the current state.
func NewInvalidStateError(component, action, currentState string) *WheelError {
	return New(ErrorCategoryInvalidState, component, action,
		fmt.Sprintf("action %q rejected in state %s", action, currentState)).
		WithContext("state", currentState).
		WithContext("action", action)
}

// NewConfigurationError reports invalid configuration values
func NewConfigurationError(component, operation, message string) *WheelError {
	return New(ErrorCategoryConfiguration, component, operation, message)
}
