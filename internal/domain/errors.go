package domain

import (
	"fmt"
	"time"
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput       = "INVALID_INPUT"
	ErrValidation         = "VALIDATION_ERROR"
	ErrNoEligibleProtocol = "NO_ELIGIBLE_PROTOCOL"
	ErrProtocolNotFound   = "PROTOCOL_NOT_FOUND"
	ErrDatabaseError      = "DATABASE_ERROR"
	ErrRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
)

// ValidationKind classifies validation failures.
type ValidationKind string

const (
	MissingRequiredField ValidationKind = "MissingRequiredField"
	InvalidFieldValue    ValidationKind = "InvalidFieldValue"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Field   string         `json:"field"`
	Message string         `json:"message"`
	Value   interface{}    `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NoEligibleProtocolError is returned when every catalogue protocol was filtered out.
type NoEligibleProtocolError struct {
	Diagnosis string        `json:"diagnosis"`
	Stage     string        `json:"stage"`
	Line      TreatmentLine `json:"line"`
}

// Error implements the error interface
func (e *NoEligibleProtocolError) Error() string {
	return fmt.Sprintf("no suitable protocol found for %s stage %s (%s)", e.Diagnosis, e.Stage, e.Line)
}

// RecommendationError is the single error shape returned by the engine entry point.
// The cause is preserved for errors.As.
type RecommendationError struct {
	Err error
}

// Error implements the error interface
func (e *RecommendationError) Error() string {
	return fmt.Sprintf("failed to generate treatment recommendation: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *RecommendationError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewMissingFieldError creates a ValidationError for an absent required field.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Kind:    MissingRequiredField,
		Field:   field,
		Message: "required field is missing",
	}
}

// NewValidationError creates a new ValidationError for an invalid value.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Kind:    InvalidFieldValue,
		Field:   field,
		Message: message,
		Value:   value,
	}
}
