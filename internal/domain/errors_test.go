package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Validation error",
			code:      ErrValidation,
			message:   "Invalid decision input",
			details:   "disease_status is required",
			requestID: "req-123",
		},
		{
			name:      "No eligible protocol",
			code:      ErrNoEligibleProtocol,
			message:   "No suitable protocol found",
			details:   "breast stage II",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.requestID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}
			if err.Details != tt.details {
				t.Errorf("Expected details %s, got %s", tt.details, err.Details)
			}
			if err.RequestID != tt.requestID {
				t.Errorf("Expected requestID %s, got %s", tt.requestID, err.RequestID)
			}
			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestMissingFieldError(t *testing.T) {
	err := NewMissingFieldError("disease_status")

	if err.Kind != MissingRequiredField {
		t.Errorf("Expected kind %s, got %s", MissingRequiredField, err.Kind)
	}
	expected := "validation error for field 'disease_status': required field is missing"
	if err.Error() != expected {
		t.Errorf("Expected error string %s, got %s", expected, err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("performance_status.scale", "unsupported scale", "Zubrod")

	if err.Kind != InvalidFieldValue {
		t.Errorf("Expected kind %s, got %s", InvalidFieldValue, err.Kind)
	}
	if err.Value != "Zubrod" {
		t.Errorf("Expected value Zubrod, got %v", err.Value)
	}
}

func TestRecommendationErrorUnwrap(t *testing.T) {
	inner := &NoEligibleProtocolError{Diagnosis: "breast", Stage: "II", Line: FIRST_LINE}
	err := error(&RecommendationError{Err: inner})

	expected := "failed to generate treatment recommendation: no suitable protocol found for breast stage II (first-line)"
	if err.Error() != expected {
		t.Errorf("Expected error string %s, got %s", expected, err.Error())
	}

	var noEligible *NoEligibleProtocolError
	if !errors.As(err, &noEligible) {
		t.Fatal("Expected errors.As to find NoEligibleProtocolError")
	}
	if noEligible.Stage != "II" {
		t.Errorf("Expected stage II, got %s", noEligible.Stage)
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		t.Error("Did not expect a ValidationError in the chain")
	}
}
