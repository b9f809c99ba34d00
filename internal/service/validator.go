package service

import (
	"strings"

	"github.com/oncology-cds-engine/internal/domain"
)

// RequiredFieldValidator checks the fields the engine cannot run without. Checks run in
// a fixed order and the first failure is reported.
type RequiredFieldValidator struct{}

// NewRequiredFieldValidator creates the default input validator
func NewRequiredFieldValidator() *RequiredFieldValidator {
	return &RequiredFieldValidator{}
}

// Validate implements domain.InputValidator.
func (v *RequiredFieldValidator) Validate(input *domain.DecisionInput) error {
	if input == nil || input.DiseaseStatus == nil {
		return domain.NewMissingFieldError("disease_status")
	}
	if input.PerformanceStatus == nil {
		return domain.NewMissingFieldError("performance_status")
	}
	if strings.TrimSpace(input.DiseaseStatus.PrimaryDiagnosis) == "" {
		return domain.NewMissingFieldError("disease_status.primary_diagnosis")
	}
	if strings.TrimSpace(input.DiseaseStatus.Stage) == "" {
		return domain.NewMissingFieldError("disease_status.stage")
	}
	if strings.TrimSpace(input.PerformanceStatus.Score) == "" {
		return domain.NewMissingFieldError("performance_status.score")
	}
	return nil
}
