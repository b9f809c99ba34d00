package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/oncology-cds-engine/internal/domain"
)

// fingerprintFields is the subset of a decision input that identifies a cached result.
// Treatment history contributes only its length.
type fingerprintFields struct {
	Diagnosis         string                    `json:"diagnosis"`
	Stage             string                    `json:"stage"`
	Histology         string                    `json:"histology"`
	PerformanceStatus *domain.PerformanceStatus `json:"performance_status"`
	ProgressionData   *domain.ProgressionData   `json:"progression_data"`
	HistoryCount      int                       `json:"history_count"`
}

// Fingerprint derives the cache key for a decision input.
func Fingerprint(input *domain.DecisionInput) (string, error) {
	if input == nil {
		return "", fmt.Errorf("cannot fingerprint nil input")
	}

	fields := fingerprintFields{
		PerformanceStatus: input.PerformanceStatus,
		ProgressionData:   input.ProgressionData,
		HistoryCount:      len(input.TreatmentHistory),
	}
	if ds := input.DiseaseStatus; ds != nil {
		fields.Diagnosis = ds.PrimaryDiagnosis
		fields.Stage = ds.Stage
		fields.Histology = ds.Histology
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal fingerprint fields: %w", err)
	}
	hash := sha256.Sum256(append([]byte("decision::"), data...))
	return hex.EncodeToString(hash[:]), nil
}
