package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncology-cds-engine/internal/domain"
)

func baseInput() *domain.DecisionInput {
	return &domain.DecisionInput{
		DiseaseStatus: &domain.DiseaseStatus{
			PrimaryDiagnosis: "breast",
			Stage:            "II",
			Histology:        "invasive ductal carcinoma",
		},
		PerformanceStatus: &domain.PerformanceStatus{
			AssessmentDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			Scale:          domain.ECOG,
			Score:          "1",
		},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a, err := Fingerprint(baseInput())
	require.NoError(t, err)
	b, err := Fingerprint(baseInput())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_SensitiveFields(t *testing.T) {
	base, err := Fingerprint(baseInput())
	require.NoError(t, err)

	mutations := map[string]func(in *domain.DecisionInput){
		"diagnosis": func(in *domain.DecisionInput) { in.DiseaseStatus.PrimaryDiagnosis = "lung" },
		"stage":     func(in *domain.DecisionInput) { in.DiseaseStatus.Stage = "III" },
		"histology": func(in *domain.DecisionInput) { in.DiseaseStatus.Histology = "aggressive" },
		"score":     func(in *domain.DecisionInput) { in.PerformanceStatus.Score = "2" },
		"progression": func(in *domain.DecisionInput) {
			in.ProgressionData = &domain.ProgressionData{ImagingType: "CT"}
		},
		"history count": func(in *domain.DecisionInput) {
			in.TreatmentHistory = []domain.TreatmentLineRecord{{Line: domain.FIRST_LINE}}
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := baseInput()
			mutate(in)
			got, err := Fingerprint(in)
			require.NoError(t, err)
			assert.NotEqual(t, base, got)
		})
	}
}

func TestFingerprint_IgnoresHistoryContent(t *testing.T) {
	a := baseInput()
	a.TreatmentHistory = []domain.TreatmentLineRecord{{Line: domain.FIRST_LINE, RegimenName: "AC-T"}}
	b := baseInput()
	b.TreatmentHistory = []domain.TreatmentLineRecord{{Line: domain.FIRST_LINE, RegimenName: "TC"}}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
}

func TestFingerprint_NilInput(t *testing.T) {
	_, err := Fingerprint(nil)
	assert.Error(t, err)
}
