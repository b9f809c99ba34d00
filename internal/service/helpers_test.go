package service

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func builtinCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.New(catalogue.Builtin())
	require.NoError(t, err)
	return cat
}

func patient(diagnosis, stage, score string) *domain.DecisionInput {
	return &domain.DecisionInput{
		PatientID: "patient-001",
		DiseaseStatus: &domain.DiseaseStatus{
			PrimaryDiagnosis: diagnosis,
			Stage:            stage,
		},
		PerformanceStatus: &domain.PerformanceStatus{
			Scale: domain.ECOG,
			Score: score,
		},
	}
}

func history(lines ...domain.TreatmentLine) []domain.TreatmentLineRecord {
	records := make([]domain.TreatmentLineRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, domain.TreatmentLineRecord{Line: l, RegimenName: "prior regimen"})
	}
	return records
}

func protocolIDs(ranked []RankedProtocol) []string {
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Protocol.ID)
	}
	return ids
}
