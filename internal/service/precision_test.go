package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncology-cds-engine/internal/domain"
)

func precisionProtocol(id string, tt domain.TreatmentType, level domain.EvidenceLevel, routes ...domain.Route) *domain.Protocol {
	p := &domain.Protocol{ID: id, TreatmentType: tt, EvidenceLevel: level}
	for _, r := range routes {
		p.Regimen = append(p.Regimen, domain.DrugEntry{Name: id + "-drug", Route: r})
	}
	return p
}

func TestAdjuster_PrecisionBoost(t *testing.T) {
	a := NewAdjuster(testLogger())

	targeted := precisionProtocol("targeted", domain.TARGETED_THERAPY, domain.EVIDENCE_2B, domain.ROUTE_ORAL)
	immuno := precisionProtocol("immuno", domain.IMMUNOTHERAPY, domain.EVIDENCE_3, domain.ROUTE_IV)
	chemoImmuno := precisionProtocol("chemo-immuno", domain.CHEMO_IMMUNOTHERAPY, domain.EVIDENCE_2A, domain.ROUTE_IV)
	chemo := precisionProtocol("chemo", domain.CHEMOTHERAPY, domain.EVIDENCE_2A, domain.ROUTE_IV)

	ranked := []RankedProtocol{
		{Protocol: chemo, EvidenceLevel: chemo.EvidenceLevel},
		{Protocol: targeted, EvidenceLevel: targeted.EvidenceLevel},
		{Protocol: immuno, EvidenceLevel: immuno.EvidenceLevel},
		{Protocol: chemoImmuno, EvidenceLevel: chemoImmuno.EvidenceLevel},
	}

	t.Run("no markers leaves evidence unchanged", func(t *testing.T) {
		out := a.ApplyPrecision(ranked, patient("lung", "IV", "0"))
		for i := range out {
			assert.Equal(t, ranked[i].EvidenceLevel, out[i].EvidenceLevel)
		}
	})

	t.Run("mutation and PD-L1 boost without reordering", func(t *testing.T) {
		in := patient("lung", "IV", "0")
		in.DiseaseStatus.GeneticMutations = []domain.GeneticMutation{{Gene: "ALK", Mutation: "EML4-ALK fusion", Status: domain.MUTATION_NEGATIVE}}
		in.DiseaseStatus.Biomarkers = []domain.Biomarker{{Name: "PD-L1 TPS", Value: "60%"}}

		out := a.ApplyPrecision(ranked, in)

		assert.Equal(t, protocolIDs(ranked), protocolIDs(out))
		assert.Equal(t, domain.EVIDENCE_2A, out[0].EvidenceLevel)
		assert.Equal(t, domain.EVIDENCE_1A, out[1].EvidenceLevel)
		assert.Equal(t, domain.EVIDENCE_1B, out[2].EvidenceLevel)
		assert.Equal(t, domain.EVIDENCE_1B, out[3].EvidenceLevel)
		assert.NotEmpty(t, out[1].Adjustment)
	})

	t.Run("MSI biomarker is case insensitive", func(t *testing.T) {
		in := patient("colorectal", "IV", "0")
		in.DiseaseStatus.Biomarkers = []domain.Biomarker{{Name: "msi-high", Value: "present"}}

		out := a.ApplyPrecision(ranked, in)
		assert.Equal(t, domain.EVIDENCE_1B, out[2].EvidenceLevel)
		assert.Equal(t, domain.EVIDENCE_2B, out[1].EvidenceLevel)
	})

	t.Run("catalogue entries are never modified", func(t *testing.T) {
		in := patient("lung", "IV", "0")
		in.DiseaseStatus.GeneticMutations = []domain.GeneticMutation{{Gene: "EGFR", Mutation: "L858R", Status: domain.MUTATION_POSITIVE}}

		out := a.ApplyPrecision(ranked, in)
		require.Equal(t, domain.EVIDENCE_1A, out[1].EvidenceLevel)
		assert.Equal(t, domain.EVIDENCE_2B, targeted.EvidenceLevel)
		assert.Equal(t, domain.EVIDENCE_2B, ranked[1].EvidenceLevel)
	})
}

func TestAdjuster_Performance(t *testing.T) {
	a := NewAdjuster(testLogger())

	aggressive := precisionProtocol("aggressive", domain.CHEMOTHERAPY, domain.EVIDENCE_1A, domain.ROUTE_IV)
	middle := precisionProtocol("middle", domain.TARGETED_THERAPY, domain.EVIDENCE_1A, domain.ROUTE_ORAL, domain.ROUTE_SUBCUTANEOUS)
	conservative := precisionProtocol("conservative", domain.HORMONAL_THERAPY, domain.EVIDENCE_1A, domain.ROUTE_ORAL)

	ranked := []RankedProtocol{
		{Protocol: aggressive, EvidenceLevel: domain.EVIDENCE_1A},
		{Protocol: middle, EvidenceLevel: domain.EVIDENCE_1A},
		{Protocol: conservative, EvidenceLevel: domain.EVIDENCE_1A},
	}

	tests := []struct {
		score    string
		kept     []string
		excluded int
	}{
		{"0", []string{"aggressive", "middle", "conservative"}, 0},
		{"1", []string{"aggressive", "middle", "conservative"}, 0},
		{"2", []string{"middle", "conservative"}, 1},
		{"3", []string{"conservative"}, 2},
		{"4", []string{"conservative"}, 2},
		{"not assessed", []string{"aggressive", "middle", "conservative"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			kept, excluded := a.ApplyPerformance(ranked, patient("breast", "IV", tt.score))
			assert.Equal(t, tt.kept, protocolIDs(kept))
			assert.Len(t, excluded, tt.excluded)
			for _, ex := range excluded {
				assert.Equal(t, StagePerformance, ex.Stage)
			}
		})
	}
}
