package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
)

// Adjuster applies precision-medicine evidence overrides and removes protocols that
// do not suit the patient's functional status.
type Adjuster struct {
	logger *logrus.Logger
}

// NewAdjuster creates a new precision-medicine and performance adjuster
func NewAdjuster(logger *logrus.Logger) *Adjuster {
	return &Adjuster{logger: logger}
}

// ApplyPrecision returns a new slice in the same order where targeted therapies are
// raised to 1A for patients with a recorded mutation and immunotherapies to 1B for
// patients with a PD-L1 or MSI biomarker.
func (a *Adjuster) ApplyPrecision(ranked []RankedProtocol, input *domain.DecisionInput) []RankedProtocol {
	hasMutation := len(input.DiseaseStatus.GeneticMutations) > 0
	hasImmuneMarker := hasImmunotherapyBiomarker(input.DiseaseStatus.Biomarkers)

	adjusted := make([]RankedProtocol, len(ranked))
	for i, r := range ranked {
		switch {
		case r.Protocol.TreatmentType.IsTargeted() && hasMutation:
			r = r.WithEvidence(domain.EVIDENCE_1A, "targeted therapy with recorded genetic mutation")
		case r.Protocol.TreatmentType.IsImmunotherapy() && hasImmuneMarker:
			r = r.WithEvidence(domain.EVIDENCE_1B, "immunotherapy with PD-L1/MSI biomarker")
		}
		if r.EvidenceLevel != r.Protocol.EvidenceLevel {
			a.logger.WithFields(logrus.Fields{
				"protocol_id": r.Protocol.ID,
				"from":        r.Protocol.EvidenceLevel,
				"to":          r.EvidenceLevel,
			}).Debug("Evidence level adjusted")
		}
		adjusted[i] = r
	}

	return adjusted
}

// ApplyPerformance drops aggressive regimens when the score is above 1 and anything
// but conservative regimens when the score is 3 or more. An unspecified score drops
// nothing.
func (a *Adjuster) ApplyPerformance(ranked []RankedProtocol, input *domain.DecisionInput) ([]RankedProtocol, []Exclusion) {
	score := input.Score()

	kept := make([]RankedProtocol, 0, len(ranked))
	var excluded []Exclusion

	for _, r := range ranked {
		switch {
		case score.AtLeast(2) && r.Protocol.IsAggressive():
			excluded = append(excluded, Exclusion{
				ProtocolID: r.Protocol.ID,
				Stage:      StagePerformance,
				Reason:     fmt.Sprintf("aggressive regimen not suitable for performance score %s", score),
			})
		case score.AtLeast(3) && !r.Protocol.IsConservative():
			excluded = append(excluded, Exclusion{
				ProtocolID: r.Protocol.ID,
				Stage:      StagePerformance,
				Reason:     fmt.Sprintf("only conservative regimens are suitable for performance score %s", score),
			})
		default:
			kept = append(kept, r)
		}
	}

	return kept, excluded
}

func hasImmunotherapyBiomarker(biomarkers []domain.Biomarker) bool {
	for _, b := range biomarkers {
		name := strings.ToLower(b.Name)
		if strings.Contains(name, "pd-l1") || strings.Contains(name, "msi") {
			return true
		}
	}
	return false
}
