package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
)

// Confidence score bounds and adjustments.
const (
	ConfidenceBase     = 70
	ConfidenceMin      = 30
	ConfidenceMax      = 95
	confidenceBonus1A  = 20
	confidenceBonus1B  = 15
	confidenceLowRisk  = 10
	confidenceVeryHigh = 15
)

const (
	maxAlternatives    = 3
	doseReductionNote  = "Consider 20% dose reduction given high overall risk"
	postTreatmentVisit = "Week 3"
)

var (
	emergencyWarningSigns = []string{
		"Fever of 38.0°C (100.4°F) or higher",
		"Shortness of breath or chest pain",
		"Uncontrolled nausea, vomiting or diarrhea",
		"Unusual bleeding or bruising",
	}
	emergencyActions = []string{
		"Contact the listed emergency contact immediately",
		"Go to the nearest emergency department if the contact cannot be reached",
		"Bring the current treatment summary and medication list",
	}
)

// Assembler turns the final ranked protocol list into the recommendation bundle.
type Assembler struct {
	logger *logrus.Logger
}

// NewAssembler creates a new recommendation assembler
func NewAssembler(logger *logrus.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble builds the output from the ranked protocols. It fails with
// NoEligibleProtocolError when nothing survived the earlier stages.
func (a *Assembler) Assemble(ranked []RankedProtocol, input *domain.DecisionInput, risk domain.RiskAssessment) (*domain.DecisionOutput, error) {
	ds := input.DiseaseStatus
	if len(ranked) == 0 {
		return nil, &domain.NoEligibleProtocolError{
			Diagnosis: ds.PrimaryDiagnosis,
			Stage:     ds.Stage,
			Line:      input.CurrentLine(),
		}
	}

	primary := ranked[0]
	output := &domain.DecisionOutput{
		Primary:             a.recommendation(primary, 1, input, risk),
		Alternatives:        []domain.Recommendation{},
		RiskAssessment:      risk,
		MonitoringPlan:      primary.Protocol.Monitoring.Clone(),
		SupportiveCare:      supportiveCare(),
		FollowUp:            followUp(primary.Protocol),
		EmergencyGuidelines: emergencyGuidelines(primary.Protocol),
		ConfidenceScore:     ConfidenceScore(primary.EvidenceLevel, risk.OverallRisk),
	}

	for i, alt := range ranked[1:] {
		if i == maxAlternatives {
			break
		}
		output.Alternatives = append(output.Alternatives, a.recommendation(alt, i+2, input, risk))
	}

	output.Rationale = explain(output, input)

	a.logger.WithFields(logrus.Fields{
		"primary":      output.Primary.ProtocolID,
		"alternatives": len(output.Alternatives),
		"confidence":   output.ConfidenceScore,
	}).Debug("Recommendation assembled")

	return output, nil
}

func (a *Assembler) recommendation(r RankedProtocol, priority int, input *domain.DecisionInput, risk domain.RiskAssessment) domain.Recommendation {
	p := r.Protocol
	ds := input.DiseaseStatus

	rec := domain.Recommendation{
		ProtocolID:       p.ID,
		ProtocolName:     p.Name,
		Priority:         priority,
		Rationale:        fmt.Sprintf("Evidence level %s protocol for %s stage %s", r.EvidenceLevel, ds.PrimaryDiagnosis, ds.Stage),
		Modifications:    []string{},
		ExpectedBenefit:  p.ExpectedOutcomes.ResponseRate,
		RiskBenefit:      domain.ACCEPTABLE,
		EvidenceStrength: r.EvidenceLevel,
	}
	if r.Adjustment != "" {
		rec.Rationale += "; evidence adjusted for " + r.Adjustment
	}
	if risk.OverallRisk == domain.RISK_HIGH {
		rec.Modifications = append(rec.Modifications, doseReductionNote)
	}
	if risk.OverallRisk == domain.RISK_LOW {
		rec.RiskBenefit = domain.FAVORABLE
	}

	return rec
}

// ConfidenceScore starts from the base score, adds the evidence bonus (1A over 1B),
// adjusts for overall risk and clamps to [ConfidenceMin, ConfidenceMax].
func ConfidenceScore(evidence domain.EvidenceLevel, overall domain.RiskLevel) int {
	score := ConfidenceBase

	switch evidence {
	case domain.EVIDENCE_1A:
		score += confidenceBonus1A
	case domain.EVIDENCE_1B:
		score += confidenceBonus1B
	}

	switch overall {
	case domain.RISK_LOW:
		score += confidenceLowRisk
	case domain.RISK_VERY_HIGH:
		score -= confidenceVeryHigh
	}

	if score < ConfidenceMin {
		return ConfidenceMin
	}
	if score > ConfidenceMax {
		return ConfidenceMax
	}
	return score
}

func supportiveCare() []domain.SupportiveCareItem {
	return []domain.SupportiveCareItem{
		{
			Category:     domain.SYMPTOM_MANAGEMENT,
			Intervention: "Antiemetic prophylaxis",
			Indication:   "Prevention of chemotherapy-induced nausea and vomiting",
			Priority:     domain.PRIORITY_HIGH,
		},
	}
}

func followUp(p *domain.Protocol) domain.FollowUpPlan {
	plan := domain.FollowUpPlan{
		ScheduledVisits: []domain.FollowUpVisit{},
		LabSchedule:     []string{},
		ImagingSchedule: []string{},
	}
	if len(p.Monitoring.PostTreatment) == 0 {
		return plan
	}

	assessments := make([]string, 0, len(p.Monitoring.PostTreatment))
	for _, item := range p.Monitoring.PostTreatment {
		assessments = append(assessments, item.Test)
	}
	plan.ScheduledVisits = append(plan.ScheduledVisits, domain.FollowUpVisit{
		Timing:      postTreatmentVisit,
		Purpose:     "Post-treatment assessment",
		Assessments: assessments,
	})
	return plan
}

func emergencyGuidelines(p *domain.Protocol) []domain.EmergencyGuideline {
	guidelines := make([]domain.EmergencyGuideline, 0, len(p.Monitoring.EmergencyContacts))
	for _, contact := range p.Monitoring.EmergencyContacts {
		guidelines = append(guidelines, domain.EmergencyGuideline{
			Contact:      contact,
			WarningSigns: append([]string(nil), emergencyWarningSigns...),
			Actions:      append([]string(nil), emergencyActions...),
		})
	}
	return guidelines
}

func explain(output *domain.DecisionOutput, input *domain.DecisionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommended %s (evidence %s) for %s stage %s at %s treatment.",
		output.Primary.ProtocolName,
		output.Primary.EvidenceStrength,
		input.DiseaseStatus.PrimaryDiagnosis,
		input.DiseaseStatus.Stage,
		input.CurrentLine(),
	)
	fmt.Fprintf(&b, " Overall risk is %s with %d risk factor(s).",
		output.RiskAssessment.OverallRisk,
		len(output.RiskAssessment.RiskFactors),
	)
	if n := len(output.Alternatives); n > 0 {
		fmt.Fprintf(&b, " %d alternative protocol(s) considered.", n)
	}
	fmt.Fprintf(&b, " Confidence %d%%.", output.ConfidenceScore)
	return b.String()
}
