package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
)

// RiskCalculator derives the aggregate risk assessment of a patient.
type RiskCalculator struct {
	logger *logrus.Logger
	rules  []*RiskRule
}

// RiskRule contributes risk factors and specific risks from one section of the
// patient record.
type RiskRule struct {
	Name      string
	Category  domain.RiskCategory
	Evaluator func(input *domain.DecisionInput) ([]domain.RiskFactor, []domain.SpecificRisk)
}

// NewRiskCalculator creates a new risk calculator
func NewRiskCalculator(logger *logrus.Logger) *RiskCalculator {
	return &RiskCalculator{
		logger: logger,
		rules: []*RiskRule{
			{Name: "disease", Category: domain.DISEASE_RISK, Evaluator: evaluateDiseaseRisk},
			{Name: "performance", Category: domain.PERFORMANCE_RISK, Evaluator: evaluatePerformanceRisk},
			{Name: "treatment_history", Category: domain.TREATMENT_RISK, Evaluator: evaluateTreatmentHistoryRisk},
			{Name: "comorbidity", Category: domain.COMORBIDITY_RISK, Evaluator: evaluateComorbidityRisk},
		},
	}
}

// Assess evaluates every risk rule in order and aggregates the result.
func (r *RiskCalculator) Assess(input *domain.DecisionInput) domain.RiskAssessment {
	assessment := domain.RiskAssessment{
		RiskFactors:   []domain.RiskFactor{},
		SpecificRisks: []domain.SpecificRisk{},
	}

	for _, rule := range r.rules {
		factors, risks := rule.Evaluator(input)
		assessment.RiskFactors = append(assessment.RiskFactors, factors...)
		assessment.SpecificRisks = append(assessment.SpecificRisks, risks...)
	}

	assessment.OverallRisk = OverallRiskLevel(assessment.RiskFactors)
	assessment.MitigationStrategies = mitigationStrategies(assessment.RiskFactors, assessment.SpecificRisks)

	r.logger.WithFields(logrus.Fields{
		"overall_risk":   assessment.OverallRisk,
		"risk_factors":   len(assessment.RiskFactors),
		"specific_risks": len(assessment.SpecificRisks),
	}).Debug("Risk assessment completed")

	return assessment
}

// OverallRiskLevel maps the number of HIGH or VERY_HIGH factors to a risk level.
func OverallRiskLevel(factors []domain.RiskFactor) domain.RiskLevel {
	high := 0
	for _, f := range factors {
		if f.Impact.IsHighImpact() {
			high++
		}
	}

	switch {
	case high >= 3:
		return domain.RISK_VERY_HIGH
	case high == 2:
		return domain.RISK_HIGH
	case high == 1:
		return domain.RISK_INTERMEDIATE
	default:
		return domain.RISK_LOW
	}
}

func evaluateDiseaseRisk(input *domain.DecisionInput) ([]domain.RiskFactor, []domain.SpecificRisk) {
	var factors []domain.RiskFactor
	var risks []domain.SpecificRisk

	ds := input.DiseaseStatus
	if ds == nil {
		return nil, nil
	}

	if strings.Contains(ds.Stage, "IV") || strings.Contains(strings.ToLower(ds.Stage), "advanced") {
		factors = append(factors, domain.RiskFactor{
			Category:   domain.DISEASE_RISK,
			Factor:     "Advanced disease stage",
			Impact:     domain.RISK_HIGH,
			Modifiable: false,
		})
		risks = append(risks, domain.SpecificRisk{
			Type:        domain.PROGRESSION_RISK,
			Description: "Disease progression",
			Probability: "60-80%",
			Timeframe:   "6-12 months",
			Prevention:  []string{"Regular restaging imaging", "Timely treatment initiation"},
		})
	}

	if strings.Contains(strings.ToLower(ds.Histology), "aggressive") {
		factors = append(factors, domain.RiskFactor{
			Category:   domain.DISEASE_RISK,
			Factor:     "Aggressive histology",
			Impact:     domain.RISK_HIGH,
			Modifiable: false,
		})
	}

	return factors, risks
}

func evaluatePerformanceRisk(input *domain.DecisionInput) ([]domain.RiskFactor, []domain.SpecificRisk) {
	score := input.Score()
	if !score.AtLeast(2) {
		return nil, nil
	}

	impact := domain.RISK_HIGH
	if score.AtLeast(3) {
		impact = domain.RISK_VERY_HIGH
	}

	factor := domain.RiskFactor{
		Category:      domain.PERFORMANCE_RISK,
		Factor:        fmt.Sprintf("Reduced performance status (score %s)", score),
		Impact:        impact,
		Modifiable:    true,
		Interventions: []string{"Supportive care optimization", "Physical rehabilitation", "Nutritional assessment"},
	}
	risk := domain.SpecificRisk{
		Type:        domain.TOXICITY_RISK,
		Description: "Treatment-related toxicity",
		Probability: "40-60%",
		Timeframe:   "during treatment",
		Prevention:  []string{"Dose modification", "Supportive care optimization", "Close toxicity monitoring"},
	}

	return []domain.RiskFactor{factor}, []domain.SpecificRisk{risk}
}

func evaluateTreatmentHistoryRisk(input *domain.DecisionInput) ([]domain.RiskFactor, []domain.SpecificRisk) {
	if len(input.TreatmentHistory) < 2 {
		return nil, nil
	}

	factor := domain.RiskFactor{
		Category:   domain.TREATMENT_RISK,
		Factor:     fmt.Sprintf("Multiple prior treatment lines (%d)", len(input.TreatmentHistory)),
		Impact:     domain.RISK_HIGH,
		Modifiable: false,
	}
	risk := domain.SpecificRisk{
		Type:        domain.PROGRESSION_RISK,
		Description: "Acquired treatment resistance",
		Probability: "70-90%",
		Timeframe:   "3-6 months",
		Prevention:  []string{"Molecular profiling for resistance mechanisms", "Clinical trial evaluation"},
	}

	return []domain.RiskFactor{factor}, []domain.SpecificRisk{risk}
}

func evaluateComorbidityRisk(input *domain.DecisionInput) ([]domain.RiskFactor, []domain.SpecificRisk) {
	var severe []string
	for _, c := range input.Comorbidities {
		if c.Severity == domain.SEVERE {
			severe = append(severe, c.Condition)
		}
	}
	if len(severe) == 0 {
		return nil, nil
	}

	factor := domain.RiskFactor{
		Category:      domain.COMORBIDITY_RISK,
		Factor:        "Severe comorbidity: " + strings.Join(severe, ", "),
		Impact:        domain.RISK_VERY_HIGH,
		Modifiable:    true,
		Interventions: []string{"Specialist consultation", "Comorbidity optimization before treatment"},
	}

	return []domain.RiskFactor{factor}, nil
}

// mitigationStrategies returns factor interventions followed by prevention steps,
// first occurrence wins.
func mitigationStrategies(factors []domain.RiskFactor, risks []domain.SpecificRisk) []string {
	seen := make(map[string]bool)
	strategies := []string{}

	add := func(items []string) {
		for _, item := range items {
			if seen[item] {
				continue
			}
			seen[item] = true
			strategies = append(strategies, item)
		}
	}

	for _, f := range factors {
		add(f.Interventions)
	}
	for _, r := range risks {
		add(r.Prevention)
	}

	return strategies
}
