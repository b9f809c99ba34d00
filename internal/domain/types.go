// Package domain contains the core clinical entities used by the oncology treatment
// recommendation engine: the patient-state snapshot, the protocol catalogue entries and
// the recommendation bundle produced for a clinician.
//
// Every variant domain with a small fixed vocabulary is modelled as a closed string enum
// with an IsValid method, so that unknown values are caught at the edges (HTTP, MCP,
// catalogue loading) rather than deep inside the rule evaluation.
package domain

import (
	"errors"
	"strconv"
	"strings"
)

// CancerType is the closed taxonomy of major cancer types.
type CancerType string

const (
	BREAST     CancerType = "BREAST"
	LUNG       CancerType = "LUNG"
	COLORECTAL CancerType = "COLORECTAL"
	PROSTATE   CancerType = "PROSTATE"
	OVARIAN    CancerType = "OVARIAN"
	PANCREATIC CancerType = "PANCREATIC"
	MELANOMA   CancerType = "MELANOMA"
	LYMPHOMA   CancerType = "LYMPHOMA"
	LEUKEMIA   CancerType = "LEUKEMIA"
	OTHER      CancerType = "OTHER"
)

// TreatmentLine is the ordinal position of a regimen in the treatment sequence.
type TreatmentLine string

const (
	FIRST_LINE  TreatmentLine = "first-line"
	SECOND_LINE TreatmentLine = "second-line"
	THIRD_LINE  TreatmentLine = "third-line"
	FOURTH_LINE TreatmentLine = "fourth-line"
)

// treatmentLines lists the defined lines in sequence order.
var treatmentLines = []TreatmentLine{FIRST_LINE, SECOND_LINE, THIRD_LINE, FOURTH_LINE}

// PerformanceScale identifies the functional status instrument.
type PerformanceScale string

const (
	ECOG      PerformanceScale = "ECOG"
	KARNOFSKY PerformanceScale = "Karnofsky"
)

// MutationStatus is the reported status of a genetic mutation.
type MutationStatus string

const (
	MUTATION_POSITIVE MutationStatus = "positive"
	MUTATION_NEGATIVE MutationStatus = "negative"
	MUTATION_VUS      MutationStatus = "VUS"
)

// Severity of a comorbidity.
type Severity string

const (
	MILD     Severity = "mild"
	MODERATE Severity = "moderate"
	SEVERE   Severity = "severe"
)

// RiskLevel is used both for the impact of a single risk factor and for the overall
// patient risk.
type RiskLevel string

const (
	RISK_LOW          RiskLevel = "LOW"
	RISK_INTERMEDIATE RiskLevel = "INTERMEDIATE"
	RISK_HIGH         RiskLevel = "HIGH"
	RISK_VERY_HIGH    RiskLevel = "VERY_HIGH"
)

// RiskCategory groups risk factors by their source in the patient record.
type RiskCategory string

const (
	DISEASE_RISK     RiskCategory = "DISEASE"
	PERFORMANCE_RISK RiskCategory = "PERFORMANCE"
	TREATMENT_RISK   RiskCategory = "TREATMENT_HISTORY"
	COMORBIDITY_RISK RiskCategory = "COMORBIDITY"
)

// SpecificRiskType is the kind of adverse outcome a specific risk predicts.
type SpecificRiskType string

const (
	PROGRESSION_RISK SpecificRiskType = "PROGRESSION"
	TOXICITY_RISK    SpecificRiskType = "TOXICITY"
)

// EvidenceLevel grades the strength of evidence behind a protocol. 1A is the strongest.
type EvidenceLevel string

const (
	EVIDENCE_1A EvidenceLevel = "1A"
	EVIDENCE_1B EvidenceLevel = "1B"
	EVIDENCE_2A EvidenceLevel = "2A"
	EVIDENCE_2B EvidenceLevel = "2B"
	EVIDENCE_3  EvidenceLevel = "3"
	EVIDENCE_4  EvidenceLevel = "4"
	EVIDENCE_5  EvidenceLevel = "5"
)

// TreatmentType is the therapeutic class of a protocol.
type TreatmentType string

const (
	CHEMOTHERAPY        TreatmentType = "chemotherapy"
	TARGETED_THERAPY    TreatmentType = "targeted-therapy"
	IMMUNOTHERAPY       TreatmentType = "immunotherapy"
	CHEMO_IMMUNOTHERAPY TreatmentType = "chemo-immunotherapy"
	HORMONAL_THERAPY    TreatmentType = "hormonal-therapy"
	RADIATION_THERAPY   TreatmentType = "radiation-therapy"
)

// Route of drug administration.
type Route string

const (
	ROUTE_ORAL          Route = "oral"
	ROUTE_IV            Route = "IV"
	ROUTE_SUBCUTANEOUS  Route = "subcutaneous"
	ROUTE_INTRAMUSCULAR Route = "intramuscular"
)

// ResponseCategory follows RECIST overall response categories.
type ResponseCategory string

const (
	COMPLETE_RESPONSE   ResponseCategory = "CR"
	PARTIAL_RESPONSE    ResponseCategory = "PR"
	STABLE_DISEASE      ResponseCategory = "SD"
	PROGRESSIVE_DISEASE ResponseCategory = "PD"
	NOT_EVALUABLE       ResponseCategory = "NE"
)

// RiskBenefitLabel summarises the balance of a recommendation.
type RiskBenefitLabel string

const (
	FAVORABLE  RiskBenefitLabel = "Favorable"
	ACCEPTABLE RiskBenefitLabel = "Acceptable"
)

// SupportiveCareCategory groups supportive care interventions.
type SupportiveCareCategory string

const (
	SYMPTOM_MANAGEMENT   SupportiveCareCategory = "symptom_management"
	NUTRITION            SupportiveCareCategory = "nutrition"
	PSYCHOSOCIAL         SupportiveCareCategory = "psychosocial"
	INFECTION_PREVENTION SupportiveCareCategory = "infection_prevention"
)

// Priority of a supportive care intervention.
type Priority string

const (
	PRIORITY_HIGH   Priority = "high"
	PRIORITY_MEDIUM Priority = "medium"
	PRIORITY_LOW    Priority = "low"
)

// PerformanceScore is a parsed performance score. PerformanceScoreUnspecified marks a
// score text that could not be read as a number; it never satisfies a numeric bound and
// never triggers a numeric penalty.
type PerformanceScore int

// PerformanceScoreUnspecified is the sentinel for an unreadable score.
const PerformanceScoreUnspecified PerformanceScore = -1

// Validation errors for clinical data integrity
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidTreatmentLine = errors.New("invalid treatment line")
	ErrInvalidEvidenceLevel = errors.New("invalid evidence level")
	ErrInvalidTreatmentType = errors.New("invalid treatment type")
	ErrInvalidRoute         = errors.New("invalid route of administration")
)

// IsValid reports whether the cancer type belongs to the taxonomy.
func (c CancerType) IsValid() bool {
	switch c {
	case BREAST, LUNG, COLORECTAL, PROSTATE, OVARIAN, PANCREATIC, MELANOMA, LYMPHOMA, LEUKEMIA, OTHER:
		return true
	default:
		return false
	}
}

// String returns the string representation of the cancer type
func (c CancerType) String() string {
	return string(c)
}

// IsValid reports whether the treatment line is one of the defined lines.
func (l TreatmentLine) IsValid() bool {
	return l.index() >= 0
}

func (l TreatmentLine) index() int {
	for i, line := range treatmentLines {
		if line == l {
			return i
		}
	}
	return -1
}

// Next returns the line after l, capped at the highest defined line.
func (l TreatmentLine) Next() TreatmentLine {
	i := l.index()
	if i < 0 {
		return FIRST_LINE
	}
	if i+1 >= len(treatmentLines) {
		return treatmentLines[len(treatmentLines)-1]
	}
	return treatmentLines[i+1]
}

// LineAt returns the n-th line (zero based), capped at the highest defined line.
func LineAt(n int) TreatmentLine {
	if n < 0 {
		n = 0
	}
	if n >= len(treatmentLines) {
		n = len(treatmentLines) - 1
	}
	return treatmentLines[n]
}

// IsValid reports whether the scale is supported.
func (s PerformanceScale) IsValid() bool {
	return s == ECOG || s == KARNOFSKY
}

// IsValid reports whether the mutation status is recognised.
func (m MutationStatus) IsValid() bool {
	switch m {
	case MUTATION_POSITIVE, MUTATION_NEGATIVE, MUTATION_VUS:
		return true
	default:
		return false
	}
}

// IsValid reports whether the severity is recognised.
func (s Severity) IsValid() bool {
	switch s {
	case MILD, MODERATE, SEVERE:
		return true
	default:
		return false
	}
}

// IsValid reports whether the risk level is recognised.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RISK_LOW, RISK_INTERMEDIATE, RISK_HIGH, RISK_VERY_HIGH:
		return true
	default:
		return false
	}
}

// IsHighImpact reports whether the level counts towards the overall risk.
func (r RiskLevel) IsHighImpact() bool {
	return r == RISK_HIGH || r == RISK_VERY_HIGH
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid reports whether the evidence level is one of the seven grades.
func (e EvidenceLevel) IsValid() bool {
	switch e {
	case EVIDENCE_1A, EVIDENCE_1B, EVIDENCE_2A, EVIDENCE_2B, EVIDENCE_3, EVIDENCE_4, EVIDENCE_5:
		return true
	default:
		return false
	}
}

// Ordinal returns the sort position of the evidence level, 1A=1 through 5=7.
// Unknown levels sort with the weakest grade.
func (e EvidenceLevel) Ordinal() int {
	switch e {
	case EVIDENCE_1A:
		return 1
	case EVIDENCE_1B:
		return 2
	case EVIDENCE_2A:
		return 3
	case EVIDENCE_2B:
		return 4
	case EVIDENCE_3:
		return 5
	case EVIDENCE_4:
		return 6
	default:
		return 7
	}
}

// String returns the string representation of the evidence level
func (e EvidenceLevel) String() string {
	return string(e)
}

// IsValid reports whether the treatment type is recognised.
func (t TreatmentType) IsValid() bool {
	switch t {
	case CHEMOTHERAPY, TARGETED_THERAPY, IMMUNOTHERAPY, CHEMO_IMMUNOTHERAPY, HORMONAL_THERAPY, RADIATION_THERAPY:
		return true
	default:
		return false
	}
}

// IsTargeted reports whether the treatment type names a targeted therapy.
func (t TreatmentType) IsTargeted() bool {
	return strings.Contains(strings.ToLower(string(t)), "targeted")
}

// IsImmunotherapy reports whether the treatment type includes immunotherapy.
func (t TreatmentType) IsImmunotherapy() bool {
	return strings.Contains(strings.ToLower(string(t)), "immunotherapy")
}

// IsValid reports whether the route is recognised.
func (r Route) IsValid() bool {
	switch r {
	case ROUTE_ORAL, ROUTE_IV, ROUTE_SUBCUTANEOUS, ROUTE_INTRAMUSCULAR:
		return true
	default:
		return false
	}
}

// IsIntravenous reports whether the route is intravenous.
func (r Route) IsIntravenous() bool {
	return strings.EqualFold(string(r), string(ROUTE_IV))
}

// IsOral reports whether the route is oral.
func (r Route) IsOral() bool {
	return strings.EqualFold(string(r), string(ROUTE_ORAL))
}

// ParsePerformanceScore reads a score text. Anything that is not a non-negative
// integer yields PerformanceScoreUnspecified.
func ParsePerformanceScore(text string) PerformanceScore {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return PerformanceScoreUnspecified
	}
	return PerformanceScore(n)
}

// IsSpecified reports whether the score holds a numeric value.
func (p PerformanceScore) IsSpecified() bool {
	return p >= 0
}

// AtLeast reports whether the score is specified and greater than or equal to n.
func (p PerformanceScore) AtLeast(n int) bool {
	return p.IsSpecified() && int(p) >= n
}

// KarnofskyEquivalent maps an ECOG grade to its Karnofsky equivalent.
// Grades outside 0..4, including the unspecified sentinel, map to 20.
func (p PerformanceScore) KarnofskyEquivalent() int {
	switch p {
	case 0:
		return 100
	case 1:
		return 80
	case 2:
		return 60
	case 3:
		return 40
	case 4:
		return 20
	default:
		return 20
	}
}

// String returns the score text, or "unspecified".
func (p PerformanceScore) String() string {
	if !p.IsSpecified() {
		return "unspecified"
	}
	return strconv.Itoa(int(p))
}
