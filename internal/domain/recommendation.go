package domain

import (
	"time"
)

// DecisionOutput is the recommendation bundle returned for one decision input.
// It is never modified after the engine returns it; cached outputs are shared
// between callers.
type DecisionOutput struct {
	RecommendationID    string               `json:"recommendation_id"`
	GeneratedAt         time.Time            `json:"generated_at"`
	EngineVersion       string               `json:"engine_version"`
	CatalogueSize       int                  `json:"catalogue_size"`
	Primary             Recommendation       `json:"primary"`
	Alternatives        []Recommendation     `json:"alternatives"`
	RiskAssessment      RiskAssessment       `json:"risk_assessment"`
	MonitoringPlan      MonitoringPlan       `json:"monitoring_plan"`
	SupportiveCare      []SupportiveCareItem `json:"supportive_care"`
	FollowUp            FollowUpPlan         `json:"follow_up"`
	EmergencyGuidelines []EmergencyGuideline `json:"emergency_guidelines"`
	ConfidenceScore     int                  `json:"confidence_score"`
	Rationale           string               `json:"rationale"`
}

// Recommendation is a single ranked protocol suggestion.
type Recommendation struct {
	ProtocolID       string           `json:"protocol_id"`
	ProtocolName     string           `json:"protocol_name"`
	Priority         int              `json:"priority"`
	Rationale        string           `json:"rationale"`
	Modifications    []string         `json:"modifications"`
	ExpectedBenefit  string           `json:"expected_benefit"`
	RiskBenefit      RiskBenefitLabel `json:"risk_benefit"`
	EvidenceStrength EvidenceLevel    `json:"evidence_strength"`
}

// RiskAssessment aggregates the patient's risk profile.
type RiskAssessment struct {
	OverallRisk          RiskLevel      `json:"overall_risk"`
	RiskFactors          []RiskFactor   `json:"risk_factors"`
	SpecificRisks        []SpecificRisk `json:"specific_risks"`
	MitigationStrategies []string       `json:"mitigation_strategies"`
}

// RiskFactor is one contributor to the overall risk.
type RiskFactor struct {
	Category      RiskCategory `json:"category"`
	Factor        string       `json:"factor"`
	Impact        RiskLevel    `json:"impact"`
	Modifiable    bool         `json:"modifiable"`
	Interventions []string     `json:"interventions,omitempty"`
}

// SpecificRisk is a predicted adverse outcome with its probability band.
type SpecificRisk struct {
	Type        SpecificRiskType `json:"type"`
	Description string           `json:"description"`
	Probability string           `json:"probability"`
	Timeframe   string           `json:"timeframe"`
	Prevention  []string         `json:"prevention,omitempty"`
}

// SupportiveCareItem is a supportive care intervention.
type SupportiveCareItem struct {
	Category     SupportiveCareCategory `json:"category"`
	Intervention string                 `json:"intervention"`
	Indication   string                 `json:"indication"`
	Priority     Priority               `json:"priority"`
}

// FollowUpPlan schedules visits, labs and imaging after treatment.
type FollowUpPlan struct {
	ScheduledVisits []FollowUpVisit `json:"scheduled_visits"`
	LabSchedule     []string        `json:"lab_schedule"`
	ImagingSchedule []string        `json:"imaging_schedule"`
}

// FollowUpVisit is a planned clinic visit.
type FollowUpVisit struct {
	Timing      string   `json:"timing"`
	Purpose     string   `json:"purpose"`
	Assessments []string `json:"assessments,omitempty"`
}

// EmergencyGuideline tells the patient when and whom to call.
type EmergencyGuideline struct {
	Contact      EmergencyContact `json:"contact"`
	WarningSigns []string         `json:"warning_signs"`
	Actions      []string         `json:"actions"`
}
