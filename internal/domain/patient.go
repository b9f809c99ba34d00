package domain

import (
	"time"
)

// DecisionInput is the patient-state snapshot supplied for a single recommendation run.
type DecisionInput struct {
	PatientID         string                `json:"patient_id,omitempty"`
	DiseaseStatus     *DiseaseStatus        `json:"disease_status"`
	PerformanceStatus *PerformanceStatus    `json:"performance_status"`
	ProgressionData   *ProgressionData      `json:"progression_data,omitempty"`
	TreatmentHistory  []TreatmentLineRecord `json:"treatment_history,omitempty"`
	Preferences       *PatientPreferences   `json:"preferences,omitempty"`
	Comorbidities     []Comorbidity         `json:"comorbidities,omitempty"`
}

// DiseaseStatus describes the tumour being treated.
type DiseaseStatus struct {
	PrimaryDiagnosis   string            `json:"primary_diagnosis"`
	CancerType         CancerType        `json:"cancer_type,omitempty"`
	Stage              string            `json:"stage"`
	Histology          string            `json:"histology,omitempty"`
	OrganSystem        string            `json:"organ_system,omitempty"`
	Grade              string            `json:"grade,omitempty"`
	RiskStratification string            `json:"risk_stratification,omitempty"`
	Biomarkers         []Biomarker       `json:"biomarkers,omitempty"`
	GeneticMutations   []GeneticMutation `json:"genetic_mutations,omitempty"`
}

// Biomarker is a single laboratory biomarker result.
type Biomarker struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Unit     string    `json:"unit,omitempty"`
	TestDate time.Time `json:"test_date,omitempty"`
}

// GeneticMutation is a tested gene alteration.
type GeneticMutation struct {
	Gene     string         `json:"gene"`
	Mutation string         `json:"mutation"`
	Status   MutationStatus `json:"status"`
}

// PerformanceStatus is a functional status assessment.
type PerformanceStatus struct {
	AssessmentDate   time.Time         `json:"assessment_date"`
	Scale            PerformanceScale  `json:"scale"`
	Score            string            `json:"score"`
	FunctionalStatus *FunctionalStatus `json:"functional_status,omitempty"`
	QualityOfLife    *QualityOfLife    `json:"quality_of_life,omitempty"`
}

// FunctionalStatus records activities-of-daily-living observations.
type FunctionalStatus struct {
	ADLIndependent  bool   `json:"adl_independent"`
	IADLIndependent bool   `json:"iadl_independent"`
	MobilityAid     string `json:"mobility_aid,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// QualityOfLife records a patient-reported quality of life instrument result.
type QualityOfLife struct {
	Instrument string  `json:"instrument"`
	Score      float64 `json:"score"`
	Notes      string  `json:"notes,omitempty"`
}

// ProgressionData is the most recent disease reassessment.
type ProgressionData struct {
	ReassessmentDate   time.Time           `json:"reassessment_date"`
	ImagingType        string              `json:"imaging_type"`
	ResponseAssessment *ResponseAssessment `json:"response_assessment,omitempty"`
	AdverseEvents      []AdverseEvent      `json:"adverse_events,omitempty"`
}

// ResponseAssessment is a structured tumour response evaluation.
type ResponseAssessment struct {
	Method           string           `json:"method"`
	TargetLesions    []Lesion         `json:"target_lesions,omitempty"`
	NonTargetLesions []Lesion         `json:"non_target_lesions,omitempty"`
	NewLesions       bool             `json:"new_lesions"`
	OverallResponse  ResponseCategory `json:"overall_response"`
}

// Lesion is a measured lesion.
type Lesion struct {
	Location string  `json:"location"`
	SizeMM   float64 `json:"size_mm,omitempty"`
}

// AdverseEvent is a graded treatment-emergent adverse event.
type AdverseEvent struct {
	Event       string `json:"event"`
	Grade       int    `json:"grade"`
	Causality   string `json:"causality,omitempty"`
	ActionTaken string `json:"action_taken,omitempty"`
}

// TreatmentLineRecord is one entry of the chronological treatment history.
type TreatmentLineRecord struct {
	Line                TreatmentLine    `json:"line"`
	RegimenName         string           `json:"regimen_name"`
	StartDate           time.Time        `json:"start_date"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	Response            ResponseCategory `json:"response,omitempty"`
	DosageModifications []string         `json:"dosage_modifications,omitempty"`
	Toxicities          []string         `json:"toxicities,omitempty"`
}

// PatientPreferences captures goals of care.
type PatientPreferences struct {
	QualityVsQuantity string `json:"quality_vs_quantity,omitempty"`
	Intensity         string `json:"intensity,omitempty"`
	TrialWillingness  bool   `json:"trial_willingness"`
}

// Comorbidity is a coexisting condition.
type Comorbidity struct {
	Condition string    `json:"condition"`
	Severity  Severity  `json:"severity"`
	RiskLevel RiskLevel `json:"risk_level,omitempty"`
}

// CurrentLine derives the line the next regimen would belong to: first line with no
// history, otherwise one step past the last recorded line. A last entry with an
// unrecognised line falls back to the history length.
func (in *DecisionInput) CurrentLine() TreatmentLine {
	if len(in.TreatmentHistory) == 0 {
		return FIRST_LINE
	}
	last := in.TreatmentHistory[len(in.TreatmentHistory)-1].Line
	if !last.IsValid() {
		return LineAt(len(in.TreatmentHistory))
	}
	return last.Next()
}

// Score parses the performance score, returning the unspecified sentinel when the
// performance status is missing or unreadable.
func (in *DecisionInput) Score() PerformanceScore {
	if in.PerformanceStatus == nil {
		return PerformanceScoreUnspecified
	}
	return ParsePerformanceScore(in.PerformanceStatus.Score)
}

// HasBiomarker reports whether a biomarker with the given name was recorded.
func (d *DiseaseStatus) HasBiomarker(name string) bool {
	for _, b := range d.Biomarkers {
		if b.Name == name {
			return true
		}
	}
	return false
}
