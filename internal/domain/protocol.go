package domain

// AnyStage is the stage-list marker that admits every stage.
const AnyStage = "Any"

// Protocol is a catalogue entry describing a versioned treatment regimen.
// Catalogue entries are read-only once loaded; callers that need a modified view work
// on a Clone.
type Protocol struct {
	ID                string                   `json:"id" yaml:"id"`
	Name              string                   `json:"name" yaml:"name"`
	CancerType        string                   `json:"cancer_type" yaml:"cancer_type"`
	Stages            []string                 `json:"stages" yaml:"stages"`
	TreatmentType     TreatmentType            `json:"treatment_type" yaml:"treatment_type"`
	TreatmentLines    []TreatmentLine          `json:"treatment_lines" yaml:"treatment_lines"`
	Regimen           []DrugEntry              `json:"regimen" yaml:"regimen"`
	Eligibility       EligibilityCriteria      `json:"eligibility" yaml:"eligibility"`
	Contraindications ContraindicationCriteria `json:"contraindications" yaml:"contraindications"`
	Monitoring        MonitoringPlan           `json:"monitoring" yaml:"monitoring"`
	ExpectedOutcomes  ExpectedOutcomes         `json:"expected_outcomes" yaml:"expected_outcomes"`
	EvidenceLevel     EvidenceLevel            `json:"evidence_level" yaml:"evidence_level"`
	GuidelineSource   string                   `json:"guideline_source" yaml:"guideline_source"`
	GuidelineVersion  string                   `json:"guideline_version" yaml:"guideline_version"`
}

// DrugEntry is one drug of a regimen.
type DrugEntry struct {
	Name            string   `json:"name" yaml:"name"`
	Dose            string   `json:"dose" yaml:"dose"`
	Route           Route    `json:"route" yaml:"route"`
	Frequency       string   `json:"frequency" yaml:"frequency"`
	CycleLengthDays int      `json:"cycle_length_days" yaml:"cycle_length_days"`
	TotalCycles     *int     `json:"total_cycles,omitempty" yaml:"total_cycles,omitempty"`
	Premedications  []string `json:"premedications,omitempty" yaml:"premedications,omitempty"`
}

// EligibilityCriteria bounds the patients a protocol applies to. An empty ECOG or
// Karnofsky list places no restriction on that scale.
type EligibilityCriteria struct {
	ECOG          []int                    `json:"ecog,omitempty" yaml:"ecog,omitempty"`
	Karnofsky     []int                    `json:"karnofsky,omitempty" yaml:"karnofsky,omitempty"`
	OrganFunction []OrganFunctionThreshold `json:"organ_function,omitempty" yaml:"organ_function,omitempty"`
	Biomarkers    []BiomarkerRequirement   `json:"biomarkers,omitempty" yaml:"biomarkers,omitempty"`
	AgeRange      *AgeRange                `json:"age_range,omitempty" yaml:"age_range,omitempty"`
}

// OrganFunctionThreshold is a laboratory bound such as "creatinine clearance >= 60 mL/min".
type OrganFunctionThreshold struct {
	Organ     string  `json:"organ" yaml:"organ"`
	Parameter string  `json:"parameter" yaml:"parameter"`
	Operator  string  `json:"operator" yaml:"operator"`
	Value     float64 `json:"value" yaml:"value"`
	Unit      string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// BiomarkerRequirement names a biomarker relevant to the protocol.
type BiomarkerRequirement struct {
	Name          string `json:"name" yaml:"name"`
	Required      bool   `json:"required" yaml:"required"`
	ExpectedValue string `json:"expected_value,omitempty" yaml:"expected_value,omitempty"`
}

// AgeRange is an inclusive age bound in years.
type AgeRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// ContraindicationCriteria lists conditions that preclude or caution against a protocol.
type ContraindicationCriteria struct {
	Absolute         []string `json:"absolute,omitempty" yaml:"absolute,omitempty"`
	Relative         []string `json:"relative,omitempty" yaml:"relative,omitempty"`
	DrugInteractions []string `json:"drug_interactions,omitempty" yaml:"drug_interactions,omitempty"`
	Comorbidities    []string `json:"comorbidities,omitempty" yaml:"comorbidities,omitempty"`
}

// MonitoringPlan lists the tests performed around a protocol.
type MonitoringPlan struct {
	Pretreatment      []MonitoringItem   `json:"pretreatment,omitempty" yaml:"pretreatment,omitempty"`
	DuringTreatment   []MonitoringItem   `json:"during_treatment,omitempty" yaml:"during_treatment,omitempty"`
	PostTreatment     []MonitoringItem   `json:"post_treatment,omitempty" yaml:"post_treatment,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty" yaml:"emergency_contacts,omitempty"`
}

// MonitoringItem is a scheduled test with an optional alert threshold.
type MonitoringItem struct {
	Test           string `json:"test" yaml:"test"`
	Frequency      string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	AlertThreshold string `json:"alert_threshold,omitempty" yaml:"alert_threshold,omitempty"`
}

// EmergencyContact is a service the patient should reach in an emergency.
type EmergencyContact struct {
	Name         string `json:"name" yaml:"name"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Availability string `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// ExpectedOutcomes summarises published efficacy and tolerability.
type ExpectedOutcomes struct {
	ResponseRate            string   `json:"response_rate" yaml:"response_rate"`
	ProgressionFreeSurvival string   `json:"progression_free_survival,omitempty" yaml:"progression_free_survival,omitempty"`
	OverallSurvival         string   `json:"overall_survival,omitempty" yaml:"overall_survival,omitempty"`
	SideEffects             []string `json:"side_effects,omitempty" yaml:"side_effects,omitempty"`
	QualityOfLifeImpact     string   `json:"quality_of_life_impact,omitempty" yaml:"quality_of_life_impact,omitempty"`
}

// IsAggressive reports whether the regimen has more than two drugs or any IV drug.
func (p *Protocol) IsAggressive() bool {
	if len(p.Regimen) > 2 {
		return true
	}
	for _, d := range p.Regimen {
		if d.Route.IsIntravenous() {
			return true
		}
	}
	return false
}

// IsConservative reports whether the regimen has at most two drugs, all oral.
func (p *Protocol) IsConservative() bool {
	if len(p.Regimen) > 2 {
		return false
	}
	for _, d := range p.Regimen {
		if !d.Route.IsOral() {
			return false
		}
	}
	return true
}

// HasStage reports whether the stage list contains the exact stage label.
func (p *Protocol) HasStage(stage string) bool {
	for _, s := range p.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// HasLine reports whether the protocol applies to the given treatment line.
func (p *Protocol) HasLine(line TreatmentLine) bool {
	for _, l := range p.TreatmentLines {
		if l == line {
			return true
		}
	}
	return false
}

// RequiredBiomarkers returns the names of biomarkers the protocol requires.
func (p *Protocol) RequiredBiomarkers() []string {
	var names []string
	for _, b := range p.Eligibility.Biomarkers {
		if b.Required {
			names = append(names, b.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the protocol.
func (p *Protocol) Clone() Protocol {
	c := *p
	c.Stages = cloneStrings(p.Stages)
	c.TreatmentLines = append([]TreatmentLine(nil), p.TreatmentLines...)
	if p.Regimen != nil {
		c.Regimen = make([]DrugEntry, len(p.Regimen))
		for i, d := range p.Regimen {
			c.Regimen[i] = d
			if d.TotalCycles != nil {
				n := *d.TotalCycles
				c.Regimen[i].TotalCycles = &n
			}
			c.Regimen[i].Premedications = cloneStrings(d.Premedications)
		}
	}
	c.Eligibility.ECOG = append([]int(nil), p.Eligibility.ECOG...)
	c.Eligibility.Karnofsky = append([]int(nil), p.Eligibility.Karnofsky...)
	c.Eligibility.OrganFunction = append([]OrganFunctionThreshold(nil), p.Eligibility.OrganFunction...)
	c.Eligibility.Biomarkers = append([]BiomarkerRequirement(nil), p.Eligibility.Biomarkers...)
	if p.Eligibility.AgeRange != nil {
		r := *p.Eligibility.AgeRange
		c.Eligibility.AgeRange = &r
	}
	c.Contraindications = ContraindicationCriteria{
		Absolute:         cloneStrings(p.Contraindications.Absolute),
		Relative:         cloneStrings(p.Contraindications.Relative),
		DrugInteractions: cloneStrings(p.Contraindications.DrugInteractions),
		Comorbidities:    cloneStrings(p.Contraindications.Comorbidities),
	}
	c.Monitoring = p.Monitoring.Clone()
	c.ExpectedOutcomes.SideEffects = cloneStrings(p.ExpectedOutcomes.SideEffects)
	return c
}

// Clone returns a deep copy of the monitoring plan.
func (m MonitoringPlan) Clone() MonitoringPlan {
	return MonitoringPlan{
		Pretreatment:      append([]MonitoringItem(nil), m.Pretreatment...),
		DuringTreatment:   append([]MonitoringItem(nil), m.DuringTreatment...),
		PostTreatment:     append([]MonitoringItem(nil), m.PostTreatment...),
		EmergencyContacts: append([]EmergencyContact(nil), m.EmergencyContacts...),
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
