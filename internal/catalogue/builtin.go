package catalogue

import (
	"github.com/oncology-cds-engine/internal/domain"
)

// Protocol identifiers of the builtin catalogue.
const (
	BreastACT               = "breast-ac-t"
	BreastTCH               = "breast-tch"
	BreastLetrozolePalbo    = "breast-letrozole-palbociclib"
	BreastCapecitabine      = "breast-capecitabine"
	LungCarboPemPembro      = "lung-carboplatin-pemetrexed-pembrolizumab"
	LungOsimertinib         = "lung-osimertinib"
	LungPembrolizumab       = "lung-pembrolizumab"
	ColorectalFOLFOX        = "colorectal-folfox"
	ColorectalCapecitabine  = "colorectal-capecitabine"
	ProstateAbirateronePred = "prostate-abiraterone-prednisone"
)

func cycles(n int) *int {
	return &n
}

var oncologyOnCall = domain.EmergencyContact{
	Name:         "Oncology on-call service",
	Role:         "Treating oncology team",
	Phone:        "+1-555-0100",
	Availability: "24/7",
}

var emergencyDepartment = domain.EmergencyContact{
	Name:         "Emergency department",
	Role:         "Acute care",
	Phone:        "911",
	Availability: "24/7",
}

// Builtin returns the hand-curated sample catalogue. Each call returns fresh values.
func Builtin() []domain.Protocol {
	return []domain.Protocol{
		{
			ID:             BreastACT,
			Name:           "AC-T (doxorubicin, cyclophosphamide followed by paclitaxel)",
			CancerType:     "Breast",
			Stages:         []string{"I", "II", "III"},
			TreatmentType:  domain.CHEMOTHERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Doxorubicin", Dose: "60 mg/m2", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(4), Premedications: []string{"Ondansetron", "Dexamethasone"}},
				{Name: "Cyclophosphamide", Dose: "600 mg/m2", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(4)},
				{Name: "Paclitaxel", Dose: "80 mg/m2", Route: domain.ROUTE_IV, Frequency: "weekly", CycleLengthDays: 7, TotalCycles: cycles(12), Premedications: []string{"Diphenhydramine", "Famotidine"}},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG:      []int{0, 1},
				Karnofsky: []int{80, 100},
				OrganFunction: []domain.OrganFunctionThreshold{
					{Organ: "heart", Parameter: "LVEF", Operator: ">=", Value: 50, Unit: "%"},
					{Organ: "bone marrow", Parameter: "ANC", Operator: ">=", Value: 1500, Unit: "cells/uL"},
				},
				AgeRange: &domain.AgeRange{Min: 18, Max: 75},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute:         []string{"Heart failure", "Cardiomyopathy", "Pregnancy"},
				Relative:         []string{"Peripheral neuropathy"},
				DrugInteractions: []string{"Trastuzumab (concurrent anthracycline)"},
			},
			Monitoring: domain.MonitoringPlan{
				Pretreatment: []domain.MonitoringItem{
					{Test: "Echocardiogram", AlertThreshold: "LVEF < 50%"},
					{Test: "Complete blood count"},
					{Test: "Comprehensive metabolic panel"},
				},
				DuringTreatment: []domain.MonitoringItem{
					{Test: "Complete blood count", Frequency: "before each cycle", AlertThreshold: "ANC < 1000 cells/uL"},
					{Test: "Neuropathy assessment", Frequency: "weekly during paclitaxel"},
				},
				PostTreatment: []domain.MonitoringItem{
					{Test: "Echocardiogram", Frequency: "at 6 and 12 months"},
					{Test: "Mammogram", Frequency: "annually"},
				},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall, emergencyDepartment},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:            "Pathologic complete response 20-30%; 5-year disease-free survival 80-85%",
				ProgressionFreeSurvival: "5-year DFS 80-85%",
				OverallSurvival:         "5-year OS 85-90%",
				SideEffects:             []string{"Neutropenia", "Nausea", "Alopecia", "Peripheral neuropathy", "Cardiotoxicity"},
				QualityOfLifeImpact:     "Moderate temporary impact during treatment",
			},
			EvidenceLevel:    domain.EVIDENCE_1A,
			GuidelineSource:  "NCCN Breast Cancer",
			GuidelineVersion: "2024-03-01",
		},
		{
			ID:             BreastTCH,
			Name:           "TCH (docetaxel, carboplatin, trastuzumab)",
			CancerType:     "Breast",
			Stages:         []string{"I", "II", "III"},
			TreatmentType:  domain.TARGETED_THERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Docetaxel", Dose: "75 mg/m2", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(6), Premedications: []string{"Dexamethasone"}},
				{Name: "Carboplatin", Dose: "AUC 6", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(6)},
				{Name: "Trastuzumab", Dose: "8 mg/kg loading then 6 mg/kg", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(17)},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1},
				Biomarkers: []domain.BiomarkerRequirement{
					{Name: "HER2", Required: true, ExpectedValue: "positive"},
				},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute: []string{"Heart failure", "Pregnancy"},
			},
			Monitoring: domain.MonitoringPlan{
				Pretreatment:      []domain.MonitoringItem{{Test: "Echocardiogram", AlertThreshold: "LVEF < 50%"}},
				DuringTreatment:   []domain.MonitoringItem{{Test: "Echocardiogram", Frequency: "every 3 months"}, {Test: "Complete blood count", Frequency: "before each cycle"}},
				PostTreatment:     []domain.MonitoringItem{{Test: "Echocardiogram", Frequency: "at end of trastuzumab"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:        "Pathologic complete response 40-60% in HER2-positive disease",
				OverallSurvival:     "10-year OS about 85%",
				SideEffects:         []string{"Neutropenia", "Diarrhea", "Thrombocytopenia", "Cardiotoxicity"},
				QualityOfLifeImpact: "Moderate temporary impact during treatment",
			},
			EvidenceLevel:    domain.EVIDENCE_1A,
			GuidelineSource:  "NCCN Breast Cancer",
			GuidelineVersion: "2024-03-01",
		},
		{
			ID:             BreastLetrozolePalbo,
			Name:           "Letrozole plus palbociclib",
			CancerType:     "Breast",
			Stages:         []string{"IV"},
			TreatmentType:  domain.TARGETED_THERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE, domain.SECOND_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Letrozole", Dose: "2.5 mg", Route: domain.ROUTE_ORAL, Frequency: "daily", CycleLengthDays: 28},
				{Name: "Palbociclib", Dose: "125 mg", Route: domain.ROUTE_ORAL, Frequency: "daily days 1-21", CycleLengthDays: 28},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1, 2},
				Biomarkers: []domain.BiomarkerRequirement{
					{Name: "ER", Required: true, ExpectedValue: "positive"},
					{Name: "HER2", Required: false, ExpectedValue: "negative"},
				},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute:         []string{"Pregnancy"},
				DrugInteractions: []string{"Strong CYP3A inhibitors"},
			},
			Monitoring: domain.MonitoringPlan{
				Pretreatment:      []domain.MonitoringItem{{Test: "Complete blood count"}},
				DuringTreatment:   []domain.MonitoringItem{{Test: "Complete blood count", Frequency: "days 1 and 15 of first two cycles", AlertThreshold: "ANC < 1000 cells/uL"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:            "Objective response 42-55%",
				ProgressionFreeSurvival: "Median PFS 24.8 months",
				SideEffects:             []string{"Neutropenia", "Fatigue", "Hot flashes"},
				QualityOfLifeImpact:     "Generally preserved",
			},
			EvidenceLevel:    domain.EVIDENCE_1A,
			GuidelineSource:  "NCCN Breast Cancer",
			GuidelineVersion: "2024-03-01",
		},
		{
			ID:             BreastCapecitabine,
			Name:           "Capecitabine monotherapy",
			CancerType:     "Breast",
			Stages:         []string{"IV"},
			TreatmentType:  domain.CHEMOTHERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.SECOND_LINE, domain.THIRD_LINE, domain.FOURTH_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Capecitabine", Dose: "1000 mg/m2 twice daily", Route: domain.ROUTE_ORAL, Frequency: "days 1-14", CycleLengthDays: 21},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1, 2, 3},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute:         []string{"DPD deficiency", "Severe renal impairment"},
				DrugInteractions: []string{"Warfarin"},
			},
			Monitoring: domain.MonitoringPlan{
				DuringTreatment:   []domain.MonitoringItem{{Test: "Hand-foot syndrome assessment", Frequency: "each cycle"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:        "Objective response 20-30%",
				SideEffects:         []string{"Hand-foot syndrome", "Diarrhea", "Fatigue"},
				QualityOfLifeImpact: "Low",
			},
			EvidenceLevel:    domain.EVIDENCE_2A,
			GuidelineSource:  "NCCN Breast Cancer",
			GuidelineVersion: "2024-03-01",
		},
		{
			ID:             LungCarboPemPembro,
			Name:           "Carboplatin, pemetrexed and pembrolizumab",
			CancerType:     "Lung",
			Stages:         []string{"IIIB", "IIIC", "IV"},
			TreatmentType:  domain.CHEMO_IMMUNOTHERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Carboplatin", Dose: "AUC 5", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(4)},
				{Name: "Pemetrexed", Dose: "500 mg/m2", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, Premedications: []string{"Folic acid", "Vitamin B12", "Dexamethasone"}},
				{Name: "Pembrolizumab", Dose: "200 mg", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(35)},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG:      []int{0, 1},
				Karnofsky: []int{80, 100},
				Biomarkers: []domain.BiomarkerRequirement{
					{Name: "PD-L1", Required: false},
				},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute: []string{"Active autoimmune disease", "Organ transplant", "Interstitial lung disease"},
				Relative: []string{"Chronic steroid use"},
			},
			Monitoring: domain.MonitoringPlan{
				Pretreatment:      []domain.MonitoringItem{{Test: "Thyroid function"}, {Test: "Liver function tests"}},
				DuringTreatment:   []domain.MonitoringItem{{Test: "Thyroid function", Frequency: "every 6 weeks"}, {Test: "Liver function tests", Frequency: "before each cycle", AlertThreshold: "ALT > 3x ULN"}},
				PostTreatment:     []domain.MonitoringItem{{Test: "CT chest", Frequency: "every 12 weeks"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall, emergencyDepartment},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:            "Objective response 48%",
				ProgressionFreeSurvival: "Median PFS 9.0 months",
				OverallSurvival:         "Median OS 22.0 months",
				SideEffects:             []string{"Fatigue", "Nausea", "Anemia", "Immune-related adverse events"},
				QualityOfLifeImpact:     "Moderate",
			},
			EvidenceLevel:    domain.EVIDENCE_1A,
			GuidelineSource:  "NCCN Non-Small Cell Lung Cancer",
			GuidelineVersion: "2024-02-15",
		},
		{
			ID:             LungOsimertinib,
			Name:           "Osimertinib",
			CancerType:     "Lung",
			Stages:         []string{domain.AnyStage},
			TreatmentType:  domain.TARGETED_THERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE, domain.SECOND_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Osimertinib", Dose: "80 mg", Route: domain.ROUTE_ORAL, Frequency: "daily", CycleLengthDays: 28},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1, 2},
				Biomarkers: []domain.BiomarkerRequirement{
					{Name: "EGFR", Required: true, ExpectedValue: "exon 19 deletion or L858R"},
				},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute:         []string{"Interstitial lung disease", "QTc prolongation"},
				DrugInteractions: []string{"Strong CYP3A4 inducers"},
			},
			Monitoring: domain.MonitoringPlan{
				Pretreatment:      []domain.MonitoringItem{{Test: "ECG", AlertThreshold: "QTc > 500 ms"}},
				DuringTreatment:   []domain.MonitoringItem{{Test: "ECG", Frequency: "periodically"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:            "Objective response 80%",
				ProgressionFreeSurvival: "Median PFS 18.9 months",
				SideEffects:             []string{"Diarrhea", "Rash", "Dry skin"},
				QualityOfLifeImpact:     "Low",
			},
			EvidenceLevel:    domain.EVIDENCE_2A,
			GuidelineSource:  "NCCN Non-Small Cell Lung Cancer",
			GuidelineVersion: "2024-02-15",
		},
		{
			ID:             LungPembrolizumab,
			Name:           "Pembrolizumab monotherapy",
			CancerType:     "Lung",
			Stages:         []string{"IV"},
			TreatmentType:  domain.IMMUNOTHERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE, domain.SECOND_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Pembrolizumab", Dose: "200 mg", Route: domain.ROUTE_IV, Frequency: "every 21 days", CycleLengthDays: 21, TotalCycles: cycles(35)},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1},
				Biomarkers: []domain.BiomarkerRequirement{
					{Name: "PD-L1", Required: true, ExpectedValue: "TPS >= 50%"},
				},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute: []string{"Active autoimmune disease", "Organ transplant"},
			},
			Monitoring: domain.MonitoringPlan{
				DuringTreatment:   []domain.MonitoringItem{{Test: "Thyroid function", Frequency: "every 6 weeks"}},
				PostTreatment:     []domain.MonitoringItem{{Test: "CT chest", Frequency: "every 12 weeks"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:        "Objective response 45%",
				OverallSurvival:     "Median OS 26.3 months",
				SideEffects:         []string{"Fatigue", "Pruritus", "Immune-related adverse events"},
				QualityOfLifeImpact: "Low",
			},
			EvidenceLevel:    domain.EVIDENCE_2A,
			GuidelineSource:  "NCCN Non-Small Cell Lung Cancer",
			GuidelineVersion: "2024-02-15",
		},
		{
			ID:             ColorectalFOLFOX,
			Name:           "FOLFOX (oxaliplatin, leucovorin, fluorouracil)",
			CancerType:     "Colorectal",
			Stages:         []string{"III", "IV"},
			TreatmentType:  domain.CHEMOTHERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Oxaliplatin", Dose: "85 mg/m2", Route: domain.ROUTE_IV, Frequency: "every 14 days", CycleLengthDays: 14, TotalCycles: cycles(12)},
				{Name: "Leucovorin", Dose: "400 mg/m2", Route: domain.ROUTE_IV, Frequency: "every 14 days", CycleLengthDays: 14, TotalCycles: cycles(12)},
				{Name: "Fluorouracil", Dose: "400 mg/m2 bolus then 2400 mg/m2 over 46 h", Route: domain.ROUTE_IV, Frequency: "every 14 days", CycleLengthDays: 14, TotalCycles: cycles(12)},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute: []string{"DPD deficiency", "Peripheral neuropathy"},
			},
			Monitoring: domain.MonitoringPlan{
				Pretreatment:      []domain.MonitoringItem{{Test: "CEA"}, {Test: "Complete blood count"}},
				DuringTreatment:   []domain.MonitoringItem{{Test: "Neuropathy assessment", Frequency: "each cycle"}},
				PostTreatment:     []domain.MonitoringItem{{Test: "CEA", Frequency: "every 3 months for 2 years"}, {Test: "CT chest/abdomen/pelvis", Frequency: "every 6-12 months"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:        "3-year disease-free survival 72-78%",
				SideEffects:         []string{"Peripheral neuropathy", "Neutropenia", "Diarrhea"},
				QualityOfLifeImpact: "Moderate",
			},
			EvidenceLevel:    domain.EVIDENCE_1A,
			GuidelineSource:  "NCCN Colon Cancer",
			GuidelineVersion: "2024-01-30",
		},
		{
			ID:             ColorectalCapecitabine,
			Name:           "Capecitabine monotherapy",
			CancerType:     "Colorectal",
			Stages:         []string{"III", "IV"},
			TreatmentType:  domain.CHEMOTHERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE, domain.SECOND_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Capecitabine", Dose: "1250 mg/m2 twice daily", Route: domain.ROUTE_ORAL, Frequency: "days 1-14", CycleLengthDays: 21, TotalCycles: cycles(8)},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG:      []int{0, 1, 2, 3},
				Karnofsky: []int{40, 60, 80, 100},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute:         []string{"DPD deficiency"},
				DrugInteractions: []string{"Warfarin"},
			},
			Monitoring: domain.MonitoringPlan{
				DuringTreatment:   []domain.MonitoringItem{{Test: "Hand-foot syndrome assessment", Frequency: "each cycle"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:        "3-year disease-free survival 64%",
				SideEffects:         []string{"Hand-foot syndrome", "Diarrhea"},
				QualityOfLifeImpact: "Low",
			},
			EvidenceLevel:    domain.EVIDENCE_2B,
			GuidelineSource:  "NCCN Colon Cancer",
			GuidelineVersion: "2024-01-30",
		},
		{
			ID:             ProstateAbirateronePred,
			Name:           "Abiraterone plus prednisone",
			CancerType:     "Prostate",
			Stages:         []string{"IV"},
			TreatmentType:  domain.HORMONAL_THERAPY,
			TreatmentLines: []domain.TreatmentLine{domain.FIRST_LINE, domain.SECOND_LINE},
			Regimen: []domain.DrugEntry{
				{Name: "Abiraterone acetate", Dose: "1000 mg", Route: domain.ROUTE_ORAL, Frequency: "daily", CycleLengthDays: 28},
				{Name: "Prednisone", Dose: "5 mg", Route: domain.ROUTE_ORAL, Frequency: "twice daily", CycleLengthDays: 28},
			},
			Eligibility: domain.EligibilityCriteria{
				ECOG: []int{0, 1, 2},
			},
			Contraindications: domain.ContraindicationCriteria{
				Absolute: []string{"Severe hepatic impairment"},
			},
			Monitoring: domain.MonitoringPlan{
				DuringTreatment:   []domain.MonitoringItem{{Test: "Liver function tests", Frequency: "every 2 weeks for 3 months"}, {Test: "Blood pressure and potassium", Frequency: "monthly"}},
				PostTreatment:     []domain.MonitoringItem{{Test: "PSA", Frequency: "every 3 months"}},
				EmergencyContacts: []domain.EmergencyContact{oncologyOnCall},
			},
			ExpectedOutcomes: domain.ExpectedOutcomes{
				ResponseRate:        "PSA response 62%",
				OverallSurvival:     "Median OS 34.7 months",
				SideEffects:         []string{"Hypertension", "Hypokalemia", "Fluid retention"},
				QualityOfLifeImpact: "Low",
			},
			EvidenceLevel:    domain.EVIDENCE_1A,
			GuidelineSource:  "NCCN Prostate Cancer",
			GuidelineVersion: "2024-01-10",
		},
	}
}
