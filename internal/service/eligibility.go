package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
)

// Pipeline stage names used in exclusion reports.
const (
	StageEligibility = "eligibility"
	StageSafety      = "safety"
	StagePerformance = "performance"
)

// Exclusion records why a protocol was removed from consideration.
type Exclusion struct {
	ProtocolID string `json:"protocol_id"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

// EligibilityFilter reduces the catalogue to protocols compatible with the patient.
type EligibilityFilter struct {
	logger *logrus.Logger
}

// NewEligibilityFilter creates a new eligibility filter
func NewEligibilityFilter(logger *logrus.Logger) *EligibilityFilter {
	return &EligibilityFilter{logger: logger}
}

// Filter returns the eligible protocols in catalogue order together with the reason
// each excluded protocol was dropped.
func (f *EligibilityFilter) Filter(protocols []*domain.Protocol, input *domain.DecisionInput) ([]*domain.Protocol, []Exclusion) {
	eligible := make([]*domain.Protocol, 0, len(protocols))
	var excluded []Exclusion

	line := input.CurrentLine()
	for _, p := range protocols {
		if reason := f.Check(p, input, line); reason != "" {
			excluded = append(excluded, Exclusion{ProtocolID: p.ID, Stage: StageEligibility, Reason: reason})
			continue
		}
		eligible = append(eligible, p)
	}

	f.logger.WithFields(logrus.Fields{
		"catalogue":    len(protocols),
		"eligible":     len(eligible),
		"current_line": line,
	}).Debug("Eligibility filter applied")

	return eligible, excluded
}

// Check returns an empty string when the protocol is eligible, otherwise the reason it
// is not.
func (f *EligibilityFilter) Check(p *domain.Protocol, input *domain.DecisionInput, line domain.TreatmentLine) string {
	ds := input.DiseaseStatus

	if !CancerTypeMatches(p.CancerType, ds.PrimaryDiagnosis) {
		return fmt.Sprintf("cancer type %q does not match diagnosis %q", p.CancerType, ds.PrimaryDiagnosis)
	}
	if !StageMatches(p, ds.Stage) {
		return fmt.Sprintf("stage %q not in %v", ds.Stage, p.Stages)
	}
	if !p.HasLine(line) {
		return fmt.Sprintf("treatment line %s not in %v", line, p.TreatmentLines)
	}
	if !PerformanceMatches(p, input.PerformanceStatus) {
		return fmt.Sprintf("performance status %s %s outside eligibility", input.PerformanceStatus.Scale, input.PerformanceStatus.Score)
	}
	if missing := missingBiomarkers(p, ds); len(missing) > 0 {
		return fmt.Sprintf("required biomarkers missing: %s", strings.Join(missing, ", "))
	}
	return ""
}

// CancerTypeMatches reports a case-insensitive substring match in either direction.
func CancerTypeMatches(cancerType, diagnosis string) bool {
	ct := strings.ToLower(cancerType)
	dx := strings.ToLower(diagnosis)
	return strings.Contains(dx, ct) || strings.Contains(ct, dx)
}

// StageMatches reports whether the protocol lists the stage or the Any marker.
func StageMatches(p *domain.Protocol, stage string) bool {
	return p.HasStage(stage) || p.HasStage(domain.AnyStage)
}

// PerformanceMatches checks the patient's score against the protocol list for the
// patient's scale. An absent list places no restriction. On the Karnofsky scale the
// score is read as an ECOG-equivalent grade and mapped before comparison. An
// unrecognised scale only passes protocols without any performance list.
func PerformanceMatches(p *domain.Protocol, ps *domain.PerformanceStatus) bool {
	score := domain.ParsePerformanceScore(ps.Score)

	switch ps.Scale {
	case domain.ECOG:
		if len(p.Eligibility.ECOG) == 0 {
			return true
		}
		return score.IsSpecified() && containsInt(p.Eligibility.ECOG, int(score))
	case domain.KARNOFSKY:
		if len(p.Eligibility.Karnofsky) == 0 {
			return true
		}
		return containsInt(p.Eligibility.Karnofsky, score.KarnofskyEquivalent())
	default:
		return len(p.Eligibility.ECOG) == 0 && len(p.Eligibility.Karnofsky) == 0
	}
}

func missingBiomarkers(p *domain.Protocol, ds *domain.DiseaseStatus) []string {
	var missing []string
	for _, name := range p.RequiredBiomarkers() {
		if !ds.HasBiomarker(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
