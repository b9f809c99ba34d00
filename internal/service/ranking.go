package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
)

// Suitability score components.
const (
	suitabilityStage     = 10
	suitabilityLine      = 8
	suitabilityBiomarker = 5
)

// RankedProtocol wraps a read-only catalogue entry with the evidence level in effect
// for this run. Adjustments replace the wrapper, never the catalogue entry.
type RankedProtocol struct {
	Protocol      *domain.Protocol
	EvidenceLevel domain.EvidenceLevel
	Suitability   int
	Adjustment    string
}

// WithEvidence returns a copy of r carrying a different evidence level.
func (r RankedProtocol) WithEvidence(level domain.EvidenceLevel, reason string) RankedProtocol {
	r.EvidenceLevel = level
	r.Adjustment = reason
	return r
}

// Ranker orders eligible protocols by evidence strength and clinical suitability.
type Ranker struct {
	logger *logrus.Logger
}

// NewRanker creates a new ranker
func NewRanker(logger *logrus.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank sorts by ascending evidence ordinal, ties broken by descending suitability.
// Equal keys keep catalogue order.
func (r *Ranker) Rank(eligible []*domain.Protocol, input *domain.DecisionInput) []RankedProtocol {
	line := input.CurrentLine()
	ranked := make([]RankedProtocol, len(eligible))
	for i, p := range eligible {
		ranked[i] = RankedProtocol{
			Protocol:      p,
			EvidenceLevel: p.EvidenceLevel,
			Suitability:   Suitability(p, input, line),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		oi, oj := ranked[i].EvidenceLevel.Ordinal(), ranked[j].EvidenceLevel.Ordinal()
		if oi != oj {
			return oi < oj
		}
		return ranked[i].Suitability > ranked[j].Suitability
	})

	return ranked
}

// Suitability scores how closely a protocol fits the patient.
func Suitability(p *domain.Protocol, input *domain.DecisionInput, line domain.TreatmentLine) int {
	score := 0
	if p.HasStage(input.DiseaseStatus.Stage) {
		score += suitabilityStage
	}
	if p.HasLine(line) {
		score += suitabilityLine
	}
	if len(input.DiseaseStatus.Biomarkers) > 0 {
		score += suitabilityBiomarker
	}
	return score
}

// NoOrganFunctionIssues is the default organ-function check. Laboratory values are not
// part of the decision input, so it never reports an issue.
type NoOrganFunctionIssues struct{}

// CheckOrganFunction implements domain.OrganFunctionChecker.
func (NoOrganFunctionIssues) CheckOrganFunction(*domain.Protocol, *domain.DecisionInput) *domain.SafetyIssue {
	return nil
}

// NoDrugInteractionIssues is the default interaction check. It never reports an issue.
type NoDrugInteractionIssues struct{}

// CheckDrugInteractions implements domain.DrugInteractionChecker.
func (NoDrugInteractionIssues) CheckDrugInteractions(*domain.Protocol, *domain.DecisionInput) *domain.SafetyIssue {
	return nil
}

// SafetyFilter removes ranked protocols that are unsafe for the patient.
type SafetyFilter struct {
	logger          *logrus.Logger
	organFunction   domain.OrganFunctionChecker
	drugInteraction domain.DrugInteractionChecker
}

// NewSafetyFilter creates a safety filter. Nil checkers fall back to the no-issue
// defaults.
func NewSafetyFilter(logger *logrus.Logger, organFunction domain.OrganFunctionChecker, drugInteraction domain.DrugInteractionChecker) *SafetyFilter {
	if organFunction == nil {
		organFunction = NoOrganFunctionIssues{}
	}
	if drugInteraction == nil {
		drugInteraction = NoDrugInteractionIssues{}
	}
	return &SafetyFilter{
		logger:          logger,
		organFunction:   organFunction,
		drugInteraction: drugInteraction,
	}
}

// Filter keeps ranked order and drops protocols with an absolute contraindication, an
// organ-function issue or a critical drug interaction.
func (s *SafetyFilter) Filter(ranked []RankedProtocol, input *domain.DecisionInput) ([]RankedProtocol, []Exclusion) {
	safe := make([]RankedProtocol, 0, len(ranked))
	var excluded []Exclusion

	for _, r := range ranked {
		if issue := s.check(r.Protocol, input); issue != nil {
			excluded = append(excluded, Exclusion{
				ProtocolID: r.Protocol.ID,
				Stage:      StageSafety,
				Reason:     fmt.Sprintf("%s: %s", issue.Check, issue.Reason),
			})
			continue
		}
		safe = append(safe, r)
	}

	if len(excluded) > 0 {
		s.logger.WithField("excluded", len(excluded)).Debug("Safety filter removed protocols")
	}

	return safe, excluded
}

func (s *SafetyFilter) check(p *domain.Protocol, input *domain.DecisionInput) *domain.SafetyIssue {
	if issue := AbsoluteContraindication(p, input.Comorbidities); issue != nil {
		return issue
	}
	if issue := s.organFunction.CheckOrganFunction(p, input); issue != nil {
		return issue
	}
	return s.drugInteraction.CheckDrugInteractions(p, input)
}

// AbsoluteContraindication reports the first absolute contraindication found as a
// case-insensitive substring of a comorbidity condition.
func AbsoluteContraindication(p *domain.Protocol, comorbidities []domain.Comorbidity) *domain.SafetyIssue {
	for _, contraindication := range p.Contraindications.Absolute {
		needle := strings.ToLower(strings.TrimSpace(contraindication))
		if needle == "" {
			continue
		}
		for _, c := range comorbidities {
			if strings.Contains(strings.ToLower(c.Condition), needle) {
				return &domain.SafetyIssue{
					Check:  "absolute_contraindication",
					Reason: fmt.Sprintf("%s (comorbidity: %s)", contraindication, c.Condition),
				}
			}
		}
	}
	return nil
}
