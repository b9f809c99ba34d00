package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/cache"
	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/domain"
)

// EngineVersion is stamped on every recommendation.
const EngineVersion = "1.0.0"

// EngineOptions overrides the engine's pluggable collaborators. Zero values select the
// defaults.
type EngineOptions struct {
	Validator       domain.InputValidator
	OrganFunction   domain.OrganFunctionChecker
	DrugInteraction domain.DrugInteractionChecker
	Clock           func() time.Time
	IDGenerator     func() string
}

// Engine runs the recommendation pipeline over an immutable catalogue. It is safe for
// concurrent use; the result cache is the only shared mutable state.
type Engine struct {
	logger      *logrus.Logger
	catalogue   *catalogue.Catalogue
	cache       *cache.ResultCache
	validator   domain.InputValidator
	risk        *RiskCalculator
	eligibility *EligibilityFilter
	ranker      *Ranker
	safety      *SafetyFilter
	adjuster    *Adjuster
	assembler   *Assembler
	now         func() time.Time
	newID       func() string
}

// Trace reports every intermediate result of one pipeline run.
type Trace struct {
	CurrentLine domain.TreatmentLine   `json:"current_line"`
	Eligible    []string               `json:"eligible"`
	Ranked      []TraceEntry           `json:"ranked"`
	Final       []TraceEntry           `json:"final"`
	Excluded    []Exclusion            `json:"excluded"`
	Risk        domain.RiskAssessment  `json:"risk_assessment"`
	Output      *domain.DecisionOutput `json:"output,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// TraceEntry is a ranked protocol as shown in a trace.
type TraceEntry struct {
	ProtocolID    string               `json:"protocol_id"`
	EvidenceLevel domain.EvidenceLevel `json:"evidence_level"`
	Suitability   int                  `json:"suitability"`
	Adjustment    string               `json:"adjustment,omitempty"`
}

// NewEngine creates a recommendation engine. A nil result cache gets a default one.
func NewEngine(logger *logrus.Logger, cat *catalogue.Catalogue, resultCache *cache.ResultCache, opts EngineOptions) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("protocol catalogue is required")
	}
	if resultCache == nil {
		var err error
		resultCache, err = cache.NewResultCache(logger, cache.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}
	if opts.Validator == nil {
		opts.Validator = NewRequiredFieldValidator()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = uuid.NewString
	}

	return &Engine{
		logger:      logger,
		catalogue:   cat,
		cache:       resultCache,
		validator:   opts.Validator,
		risk:        NewRiskCalculator(logger),
		eligibility: NewEligibilityFilter(logger),
		ranker:      NewRanker(logger),
		safety:      NewSafetyFilter(logger, opts.OrganFunction, opts.DrugInteraction),
		adjuster:    NewAdjuster(logger),
		assembler:   NewAssembler(logger),
		now:         opts.Clock,
		newID:       opts.IDGenerator,
	}, nil
}

// Cache returns the engine's result cache.
func (e *Engine) Cache() *cache.ResultCache {
	return e.cache
}

// Catalogue returns the catalogue the engine was built with.
func (e *Engine) Catalogue() *catalogue.Catalogue {
	return e.catalogue
}

// GenerateRecommendation returns the recommendation for input, serving repeated inputs
// from the result cache. Every failure is returned as a *domain.RecommendationError
// wrapping the cause.
func (e *Engine) GenerateRecommendation(ctx context.Context, input *domain.DecisionInput) (*domain.DecisionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, e.fail(input, err)
	}
	startTime := e.now()

	key, err := cache.Fingerprint(input)
	if err != nil {
		if verr := e.validator.Validate(input); verr != nil {
			err = verr
		}
		return nil, e.fail(input, err)
	}

	output, hit, err := e.cache.GetOrCompute(ctx, key, func() (*domain.DecisionOutput, error) {
		e.cache.Sweep()
		return e.run(input)
	})
	if err != nil {
		return nil, e.fail(input, err)
	}

	e.logger.WithFields(logrus.Fields{
		"patient_id":        input.PatientID,
		"recommendation_id": output.RecommendationID,
		"primary":           output.Primary.ProtocolID,
		"confidence":        output.ConfidenceScore,
		"cache_hit":         hit,
		"processing_time":   e.now().Sub(startTime),
	}).Info("Treatment recommendation generated")

	return output, nil
}

// run executes the uncached pipeline. A panic in any stage is reported as an error.
func (e *Engine) run(input *domain.DecisionInput) (output *domain.DecisionOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Error("Recommendation pipeline panic")
			output, err = nil, fmt.Errorf("recommendation pipeline panic: %v", r)
		}
	}()

	// Step 1: Validate required fields
	if err := e.validator.Validate(input); err != nil {
		return nil, err
	}

	// Step 2: Assess patient risk
	risk := e.risk.Assess(input)

	// Step 3: Filter catalogue by eligibility
	eligible, _ := e.eligibility.Filter(e.catalogue.Entries(), input)

	// Step 4: Rank and drop unsafe protocols
	ranked := e.ranker.Rank(eligible, input)
	ranked, _ = e.safety.Filter(ranked, input)

	// Step 5: Apply precision-medicine and performance adjustments
	ranked = e.adjuster.ApplyPrecision(ranked, input)
	ranked, _ = e.adjuster.ApplyPerformance(ranked, input)

	// Step 6: Assemble the recommendation
	output, err = e.assembler.Assemble(ranked, input, risk)
	if err != nil {
		return nil, err
	}
	e.stamp(output)

	return output, nil
}

func (e *Engine) stamp(output *domain.DecisionOutput) {
	output.RecommendationID = e.newID()
	output.GeneratedAt = e.now().UTC()
	output.EngineVersion = EngineVersion
	output.CatalogueSize = e.catalogue.Len()
}

// Explain runs the pipeline without the cache and reports what every stage kept and
// dropped. Validation failures are returned as errors; a run that ends with no eligible
// protocol returns the trace with Error set.
func (e *Engine) Explain(ctx context.Context, input *domain.DecisionInput) (*Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, e.fail(input, err)
	}
	trace, err := e.explain(input)
	if err != nil {
		return nil, e.fail(input, err)
	}
	return trace, nil
}

func (e *Engine) explain(input *domain.DecisionInput) (trace *Trace, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Error("Recommendation trace panic")
			trace, err = nil, fmt.Errorf("recommendation pipeline panic: %v", r)
		}
	}()

	if err := e.validator.Validate(input); err != nil {
		return nil, err
	}

	trace = &Trace{
		CurrentLine: input.CurrentLine(),
		Eligible:    []string{},
		Excluded:    []Exclusion{},
	}

	trace.Risk = e.risk.Assess(input)

	eligible, excluded := e.eligibility.Filter(e.catalogue.Entries(), input)
	trace.Excluded = append(trace.Excluded, excluded...)
	for _, p := range eligible {
		trace.Eligible = append(trace.Eligible, p.ID)
	}

	ranked := e.ranker.Rank(eligible, input)
	trace.Ranked = traceEntries(ranked)

	ranked, excluded = e.safety.Filter(ranked, input)
	trace.Excluded = append(trace.Excluded, excluded...)

	ranked = e.adjuster.ApplyPrecision(ranked, input)
	ranked, excluded = e.adjuster.ApplyPerformance(ranked, input)
	trace.Excluded = append(trace.Excluded, excluded...)
	trace.Final = traceEntries(ranked)

	output, err := e.assembler.Assemble(ranked, input, trace.Risk)
	if err != nil {
		trace.Error = err.Error()
		return trace, nil
	}
	e.stamp(output)
	trace.Output = output

	return trace, nil
}

func (e *Engine) fail(input *domain.DecisionInput, err error) error {
	fields := logrus.Fields{"error": err.Error()}
	if input != nil {
		fields["patient_id"] = input.PatientID
	}
	e.logger.WithFields(fields).Warn("Treatment recommendation failed")
	return &domain.RecommendationError{Err: err}
}

func traceEntries(ranked []RankedProtocol) []TraceEntry {
	entries := make([]TraceEntry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, TraceEntry{
			ProtocolID:    r.Protocol.ID,
			EvidenceLevel: r.EvidenceLevel,
			Suitability:   r.Suitability,
			Adjustment:    r.Adjustment,
		})
	}
	return entries
}
