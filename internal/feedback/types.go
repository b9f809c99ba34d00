// Package feedback stores clinician decisions on generated treatment recommendations.
// Each entry records whether the clinician accepted the primary protocol, chose an
// alternative or rejected the recommendation.
package feedback

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Decision is the clinician's response to a recommendation.
type Decision string

const (
	DecisionAccepted    Decision = "accepted"
	DecisionAlternative Decision = "alternative"
	DecisionRejected    Decision = "rejected"
)

// IsValid checks if the decision is valid
func (d Decision) IsValid() bool {
	switch d {
	case DecisionAccepted, DecisionAlternative, DecisionRejected:
		return true
	}
	return false
}

// Feedback is a clinician's decision on one recommendation.
type Feedback struct {
	ID                  int64     `json:"id,omitempty"`
	RecommendationID    string    `json:"recommendation_id"`
	PatientID           string    `json:"patient_id,omitempty"`
	Clinician           string    `json:"clinician"`
	SuggestedProtocolID string    `json:"suggested_protocol_id"`
	ChosenProtocolID    string    `json:"chosen_protocol_id,omitempty"`
	Decision            Decision  `json:"decision"`
	ConfidenceScore     int       `json:"confidence_score,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Validate checks the fields every store requires.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.RecommendationID) == "" {
		return fmt.Errorf("recommendation_id is required")
	}
	if strings.TrimSpace(f.Clinician) == "" {
		return fmt.Errorf("clinician is required")
	}
	if strings.TrimSpace(f.SuggestedProtocolID) == "" {
		return fmt.Errorf("suggested_protocol_id is required")
	}
	if !f.Decision.IsValid() {
		return fmt.Errorf("invalid decision %q", f.Decision)
	}
	if f.Decision == DecisionAlternative && strings.TrimSpace(f.ChosenProtocolID) == "" {
		return fmt.Errorf("chosen_protocol_id is required when an alternative was chosen")
	}
	return nil
}

// Summary aggregates decisions across all stored feedback.
type Summary struct {
	Total          int64              `json:"total"`
	ByDecision     map[Decision]int64 `json:"by_decision"`
	AcceptanceRate float64            `json:"acceptance_rate"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates clinician feedback. A second entry from the same clinician
	// for the same recommendation replaces the first.
	Save(ctx context.Context, feedback *Feedback) error

	// Get returns the feedback of a clinician on a recommendation, or nil if none exists.
	Get(ctx context.Context, recommendationID string, clinician string) (*Feedback, error)

	// List returns feedback entries, newest first.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Summarize counts entries per decision.
	Summarize(ctx context.Context) (*Summary, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader, skipping entries that already exist.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}

func newSummary(counts map[Decision]int64) *Summary {
	s := &Summary{ByDecision: map[Decision]int64{
		DecisionAccepted:    0,
		DecisionAlternative: 0,
		DecisionRejected:    0,
	}}
	for d, n := range counts {
		s.ByDecision[d] = n
		s.Total += n
	}
	if s.Total > 0 {
		s.AcceptanceRate = float64(s.ByDecision[DecisionAccepted]) / float64(s.Total)
	}
	return s
}
