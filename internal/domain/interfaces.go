package domain

import (
	"context"
)

// RecommendationEngine turns a patient-state snapshot into a ranked recommendation.
type RecommendationEngine interface {
	GenerateRecommendation(ctx context.Context, input *DecisionInput) (*DecisionOutput, error)
}

// InputValidator guards required fields before any rule evaluation. It returns an error
// describing the first unmet requirement.
type InputValidator interface {
	Validate(input *DecisionInput) error
}

// SafetyIssue explains why a protocol was removed by a safety check.
type SafetyIssue struct {
	Check  string `json:"check"`
	Reason string `json:"reason"`
}

// OrganFunctionChecker decides whether organ-function requirements of a protocol are
// met. A nil issue means no problem was found.
type OrganFunctionChecker interface {
	CheckOrganFunction(protocol *Protocol, input *DecisionInput) *SafetyIssue
}

// DrugInteractionChecker detects critical drug interactions for a protocol. A nil issue
// means no problem was found.
type DrugInteractionChecker interface {
	CheckDrugInteractions(protocol *Protocol, input *DecisionInput) *SafetyIssue
}

// ProtocolSource supplies the protocol catalogue at start-up.
type ProtocolSource interface {
	ListProtocols(ctx context.Context) ([]Protocol, error)
}

// ProtocolRepository defines the interface for protocol catalogue persistence
type ProtocolRepository interface {
	ProtocolSource
	SaveProtocol(ctx context.Context, protocol *Protocol) error
	GetProtocol(ctx context.Context, id string) (*Protocol, error)
	DeleteProtocol(ctx context.Context, id string) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	GetCacheConfig() *CacheConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
