package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/oncology-cds-engine/internal/domain"
	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/service"
)

// Tool names.
const (
	ToolGenerateRecommendation = "generate_treatment_recommendation"
	ToolListProtocols          = "list_protocols"
	ToolGetProtocol            = "get_protocol"
	ToolSubmitFeedback         = "submit_feedback"
	ToolFeedbackSummary        = "feedback_summary"
)

// GenerateRecommendationParams are the arguments of generate_treatment_recommendation.
type GenerateRecommendationParams struct {
	Input   *domain.DecisionInput `json:"input"`
	Explain bool                  `json:"explain,omitempty"`
}

// ListProtocolsParams are the arguments of list_protocols.
type ListProtocolsParams struct {
	CancerType string `json:"cancer_type,omitempty"`
}

// GetProtocolParams are the arguments of get_protocol.
type GetProtocolParams struct {
	ID string `json:"id"`
}

type toolHandler func(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error)

type toolSet struct {
	engine   *service.Engine
	feedback feedback.Store
	logger   *logrus.Logger
}

type toolDefinition struct {
	tool    *mcp.Tool
	handler toolHandler
}

func newToolSet(engine *service.Engine, store feedback.Store, logger *logrus.Logger) *toolSet {
	return &toolSet{engine: engine, feedback: store, logger: logger}
}

func (t *toolSet) definitions() []toolDefinition {
	defs := []toolDefinition{
		{
			tool: &mcp.Tool{
				Name:        ToolGenerateRecommendation,
				Description: "Rank catalogue treatment protocols for a patient-state snapshot and return the primary recommendation, alternatives, risk assessment and monitoring plan. Set explain to return the per-stage pipeline trace instead.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"input":   {Type: "object", Description: "Decision input: disease_status, performance_status, treatment_history, comorbidities"},
					"explain": {Type: "boolean", Description: "Return the pipeline trace"},
				}, "input"),
			},
			handler: t.generateRecommendation,
		},
		{
			tool: &mcp.Tool{
				Name:        ToolListProtocols,
				Description: "List catalogue protocols, optionally filtered by cancer type.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"cancer_type": {Type: "string", Description: "Diagnosis or cancer type to filter by"},
				}),
			},
			handler: t.listProtocols,
		},
		{
			tool: &mcp.Tool{
				Name:        ToolGetProtocol,
				Description: "Return the full definition of one catalogue protocol.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"id": {Type: "string", Description: "Protocol id"},
				}, "id"),
			},
			handler: t.getProtocol,
		},
	}

	if t.feedback != nil {
		defs = append(defs,
			toolDefinition{
				tool: &mcp.Tool{
					Name:        ToolSubmitFeedback,
					Description: "Record whether the clinician accepted the primary recommendation, chose an alternative, or rejected it.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"recommendation_id":     {Type: "string"},
						"patient_id":            {Type: "string"},
						"clinician":             {Type: "string"},
						"suggested_protocol_id": {Type: "string"},
						"chosen_protocol_id":    {Type: "string"},
						"decision":              {Type: "string", Enum: []any{"accepted", "alternative", "rejected"}},
						"confidence_score":      {Type: "integer"},
						"notes":                 {Type: "string"},
					}, "recommendation_id", "clinician", "suggested_protocol_id", "decision"),
				},
				handler: t.submitFeedback,
			},
			toolDefinition{
				tool: &mcp.Tool{
					Name:        ToolFeedbackSummary,
					Description: "Summarise recorded clinician feedback by decision.",
					InputSchema: objectSchema(nil),
				},
				handler: t.feedbackSummary,
			},
		)
	}
	return defs
}

func (t *toolSet) register(server *mcp.Server) {
	for _, def := range t.definitions() {
		handler := def.handler
		name := def.tool.Name
		server.AddTool(def.tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			t.logger.WithField("tool", name).Info("Tool invoked")
			var arguments json.RawMessage
			if req.Params != nil {
				arguments = req.Params.Arguments
			}
			return handler(ctx, arguments)
		})
		t.logger.WithField("tool_name", name).Debug("Registered MCP tool")
	}
}

func (t *toolSet) generateRecommendation(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var params GenerateRecommendationParams
	if err := decodeArguments(arguments, &params); err != nil {
		return errorResult("Invalid parameters", err), nil
	}
	if params.Input == nil {
		return errorResult("Missing required parameter", errors.New("input is required")), nil
	}

	if params.Explain {
		trace, err := t.engine.Explain(ctx, params.Input)
		if err != nil {
			return errorResult("Explain failed", err), nil
		}
		return jsonResult(trace)
	}

	output, err := t.engine.GenerateRecommendation(ctx, params.Input)
	if err != nil {
		var noEligible *domain.NoEligibleProtocolError
		if errors.As(err, &noEligible) {
			return errorResult("No eligible protocol", noEligible), nil
		}
		return errorResult("Recommendation failed", err), nil
	}
	return jsonResult(output)
}

func (t *toolSet) listProtocols(_ context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var params ListProtocolsParams
	if err := decodeArguments(arguments, &params); err != nil {
		return errorResult("Invalid parameters", err), nil
	}

	type summary struct {
		ID            string               `json:"id"`
		Name          string               `json:"name"`
		CancerType    string               `json:"cancer_type"`
		Stages        []string             `json:"stages"`
		EvidenceLevel domain.EvidenceLevel `json:"evidence_level"`
	}
	list := []summary{}
	for _, p := range t.engine.Catalogue().Entries() {
		if params.CancerType != "" && !service.CancerTypeMatches(p.CancerType, params.CancerType) {
			continue
		}
		list = append(list, summary{
			ID:            p.ID,
			Name:          p.Name,
			CancerType:    p.CancerType,
			Stages:        append([]string(nil), p.Stages...),
			EvidenceLevel: p.EvidenceLevel,
		})
	}
	return jsonResult(map[string]interface{}{"protocols": list, "count": len(list)})
}

func (t *toolSet) getProtocol(_ context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var params GetProtocolParams
	if err := decodeArguments(arguments, &params); err != nil {
		return errorResult("Invalid parameters", err), nil
	}
	if params.ID == "" {
		return errorResult("Missing required parameter", errors.New("id is required")), nil
	}
	p, err := t.engine.Catalogue().Get(params.ID)
	if err != nil {
		return errorResult("Protocol not found", err), nil
	}
	return jsonResult(p)
}

func (t *toolSet) submitFeedback(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var fb feedback.Feedback
	if err := decodeArguments(arguments, &fb); err != nil {
		return errorResult("Invalid parameters", err), nil
	}
	if err := t.feedback.Save(ctx, &fb); err != nil {
		return errorResult("Failed to save feedback", err), nil
	}
	return jsonResult(fb)
}

func (t *toolSet) feedbackSummary(ctx context.Context, _ json.RawMessage) (*mcp.CallToolResult, error) {
	summary, err := t.feedback.Summarize(ctx)
	if err != nil {
		return errorResult("Failed to summarise feedback", err), nil
	}
	return jsonResult(summary)
}

func objectSchema(properties map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if properties == nil {
		properties = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func decodeArguments(arguments json.RawMessage, dst interface{}) error {
	if len(arguments) == 0 {
		return nil
	}
	return json.Unmarshal(arguments, dst)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

// errorResult creates a standardized error result for tool calls
func errorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
