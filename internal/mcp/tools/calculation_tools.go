package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/mcp/protocol"
	"github.com/uvecheck-mcp-server/internal/service"
)

// CalculateScreeningIntervalTool implements the calculate_screening_interval MCP tool
type CalculateScreeningIntervalTool struct {
	logger     *logrus.Logger
	calculator *service.CalculatorService
}

// NewCalculateScreeningIntervalTool creates a new calculate_screening_interval tool
func NewCalculateScreeningIntervalTool(logger *logrus.Logger, calculator *service.CalculatorService) *CalculateScreeningIntervalTool {
	return &CalculateScreeningIntervalTool{
		logger:     logger,
		calculator: calculator,
	}
}

// HandleTool implements the ToolHandler interface for calculate_screening_interval
func (t *CalculateScreeningIntervalTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	startTime := time.Now()
	t.logger.WithField("tool", "calculate_screening_interval").Debug("Processing screening interval request")

	var params service.CalculateParams
	if err := parseProfileParams(req.Params, &params); err != nil {
		return protocol.ErrorResponse(protocol.InvalidParams, "Invalid parameters", err.Error())
	}

	result, err := t.calculator.Calculate(ctx, &params)
	if err != nil {
		return errorResponse(err)
	}

	t.logger.WithFields(logrus.Fields{
		"guideline":       result.Guideline,
		"risk_level":      result.RiskLevel,
		"processing_time": time.Since(startTime).String(),
	}).Info("Screening interval calculated")

	return protocol.ResultResponse(result)
}

// GetToolInfo returns tool metadata
func (t *CalculateScreeningIntervalTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name: "calculate_screening_interval",
		Description: "Calculate the uveitis eye-screening interval for a child with juvenile idiopathic arthritis " +
			"under a national guideline. Returns risk level, recommended interval, follow-up duration and the derived ages.",
		InputSchema: profileSchema(),
	}
}

// ValidateParams validates tool parameters
func (t *CalculateScreeningIntervalTool) ValidateParams(params interface{}) error {
	var p service.CalculateParams
	return parseProfileParams(params, &p)
}

// ValidateProfileTool implements the validate_profile MCP tool
type ValidateProfileTool struct {
	logger     *logrus.Logger
	calculator *service.CalculatorService
}

// NewValidateProfileTool creates a new validate_profile tool
func NewValidateProfileTool(logger *logrus.Logger, calculator *service.CalculatorService) *ValidateProfileTool {
	return &ValidateProfileTool{
		logger:     logger,
		calculator: calculator,
	}
}

// HandleTool implements the ToolHandler interface for validate_profile
func (t *ValidateProfileTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params service.CalculateParams
	if err := parseProfileParams(req.Params, &params); err != nil {
		return protocol.ErrorResponse(protocol.InvalidParams, "Invalid parameters", err.Error())
	}

	result, err := t.calculator.ValidateProfile(ctx, &params)
	if err != nil {
		return errorResponse(err)
	}

	return protocol.ResultResponse(result)
}

// GetToolInfo returns tool metadata
func (t *ValidateProfileTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "validate_profile",
		Description: "Check which answers a guideline still needs before a screening interval can be calculated",
		InputSchema: profileSchema(),
	}
}

// ValidateParams validates tool parameters
func (t *ValidateProfileTool) ValidateParams(params interface{}) error {
	var p service.CalculateParams
	return parseProfileParams(params, &p)
}

func parseProfileParams(params interface{}, target *service.CalculateParams) error {
	if err := ParseParams(params, target); err != nil {
		return err
	}
	if strings.TrimSpace(target.Guideline) == "" {
		return fmt.Errorf("guideline is required")
	}
	return nil
}

func profileSchema() map[string]interface{} {
	guidelines := make([]string, len(domain.AllGuidelines))
	for i, g := range domain.AllGuidelines {
		guidelines[i] = string(g)
	}
	biologics := make([]string, len(domain.BiologicalTreatments))
	for i, b := range domain.BiologicalTreatments {
		biologics[i] = string(b)
	}
	triState := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "string",
			"description": description + " (y, n or na)",
		}
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"guideline": map[string]interface{}{
				"type":        "string",
				"description": "Guideline name or slug: " + strings.Join(guidelines, ", "),
			},
			"birth_date": map[string]interface{}{
				"type":        "string",
				"description": "Date of birth, YYYY-MM-DD",
				"format":      "date",
			},
			"diagnosis_date": map[string]interface{}{
				"type":        "string",
				"description": "Date of JIA diagnosis, YYYY-MM-DD",
				"format":      "date",
			},
			"subdiagnosis": map[string]interface{}{
				"type":        "string",
				"description": "JIA subtype as listed by describe_guideline",
			},
			"ana_positive":           triState("Antinuclear antibody positive"),
			"methotrexate_use":       triState("Currently on methotrexate (Nordic only)"),
			"treatment_discontinued": triState("Treatment discontinued (Nordic only)"),
			"biological_treatment": map[string]interface{}{
				"type":        "string",
				"description": "Biologic therapy (Nordic only): " + strings.Join(biologics, ", "),
				"default":     string(domain.BiologicalNone),
			},
		},
		"required": []string{"guideline"},
	}
}
