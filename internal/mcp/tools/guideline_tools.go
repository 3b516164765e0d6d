package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/mcp/protocol"
	"github.com/uvecheck-mcp-server/internal/service"
)

// ListGuidelinesTool implements the list_guidelines MCP tool
type ListGuidelinesTool struct {
	logger     *logrus.Logger
	calculator *service.CalculatorService
}

// ListGuidelinesResult is the catalog returned by list_guidelines
type ListGuidelinesResult struct {
	Guidelines           []domain.GuidelineInfo       `json:"guidelines"`
	BiologicalTreatments []domain.BiologicalTreatment `json:"biological_treatments"`
}

// NewListGuidelinesTool creates a new list_guidelines tool
func NewListGuidelinesTool(logger *logrus.Logger, calculator *service.CalculatorService) *ListGuidelinesTool {
	return &ListGuidelinesTool{
		logger:     logger,
		calculator: calculator,
	}
}

// HandleTool implements the ToolHandler interface for list_guidelines
func (t *ListGuidelinesTool) HandleTool(_ context.Context, _ *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	return protocol.ResultResponse(&ListGuidelinesResult{
		Guidelines:           t.calculator.ListGuidelines(),
		BiologicalTreatments: domain.BiologicalTreatments,
	})
}

// GetToolInfo returns tool metadata
func (t *ListGuidelinesTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "list_guidelines",
		Description: "List the supported uveitis screening guidelines with their subdiagnosis options and required answers",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}
}

// ValidateParams accepts anything; the tool takes no arguments
func (t *ListGuidelinesTool) ValidateParams(interface{}) error {
	return nil
}

// DescribeGuidelineTool implements the describe_guideline MCP tool
type DescribeGuidelineTool struct {
	logger     *logrus.Logger
	calculator *service.CalculatorService
}

// DescribeGuidelineParams defines parameters for the describe_guideline tool
type DescribeGuidelineParams struct {
	Guideline string `json:"guideline"`
}

// NewDescribeGuidelineTool creates a new describe_guideline tool
func NewDescribeGuidelineTool(logger *logrus.Logger, calculator *service.CalculatorService) *DescribeGuidelineTool {
	return &DescribeGuidelineTool{
		logger:     logger,
		calculator: calculator,
	}
}

// HandleTool implements the ToolHandler interface for describe_guideline
func (t *DescribeGuidelineTool) HandleTool(_ context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params DescribeGuidelineParams
	if err := t.parseAndValidateParams(req.Params, &params); err != nil {
		return protocol.ErrorResponse(protocol.InvalidParams, "Invalid parameters", err.Error())
	}

	info, err := t.calculator.DescribeGuideline(params.Guideline)
	if err != nil {
		t.logger.WithField("guideline", params.Guideline).Debug("Unknown guideline requested")
		return errorResponse(err)
	}
	return protocol.ResultResponse(info)
}

// GetToolInfo returns tool metadata
func (t *DescribeGuidelineTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "describe_guideline",
		Description: "Describe one guideline: its subdiagnosis options and the answers it requires",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"guideline": map[string]interface{}{
					"type":        "string",
					"description": "Guideline name or slug, e.g. 'Nordic' or 'spain-portugal'",
				},
			},
			"required": []string{"guideline"},
		},
	}
}

// ValidateParams validates tool parameters
func (t *DescribeGuidelineTool) ValidateParams(params interface{}) error {
	var p DescribeGuidelineParams
	return t.parseAndValidateParams(params, &p)
}

func (t *DescribeGuidelineTool) parseAndValidateParams(params interface{}, target *DescribeGuidelineParams) error {
	if err := ParseParams(params, target); err != nil {
		return err
	}
	if strings.TrimSpace(target.Guideline) == "" {
		return fmt.Errorf("guideline is required")
	}
	return nil
}
