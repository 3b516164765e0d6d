package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/mcp/caching"
	"github.com/uvecheck-mcp-server/internal/mcp/protocol"
	"github.com/uvecheck-mcp-server/internal/service"
)

// ToolRegistry manages registration and execution of the screening tools
type ToolRegistry struct {
	logger     *logrus.Logger
	router     *protocol.MessageRouter
	calculator *service.CalculatorService
	cache      *caching.ToolResultCache
}

// NewToolRegistry creates a new tool registry. cache may be nil.
func NewToolRegistry(logger *logrus.Logger, router *protocol.MessageRouter, calculator *service.CalculatorService, cache *caching.ToolResultCache) *ToolRegistry {
	return &ToolRegistry{
		logger:     logger,
		router:     router,
		calculator: calculator,
		cache:      cache,
	}
}

// RegisterAllTools registers all screening tools with the MCP router
func (tr *ToolRegistry) RegisterAllTools() error {
	tr.logger.Info("Registering uveitis screening tools")

	handlers := []protocol.ToolHandler{
		NewCalculateScreeningIntervalTool(tr.logger, tr.calculator),
		NewValidateProfileTool(tr.logger, tr.calculator),
		NewListGuidelinesTool(tr.logger, tr.calculator),
		NewDescribeGuidelineTool(tr.logger, tr.calculator),
	}
	for _, handler := range handlers {
		name := handler.GetToolInfo().Name
		if _, exists := tr.router.GetToolHandler(name); exists {
			return fmt.Errorf("tool %s already registered", name)
		}
		tr.router.RegisterToolHandler(name, handler)
	}

	tr.logger.WithField("tools", len(handlers)).Info("Successfully registered screening tools")
	return nil
}

// GetRegisteredToolsInfo returns information about all registered tools
func (tr *ToolRegistry) GetRegisteredToolsInfo() []protocol.ToolInfo {
	return tr.router.ListTools()
}

// ValidateAllTools checks every registered tool exposes complete metadata
func (tr *ToolRegistry) ValidateAllTools() error {
	for name, handler := range tr.router.GetToolHandlers() {
		info := handler.GetToolInfo()
		if info.Name != name {
			return fmt.Errorf("tool %s reports name %q", name, info.Name)
		}
		if info.Description == "" {
			return fmt.Errorf("tool %s missing description", name)
		}
		if info.InputSchema == nil {
			return fmt.Errorf("tool %s missing input schema", name)
		}
	}
	return nil
}

// ExecuteTool runs a tool and returns its JSON result. Successful results are
// cached per evaluation date; failures are never cached. A failed call
// returns a *protocol.RPCError.
func (tr *ToolRegistry) ExecuteTool(ctx context.Context, name string, arguments map[string]interface{}) ([]byte, error) {
	key := caching.GenerateKey(name, tr.calculator.EvaluationDate(), arguments)
	if data, ok := tr.cache.Get(ctx, key); ok {
		tr.logger.WithField("tool", name).Debug("Tool result served from cache")
		return data, nil
	}

	var params interface{}
	if arguments != nil {
		params = arguments
	}

	resp := tr.router.CallTool(ctx, name, params)
	if resp.Error != nil {
		tr.logger.WithFields(logrus.Fields{
			"tool":  name,
			"code":  resp.Error.Code,
			"error": resp.Error.Message,
		}).Debug("Tool call failed")
		return nil, resp.Error
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", name, err)
	}
	tr.cache.Set(ctx, key, data)

	return data, nil
}
