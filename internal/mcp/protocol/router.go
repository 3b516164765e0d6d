package protocol

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ToolHandler defines the interface for MCP tool handlers
type ToolHandler interface {
	HandleTool(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response
	GetToolInfo() ToolInfo
	ValidateParams(params interface{}) error
}

// ToolInfo contains metadata about a tool
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// MessageRouter routes tool calls to their registered handlers
type MessageRouter struct {
	logger       *logrus.Logger
	toolHandlers map[string]ToolHandler
	mu           sync.RWMutex
}

// NewMessageRouter creates a new message router
func NewMessageRouter(logger *logrus.Logger) *MessageRouter {
	return &MessageRouter{
		logger:       logger,
		toolHandlers: make(map[string]ToolHandler),
	}
}

// RegisterToolHandler registers a tool handler
func (mr *MessageRouter) RegisterToolHandler(name string, handler ToolHandler) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.toolHandlers[name] = handler
	mr.logger.WithField("tool_name", name).Debug("Registered tool handler")
}

// GetToolHandlers returns all registered tool handlers
func (mr *MessageRouter) GetToolHandlers() map[string]ToolHandler {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	handlers := make(map[string]ToolHandler, len(mr.toolHandlers))
	for name, handler := range mr.toolHandlers {
		handlers[name] = handler
	}
	return handlers
}

// GetToolHandler retrieves a specific tool handler
func (mr *MessageRouter) GetToolHandler(name string) (ToolHandler, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	handler, exists := mr.toolHandlers[name]
	return handler, exists
}

// ListTools returns tool metadata sorted by name
func (mr *MessageRouter) ListTools() []ToolInfo {
	handlers := mr.GetToolHandlers()
	infos := make([]ToolInfo, 0, len(handlers))
	for _, handler := range handlers {
		infos = append(infos, handler.GetToolInfo())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// CallTool validates the arguments and dispatches to the named tool
func (mr *MessageRouter) CallTool(ctx context.Context, name string, arguments interface{}) *JSONRPC2Response {
	handler, exists := mr.GetToolHandler(name)
	if !exists {
		return ErrorResponse(MethodNotFound, "Tool not found", name)
	}

	if err := handler.ValidateParams(arguments); err != nil {
		mr.logger.WithFields(logrus.Fields{
			"tool":  name,
			"error": err.Error(),
		}).Debug("Rejected tool arguments")
		return ErrorResponse(InvalidParams, "Invalid parameters", err.Error())
	}

	resp := handler.HandleTool(ctx, NewToolRequest(name, arguments))
	if resp == nil {
		return ErrorResponse(InternalError, "Internal error", fmt.Sprintf("tool %s returned no response", name))
	}
	resp.JSONRPC = "2.0"
	return resp
}

// GetStats returns router statistics
func (mr *MessageRouter) GetStats() map[string]interface{} {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	return map[string]interface{}{
		"registered_tools": len(mr.toolHandlers),
	}
}
