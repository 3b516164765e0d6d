// Package mcp exposes the screening calculator as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/config"
	"github.com/uvecheck-mcp-server/internal/logging"
	"github.com/uvecheck-mcp-server/internal/mcp/caching"
	"github.com/uvecheck-mcp-server/internal/mcp/protocol"
	"github.com/uvecheck-mcp-server/internal/mcp/tools"
	"github.com/uvecheck-mcp-server/internal/mcp/transport"
	"github.com/uvecheck-mcp-server/internal/service"
)

// Server is the uveitis screening MCP server
type Server struct {
	config       *config.LiteConfig
	mcpServer    *mcp.Server
	transportMgr *transport.Manager
	toolRegistry *tools.ToolRegistry
	cache        *caching.ToolResultCache
	clock        service.Clock
	logger       *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server) error

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithClock fixes the evaluation date, mainly for tests.
func WithClock(clock service.Clock) ServerOption {
	return func(s *Server) error {
		s.clock = clock
		return nil
	}
}

// NewServer creates a new MCP server instance. It needs no external services;
// Redis is used only when cfg.RedisURL is set.
func NewServer(cfg *config.LiteConfig, opts ...ServerOption) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	server := &Server{
		config: cfg,
		clock:  service.SystemClock,
		logger: logging.New(cfg.LogLevel, cfg.LogFormat),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	resultCache, err := caching.NewToolResultCache(caching.CacheConfig{
		MaxItems: cfg.CacheMaxItems,
		TTL:      cfg.CacheTTL,
		RedisURL: cfg.RedisURL,
	}, server.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool result cache: %w", err)
	}
	server.cache = resultCache

	evaluator := service.NewGuidelineEvaluator(service.WithLogger(server.logger), service.WithClock(server.clock))
	calculator := service.NewCalculatorService(server.logger, evaluator)

	router := protocol.NewMessageRouter(server.logger)
	toolRegistry := tools.NewToolRegistry(server.logger, router, calculator, resultCache)
	if err := toolRegistry.RegisterAllTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	if err := toolRegistry.ValidateAllTools(); err != nil {
		return nil, fmt.Errorf("tool validation failed: %w", err)
	}
	server.toolRegistry = toolRegistry

	transportType, err := transport.DetectTransport(os.Args[1:], cfg.Transport)
	if err != nil {
		return nil, err
	}
	server.transportMgr = transport.NewManager(server.logger, transportType, cfg.HTTPAddr())

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	if err := server.registerMCPTools(); err != nil {
		return nil, fmt.Errorf("failed to register MCP tools: %w", err)
	}

	server.logger.WithFields(logrus.Fields{
		"transport": transportType,
		"cache":     resultCache.Enabled(),
	}).Info("MCP server initialized")
	return server, nil
}

// registerMCPTools registers every registry tool with the MCP SDK
func (s *Server) registerMCPTools() error {
	toolsInfo := s.toolRegistry.GetRegisteredToolsInfo()

	for _, toolInfo := range toolsInfo {
		schema, err := toJSONSchema(toolInfo.InputSchema)
		if err != nil {
			return fmt.Errorf("tool %s: %w", toolInfo.Name, err)
		}

		s.mcpServer.AddTool(&mcp.Tool{
			Name:        toolInfo.Name,
			Description: toolInfo.Description,
			InputSchema: schema,
		}, s.toolHandler(toolInfo.Name))

		s.logger.WithField("tool_name", toolInfo.Name).Debug("Registered MCP tool")
	}

	s.logger.WithField("tool_count", len(toolsInfo)).Info("Successfully registered all tools")
	return nil
}

// toolHandler bridges an SDK tool call to the registry
func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()
		ctx = logging.WithCorrelationID(ctx, logging.NewCorrelationID())
		log := logging.FromContext(ctx, s.logger).WithField("tool", name)

		var arguments map[string]interface{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &arguments); err != nil {
				return errorResult(&protocol.RPCError{
					Code:    protocol.InvalidParams,
					Message: "Invalid parameters",
					Data:    "arguments must be a JSON object",
				}), nil
			}
		}
		log.WithFields(logging.SanitizeFields(arguments)).Debug("Handling MCP tool call")

		data, err := s.toolRegistry.ExecuteTool(ctx, name, arguments)
		if err != nil {
			log.WithError(err).Info("MCP tool call failed")
			return errorResult(err), nil
		}

		log.WithField("processing_time", time.Since(startTime).String()).Debug("MCP tool call completed")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

// errorResult reports a tool failure inside the result so the model can see it
func errorResult(err error) *mcp.CallToolResult {
	var rpcErr *protocol.RPCError
	if !errors.As(err, &rpcErr) {
		rpcErr = &protocol.RPCError{Code: protocol.InternalError, Message: "Internal error", Data: err.Error()}
	}
	body, marshalErr := json.Marshal(map[string]interface{}{"error": rpcErr})
	if marshalErr != nil {
		body = []byte(rpcErr.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: true,
	}
}

func toJSONSchema(schema map[string]interface{}) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input schema: %w", err)
	}
	var out jsonschema.Schema
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode input schema: %w", err)
	}
	return &out, nil
}

// Start serves MCP over the configured transport until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"name":      s.config.ServerName,
		"version":   s.config.ServerVersion,
		"transport": s.transportMgr.Type(),
	}).Info("Starting uveitis screening MCP server")

	return s.transportMgr.Serve(ctx, s.mcpServer)
}

// MCPServer returns the underlying SDK server
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// CacheStats reports tool result cache statistics
func (s *Server) CacheStats() caching.CacheStats {
	return s.cache.GetStats()
}

// Close releases server resources
func (s *Server) Close() error {
	return s.cache.Close()
}
