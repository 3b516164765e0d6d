package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/mcp/protocol"
)

// ParseParams decodes tool arguments into a target struct. Arguments may
// arrive as raw JSON from the transport or as an already decoded map.
func ParseParams(params interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("missing required parameters")
	}

	var paramsBytes []byte
	switch p := params.(type) {
	case json.RawMessage:
		paramsBytes = p
	case []byte:
		paramsBytes = p
	default:
		var err error
		paramsBytes, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal parameters: %w", err)
		}
	}

	if err := json.Unmarshal(paramsBytes, target); err != nil {
		return fmt.Errorf("failed to parse parameters: %w", err)
	}

	return nil
}

// errorResponse maps a service error onto a JSON-RPC error. Domain errors
// carry an MCPError payload so clients see the same codes as the HTTP API.
func errorResponse(err error) *protocol.JSONRPC2Response {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return protocol.ErrorResponse(protocol.InvalidParams, validationErr.Message,
			domain.NewMCPError(domain.ErrValidation, validationErr.Message, validationErr.Field, ""))
	case errors.Is(err, domain.ErrUnsupportedGuideline):
		return protocol.ErrorResponse(protocol.InvalidParams, "Unsupported guideline",
			domain.NewMCPError(domain.ErrUnsupported, err.Error(), "", ""))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return protocol.ErrorResponse(protocol.InternalError, "Request cancelled", err.Error())
	default:
		return protocol.ErrorResponse(protocol.MCPToolError, "Tool execution failed",
			domain.NewMCPError(domain.ErrInternalServer, err.Error(), "", ""))
	}
}
