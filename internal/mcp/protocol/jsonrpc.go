package protocol

import "fmt"

// JSONRPC2Request represents a JSON-RPC 2.0 request message
type JSONRPC2Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

// JSONRPC2Response represents a JSON-RPC 2.0 response message
type JSONRPC2Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// RPCError represents a JSON-RPC 2.0 error object
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (%d): %v", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Standard JSON-RPC 2.0 error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	// MCP-specific error codes
	MCPRateLimited = -32001
	MCPToolError   = -32003
)

// NewToolRequest builds the request handed to a tool handler
func NewToolRequest(name string, arguments interface{}) *JSONRPC2Request {
	return &JSONRPC2Request{
		JSONRPC: "2.0",
		Method:  name,
		Params:  arguments,
	}
}

// ResultResponse wraps a successful tool result
func ResultResponse(result interface{}) *JSONRPC2Response {
	return &JSONRPC2Response{JSONRPC: "2.0", Result: result}
}

// ErrorResponse wraps a failed tool call
func ErrorResponse(code int, message string, data interface{}) *JSONRPC2Response {
	return &JSONRPC2Response{
		JSONRPC: "2.0",
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
