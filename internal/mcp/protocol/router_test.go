package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct {
	name     string
	rejected error
	calls    int
}

func (e *echoTool) HandleTool(_ context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	e.calls++
	return ResultResponse(map[string]interface{}{"echo": req.Params, "method": req.Method})
}

func (e *echoTool) GetToolInfo() ToolInfo {
	return ToolInfo{Name: e.name, Description: "echoes its arguments"}
}

func (e *echoTool) ValidateParams(interface{}) error { return e.rejected }

type silentTool struct{ echoTool }

func (s *silentTool) HandleTool(context.Context, *JSONRPC2Request) *JSONRPC2Response { return nil }

func TestMessageRouter_CallTool(t *testing.T) {
	logger, _ := test.NewNullLogger()
	router := NewMessageRouter(logger)

	echo := &echoTool{name: "echo"}
	strict := &echoTool{name: "strict", rejected: errors.New("guideline is required")}
	router.RegisterToolHandler("echo", echo)
	router.RegisterToolHandler("strict", strict)
	router.RegisterToolHandler("silent", &silentTool{echoTool{name: "silent"}})

	t.Run("dispatches to handler", func(t *testing.T) {
		resp := router.CallTool(context.Background(), "echo", map[string]interface{}{"a": 1})
		require.Nil(t, resp.Error)
		assert.Equal(t, "2.0", resp.JSONRPC)

		result := resp.Result.(map[string]interface{})
		assert.Equal(t, "echo", result["method"])
		assert.Equal(t, 1, echo.calls)
	})

	t.Run("unknown tool", func(t *testing.T) {
		resp := router.CallTool(context.Background(), "missing", nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, MethodNotFound, resp.Error.Code)
		assert.Equal(t, "missing", resp.Error.Data)
	})

	t.Run("invalid params skip the handler", func(t *testing.T) {
		resp := router.CallTool(context.Background(), "strict", nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, InvalidParams, resp.Error.Code)
		assert.Equal(t, "guideline is required", resp.Error.Data)
		assert.Zero(t, strict.calls)
	})

	t.Run("nil response becomes internal error", func(t *testing.T) {
		resp := router.CallTool(context.Background(), "silent", nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, InternalError, resp.Error.Code)
	})
}

func TestMessageRouter_ListTools(t *testing.T) {
	logger, _ := test.NewNullLogger()
	router := NewMessageRouter(logger)

	for _, name := range []string{"validate_profile", "calculate_screening_interval", "list_guidelines"} {
		router.RegisterToolHandler(name, &echoTool{name: name})
	}

	tools := router.ListTools()
	require.Len(t, tools, 3)
	assert.Equal(t, "calculate_screening_interval", tools[0].Name)
	assert.Equal(t, "list_guidelines", tools[1].Name)
	assert.Equal(t, "validate_profile", tools[2].Name)
	assert.Equal(t, 3, router.GetStats()["registered_tools"])
}

func TestRPCError(t *testing.T) {
	err := &RPCError{Code: InvalidParams, Message: "Invalid parameters", Data: "birth_date"}
	assert.Equal(t, "Invalid parameters (-32602): birth_date", err.Error())

	err = &RPCError{Code: InternalError, Message: "Internal error"}
	assert.Equal(t, "Internal error (-32603)", err.Error())
}
