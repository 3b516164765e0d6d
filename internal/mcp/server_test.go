package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvecheck-mcp-server/internal/config"
	"github.com/uvecheck-mcp-server/internal/mcp/protocol"
	"github.com/uvecheck-mcp-server/internal/service"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()

	server, err := NewServer(config.DefaultLiteConfig(), WithLogger(logger), WithClock(service.FixedClock(testNow)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server
}

func callTool(t *testing.T, s *Server, name, arguments string) *mcp.CallToolResult {
	t.Helper()
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: name}}
	if arguments != "" {
		req.Params.Arguments = json.RawMessage(arguments)
	}
	result, err := s.toolHandler(name)(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := newTestServer(t)

	assert.NotNil(t, server.MCPServer())
	assert.Len(t, server.toolRegistry.GetRegisteredToolsInfo(), 4)
	assert.Equal(t, "stdio", string(server.transportMgr.Type()))
}

func TestNewServer_InvalidConfig(t *testing.T) {
	cfg := config.DefaultLiteConfig()
	cfg.Transport = "carrier-pigeon"

	_, err := NewServer(cfg)
	assert.Error(t, err)

	_, err = NewServer(config.DefaultLiteConfig(), WithLogger(nil))
	assert.Error(t, err)
}

func TestToolHandler_Calculate(t *testing.T) {
	server := newTestServer(t)

	result := callTool(t, server, "calculate_screening_interval", `{
		"guideline": "MIWGUC",
		"birth_date": "2020-03-01",
		"diagnosis_date": "2025-04-01",
		"subdiagnosis": "Juvenile Idiopathic Arthritis"
	}`)
	require.False(t, result.IsError, resultText(t, result))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, "High Risk", body["risk_level"])
	assert.Equal(t, "Every 2 Months", body["recommendation"])
	assert.Equal(t, "Screening every 3 months", body["screening_message"])
}

func TestToolHandler_Errors(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name      string
		tool      string
		arguments string
		wantCode  int
	}{
		{
			name:      "missing required answer",
			tool:      "calculate_screening_interval",
			arguments: `{"guideline":"Germany","birth_date":"2015-03-01"}`,
			wantCode:  protocol.InvalidParams,
		},
		{
			name:      "unsupported guideline",
			tool:      "calculate_screening_interval",
			arguments: `{"guideline":"not-a-real-guideline"}`,
			wantCode:  protocol.InvalidParams,
		},
		{
			name:      "arguments not an object",
			tool:      "describe_guideline",
			arguments: `["Nordic"]`,
			wantCode:  protocol.InvalidParams,
		},
		{
			name:     "no arguments",
			tool:     "describe_guideline",
			wantCode: protocol.InvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, server, tt.tool, tt.arguments)
			assert.True(t, result.IsError)

			var body struct {
				Error protocol.RPCError `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestToolHandler_UsesCache(t *testing.T) {
	server := newTestServer(t)

	callTool(t, server, "list_guidelines", "")
	callTool(t, server, "list_guidelines", "{}")
	callTool(t, server, "list_guidelines", "")

	stats := server.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestToJSONSchema(t *testing.T) {
	schema, err := toJSONSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"guideline": map[string]interface{}{"type": "string", "description": "Guideline name"},
		},
		"required": []string{"guideline"},
	})
	require.NoError(t, err)

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"guideline"}, schema.Required)
	require.Contains(t, schema.Properties, "guideline")
	assert.Equal(t, "string", schema.Properties["guideline"].Type)

	_, err = toJSONSchema(map[string]interface{}{"type": make(chan int)})
	assert.Error(t, err)
}

func TestErrorResult(t *testing.T) {
	result := errorResult(errors.New("boom"))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "boom")
}
