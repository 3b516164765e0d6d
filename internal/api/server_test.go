package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvecheck-mcp-server/internal/domain"
	"github.com/uvecheck-mcp-server/internal/logging"
	"github.com/uvecheck-mcp-server/internal/service"
)

type stubConfig struct {
	cfg domain.Config
}

func (s *stubConfig) GetConfig() *domain.Config                   { return &s.cfg }
func (s *stubConfig) GetServerConfig() *domain.ServerConfig       { return &s.cfg.Server }
func (s *stubConfig) GetRateLimitConfig() *domain.RateLimitConfig { return &s.cfg.RateLimit }
func (s *stubConfig) GetLoggingConfig() *domain.LoggingConfig     { return &s.cfg.Logging }
func (s *stubConfig) Reload() error                               { return nil }
func (s *stubConfig) Validate() error                             { return nil }
func (s *stubConfig) IsProduction() bool                          { return false }
func (s *stubConfig) IsDevelopment() bool                         { return true }

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, rateLimit domain.RateLimitConfig) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.Discard()
	evaluator := service.NewGuidelineEvaluator(service.WithLogger(logger), service.WithClock(service.FixedClock(testNow)))
	calculator := service.NewCalculatorService(logger, evaluator)

	cfg := &stubConfig{cfg: domain.Config{
		Server:    domain.ServerConfig{Host: "127.0.0.1", Port: 8080, AllowedOrigins: []string{"https://clinic.example"}},
		RateLimit: rateLimit,
		Logging:   domain.LoggingConfig{Level: "info", Format: "json"},
	}}

	server, err := NewServer(cfg, calculator, logger)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(8), body["guidelines"])
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestListGuidelines(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	w := doJSON(t, s, http.MethodGet, "/api/v1/guidelines", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Guidelines           []domain.GuidelineInfo `json:"guidelines"`
		BiologicalTreatments []string               `json:"biological_treatments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Guidelines, 8)
	assert.Equal(t, domain.GuidelineNordic, body.Guidelines[0].ID)
	assert.Contains(t, body.BiologicalTreatments, "Adalimumab")
}

func TestGetGuideline(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	w := doJSON(t, s, http.MethodGet, "/api/v1/guidelines/spain-portugal", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info domain.GuidelineInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, domain.GuidelineSpainPortugal, info.ID)

	w = doJSON(t, s, http.MethodGet, "/api/v1/guidelines/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrUnsupported)
}

func TestCalculate(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
		wantRisk   string
		wantRec    string
	}{
		{
			name: "MIWGUC recent diagnosis",
			body: map[string]string{
				"guideline":      "MIWGUC",
				"birth_date":     "2020-03-01",
				"diagnosis_date": "2025-04-01",
				"subdiagnosis":   "Juvenile Idiopathic Arthritis",
			},
			wantStatus: http.StatusOK,
			wantRisk:   "High Risk",
			wantRec:    "Every 2 Months",
		},
		{
			name: "Nordic without biological treatment",
			body: map[string]string{
				"guideline":              "Nordic",
				"birth_date":             "2015-06-05",
				"diagnosis_date":         "2023-06-05",
				"subdiagnosis":           "Oligoarthritis",
				"ana_positive":           "y",
				"methotrexate_use":       "n",
				"treatment_discontinued": "n",
			},
			wantStatus: http.StatusOK,
			wantRisk:   "Medium Risk",
			wantRec:    "Every 6 Months",
		},
		{
			name: "UK RF positive polyarthritis",
			body: map[string]string{
				"guideline":      "uk",
				"birth_date":     "2015-03-01",
				"diagnosis_date": "2024-04-01",
				"subdiagnosis":   "RF Positive Polyarthritis",
				"ana_positive":   "n",
			},
			wantStatus: http.StatusOK,
			wantRisk:   "Low Risk",
			wantRec:    "Screen at diagnosis",
		},
		{
			name:       "missing required field",
			body:       map[string]string{"guideline": "Germany", "birth_date": "2015-03-01"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   domain.ErrValidation,
		},
		{
			name:       "unsupported guideline",
			body:       map[string]string{"guideline": "not-a-real-guideline"},
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrUnsupported,
		},
		{
			name:       "malformed body",
			body:       []int{1, 2, 3},
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/v1/calculate", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantCode != "" {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.Error.Code)
				assert.NotEmpty(t, body.Error.RequestID)
				return
			}

			var result map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, tt.wantRisk, result["risk_level"])
			assert.Equal(t, tt.wantRec, result["recommendation"])
			assert.Equal(t, "2025-06-15", result["evaluated_on"])
		})
	}
}

func TestCalculate_MissingFieldMessage(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/calculate", map[string]string{
		"guideline":      "Nordic",
		"birth_date":     "2015-03-01",
		"diagnosis_date": "2020-03-01",
		"subdiagnosis":   "Oligoarthritis",
		"ana_positive":   "y",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Please fill out all required fields. Missing: methotrexate", body.Error.Message)
	assert.Equal(t, "methotrexate", body.Error.Details)
}

func TestValidate(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/validate", map[string]string{
		"guideline":    "Argentina",
		"subdiagnosis": "Oligoarthritis",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result service.ValidateProfileResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, []domain.ProfileField{domain.FieldBirthDate, domain.FieldDiagnosisDate, domain.FieldANAPositive}, result.MissingFields)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/calculate", nil)
	req.Header.Set("Origin", "https://clinic.example")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://clinic.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitEnabled(t *testing.T) {
	s := newTestServer(t, domain.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.1, Burst: 1})

	assert.Equal(t, http.StatusOK, doJSON(t, s, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, s, http.MethodGet, "/health", nil).Code)
}
