package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegauge/codegauge/internal/config"
	"github.com/codegauge/codegauge/internal/monitoring"
	"github.com/codegauge/codegauge/internal/ratelimit"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := newAnalysisEngine(config.Default())
	require.NoError(t, err)

	metrics := monitoring.NewMetrics()

	client, err := ratelimit.NewRedisClient("", "", 0)
	require.NoError(t, err)
	limiter := ratelimit.NewRateLimiter(client, ratelimit.Config{
		IPLimitPerMin:   10000,
		BurstMultiplier: 2,
	}, metrics)

	return newRouter(engine, limiter, metrics, monitoring.NewLogger())
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Contains(t, response, "timestamp")
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response, "request_count")
	assert.Contains(t, response, "analysis_count")
	assert.Contains(t, response, "avg_response_time_ms")
}

func TestAnalyzeEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := postJSON(r, "/analyze", map[string]interface{}{
		"code": "def add(a, b):\n    return a + b",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Contains(t, response, "unit_id")
	assert.Contains(t, response, "overall_score")
	assert.Contains(t, response, "confidence")
	assert.Contains(t, response, "subscores")
	assert.Contains(t, response, "explanation")
	assert.Contains(t, response, "degraded_signals")

	score, ok := response["overall_score"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	confidence := response["confidence"].(float64)
	assert.GreaterOrEqual(t, confidence, 0.0)
	assert.LessOrEqual(t, confidence, 1.0)
}

func TestAnalyzeEndpoint_InvalidRequests(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing code field", body: map[string]interface{}{}},
		{name: "empty code", body: map[string]interface{}{"code": ""}},
		{name: "whitespace code", body: map[string]interface{}{"code": "   \n  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "validation", response["category"])
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := postJSON(r, "/analyze/batch", map[string]interface{}{
		"codes": []string{
			"def one(): return 1",
			"def two(): return 2",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Assessments []map[string]interface{} `json:"assessments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Assessments, 2)

	// order matches the request
	assert.NotEqual(t, response.Assessments[0]["unit_id"], response.Assessments[1]["unit_id"])
}

func TestBatchEndpoint_InvalidRequests(t *testing.T) {
	r := setupRouter(t)

	t.Run("empty batch", func(t *testing.T) {
		w := postJSON(r, "/analyze/batch", map[string]interface{}{"codes": []string{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized batch", func(t *testing.T) {
		codes := make([]string, maxBatchSize+1)
		for i := range codes {
			codes[i] = fmt.Sprintf("def f%d(): pass", i)
		}
		w := postJSON(r, "/analyze/batch", map[string]interface{}{"codes": codes})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestIDHeader(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CODEGAUGE_TEST_KEY", "set")
	assert.Equal(t, "set", getEnvOrDefault("CODEGAUGE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("CODEGAUGE_TEST_MISSING", "fallback"))
}
