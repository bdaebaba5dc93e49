package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/emotion-detector/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
		hasError bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			assert.Equal(t, tt.expected, level)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "info", Format: "json", Output: &buf})

	ctx := WithRequestID(context.Background(), "abc-123")
	logger.ExternalAPILogger(ctx, "Watson", "POST", "https://example.test", 200, 0, OutcomeSuccess)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "External API Call", entry["msg"])
	assert.Equal(t, "abc-123", entry["request_id"])
	assert.Equal(t, "success", entry["outcome"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "warn", Format: "text", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/id", func(c *gin.Context) {
		fromCtx, _ := RequestIDFromContext(c.Request.Context())
		c.String(http.StatusOK, c.GetString(apperrors.RequestIDKey)+"|"+fromCtx)
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/id", nil)
		r.ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id+"|"+id, w.Body.String())
	})

	t.Run("reuses inbound id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, "client-supplied")
		r.ServeHTTP(w, req)

		assert.Equal(t, "client-supplied", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "client-supplied|client-supplied", w.Body.String())
	})
}

func TestMonitoringMiddleware_RecordsMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Format: "json", Output: &buf})
	metrics := NewMetrics()

	r := gin.New()
	r.Use(MonitoringMiddleware(metrics, logger))
	r.GET("/emotionDetector", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/emotionDetector", "/emotionDetector", "/health", "/missing"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "/emotionDetector", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
	assert.Equal(t, 3, strings.Count(buf.String(), `"msg":"HTTP Request"`))
}

func TestMetrics_ExternalCallsAndBreaker(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveExternalCall("watson", OutcomeSuccess, 0.2)
	metrics.ObserveExternalCall("watson", OutcomeRejected, 0.1)
	metrics.ObserveExternalCall("watson", OutcomeSuccess, 0.3)
	metrics.ObserveDominant("joy")
	metrics.SetBreakerState("watson", gobreaker.StateOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ExternalTotal.WithLabelValues("watson", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExternalTotal.WithLabelValues("watson", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dominant.WithLabelValues("joy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BreakerState.WithLabelValues("watson")))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	metrics.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "emotion_detector_external_api_requests_total")
}

func TestSuspiciousUserAgent(t *testing.T) {
	agent, ok := suspiciousUserAgent("sqlmap/1.7 (https://sqlmap.org)")
	assert.True(t, ok)
	assert.Equal(t, "sqlmap", agent)

	_, ok = suspiciousUserAgent("Mozilla/5.0")
	assert.False(t, ok)
}
