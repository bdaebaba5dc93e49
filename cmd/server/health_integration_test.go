package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/emotion-detector/internal/config"
)

const stubPrediction = `{"emotionPredictions":[{"emotion":{"anger":0.05,"disgust":0.01,"fear":0.02,"joy":0.9,"sadness":0.02}}]}`

func newTestApp(t *testing.T, upstream http.HandlerFunc) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	t.Setenv("EMOTION_API_URL", srv.URL)
	t.Setenv("EMOTION_API_TIMEOUT", "2s")
	t.Setenv("EMOTION_API_BREAKER_FAILURES", "2")
	t.Setenv("EMOTION_API_BREAKER_TIMEOUT", "1m")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := newApp(cfg, io.Discard)
	require.NoError(t, err)
	return a
}

func okUpstream(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, stubPrediction)
}

func TestHealthEndpoint_Integration(t *testing.T) {
	a := newTestApp(t, okUpstream)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	a.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, version, response["version"])
	assert.Equal(t, map[string]interface{}{"emotion-api": "closed"}, response["services"])
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	a := newTestApp(t, okUpstream)

	for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
		t.Run("method_"+method+"_not_allowed", func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(method, "/health", nil)
			a.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestHealthEndpoint_DegradesWhenBreakerOpens(t *testing.T) {
	a := newTestApp(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	target := "/emotionDetector?" + url.Values{"textToAnalyze": {"hello"}}.Encode()
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, target, nil)
		a.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/health", nil)
	a.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response["status"])
}

func TestHealthEndpoint_ConcurrentRequests(t *testing.T) {
	a := newTestApp(t, okUpstream)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			a.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	a := newTestApp(t, okUpstream)

	// Pick a free port so the server can actually listen
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, _ := net.SplitHostPort(l.Addr().String())
	require.NoError(t, l.Close())
	a.cfg.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, a) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + a.cfg.Addr() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
