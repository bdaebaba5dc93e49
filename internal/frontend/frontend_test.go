package frontend

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/emotion-detector/internal/security"
)

func TestProcessHTMLForNonce(t *testing.T) {
	in := `<style>p{}</style><script src="/a.js"></script><script>go()</script>`
	out := processHTMLForNonce(in)

	assert.Equal(t,
		`<style nonce="{{.Nonce}}">p{}</style><script nonce="{{.Nonce}}" src="/a.js"></script><script nonce="{{.Nonce}}">go()</script>`,
		out)
}

func TestLoadIndexTemplate_Missing(t *testing.T) {
	_, err := LoadIndexTemplate(fstest.MapFS{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open index.html")
}

func TestIndexHandler_Serve(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h, err := NewIndexHandler(500)
	require.NoError(t, err)

	r := gin.New()
	r.Use(security.CSPMiddleware())
	r.GET("/", h.Serve)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	assert.Contains(t, body, "<title>Emotion Detector</title>")
	assert.Contains(t, body, `maxlength="500"`)
	assert.Contains(t, body, "/emotionDetector?textToAnalyze=")

	csp := w.Header().Get("Content-Security-Policy")
	start := strings.Index(csp, "'nonce-")
	require.GreaterOrEqual(t, start, 0)
	nonce := strings.SplitN(csp[start+len("'nonce-"):], "'", 2)[0]

	assert.Contains(t, body, `<script nonce="`+nonce+`">`)
	assert.Contains(t, body, `<style nonce="`+nonce+`">`)
}

func TestIndexHandler_ServeWithoutCSPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h, err := NewIndexHandler(100)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", h.Serve)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<script nonce="`)
}
