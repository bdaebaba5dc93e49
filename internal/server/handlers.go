package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/ZanzyTHEbar/emotion-detector/internal/adapters"
	"github.com/ZanzyTHEbar/emotion-detector/internal/emotion"
	apperrors "github.com/ZanzyTHEbar/emotion-detector/internal/errors"
	"github.com/ZanzyTHEbar/emotion-detector/internal/security"
)

// Detector classifies text into emotion scores. The absent Analysis with a
// nil error means the service rejected the input.
type Detector interface {
	Detect(ctx context.Context, text string) (emotion.Analysis, error)
}

// HealthReporter exposes the state of the emotion API dependency
type HealthReporter interface {
	BreakerState() gobreaker.State
	BreakerStats() map[string]interface{}
	GetPoolStats() map[string]interface{}
}

// DetectRequest is the body of POST /api/v1/emotions
type DetectRequest struct {
	Text string `json:"text" example:"I love this new technology."`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string            `json:"status" example:"ok"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version" example:"1.0.0"`
	Services  map[string]string `json:"services"`
}

// Handlers serves the emotion detection endpoints
type Handlers struct {
	detector       Detector
	health         HealthReporter
	maxInputLength int
	version        string
}

// NewHandlers creates the handler set. health may be nil.
func NewHandlers(detector Detector, health HealthReporter, maxInputLength int, version string) *Handlers {
	return &Handlers{
		detector:       detector,
		health:         health,
		maxInputLength: maxInputLength,
		version:        version,
	}
}

// EmotionDetector godoc
// @Summary      Describe the emotions in a text
// @Description  Returns a sentence listing the five emotion scores and the dominant emotion, or a fixed message for empty or rejected input.
// @Tags         emotions
// @Produce      plain
// @Param        textToAnalyze  query     string  false  "Text to analyze"
// @Success      200            {string}  string  "For the given statement, the system response is ..."
// @Failure      502            {object}  errors.AppError
// @Failure      503            {object}  errors.AppError
// @Failure      504            {object}  errors.AppError
// @Router       /emotionDetector [get]
func (h *Handlers) EmotionDetector(c *gin.Context) {
	text, ok := c.GetQuery(security.TextParam)
	if !ok || emotion.IsBlank(text) {
		c.String(http.StatusOK, emotion.MessageEmptyInput)
		return
	}

	analysis, err := h.detector.Detect(c.Request.Context(), text)
	if err != nil {
		apperrors.Respond(c, apperrors.ToAppError(err))
		return
	}

	if analysis.IsAbsent() {
		c.String(http.StatusOK, emotion.MessageRejected)
		return
	}

	c.String(http.StatusOK, emotion.Sentence(analysis))
}

// DetectJSON godoc
// @Summary      Score the emotions in a text
// @Description  Returns the five emotion scores and the dominant emotion. Every field is null when the emotion service rejects the text.
// @Tags         emotions
// @Accept       json
// @Produce      json
// @Param        request  body      DetectRequest  true  "Text to analyze"
// @Success      200      {object}  emotion.Analysis
// @Failure      400      {object}  errors.AppError
// @Failure      502      {object}  errors.AppError
// @Failure      503      {object}  errors.AppError
// @Failure      504      {object}  errors.AppError
// @Router       /api/v1/emotions [post]
func (h *Handlers) DetectJSON(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	if emotion.IsBlank(req.Text) {
		apperrors.Respond(c, apperrors.NewValidationError(emotion.MessageEmptyInput))
		return
	}
	if appErr := security.ValidateLength(req.Text, h.maxInputLength); appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	analysis, err := h.detector.Detect(c.Request.Context(), req.Text)
	if err != nil {
		apperrors.Respond(c, apperrors.ToAppError(err))
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Health godoc
// @Summary      Service health
// @Description  Reports "degraded" with 503 while the emotion API circuit breaker is open.
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *Handlers) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Services:  map[string]string{},
	}

	if h.health != nil {
		state := h.health.BreakerState()
		resp.Services[adapters.ServiceName] = state.String()
		if state == gobreaker.StateOpen {
			resp.Status = "degraded"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// HealthServices godoc
// @Summary      Dependency details
// @Description  Circuit breaker and connection pool statistics for the emotion API.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/services [get]
func (h *Handlers) HealthServices(c *gin.Context) {
	breakers := gin.H{}
	pools := gin.H{}
	if h.health != nil {
		breakers[adapters.ServiceName] = h.health.BreakerStats()
		pools[adapters.ServiceName] = h.health.GetPoolStats()
	}

	c.JSON(http.StatusOK, gin.H{
		"circuit_breakers": breakers,
		"pools":            pools,
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}
