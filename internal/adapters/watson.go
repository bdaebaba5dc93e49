package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ZanzyTHEbar/emotion-detector/internal/emotion"
	apperrors "github.com/ZanzyTHEbar/emotion-detector/internal/errors"
	"github.com/ZanzyTHEbar/emotion-detector/internal/monitoring"
	"github.com/ZanzyTHEbar/emotion-detector/internal/resilience"
)

const (
	// DefaultWatsonURL is the EmotionPredict endpoint of the Watson NLP runtime
	DefaultWatsonURL = "https://sn-watson-emotion.labs.skills.network/v1/watson.runtime.nlp.v1/NlpService/EmotionPredict"

	// ModelIDHeader selects the model on the Watson runtime
	ModelIDHeader = "grpc-metadata-mm-model-id"
	// ModelID is the aggregated English emotion workflow
	ModelID = "emotion_aggregated-workflow_lang_en_stock"

	// ServiceName identifies the emotion API in breaker, health and metrics output
	ServiceName = "emotion-api"

	apiName      = "Watson"
	metricsLabel = "watson"

	maxResponseBytes = 1 << 20
)

// WatsonConfig configures the Watson emotion client
type WatsonConfig struct {
	URL     string
	Timeout time.Duration
	Breaker resilience.CircuitBreakerConfig
}

// watsonRequest is the EmotionPredict request body
type watsonRequest struct {
	RawDocument watsonDocument `json:"raw_document"`
}

type watsonDocument struct {
	Text string `json:"text"`
}

// watsonResponse is the subset of the EmotionPredict response we read.
// Pointers distinguish a missing score from a zero score.
type watsonResponse struct {
	EmotionPredictions []struct {
		Emotion struct {
			Anger   *float64 `json:"anger"`
			Disgust *float64 `json:"disgust"`
			Fear    *float64 `json:"fear"`
			Joy     *float64 `json:"joy"`
			Sadness *float64 `json:"sadness"`
		} `json:"emotion"`
	} `json:"emotionPredictions"`
}

// WatsonClient classifies text through the Watson NLP EmotionPredict API
type WatsonClient struct {
	url     string
	client  *http.Client
	breaker *resilience.CircuitBreaker
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

// NewWatsonClient creates a client with a pooled transport and a circuit breaker.
// metrics and logger may be nil.
func NewWatsonClient(config WatsonConfig, metrics *monitoring.Metrics, logger *monitoring.Logger) *WatsonClient {
	if config.URL == "" {
		config.URL = DefaultWatsonURL
	}

	pool := resilience.DefaultPoolConfig()
	if config.Timeout > 0 {
		pool.Timeout = config.Timeout
	}

	if logger == nil {
		logger = &monitoring.Logger{Logger: slog.Default()}
	}

	breaker := resilience.NewCircuitBreaker(ServiceName, config.Breaker, func(_ string, _, to gobreaker.State) {
		if metrics != nil {
			metrics.SetBreakerState(metricsLabel, to)
		}
	})
	if metrics != nil {
		metrics.SetBreakerState(metricsLabel, breaker.State())
	}

	return &WatsonClient{
		url:     config.URL,
		client:  resilience.NewHTTPClient(pool),
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// Detect sends text to the emotion API. A 400 from the API yields the absent
// Analysis and a nil error; every other failure is returned as an *AppError.
func (w *WatsonClient) Detect(ctx context.Context, text string) (emotion.Analysis, error) {
	start := time.Now()

	var (
		result     emotion.Analysis
		appErr     *apperrors.AppError
		statusCode int
	)

	err := w.breaker.Call(func() error {
		result, statusCode, appErr = w.predict(ctx, text)
		if appErr != nil && w.countsAsFailure(ctx, appErr) {
			return appErr
		}
		return nil
	})
	if err != nil && resilience.IsRejection(err) {
		appErr = apperrors.NewUnavailableError(ServiceName, err)
	}

	outcome := outcomeOf(result, appErr)
	duration := time.Since(start)

	if w.metrics != nil {
		w.metrics.ObserveExternalCall(metricsLabel, outcome, duration.Seconds())
		if outcome == monitoring.OutcomeSuccess {
			w.metrics.ObserveDominant(string(result.DominantEmotion))
		}
	}
	w.logger.ExternalAPILogger(ctx, apiName, http.MethodPost, w.url, statusCode, duration, outcome)

	if appErr != nil {
		return emotion.Absent(), appErr
	}
	return result, nil
}

// predict performs exactly one HTTP exchange
func (w *WatsonClient) predict(ctx context.Context, text string) (emotion.Analysis, int, *apperrors.AppError) {
	payload, err := json.Marshal(watsonRequest{RawDocument: watsonDocument{Text: text}})
	if err != nil {
		return emotion.Absent(), 0, apperrors.NewInternalError("failed to encode emotion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return emotion.Absent(), 0, apperrors.NewConfigurationError("invalid emotion API URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ModelIDHeader, ModelID)

	resp, err := w.client.Do(req)
	if err != nil {
		return emotion.Absent(), 0, transportError(ctx, err)
	}
	defer apperrors.SafeClose(resp.Body, "emotion API response body")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return emotion.Absent(), resp.StatusCode, transportError(ctx, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		analysis, err := decodeAnalysis(body)
		if err != nil {
			return emotion.Absent(), resp.StatusCode, apperrors.NewMalformedResponseError(apiName, err)
		}
		return analysis, resp.StatusCode, nil
	case http.StatusBadRequest:
		return emotion.Absent(), resp.StatusCode, nil
	default:
		return emotion.Absent(), resp.StatusCode, apperrors.NewUnexpectedStatusError(apiName, resp.StatusCode, truncate(string(body), 512))
	}
}

func decodeAnalysis(body []byte) (emotion.Analysis, error) {
	var parsed watsonResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return emotion.Analysis{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.EmotionPredictions) == 0 {
		return emotion.Analysis{}, errors.New("response has no emotionPredictions")
	}

	e := parsed.EmotionPredictions[0].Emotion
	fields := []struct {
		name  emotion.Emotion
		value *float64
	}{
		{emotion.Anger, e.Anger},
		{emotion.Disgust, e.Disgust},
		{emotion.Fear, e.Fear},
		{emotion.Joy, e.Joy},
		{emotion.Sadness, e.Sadness},
	}
	for _, f := range fields {
		if f.value == nil {
			return emotion.Analysis{}, fmt.Errorf("response is missing score %q", f.name)
		}
	}

	scores := emotion.Scores{
		Anger:   *e.Anger,
		Disgust: *e.Disgust,
		Fear:    *e.Fear,
		Joy:     *e.Joy,
		Sadness: *e.Sadness,
	}
	if err := scores.Validate(); err != nil {
		return emotion.Analysis{}, err
	}

	return emotion.NewAnalysis(scores), nil
}

// countsAsFailure decides which errors move the breaker towards open.
// Caller cancellation and 4xx statuses say nothing about the API's health.
func (w *WatsonClient) countsAsFailure(ctx context.Context, appErr *apperrors.AppError) bool {
	if errors.Is(ctx.Err(), context.Canceled) {
		return false
	}
	switch appErr.Category {
	case apperrors.CategoryNetwork, apperrors.CategoryTimeout, apperrors.CategoryMalformedResponse:
		return true
	case apperrors.CategoryUnexpectedStatus:
		return appErr.StatusCode >= 500
	default:
		return false
	}
}

func transportError(ctx context.Context, err error) *apperrors.AppError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("emotion API request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError("emotion API request timed out", err)
	}
	return apperrors.NewNetworkError("emotion API request failed", err)
}

func outcomeOf(result emotion.Analysis, appErr *apperrors.AppError) string {
	if appErr == nil {
		if result.IsAbsent() {
			return monitoring.OutcomeRejected
		}
		return monitoring.OutcomeSuccess
	}

	switch appErr.Category {
	case apperrors.CategoryTimeout:
		return monitoring.OutcomeTimeout
	case apperrors.CategoryUnexpectedStatus:
		return monitoring.OutcomeUnexpectedStatus
	case apperrors.CategoryMalformedResponse:
		return monitoring.OutcomeMalformedResponse
	case apperrors.CategoryUnavailable:
		return monitoring.OutcomeUnavailable
	default:
		return monitoring.OutcomeNetworkError
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// BreakerState returns the state of the emotion API circuit breaker
func (w *WatsonClient) BreakerState() gobreaker.State {
	return w.breaker.State()
}

// BreakerStats returns circuit breaker statistics
func (w *WatsonClient) BreakerStats() map[string]interface{} {
	return w.breaker.GetStats()
}

// GetPoolStats returns connection pool statistics
func (w *WatsonClient) GetPoolStats() map[string]interface{} {
	return resilience.PoolStats(w.client)
}

// Close releases idle connections
func (w *WatsonClient) Close() error {
	resilience.CloseIdle(w.client)
	return nil
}
