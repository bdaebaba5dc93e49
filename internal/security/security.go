package security

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/ZanzyTHEbar/emotion-detector/internal/errors"
	"github.com/ZanzyTHEbar/emotion-detector/internal/monitoring"
)

// TextParam is the query parameter carrying text to analyze
const TextParam = "textToAnalyze"

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxInputLength    int           `json:"max_input_length"`
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	AllowedOrigins    []string      `json:"allowed_origins"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	EnableHSTS        bool          `json:"enable_hsts"`
	LimiterIdleTTL    time.Duration `json:"limiter_idle_ttl"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxInputLength:    10000,
		MaxRequestsPerMin: 100,
		AllowedOrigins:    []string{"*"},
		RequestTimeout:    30 * time.Second,
		LimiterIdleTTL:    10 * time.Minute,
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SecurityMiddleware provides the inbound hardening middleware
type SecurityMiddleware struct {
	config  SecurityConfig
	metrics *monitoring.Metrics

	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	defaults := DefaultSecurityConfig()
	if config.MaxInputLength <= 0 {
		config.MaxInputLength = defaults.MaxInputLength
	}
	if config.MaxRequestsPerMin <= 0 {
		config.MaxRequestsPerMin = defaults.MaxRequestsPerMin
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.LimiterIdleTTL <= 0 {
		config.LimiterIdleTTL = defaults.LimiterIdleTTL
	}

	return &SecurityMiddleware{
		config:     config,
		ipLimiters: make(map[string]*ipLimiter),
	}
}

// SetMetrics enables counting of rate-limited requests
func (sm *SecurityMiddleware) SetMetrics(metrics *monitoring.Metrics) {
	sm.metrics = metrics
}

// Config returns the effective configuration
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// ValidateLength rejects input longer than max bytes
func ValidateLength(input string, max int) *apperrors.AppError {
	if max > 0 && len(input) > max {
		return apperrors.NewValidationError(
			fmt.Sprintf("Input exceeds maximum length of %d bytes", max),
			fmt.Sprintf("got %d bytes", len(input)),
		)
	}
	return nil
}

// InputLengthGuard caps the request body. The textToAnalyze query parameter is
// left alone: /emotionDetector forwards any non-blank text.
func (sm *SecurityMiddleware) InputLengthGuard(c *gin.Context) {
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		// A JSON escape expands one byte to at most six
		limit := int64(sm.config.MaxInputLength)*6 + 1024
		if c.Request.ContentLength > limit {
			apperrors.Respond(c, apperrors.NewValidationError(
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", limit),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	c.Next()
}

// limiterFor returns the limiter for ip, creating it on first use
func (sm *SecurityMiddleware) limiterFor(ip string) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, exists := sm.ipLimiters[ip]
	if !exists {
		perMin := sm.config.MaxRequestsPerMin
		// Allow burst of up to half the requests per minute for initial allowance
		burst := perMin / 2
		if burst < 5 {
			burst = 5
		}
		entry = &ipLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), burst),
		}
		sm.ipLimiters[ip] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter
}

// RateLimitByIP implements per-IP rate limiting
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	if !sm.limiterFor(c.ClientIP()).Allow() {
		if sm.metrics != nil {
			sm.metrics.RateLimited.Inc()
		}
		c.Header("Retry-After", "60")
		apperrors.Respond(c, apperrors.NewRateLimitError("60"))
		return
	}

	c.Next()
}

// LimiterCount returns the number of tracked client IPs
func (sm *SecurityMiddleware) LimiterCount() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.ipLimiters)
}

// Cleanup periodically drops limiters for IPs that have gone quiet, until ctx is done
func (sm *SecurityMiddleware) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(sm.config.LimiterIdleTTL)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sm.cleanupOldLimiters(now)
			}
		}
	}()
}

func (sm *SecurityMiddleware) cleanupOldLimiters(now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for ip, entry := range sm.ipLimiters {
		if now.Sub(entry.lastSeen) > sm.config.LimiterIdleTTL {
			delete(sm.ipLimiters, ip)
		}
	}
}

// SecurityHeaders adds security headers to responses
func (sm *SecurityMiddleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

	// HSTS only makes sense behind HTTPS
	if sm.config.EnableHSTS {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORS builds the gin-contrib/cors middleware for the configured origins
func (sm *SecurityMiddleware) CORS() gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", monitoring.RequestIDHeader},
		ExposeHeaders:    []string{monitoring.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	origins := make([]string, 0, len(sm.config.AllowedOrigins))
	for _, origin := range sm.config.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			origins = nil
			break
		}
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	return cors.New(config)
}
