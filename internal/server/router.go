package server

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/emotion-detector/internal/errors"
	"github.com/ZanzyTHEbar/emotion-detector/internal/frontend"
	"github.com/ZanzyTHEbar/emotion-detector/internal/middleware"
	"github.com/ZanzyTHEbar/emotion-detector/internal/monitoring"
	"github.com/ZanzyTHEbar/emotion-detector/internal/security"
)

// Dependencies are the collaborators the router is built from
type Dependencies struct {
	Detector        Detector
	Health          HealthReporter
	Metrics         *monitoring.Metrics
	Logger          *monitoring.Logger
	Security        *security.SecurityMiddleware
	Index           *frontend.IndexHandler
	Compression     *middleware.CompressionMiddleware
	EnableProfiling bool
	Version         string
}

// NewRouter builds the gin engine: middleware chain first, then the routing table
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Security == nil {
		deps.Security = security.NewSecurityMiddleware(security.DefaultSecurityConfig())
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = monitoring.NewLogger(monitoring.LoggerOptions{})
	}
	if deps.Compression == nil {
		deps.Compression = middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())
	}
	deps.Security.SetMetrics(deps.Metrics)

	r := gin.New()

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(deps.Metrics, deps.Logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(deps.Logger))
	r.Use(deps.Compression.Handler())

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	sm := deps.Security
	r.Use(sm.CORS())
	r.Use(sm.SecurityHeaders)
	r.Use(security.CSPMiddleware())
	r.Use(sm.RequestTimeout)
	r.Use(sm.RateLimitByIP)
	r.Use(sm.InputLengthGuard)

	handlers := NewHandlers(deps.Detector, deps.Health, sm.Config().MaxInputLength, deps.Version)
	for _, route := range Routes(handlers, deps.Index, deps.Metrics, deps.EnableProfiling) {
		r.Handle(route.Method, route.Path, route.Handler)
	}

	return r
}
