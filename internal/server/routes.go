package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/emotion-detector/internal/frontend"
	"github.com/ZanzyTHEbar/emotion-detector/internal/monitoring"
)

// Route is one entry of the routing table
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Routes builds the routing table for the application
func Routes(h *Handlers, index *frontend.IndexHandler, metrics *monitoring.Metrics, enableProfiling bool) []Route {
	routes := []Route{
		{http.MethodGet, "/emotionDetector", h.EmotionDetector},
		{http.MethodPost, "/api/v1/emotions", h.DetectJSON},
		{http.MethodGet, "/health", h.Health},
		{http.MethodGet, "/health/services", h.HealthServices},
		{http.MethodGet, "/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler)},
	}

	if index != nil {
		routes = append(routes, Route{http.MethodGet, "/", index.Serve})
	}
	if metrics != nil {
		routes = append(routes, Route{http.MethodGet, "/metrics", gin.WrapH(metrics.Handler())})
	}
	if enableProfiling {
		routes = append(routes, profilingRoutes()...)
	}

	return routes
}

func profilingRoutes() []Route {
	return []Route{
		{http.MethodGet, "/debug/pprof/", gin.WrapF(pprof.Index)},
		{http.MethodGet, "/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline)},
		{http.MethodGet, "/debug/pprof/profile", gin.WrapF(pprof.Profile)},
		{http.MethodGet, "/debug/pprof/symbol", gin.WrapF(pprof.Symbol)},
		{http.MethodGet, "/debug/pprof/trace", gin.WrapF(pprof.Trace)},
		{http.MethodGet, "/debug/pprof/:profile", gin.WrapF(pprof.Index)},
	}
}
