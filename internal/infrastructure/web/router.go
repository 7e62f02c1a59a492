package web

import (
	"coin-dashboard-service/internal/application/dto"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/config"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"coin-dashboard-service/internal/infrastructure/ratelimit"
	"coin-dashboard-service/internal/infrastructure/web/handlers"
	"coin-dashboard-service/internal/infrastructure/web/middleware"
	"coin-dashboard-service/internal/infrastructure/web/stream"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route behind the middleware chain:
// tracing -> logging -> metrics -> rate limit -> handler
func NewRouter(dashboard interfaces.DashboardService, hub *stream.Hub, rateLimit config.RateLimitConfig) http.Handler {
	r := mux.NewRouter()

	health := handlers.NewHealthHandler(dashboard)
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws", hub.Handler(func() any {
		return dto.NewStateResponse(dashboard)
	})).Methods(http.MethodGet)

	handlers.NewDashboardHandler(dashboard).RegisterRoutes(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"NOT_FOUND","message":"route not found","code":"404"}`))
	})

	limiter := ratelimit.NewRateLimitMiddleware(rateLimit)

	var handler http.Handler = r
	handler = limiter.Handler(handler)
	handler = metrics.HTTPMetricsMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestTracingMiddleware(handler)
	return handler
}
