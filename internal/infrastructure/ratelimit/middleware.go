package ratelimit

import (
	"coin-dashboard-service/internal/application/dto"
	"coin-dashboard-service/internal/infrastructure/config"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// rutas de infraestructura que nunca se limitan; /ws es una sola conexión larga
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
	"/ws":      {},
}

// RateLimitMiddleware limita la API entrante por IP de cliente
type RateLimitMiddleware struct {
	enabled bool
	clients *RateLimiterCollection
}

func NewRateLimitMiddleware(cfg config.RateLimitConfig) *RateLimitMiddleware {
	m := &RateLimitMiddleware{enabled: cfg.Enabled}
	if cfg.Enabled {
		m.clients = NewRateLimiterCollection(cfg.Capacity, float64(cfg.RefillRate))
	}
	return m
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	if !m.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exemptPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		client := getClientID(r)
		ok := m.clients.Allow(client)
		metrics.RecordRateLimitResult(ok)
		if !ok {
			logging.Security().RateLimitExceeded(r.Context(), client, r.URL.Path)
			reject(w)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(m.clients.Tokens(client)))
		next.ServeHTTP(w, r)
	})
}

// getClientID: primer hop de X-Forwarded-For, después X-Real-IP, después RemoteAddr sin puerto
func getClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func reject(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   "RATE_LIMIT_EXCEEDED",
		Message: "Too many requests, slow down",
		Code:    strconv.Itoa(http.StatusTooManyRequests),
	})
}

// Stats expone el estado del limitador (clientes activos, capacidad)
func (m *RateLimitMiddleware) Stats() map[string]interface{} {
	if m.clients == nil {
		return map[string]interface{}{"enabled": false}
	}
	s := m.clients.Stats()
	s["enabled"] = true
	return s
}
