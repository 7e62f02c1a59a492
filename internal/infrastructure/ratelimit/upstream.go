package ratelimit

import "golang.org/x/time/rate"

// NewPerMinuteLimiter pacea las llamadas salientes al proveedor de mercado:
// burst inmediato y después requestsPerMinute sostenidos
func NewPerMinuteLimiter(burst, requestsPerMinute int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), burst)
}
