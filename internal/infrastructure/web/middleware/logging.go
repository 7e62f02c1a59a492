package middleware

import (
	"coin-dashboard-service/internal/infrastructure/logging"
	"net/http"
	"strings"
)

// headers que vale la pena ver en DEBUG; nada con credenciales
var loggedHeaders = [...]string{
	"Accept",
	"Accept-Encoding",
	"Cache-Control",
	"Content-Type",
	"Upgrade",
	"X-Forwarded-For",
	"X-Real-IP",
}

// patrones de path traversal e inyección; los términos de búsqueda van en el body
var suspiciousPatterns = [...]string{
	"../",
	"%2e%2e",
	"<script",
	"union select",
	"drop table",
	"exec(",
	"eval(",
}

// ningún body de la API pasa de unos pocos cientos de bytes
const maxExpectedBody = 64 << 10

// LoggingMiddleware corre detrás de RequestTracingMiddleware, que ya emite
// la línea de resumen; acá solo van el detalle en DEBUG y las alertas
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := logging.GetRemoteIP(ctx)
		if ip == "" {
			ip = r.RemoteAddr
		}

		logging.HTTP().RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), ip)
		logging.Debug(ctx, "HTTP request detail", logging.Fields{
			"headers": extractImportantHeaders(r),
			"query":   r.URL.RawQuery,
		})

		if isSuspiciousRequest(r) {
			logging.Security().SuspiciousActivity(ctx, ip, "unusual_request_pattern")
		}

		next.ServeHTTP(w, r)
	})
}

func extractImportantHeaders(r *http.Request) map[string]string {
	out := map[string]string{}
	for _, name := range loggedHeaders {
		if v := r.Header.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}

func isSuspiciousRequest(r *http.Request) bool {
	if r.ContentLength > maxExpectedBody {
		return true
	}
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(target, p) {
			return true
		}
	}
	return false
}
