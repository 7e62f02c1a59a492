package middleware

import (
	"bufio"
	"coin-dashboard-service/internal/infrastructure/logging"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// statusRecorder guarda el status y los bytes escritos para la línea de resumen
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack: sin esto el upgrade de /ws falla detrás del middleware
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported by underlying writer")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// RequestTracingMiddleware asigna X-Request-ID, siembra el contexto de logging
// y emite una línea por request al terminar
func RequestTracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		ip := clientIP(r)
		ctx := logging.WithRemoteIP(
			logging.WithUserAgent(
				logging.WithStartTime(
					logging.WithRequestID(r.Context(), id), start),
				r.UserAgent()),
			ip)

		logging.Debug(ctx, "HTTP request started", logging.Fields{
			logging.FieldHTTPMethod: r.Method,
			logging.FieldHTTPPath:   r.URL.Path,
			"content_length":        r.ContentLength,
		})

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))
		if rec.statusCode == 0 {
			rec.statusCode = http.StatusOK
		}

		logging.HTTPRequest(ctx, r.Method, r.URL.Path, rec.statusCode, logging.Fields{
			"response_size":    rec.written,
			"response_time_ms": float64(time.Since(start).Microseconds()) / 1e3,
		})
	})
}

// clientIP: primer hop de X-Forwarded-For, X-Real-IP o RemoteAddr
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
