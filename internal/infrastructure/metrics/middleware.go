package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPMetricsMiddleware observa cada request con el path normalizado como label
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		route := normalizePath(r.URL.Path)

		sw := &sizeWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		RecordHTTPRequest(r.Method, route, sw.status, time.Since(began).Seconds(), sw.bytes)
	})
}

// sizeWriter: status arranca en 200 porque un handler puede no llamar WriteHeader
type sizeWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (sw *sizeWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sizeWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += int64(n)
	return n, err
}

func (sw *sizeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := sw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported by underlying writer")
	}
	sw.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

var staticAPIPaths = map[string]bool{
	"/api/v1/state":             true,
	"/api/v1/markets":           true,
	"/api/v1/search":            true,
	"/api/v1/reset":             true,
	"/api/v1/currency":          true,
	"/api/v1/ticker":            true,
	"/api/v1/featured":          true,
	"/api/v1/trending":          true,
	"/api/v1/favorites":         true,
	"/api/v1/watchlist":         true,
	"/api/v1/preferences/theme": true,
}

// normalizePath colapsa ids y páginas para acotar la cardinalidad de labels
func normalizePath(path string) string {
	if path == "/" {
		return "/"
	}
	path = strings.TrimSuffix(path, "/")

	switch {
	case path == "/health", path == "/ready", path == "/metrics", path == "/ws":
		return path
	case strings.HasPrefix(path, "/api/v1/coins/"):
		switch {
		case strings.HasSuffix(path, "/chart"):
			return "/api/v1/coins/{id}/chart"
		case strings.HasSuffix(path, "/simulate"):
			return "/api/v1/coins/{id}/simulate"
		default:
			return "/api/v1/coins/{id}"
		}
	case strings.HasPrefix(path, "/api/v1/markets/page/"):
		return "/api/v1/markets/page/{page}"
	case strings.HasPrefix(path, "/api/v1/watchlist/"):
		return "/api/v1/watchlist/{id}/toggle"
	case strings.HasPrefix(path, "/api/v1/retry/"):
		return "/api/v1/retry/{family}"
	case staticAPIPaths[path]:
		return path
	case strings.HasPrefix(path, "/api/"):
		return "/api/*"
	default:
		return "/unknown"
	}
}
