package handlers

import (
	"coin-dashboard-service/internal/application/dto"
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"context"
	"net/http"
	"time"
)

// readyTimeout acota el ping al store en /ready
const readyTimeout = 2 * time.Second

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	dashboard interfaces.DashboardService
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(dashboard interfaces.DashboardService) *HealthHandler {
	return &HealthHandler{dashboard: dashboard}
}

// Health responde rápido sin revisar dependencias externas
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service": "running",
	}

	writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// Ready verifica el store durable y reporta el estado de las familias principales.
// Un upstream caído no saca al servicio de rotación: el caché sigue sirviendo datos.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	services := map[string]string{
		"market":   string(h.dashboard.Markets().Status),
		"ticker":   string(h.dashboard.Ticker().Status),
		"trending": string(h.dashboard.Trending().Status),
	}

	if err := h.dashboard.Ping(ctx); err != nil {
		services["store"] = "error: " + err.Error()
		writeJSONResponse(w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", services))
		return
	}

	services["store"] = "ready"
	status := "ready"
	if h.dashboard.Markets().Status == entities.StatusFailedEmpty {
		status = "degraded"
	}

	writeJSONResponse(w, http.StatusOK, dto.NewHealthResponse(status, services))
}
