package handlers

import (
	"coin-dashboard-service/internal/application/dto"
	"coin-dashboard-service/internal/application/services"
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// maxBodyBytes acota los bodies JSON; ninguna petición válida se acerca
const maxBodyBytes = 4 << 10

// DashboardHandler exposes the dashboard intents and queries over HTTP
type DashboardHandler struct {
	dashboard interfaces.DashboardService
}

// NewDashboardHandler crea una nueva instancia del handler
func NewDashboardHandler(dashboard interfaces.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// RegisterRoutes mounts every /api/v1 route on r
func (h *DashboardHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/state", h.State).Methods(http.MethodGet)
	api.HandleFunc("/markets", h.Markets).Methods(http.MethodGet)
	api.HandleFunc("/markets/page/{page}", h.SetPage).Methods(http.MethodPost)
	api.HandleFunc("/search", h.Search).Methods(http.MethodPost)
	api.HandleFunc("/search", h.ClearSearch).Methods(http.MethodDelete)
	api.HandleFunc("/reset", h.Reset).Methods(http.MethodPost)
	api.HandleFunc("/currency", h.SetCurrency).Methods(http.MethodPut)
	api.HandleFunc("/ticker", h.Ticker).Methods(http.MethodGet)
	api.HandleFunc("/featured", h.Featured).Methods(http.MethodGet)
	api.HandleFunc("/trending", h.Trending).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}", h.CoinDetail).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}/chart", h.Chart).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}/simulate", h.Simulate).Methods(http.MethodGet)
	api.HandleFunc("/favorites", h.Favorites).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", h.Watchlist).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/{id}/toggle", h.ToggleFavorite).Methods(http.MethodPost)
	api.HandleFunc("/preferences/theme", h.Theme).Methods(http.MethodGet)
	api.HandleFunc("/preferences/theme", h.SetTheme).Methods(http.MethodPut)
	api.HandleFunc("/retry/{family}", h.Retry).Methods(http.MethodPost)
}

// State devuelve la foto completa del dashboard
func (h *DashboardHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, dto.NewStateResponse(h.dashboard))
}

func (h *DashboardHandler) Markets(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboard.Markets())
}

// SetPage cambia de página (y limpia la búsqueda activa)
func (h *DashboardHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	page, err := dto.ParsePage(mux.Vars(r)["page"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.dashboard.SetPage(r.Context(), page); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.dashboard.Markets())
}

func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.dashboard.Search(r.Context(), req.Term); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.dashboard.Markets())
}

func (h *DashboardHandler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.ClearSearch(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.dashboard.Markets())
}

// Reset vuelve a la página 1 sin búsqueda
func (h *DashboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.dashboard.Markets())
}

func (h *DashboardHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req dto.SetCurrencyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.dashboard.SetCurrency(r.Context(), req.Currency); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, dto.NewStateResponse(h.dashboard))
}

func (h *DashboardHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboard.Ticker())
}

func (h *DashboardHandler) Featured(w http.ResponseWriter, r *http.Request) {
	featured := h.dashboard.Featured()
	if featured == nil {
		featured = []entities.MarketCoin{}
	}
	writeJSONResponse(w, http.StatusOK, featured)
}

func (h *DashboardHandler) Trending(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboard.Trending())
}

// CoinDetail carga el detalle de una moneda en la moneda fiat activa
func (h *DashboardHandler) CoinDetail(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboard.LoadCoinDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// Chart carga la serie histórica; ?days= acepta 1, 7, 30, 365 (7 por defecto)
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	days, err := dto.ParseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.dashboard.LoadChart(r.Context(), mux.Vars(r)["id"], days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// Simulate proyecta una inversión usando el precio del detalle
func (h *DashboardHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req, err := dto.ParseSimulationRequest(query.Get("amount"), query.Get("target"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	coinID := mux.Vars(r)["id"]
	detail, err := h.dashboard.LoadCoinDetail(r.Context(), coinID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if detail.Data == nil {
		writeDetailUnavailable(w, detail)
		return
	}

	current := decimal.NewFromFloat(detail.Data.CurrentPrice)
	smart := services.SmartTarget(current)
	target := smart
	if req.Target != nil {
		target = *req.Target
	}

	sim, err := services.Simulate(req.Amount, current, target)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, dto.SimulationResponse{
		CoinID:        detail.Data.ID,
		Currency:      h.dashboard.Currency(),
		Amount:        sim.Amount,
		CurrentPrice:  sim.CurrentPrice,
		TargetPrice:   sim.TargetPrice,
		SmartTarget:   smart,
		CoinsOwned:    sim.CoinsOwned,
		FutureValue:   sim.FutureValue,
		Profit:        sim.Profit,
		GrowthPercent: sim.GrowthPercent,
	})
}

func (h *DashboardHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboard.LoadFavorites(r.Context()))
}

func (h *DashboardHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, watchlistResponse(h.dashboard.Watchlist()))
}

func (h *DashboardHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ids, err := h.dashboard.ToggleFavorite(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, watchlistResponse(ids))
}

func (h *DashboardHandler) Theme(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, dto.ThemeResponse{Theme: h.dashboard.Theme()})
}

func (h *DashboardHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req dto.SetThemeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	theme, err := entities.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.dashboard.SetTheme(r.Context(), theme); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, dto.ThemeResponse{Theme: h.dashboard.Theme()})
}

// Retry re-ejecuta la última consulta de una familia
func (h *DashboardHandler) Retry(w http.ResponseWriter, r *http.Request) {
	family := entities.Family(mux.Vars(r)["family"])
	if err := h.dashboard.Retry(r.Context(), family); err != nil {
		if errors.Is(err, services.ErrNothingToRetry) {
			writeJSONResponse(w, http.StatusConflict,
				dto.NewErrorResponseWithCode("NOTHING_TO_RETRY", err.Error(), strconv.Itoa(http.StatusConflict)))
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, dto.NewStateResponse(h.dashboard))
}

func watchlistResponse(ids []string) dto.WatchlistResponse {
	if ids == nil {
		ids = []string{}
	}
	return dto.WatchlistResponse{IDs: ids}
}

// writeDetailUnavailable responde cuando el detalle falló sin datos en caché
func writeDetailUnavailable(w http.ResponseWriter, detail entities.QueryResult[*entities.MarketCoin]) {
	status, code := http.StatusBadGateway, "DETAIL_UNAVAILABLE"
	switch detail.ErrorMessage() {
	case entities.UserMessage(entities.ErrCoinNotFound):
		status, code = http.StatusNotFound, "COIN_NOT_FOUND"
	case entities.UserMessage(entities.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED"
	}
	writeJSONResponse(w, status, dto.NewErrorResponseWithCode(code, detail.ErrorMessage(), strconv.Itoa(status)))
}

// decodeBody lee un body JSON acotado; escribe el 400 y devuelve false si no se pudo
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", entities.ErrInvalidDescriptor, err))
		return false
	}
	return true
}

// writeError traduce el error del servicio a su status HTTP
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, response := dto.ErrorFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), "Request failed", logging.Fields{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
	} else {
		logging.Debug(r.Context(), "Request rejected", logging.Fields{
			"path":   r.URL.Path,
			"status": status,
			"error":  err.Error(),
		})
	}
	writeJSONResponse(w, status, response)
}

// writeJSONResponse escribe una respuesta JSON
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"ENCODING_ERROR","message":"Failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(payload)
}
