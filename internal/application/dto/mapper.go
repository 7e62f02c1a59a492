package dto

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"errors"
	"net/http"
	"strconv"
)

// NewStateResponse toma una foto del estado del dashboard
func NewStateResponse(svc interfaces.DashboardService) *StateResponse {
	watchlist := svc.Watchlist()
	if watchlist == nil {
		watchlist = []string{}
	}
	return &StateResponse{
		Currency:   svc.Currency(),
		Currencies: svc.Currencies(),
		Page:       svc.Page(),
		SearchTerm: svc.SearchTerm(),
		Theme:      svc.Theme(),
		Watchlist:  watchlist,
		Markets:    svc.Markets(),
		Ticker:     svc.Ticker(),
		Trending:   svc.Trending(),
		Featured:   svc.Featured(),
	}
}

// ErrorFor maps a service error to its HTTP status and error response
func ErrorFor(err error) (int, *ErrorResponse) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"

	switch {
	case errors.Is(err, entities.ErrInvalidDescriptor):
		status, code = http.StatusBadRequest, "INVALID_PARAMETER"
	case errors.Is(err, entities.ErrUnsupported):
		status, code = http.StatusBadRequest, "UNSUPPORTED_VALUE"
	case errors.Is(err, entities.ErrCoinNotFound):
		status, code = http.StatusNotFound, "COIN_NOT_FOUND"
	case errors.Is(err, entities.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED"
	case errors.Is(err, entities.ErrUpstream):
		status, code = http.StatusBadGateway, "UPSTREAM_ERROR"
	}

	return status, NewErrorResponseWithCode(code, err.Error(), strconv.Itoa(status))
}
