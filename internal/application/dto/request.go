package dto

import (
	"coin-dashboard-service/internal/domain/entities"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultChartDays = 7

// SetCurrencyRequest es el cuerpo de PUT /api/v1/currency
type SetCurrencyRequest struct {
	Currency string `json:"currency"`
}

// SearchRequest es el cuerpo de POST /api/v1/search
type SearchRequest struct {
	Term string `json:"term"`
}

// SetThemeRequest es el cuerpo de PUT /api/v1/preferences/theme
type SetThemeRequest struct {
	Theme string `json:"theme"`
}

// Validate valida la moneda; la lista soportada la decide el servicio
func (r SetCurrencyRequest) Validate() error {
	if strings.TrimSpace(r.Currency) == "" {
		return fmt.Errorf("%w: currency is required", entities.ErrInvalidDescriptor)
	}
	return nil
}

// ParsePage convierte el segmento de ruta en número de página
func ParsePage(raw string) (int, error) {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: page must be a positive integer, got %q", entities.ErrInvalidDescriptor, raw)
	}
	return page, nil
}

// ParseDays lee ?days=, con 7 por defecto
func ParseDays(raw string) (int, error) {
	if raw == "" {
		return DefaultChartDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || !entities.IsValidChartRange(days) {
		return 0, fmt.Errorf("%w: days must be one of %v, got %q", entities.ErrInvalidDescriptor, entities.ChartRanges, raw)
	}
	return days, nil
}

// SimulationRequest son los parámetros de /coins/{id}/simulate
type SimulationRequest struct {
	Amount decimal.Decimal
	Target *decimal.Decimal // nil usa el smart target
}

// ParseSimulationRequest lee ?amount= (por defecto 1000) y ?target= opcional
func ParseSimulationRequest(amountRaw, targetRaw string) (*SimulationRequest, error) {
	req := &SimulationRequest{Amount: decimal.NewFromInt(1000)}

	if amountRaw != "" {
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount must be a non-negative number, got %q", entities.ErrInvalidDescriptor, amountRaw)
		}
		req.Amount = amount
	}

	if targetRaw != "" {
		target, err := decimal.NewFromString(targetRaw)
		if err != nil || target.IsNegative() {
			return nil, fmt.Errorf("%w: target must be a non-negative number, got %q", entities.ErrInvalidDescriptor, targetRaw)
		}
		req.Target = &target
	}

	return req, nil
}
