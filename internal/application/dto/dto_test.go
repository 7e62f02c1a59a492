package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"coin-dashboard-service/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	page, err := ParsePage("4")
	require.NoError(t, err)
	assert.Equal(t, 4, page)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := ParsePage(raw)
		assert.ErrorIs(t, err, entities.ErrInvalidDescriptor, raw)
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("")
	require.NoError(t, err)
	assert.Equal(t, DefaultChartDays, days)

	days, err = ParseDays("365")
	require.NoError(t, err)
	assert.Equal(t, 365, days)

	_, err = ParseDays("14")
	assert.ErrorIs(t, err, entities.ErrInvalidDescriptor)
}

func TestParseSimulationRequest(t *testing.T) {
	req, err := ParseSimulationRequest("", "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(req.Amount))
	assert.Nil(t, req.Target)

	req, err = ParseSimulationRequest("250.5", "70000")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("250.5").Equal(req.Amount))
	require.NotNil(t, req.Target)
	assert.True(t, decimal.NewFromInt(70000).Equal(*req.Target))

	_, err = ParseSimulationRequest("-5", "")
	assert.ErrorIs(t, err, entities.ErrInvalidDescriptor)
	_, err = ParseSimulationRequest("10", "lots")
	assert.ErrorIs(t, err, entities.ErrInvalidDescriptor)
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x", entities.ErrInvalidDescriptor), http.StatusBadRequest, "INVALID_PARAMETER"},
		{fmt.Errorf("%w: jpy", entities.ErrUnsupported), http.StatusBadRequest, "UNSUPPORTED_VALUE"},
		{entities.ErrCoinNotFound, http.StatusNotFound, "COIN_NOT_FOUND"},
		{entities.ErrRateLimited, http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED"},
		{entities.ErrUpstream, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		status, body := ErrorFor(tt.err)
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.code, body.Error)
	}
}
