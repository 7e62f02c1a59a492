package services

import (
	"coin-dashboard-service/internal/domain/entities"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	oneHundred     = decimal.NewFromInt(100)
	targetMultiple = decimal.NewFromFloat(1.5)
	subDollar      = decimal.NewFromInt(1)
	subCent        = decimal.NewFromFloat(0.01)
)

// Simulation is the projected outcome of buying at the current price and selling at target.
type Simulation struct {
	Amount        decimal.Decimal `json:"amount"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	CoinsOwned    decimal.Decimal `json:"coins_owned"`
	FutureValue   decimal.Decimal `json:"future_value"`
	Profit        decimal.Decimal `json:"profit"`
	GrowthPercent decimal.Decimal `json:"growth_percent"`
}

// SmartTarget suggests a sell target 50% above price, keeping more decimals for cheap coins.
func SmartTarget(price decimal.Decimal) decimal.Decimal {
	places := int32(2)
	switch {
	case price.LessThan(subCent):
		places = 8
	case price.LessThan(subDollar):
		places = 4
	}
	return price.Mul(targetMultiple).Round(places)
}

// Simulate projects an investment of amount bought at current and sold at target
func Simulate(amount, current, target decimal.Decimal) (Simulation, error) {
	if !current.IsPositive() {
		return Simulation{}, fmt.Errorf("%w: current price must be positive", entities.ErrInvalidDescriptor)
	}
	if amount.IsNegative() || target.IsNegative() {
		return Simulation{}, fmt.Errorf("%w: amount and target cannot be negative", entities.ErrInvalidDescriptor)
	}

	coins := amount.Div(current)
	future := coins.Mul(target)
	return Simulation{
		Amount:        amount,
		CurrentPrice:  current,
		TargetPrice:   target,
		CoinsOwned:    coins.Round(8),
		FutureValue:   future.Round(2),
		Profit:        future.Sub(amount).Round(2),
		GrowthPercent: target.Sub(current).Div(current).Mul(oneHundred).Round(2),
	}, nil
}
