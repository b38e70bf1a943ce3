// Package model holds the human readable views served next to raw state.
package model

import (
	"cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
)

// displayPlaces is how many fractional digits prices are shown with.
const displayPlaces = 12

// FromUnits scales an integer amount of smallest units to whole tokens.
func FromUnits(amount math.Int, decimals uint8) decimal.Decimal {
	if amount.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount.BigInt(), -int32(decimals))
}

// FromDec converts a LegacyDec exactly.
func FromDec(d math.LegacyDec) decimal.Decimal {
	if d.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(d.BigInt(), -curve.Precision)
}

// UnitPrice converts a price in base units per token unit to whole base per
// whole token.
func UnitPrice(price math.LegacyDec, baseDecimals, tokenDecimals uint8) decimal.Decimal {
	return FromDec(price).Shift(int32(tokenDecimals) - int32(baseDecimals))
}

// PoolDisplay is the human readable part of a pool view.
type PoolDisplay struct {
	LastPrice     string `json:"last_price"`
	ReserveBase   string `json:"reserve_base"`
	ReserveQuote  string `json:"reserve_quote"`
	CurveSold     string `json:"curve_supply_sold"`
	BaseVolume24h string `json:"base_volume_24h"`
	// Progress is the share of the curve allocation sold, in percent.
	Progress string `json:"progress"`
}

// PoolView is a pool with its display strings.
type PoolView struct {
	Pool    *curve.Pool `json:"pool"`
	Display PoolDisplay `json:"display"`
}

// NewPoolView renders p for a token with the given decimals.
func NewPoolView(p *curve.Pool, pair registry.TokenPair) PoolView {
	progress := decimal.Zero
	if p.CurveSupply.IsPositive() {
		progress = FromUnits(p.CurveSupplySold, 0).
			Div(FromUnits(p.CurveSupply, 0)).
			Mul(decimal.NewFromInt(100))
	}
	return PoolView{
		Pool: p,
		Display: PoolDisplay{
			LastPrice:     UnitPrice(p.LastPrice, pair.BaseDecimals, pair.QuoteDecimals).Round(displayPlaces).String(),
			ReserveBase:   FromUnits(p.ReserveBase, pair.BaseDecimals).String(),
			ReserveQuote:  FromUnits(p.ReserveQuote, pair.QuoteDecimals).String(),
			CurveSold:     FromUnits(p.CurveSupplySold, pair.QuoteDecimals).String(),
			Progress:      progress.StringFixed(2),
			BaseVolume24h: FromUnits(p.BaseVolume24h, pair.BaseDecimals).String(),
		},
	}
}

// TokenEstimate values a token balance at a price.
type TokenEstimate struct {
	TokenAddress string `json:"token_address"`
	// TokenBalance is in smallest units.
	TokenBalance math.Int `json:"token_balance"`
	// EstimatedValue is in base units, rounded down.
	EstimatedValue math.Int `json:"estimated_value"`
	HumanBalance   string   `json:"human_balance"`
	HumanEstimated string   `json:"human_estimated"`
}

// Estimate values balance at price, both in smallest units.
func Estimate(token string, balance math.Int, price math.LegacyDec, pair registry.TokenPair) TokenEstimate {
	value := curve.MulDecFloor(balance, price)
	return TokenEstimate{
		TokenAddress:   token,
		TokenBalance:   balance,
		EstimatedValue: value,
		HumanBalance:   FromUnits(balance, pair.QuoteDecimals).String(),
		HumanEstimated: FromUnits(value, pair.BaseDecimals).String(),
	}
}
