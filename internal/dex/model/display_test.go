package model

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

var pair = registry.TokenPair{PairID: "WOOF/huahua", BaseDecimals: 6, QuoteDecimals: 6}

func TestFromUnits(t *testing.T) {
	assert.Equal(t, "1.5", FromUnits(math.NewInt(1_500_000), 6).String())
	assert.Equal(t, "42", FromUnits(math.NewInt(42), 0).String())
	assert.Equal(t, "0", FromUnits(math.Int{}, 6).String())
}

func TestUnitPrice(t *testing.T) {
	// base and token share 6 decimals, so the unit price carries over
	assert.Equal(t, "0.0001", UnitPrice(curve.BasePrice(), 6, 6).String())
	// a token with 8 decimals is worth 100x more units per whole token
	assert.Equal(t, "0.01", UnitPrice(curve.BasePrice(), 6, 8).String())
}

func TestNewPoolView(t *testing.T) {
	p, err := curve.NewPool(curve.Params{
		TokenAddress:   "woof1token",
		PairID:         pair.PairID,
		CurveSlope:     math.NewInt(500),
		MaxPriceImpact: 10_000,
		CurveSupply:    math.NewInt(4_000_000),
		LPSupply:       math.NewInt(1_000_000),
	})
	require.NoError(t, err)
	q, err := p.Quote(types.SideBuy, math.NewInt(1_000_000))
	require.NoError(t, err)
	p.Apply(q, curveTime)

	view := NewPoolView(p, pair)
	assert.Equal(t, "25.00", view.Display.Progress)
	assert.Equal(t, "1", view.Display.CurveSold)
	assert.Equal(t, "0.000101", view.Display.ReserveBase)
	assert.Equal(t, "0.0001000005", view.Display.LastPrice)
}

func TestEstimate(t *testing.T) {
	est := Estimate("woof1token", math.NewInt(2_000_000), math.LegacyMustNewDecFromStr("0.95"), pair)
	assert.Equal(t, "1900000", est.EstimatedValue.String())
	assert.Equal(t, "2", est.HumanBalance)
	assert.Equal(t, "1.9", est.HumanEstimated)
}

var curveTime = mustTime("2024-05-01T12:00:00Z")

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
