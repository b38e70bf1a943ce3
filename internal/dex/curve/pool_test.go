package curve

import (
	"encoding/json"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rovshanmuradov/woofpad/internal/types"
)

var blockTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testPool(t testing.TB, slope int64, impact uint64, supply int64) *Pool {
	p, err := NewPool(Params{
		TokenAddress:   "token1",
		PairID:         "WOOF/huahua",
		CurveSlope:     math.NewInt(slope),
		MaxPriceImpact: impact,
		CurveSupply:    math.NewInt(supply),
		LPSupply:       math.NewInt(supply / 4),
	})
	require.NoError(t, err)
	return p
}

func TestNewPoolValidation(t *testing.T) {
	base := Params{
		CurveSlope:     math.NewInt(500),
		MaxPriceImpact: 10,
		CurveSupply:    math.NewInt(1000),
		LPSupply:       math.NewInt(250),
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero slope", func(p *Params) { p.CurveSlope = math.ZeroInt() }},
		{"negative slope", func(p *Params) { p.CurveSlope = math.NewInt(-1) }},
		{"huge slope", func(p *Params) { p.CurveSlope = MaxCurveSlope.AddRaw(1) }},
		{"zero impact", func(p *Params) { p.MaxPriceImpact = 0 }},
		{"impact above 100%", func(p *Params) { p.MaxPriceImpact = MaxBasisPoints + 1 }},
		{"no curve supply", func(p *Params) { p.CurveSupply = math.ZeroInt() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewPool(p)
			assert.Error(t, err)
		})
	}

	p, err := NewPool(base)
	require.NoError(t, err)
	assert.True(t, p.CurveSupplySold.IsZero())
	assert.False(t, p.Graduated())
	assert.Equal(t, PhaseBonding, p.Phase)
	assert.True(t, p.LastPrice.Equal(BasePrice()))
}

func TestQuoteAndApplyBuy(t *testing.T) {
	p := testPool(t, 500, 10, 800_000_000)

	q, err := p.Quote(types.SideBuy, math.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, "101", q.Value.String())

	// quoting is read only
	assert.True(t, p.CurveSupplySold.IsZero())

	before := p.LastPrice
	p.Apply(q, blockTime)
	assert.Equal(t, "1000000", p.CurveSupplySold.String())
	assert.Equal(t, "101", p.ReserveBase.String())
	assert.True(t, p.LastPrice.GT(before))
	assert.Equal(t, "0.000100000500000000", p.LastPrice.String())
	assert.Equal(t, "101", p.BaseVolume24h.String())
	assert.Equal(t, "1000000", p.QuoteVolume24h.String())
	assert.Equal(t, uint64(1), p.TotalTrades)
}

func TestQuoteSellReturnsTokensToReserve(t *testing.T) {
	p := testPool(t, 500, 10, 800_000_000)
	buy, err := p.Quote(types.SideBuy, math.NewInt(2_000_000))
	require.NoError(t, err)
	p.Apply(buy, blockTime)

	sell, err := p.Quote(types.SideSell, math.NewInt(1_000_000))
	require.NoError(t, err)
	p.Apply(sell, blockTime.Add(time.Minute))

	assert.Equal(t, "1000000", p.CurveSupplySold.String())
	assert.Equal(t, "1000000", p.ReserveQuote.String())
	assert.Equal(t, buy.Value.Sub(sell.Value).String(), p.ReserveBase.String())

	// the next buy draws the returned inventory down first
	again, err := p.Quote(types.SideBuy, math.NewInt(400_000))
	require.NoError(t, err)
	p.Apply(again, blockTime.Add(2*time.Minute))
	assert.Equal(t, "600000", p.ReserveQuote.String())
}

func TestQuoteErrors(t *testing.T) {
	p := testPool(t, 500, 10, 1_000)

	_, err := p.Quote(types.SideBuy, math.ZeroInt())
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = p.Quote(types.SideBuy, math.NewInt(1_001))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	_, err = p.Quote(types.SideSell, math.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	steep := testPool(t, 1_000_000_000_000, 10, 1_000_000_000)
	_, err = steep.Quote(types.SideBuy, math.NewInt(1_000_000))
	assert.ErrorIs(t, err, ErrPriceImpact)
}

func TestGraduate(t *testing.T) {
	p := testPool(t, 500, MaxBasisPoints, 1_000)

	_, _, err := p.Graduate()
	assert.ErrorIs(t, err, ErrThresholdNotMet)

	q, err := p.Quote(types.SideBuy, math.NewInt(1_000))
	require.NoError(t, err)
	p.Apply(q, blockTime)

	base, quote, err := p.Graduate()
	require.NoError(t, err)
	assert.Equal(t, q.Value.String(), base.String())
	assert.True(t, quote.IsZero())
	assert.True(t, p.ReserveBase.IsZero())
	assert.True(t, p.Graduated())

	_, _, err = p.Graduate()
	assert.ErrorIs(t, err, ErrAlreadyGraduated)

	_, err = p.Quote(types.SideSell, math.NewInt(1))
	assert.ErrorIs(t, err, ErrCurveClosed)
}

func TestPoolJSONCarriesGraduatedFlag(t *testing.T) {
	p := testPool(t, 500, 10, 1_000)
	out, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, false, m["graduated"])
	assert.Equal(t, "Bonding", m["phase"])
	assert.Equal(t, "0", m["curve_supply_sold"])
	assert.NotContains(t, m, "Volume")
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := testPool(t, 500, 10, 1_000_000)
	q, err := p.Quote(types.SideBuy, math.NewInt(10))
	require.NoError(t, err)
	p.Apply(q, blockTime)

	cp := p.Clone()
	q2, err := cp.Quote(types.SideBuy, math.NewInt(10))
	require.NoError(t, err)
	cp.Apply(q2, blockTime)

	assert.Equal(t, "10", p.CurveSupplySold.String())
	assert.Equal(t, "10", p.Volume.Buckets[0].Quote.String())
	assert.Equal(t, "20", cp.Volume.Buckets[0].Quote.String())
}

func TestPriceMonotoneUnderTrades(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p, err := NewPool(Params{
			CurveSlope:     drawInt(t, 1, 1_000_000, "slope"),
			MaxPriceImpact: MaxBasisPoints,
			CurveSupply:    math.NewInt(1_000_000_000),
			LPSupply:       math.ZeroInt(),
		})
		if err != nil {
			t.Fatal(err)
		}
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			side := types.SideBuy
			if rapid.Bool().Draw(t, "sell") {
				side = types.SideSell
			}
			amount := drawInt(t, 1, 50_000_000, "amount")
			q, err := p.Quote(side, amount)
			if err != nil {
				continue
			}
			before := p.SpotPrice()
			p.Apply(q, blockTime)
			after := p.SpotPrice()
			if side == types.SideBuy && after.LT(before) {
				t.Fatalf("buy lowered price %s -> %s", before, after)
			}
			if side == types.SideSell && after.GT(before) {
				t.Fatalf("sell raised price %s -> %s", before, after)
			}
			if p.ReserveBase.IsNegative() || p.CurveSupplySold.GT(p.CurveSupply) {
				t.Fatalf("reserve %s sold %s", p.ReserveBase, p.CurveSupplySold)
			}
		}
	})
}
