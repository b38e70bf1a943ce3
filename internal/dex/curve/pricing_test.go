package curve

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSpotPriceLinear(t *testing.T) {
	slope := math.NewInt(500)

	assert.Equal(t, "0.000100000000000000", SpotPrice(slope, math.ZeroInt()).String())
	assert.Equal(t, "0.000100000500000000", SpotPrice(slope, math.NewInt(1_000_000)).String())
	assert.True(t, BasePrice().Equal(SpotPrice(slope, math.ZeroInt())))
}

func TestBuyCostAndSellProceeds(t *testing.T) {
	slope := math.NewInt(500)
	million := math.NewInt(1_000_000)

	// exact integral is 100.00025 base units
	assert.Equal(t, "101", BuyCost(slope, math.ZeroInt(), million).String())
	assert.Equal(t, "100", SellProceeds(slope, million, million).String())
	assert.Equal(t, "100000250000000000000", CostAtto(slope, math.ZeroInt(), million).String())
	assert.Equal(t, "0.000100000250000000", AveragePrice(slope, math.ZeroInt(), million).String())
}

func TestWithinImpact(t *testing.T) {
	ref := math.LegacyMustNewDecFromStr("1.0")

	assert.True(t, WithinImpact(math.LegacyMustNewDecFromStr("1.001"), ref, 10))
	assert.False(t, WithinImpact(math.LegacyMustNewDecFromStr("1.0011"), ref, 10))
	assert.True(t, WithinImpact(math.LegacyMustNewDecFromStr("0.999"), ref, 10))
	assert.False(t, WithinImpact(math.LegacyMustNewDecFromStr("0.998"), ref, 10))
}

func TestMulDecRounding(t *testing.T) {
	rate := math.LegacyMustNewDecFromStr("0.003")

	assert.Equal(t, "1", MulDecCeil(math.NewInt(100), rate).String())
	assert.Equal(t, "0", MulDecFloor(math.NewInt(100), rate).String())
	assert.Equal(t, "3", MulDecCeil(math.NewInt(1000), rate).String())
	assert.Equal(t, "3", MulDecFloor(math.NewInt(1000), rate).String())

	// x*raw(d) is past 256 bits here, the result is not.
	x := math.NewIntWithDecimal(1, 60).AddRaw(1)
	half := math.LegacyMustNewDecFromStr("0.5")
	assert.Equal(t, math.NewIntWithDecimal(5, 59).String(), MulDecFloor(x, half).String())
	assert.Equal(t, math.NewIntWithDecimal(5, 59).AddRaw(1).String(), MulDecCeil(x, half).String())
}

func drawInt(t *rapid.T, lo, hi int64, label string) math.Int {
	return math.NewInt(rapid.Int64Range(lo, hi).Draw(t, label))
}

func TestCostBoundedBySpotPrices(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slope := drawInt(t, 1, 1_000_000_000, "slope")
		sold := drawInt(t, 0, 1_000_000_000_000, "sold")
		delta := drawInt(t, 1, 1_000_000_000_000, "delta")

		costAtto := BuyCost(slope, sold, delta).Mul(attoPerUnit)
		lower := SpotPriceAtto(slope, sold).Mul(delta)
		upper := SpotPriceAtto(slope, sold.Add(delta)).Mul(delta).Add(attoPerUnit)

		if costAtto.LT(lower) || costAtto.GT(upper) {
			t.Fatalf("cost %s outside [%s, %s]", costAtto, lower, upper)
		}
	})
}

func TestCostIsPathIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slope := drawInt(t, 1, 1_000_000_000, "slope")
		sold := drawInt(t, 0, 1_000_000_000_000, "sold")
		a := drawInt(t, 1, 1_000_000_000_000, "a")
		b := drawInt(t, 1, 1_000_000_000_000, "b")

		split := BuyCost(slope, sold, a).Add(BuyCost(slope, sold.Add(a), b))
		whole := BuyCost(slope, sold, a.Add(b))

		// ceiling twice can add at most one unit over a single ceiling
		diff := split.Sub(whole)
		if diff.IsNegative() || diff.GT(math.OneInt()) {
			t.Fatalf("split %s whole %s", split, whole)
		}
		if !CostAtto(slope, sold, a.Add(b)).Sub(CostAtto(slope, sold, a).Add(CostAtto(slope, sold.Add(a), b))).Abs().LTE(math.OneInt()) {
			t.Fatalf("atto integral is not additive")
		}
	})
}

func TestSellNeverPaysMoreThanBuyCharged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slope := drawInt(t, 1, 1_000_000_000, "slope")
		sold := drawInt(t, 0, 1_000_000_000_000, "sold")
		delta := drawInt(t, 1, 1_000_000_000_000, "delta")

		charged := BuyCost(slope, sold, delta)
		paid := SellProceeds(slope, sold.Add(delta), delta)
		if paid.GT(charged) {
			t.Fatalf("round trip pays %s for %s charged", paid, charged)
		}
	})
}
