// ==============================================
// File: internal/dex/curve/pricing.go
// ==============================================
package curve

import (
	"math/big"

	"cosmossdk.io/math"
)

const (
	// Precision is the number of decimals carried by LegacyDec prices.
	Precision = 18

	// MaxBasisPoints bounds max_price_impact.
	MaxBasisPoints = 10_000
)

var (
	// attoPerUnit is 1e18, one base unit expressed in atto units.
	attoPerUnit = math.NewIntWithDecimal(1, Precision)

	// BasePriceAtto is the price of the first token, 0.0001 base units.
	BasePriceAtto = math.NewIntWithDecimal(1, 14)

	// MaxCurveSlope and MaxSupply together keep 2*slope*delta*(2s+delta)
	// below the 256-bit limit of math.Int.
	MaxCurveSlope = math.NewIntWithDecimal(1, 24)

	// MaxSupply bounds the curve and LP supplies of a token.
	MaxSupply = math.NewIntWithDecimal(1, 24)
)

// BasePrice is the spot price at zero supply sold.
func BasePrice() math.LegacyDec {
	return math.LegacyNewDecFromIntWithPrec(BasePriceAtto, Precision)
}

// SpotPriceAtto returns price(s) in atto base units per token unit.
func SpotPriceAtto(slope, sold math.Int) math.Int {
	return BasePriceAtto.Add(slope.Mul(sold))
}

// SpotPrice returns price(s) as a fixed-point decimal.
func SpotPrice(slope, sold math.Int) math.LegacyDec {
	return math.LegacyNewDecFromIntWithPrec(SpotPriceAtto(slope, sold), Precision)
}

// twiceCostAtto is 2*cost_atto(s, d), which is always an integer.
func twiceCostAtto(slope, sold, delta math.Int) math.Int {
	linear := BasePriceAtto.MulRaw(2).Mul(delta)
	curved := slope.Mul(delta).Mul(sold.MulRaw(2).Add(delta))
	return linear.Add(curved)
}

// CostAtto returns the exact integral of price over [sold, sold+delta] in atto
// units, rounded up to a whole atto.
func CostAtto(slope, sold, delta math.Int) math.Int {
	return ceilDiv(twiceCostAtto(slope, sold, delta), math.NewInt(2))
}

// BuyCost is the base-unit charge for buying delta tokens at supply sold.
func BuyCost(slope, sold, delta math.Int) math.Int {
	return ceilDiv(twiceCostAtto(slope, sold, delta), attoPerUnit.MulRaw(2))
}

// SellProceeds is the base-unit payout for selling delta tokens back from
// supply sold. The caller guarantees delta <= sold.
func SellProceeds(slope, sold, delta math.Int) math.Int {
	return twiceCostAtto(slope, sold.Sub(delta), delta).Quo(attoPerUnit.MulRaw(2))
}

// AveragePrice is the exact average execution price of a trade of delta
// tokens starting at from.
func AveragePrice(slope, from, delta math.Int) math.LegacyDec {
	if delta.IsZero() {
		return SpotPrice(slope, from)
	}
	twice := math.LegacyNewDecFromIntWithPrec(twiceCostAtto(slope, from, delta), Precision)
	return twice.QuoInt(delta.MulRaw(2))
}

// WithinImpact reports whether avg deviates from ref by at most maxBps basis
// points of ref.
func WithinImpact(avg, ref math.LegacyDec, maxBps uint64) bool {
	if ref.IsZero() {
		return true
	}
	diff := avg.Sub(ref).Abs()
	return !diff.MulInt64(MaxBasisPoints).GT(ref.MulInt(math.NewIntFromUint64(maxBps)))
}

// MulDecCeil returns ceil(x * d) computed on the raw fixed-point integer.
// The product is formed in big.Int, only the result must fit math.Int.
func MulDecCeil(x math.Int, d math.LegacyDec) math.Int {
	q, r := mulDecRaw(x, d)
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return math.NewIntFromBigInt(q)
}

// MulDecFloor returns floor(x * d).
func MulDecFloor(x math.Int, d math.LegacyDec) math.Int {
	q, _ := mulDecRaw(x, d)
	return math.NewIntFromBigInt(q)
}

func mulDecRaw(x math.Int, d math.LegacyDec) (q, r *big.Int) {
	prod := new(big.Int).Mul(x.BigInt(), d.BigInt())
	return new(big.Int).QuoRem(prod, attoPerUnit.BigInt(), new(big.Int))
}

func ceilDiv(num, den math.Int) math.Int {
	q := num.Quo(den)
	if !q.Mul(den).Equal(num) {
		q = q.AddRaw(1)
	}
	return q
}
