// =============================
// File: internal/launchpad/limits.go
// =============================
package launchpad

import (
	"cosmossdk.io/math"
)

const (
	// maxAmountBits bounds every amount a message carries. Products of an
	// amount and a price then stay well below the 256-bit limit of math.Int.
	maxAmountBits = 128

	maxFundsEntries = 16
)

// MaxOrderPrice is the highest limit price accepted, in base units per token.
var MaxOrderPrice = math.LegacyNewDec(1_000_000_000_000_000_000)

func checkAmount(field string, v math.Int) error {
	if v.IsNil() {
		return nil
	}
	if v.BigInt().BitLen() > maxAmountBits {
		return newError(KindInvalidMessage, "%s %s exceeds 2^%d", field, v, maxAmountBits)
	}
	return nil
}

func checkPrice(v math.LegacyDec) error {
	if v.GT(MaxOrderPrice) {
		return newError(KindInvalidMessage, "price %s exceeds %s", v, MaxOrderPrice)
	}
	return nil
}
