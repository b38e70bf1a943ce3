// =============================
// File: internal/dex/fees/fees.go
// =============================
package fees

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
)

// Role is the side of a fill that pays a fee.
type Role string

const (
	Maker Role = "maker"
	Taker Role = "taker"
)

// Schedule holds the protocol fee rates as fractions in [0,1).
type Schedule struct {
	MakerRate math.LegacyDec `json:"maker_fee"`
	TakerRate math.LegacyDec `json:"taker_fee"`
}

// ValidateRate checks that a rate is a fraction in [0,1).
func ValidateRate(name string, rate math.LegacyDec) error {
	if rate.IsNil() {
		return fmt.Errorf("%s is required", name)
	}
	if rate.IsNegative() || rate.GTE(math.LegacyOneDec()) {
		return fmt.Errorf("%s must be in [0,1), got %s", name, rate)
	}
	return nil
}

// Validate checks both rates.
func (s Schedule) Validate() error {
	if err := ValidateRate("maker_fee", s.MakerRate); err != nil {
		return err
	}
	return ValidateRate("taker_fee", s.TakerRate)
}

// Rate returns the rate a role pays.
func (s Schedule) Rate(role Role) math.LegacyDec {
	if role == Maker {
		return s.MakerRate
	}
	return s.TakerRate
}

// Fee is ceil(amount*rate), never more than amount.
func Fee(amount math.Int, rate math.LegacyDec) math.Int {
	if amount.IsZero() || rate.IsZero() {
		return math.ZeroInt()
	}
	return math.MinInt(curve.MulDecCeil(amount, rate), amount)
}

// Charge splits proceeds into what the party receives and the fee.
func (s Schedule) Charge(role Role, proceeds math.Int) (net, fee math.Int) {
	fee = Fee(proceeds, s.Rate(role))
	return proceeds.Sub(fee), fee
}
