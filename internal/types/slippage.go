// internal/types/slippage.go
package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// SlippageType selects how a client turns a quote into min_return.
type SlippageType string

const (
	// SlippageFixed uses Value as the exact min_return.
	SlippageFixed SlippageType = "fixed"
	// SlippagePercent allows Value percent below the quoted proceeds.
	SlippagePercent SlippageType = "percent"
	// SlippageNone sends a zero min_return.
	SlippageNone SlippageType = "none"
)

// SlippageConfig configures the slippage policy of a client-side swap.
type SlippageConfig struct {
	Type  SlippageType `json:"type" mapstructure:"type"`
	// Value is an integer amount for SlippageFixed and a percentage
	// (e.g. "1.5") for SlippagePercent.
	Value string       `json:"value" mapstructure:"value"`
}

// CalculateMinReturn derives min_return from the quoted net proceeds.
func CalculateMinReturn(expected math.Int, cfg SlippageConfig) (math.Int, error) {
	switch cfg.Type {
	case SlippageFixed:
		v, ok := math.NewIntFromString(cfg.Value)
		if !ok || v.IsNegative() {
			return math.Int{}, fmt.Errorf("invalid fixed slippage value %q", cfg.Value)
		}
		return v, nil
	case SlippagePercent:
		pct, err := math.LegacyNewDecFromStr(cfg.Value)
		if err != nil {
			return math.Int{}, fmt.Errorf("invalid slippage percent %q: %w", cfg.Value, err)
		}
		if pct.IsNegative() || pct.GT(math.LegacyNewDec(100)) {
			return math.Int{}, fmt.Errorf("slippage percent out of range: %s", pct)
		}
		// 1% of slippage keeps 99% of the expected output, rounded down
		keep := math.LegacyOneDec().Sub(pct.QuoInt64(100))
		return expected.ToLegacyDec().Mul(keep).TruncateInt(), nil
	case SlippageNone, "":
		return math.ZeroInt(), nil
	default:
		return math.Int{}, fmt.Errorf("unknown slippage type %q", cfg.Type)
	}
}
