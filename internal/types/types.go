// internal/types/types.go
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"cosmossdk.io/math"
)

// Side is the direction of an order or swap. The zero value is invalid.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("invalid side %q", s)
	}
}

// SideFromBool maps the legacy is_buy flag.
func SideFromBool(isBuy bool) Side {
	if isBuy {
		return SideBuy
	}
	return SideSell
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the two declared sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side a taker matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid side %d", uint8(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts "Buy"/"Sell" and, for older clients, a bool.
func (s *Side) UnmarshalJSON(data []byte) error {
	var isBuy bool
	if err := json.Unmarshal(data, &isBuy); err == nil {
		*s = SideFromBool(isBuy)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("side must be a string or bool: %w", err)
	}
	parsed, err := ParseSide(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OrderStatus is the lifecycle state of a limit order.
type OrderStatus string

const (
	StatusResting         OrderStatus = "Resting"
	StatusPartiallyFilled OrderStatus = "PartiallyFilled"
	StatusFilled          OrderStatus = "Filled"
	StatusCancelled       OrderStatus = "Cancelled"
)

// Active reports whether an order with this status still sits in the book.
func (s OrderStatus) Active() bool {
	return s == StatusResting || s == StatusPartiallyFilled
}

// Valid reports whether s is a declared status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusResting, StatusPartiallyFilled, StatusFilled, StatusCancelled:
		return true
	}
	return false
}

// Coin is an amount of a single denom.
type Coin struct {
	Denom  string   `json:"denom"`
	Amount math.Int `json:"amount"`
}

func NewCoin(denom string, amount math.Int) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// Coins is a list of coins as attached to an envelope.
type Coins []Coin

// AmountOf sums every entry of denom.
func (cs Coins) AmountOf(denom string) math.Int {
	total := math.ZeroInt()
	for _, c := range cs {
		if c.Denom == denom && !c.Amount.IsNil() && c.Amount.IsPositive() {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// Denoms returns the distinct denoms in order of first appearance.
func (cs Coins) Denoms() []string {
	seen := make(map[string]struct{}, len(cs))
	var out []string
	for _, c := range cs {
		if _, ok := seen[c.Denom]; ok {
			continue
		}
		seen[c.Denom] = struct{}{}
		out = append(out, c.Denom)
	}
	return out
}
