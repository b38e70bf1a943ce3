// internal/dex/orderbook/order.go
package orderbook

import (
	"time"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/types"
)

// Order is a limit order. While active it lives in exactly one Book.
type Order struct {
	ID              uint64            `json:"id"`
	PairID          string            `json:"pair_id"`
	Owner           string            `json:"owner"`
	Side            types.Side        `json:"side"`
	Price           math.LegacyDec    `json:"price"`
	AmountTotal     math.Int          `json:"amount_total"`
	AmountRemaining math.Int          `json:"amount_remaining"`
	// EscrowRemaining is what the engine still holds for this order:
	// base units for buys, tokens for sells.
	EscrowRemaining math.Int          `json:"escrow_remaining"`
	CreatedAt       time.Time         `json:"created_at"`
	CreatedHeight   uint64            `json:"created_height"`
	Status          types.OrderStatus `json:"status"`
}

// Filled is the amount executed so far.
func (o *Order) Filled() math.Int {
	return o.AmountTotal.Sub(o.AmountRemaining)
}

// fill reduces the remaining amount and moves the status forward.
func (o *Order) fill(amount math.Int) {
	o.AmountRemaining = o.AmountRemaining.Sub(amount)
	if o.AmountRemaining.IsZero() {
		o.Status = types.StatusFilled
	} else {
		o.Status = types.StatusPartiallyFilled
	}
}

// before reports whether o has time priority over other.
func (o *Order) before(other *Order) bool {
	if !o.CreatedAt.Equal(other.CreatedAt) {
		return o.CreatedAt.Before(other.CreatedAt)
	}
	return o.ID < other.ID
}

// crosses reports whether an incoming order and a resting one can trade.
func crosses(taker, maker *Order) bool {
	if taker.Side == types.SideBuy {
		return taker.Price.GTE(maker.Price)
	}
	return taker.Price.LTE(maker.Price)
}

// Fill is one match between an incoming order and a resting one. It always
// executes at the maker's price.
type Fill struct {
	Maker  *Order
	Price  math.LegacyDec
	Amount math.Int
}
