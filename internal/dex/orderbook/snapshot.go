// internal/dex/orderbook/snapshot.go
package orderbook

import (
	"cosmossdk.io/math"
)

// PriceLevel is the aggregated depth at one price.
type PriceLevel struct {
	Price      math.LegacyDec `json:"price"`
	Quantity   math.Int       `json:"quantity"`
	OrderCount uint32         `json:"order_count"`
}

// Snapshot is a deterministic view of the book: bids descending, asks
// ascending, one entry per price.
type Snapshot struct {
	PairID string       `json:"pair_id"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}

// Snapshot aggregates up to depth levels per side. depth <= 0 means all.
func (b *Book) Snapshot(depth int) Snapshot {
	return Snapshot{
		PairID: b.pairID,
		Bids:   b.aggregate(&b.bids, depth),
		Asks:   b.aggregate(&b.asks, depth),
	}
}

func (b *Book) aggregate(side *bookSide, depth int) []PriceLevel {
	n := len(side.levels)
	if depth > 0 && depth < n {
		n = depth
	}
	out := make([]PriceLevel, 0, n)
	for _, lvl := range side.levels[:n] {
		qty := math.ZeroInt()
		for _, id := range lvl.ids {
			qty = qty.Add(b.orders[id].AmountRemaining)
		}
		out = append(out, PriceLevel{Price: lvl.price, Quantity: qty, OrderCount: uint32(len(lvl.ids))})
	}
	return out
}
