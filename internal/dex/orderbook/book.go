// internal/dex/orderbook/book.go
package orderbook

import (
	"errors"
	"fmt"
	"sort"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/types"
)

var (
	ErrDuplicateOrder = errors.New("order already in book")
	ErrInactiveOrder  = errors.New("order is not active")
	ErrWrongPair      = errors.New("order belongs to another pair")
)

// priceLevel holds the resting orders at one price, oldest first.
type priceLevel struct {
	price math.LegacyDec
	ids   []uint64
}

// bookSide keeps levels sorted best first: descending for bids, ascending
// for asks.
type bookSide struct {
	desc   bool
	levels []*priceLevel
}

func (s *bookSide) better(a, b math.LegacyDec) bool {
	if s.desc {
		return a.GT(b)
	}
	return a.LT(b)
}

// search returns the index of the first level that is not better than price.
func (s *bookSide) search(price math.LegacyDec) int {
	return sort.Search(len(s.levels), func(i int) bool {
		return !s.better(s.levels[i].price, price)
	})
}

func (s *bookSide) level(price math.LegacyDec) (*priceLevel, int) {
	i := s.search(price)
	if i < len(s.levels) && s.levels[i].price.Equal(price) {
		return s.levels[i], i
	}
	return nil, i
}

func (s *bookSide) clone() bookSide {
	cp := bookSide{desc: s.desc, levels: make([]*priceLevel, len(s.levels))}
	for i, lvl := range s.levels {
		cp.levels[i] = &priceLevel{price: lvl.price, ids: append([]uint64(nil), lvl.ids...)}
	}
	return cp
}

// Book is the active order set of one pair with price-time priority.
type Book struct {
	pairID string
	orders map[uint64]*Order
	bids   bookSide
	asks   bookSide
}

// NewBook creates an empty book for pairID.
func NewBook(pairID string) *Book {
	return &Book{
		pairID: pairID,
		orders: make(map[uint64]*Order),
		bids:   bookSide{desc: true},
		asks:   bookSide{},
	}
}

// PairID returns the pair this book trades.
func (b *Book) PairID() string { return b.pairID }

// Len is the number of resting orders.
func (b *Book) Len() int { return len(b.orders) }

func (b *Book) side(s types.Side) *bookSide {
	if s == types.SideBuy {
		return &b.bids
	}
	return &b.asks
}

// Get returns a resting order.
func (b *Book) Get(id uint64) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// Insert rests an order. Within a level orders stay sorted by created_at
// and then id.
func (b *Book) Insert(o *Order) error {
	if o.PairID != b.pairID {
		return fmt.Errorf("%w: %s in book %s", ErrWrongPair, o.PairID, b.pairID)
	}
	if _, ok := b.orders[o.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateOrder, o.ID)
	}
	if !o.Status.Active() || !o.AmountRemaining.IsPositive() {
		return fmt.Errorf("%w: %d is %s", ErrInactiveOrder, o.ID, o.Status)
	}

	side := b.side(o.Side)
	lvl, i := side.level(o.Price)
	if lvl == nil {
		lvl = &priceLevel{price: o.Price}
		side.levels = append(side.levels, nil)
		copy(side.levels[i+1:], side.levels[i:])
		side.levels[i] = lvl
	}

	pos := sort.Search(len(lvl.ids), func(j int) bool {
		return o.before(b.orders[lvl.ids[j]])
	})
	lvl.ids = append(lvl.ids, 0)
	copy(lvl.ids[pos+1:], lvl.ids[pos:])
	lvl.ids[pos] = o.ID

	b.orders[o.ID] = o
	return nil
}

// Remove takes an order out of the book and returns it.
func (b *Book) Remove(id uint64) (*Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return nil, false
	}
	side := b.side(o.Side)
	if lvl, i := side.level(o.Price); lvl != nil {
		for j, oid := range lvl.ids {
			if oid == id {
				lvl.ids = append(lvl.ids[:j], lvl.ids[j+1:]...)
				break
			}
		}
		if len(lvl.ids) == 0 {
			side.levels = append(side.levels[:i], side.levels[i+1:]...)
		}
	}
	delete(b.orders, id)
	return o, true
}

// Best returns the highest priority resting order on a side.
func (b *Book) Best(s types.Side) (*Order, bool) {
	side := b.side(s)
	if len(side.levels) == 0 {
		return nil, false
	}
	return b.orders[side.levels[0].ids[0]], true
}

// Match executes taker against the opposite side while prices cross. The
// taker's remaining amount is reduced in place; filled makers leave the
// book. The caller decides whether the remainder rests.
func (b *Book) Match(taker *Order) []Fill {
	var fills []Fill
	opposite := taker.Side.Opposite()
	for taker.AmountRemaining.IsPositive() {
		maker, ok := b.Best(opposite)
		if !ok || !crosses(taker, maker) {
			break
		}
		amount := math.MinInt(taker.AmountRemaining, maker.AmountRemaining)
		maker.fill(amount)
		taker.fill(amount)
		fills = append(fills, Fill{Maker: maker, Price: maker.Price, Amount: amount})
		if maker.Status == types.StatusFilled {
			b.Remove(maker.ID)
		}
	}
	return fills
}

// Clone deep copies the book so a message can mutate it and be discarded.
func (b *Book) Clone() *Book {
	cp := &Book{
		pairID: b.pairID,
		orders: make(map[uint64]*Order, len(b.orders)),
		bids:   b.bids.clone(),
		asks:   b.asks.clone(),
	}
	for id, o := range b.orders {
		oc := *o
		cp.orders[id] = &oc
	}
	return cp
}

// Orders returns all resting orders in priority order, bids first.
func (b *Book) Orders() []*Order {
	out := make([]*Order, 0, len(b.orders))
	for _, side := range []*bookSide{&b.bids, &b.asks} {
		for _, lvl := range side.levels {
			for _, id := range lvl.ids {
				out = append(out, b.orders[id])
			}
		}
	}
	return out
}
