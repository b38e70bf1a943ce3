// =============================
// File: internal/launchpad/state.go
// =============================
package launchpad

import (
	"time"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/orderbook"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/events"
	"github.com/rovshanmuradov/woofpad/internal/ledger"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

const (
	MaxTradesPerUser       = 100
	MaxActiveOrdersPerUser = 50
	maxRecentTrades        = 1000
)

// bookStats is the order book side of a market's price and volume.
type bookStats struct {
	LastPrice      math.LegacyDec
	BaseVolume24h  math.Int
	QuoteVolume24h math.Int
	Volume         curve.VolumeWindow
}

func newBookStats() bookStats {
	return bookStats{
		LastPrice:      math.LegacyZeroDec(),
		BaseVolume24h:  math.ZeroInt(),
		QuoteVolume24h: math.ZeroInt(),
	}
}

func (s bookStats) clone() bookStats {
	s.Volume = s.Volume.Clone()
	return s
}

func (s *bookStats) record(price math.LegacyDec, base, quote math.Int, at time.Time) {
	s.LastPrice = price
	s.Volume.Add(at, base, quote)
	s.BaseVolume24h, s.QuoteVolume24h = s.Volume.Totals(at)
}

// market is everything owned by one pair.
type market struct {
	token     registry.TokenInfo
	pair      registry.TokenPair
	pool      *curve.Pool
	book      *orderbook.Book
	stats     bookStats
	migration *Migration
}

func (m *market) clone() *market {
	cp := *m
	cp.pool = m.pool.Clone()
	cp.book = m.book.Clone()
	cp.stats = m.stats.clone()
	if m.migration != nil {
		mig := *m.migration
		cp.migration = &mig
	}
	return &cp
}

// denom is the bank denom of the launched token.
func (m *market) denom() string {
	return m.pair.QuoteToken
}

// Stats are the system-wide counters.
type Stats struct {
	TotalPairs         uint64   `json:"total_pairs"`
	TotalOrders        uint64   `json:"total_orders"`
	TotalTrades        uint64   `json:"total_trades"`
	TotalVolume        math.Int `json:"total_volume"`
	TotalUsers         uint64   `json:"total_users"`
	TotalFeesCollected math.Int `json:"total_fees_collected"`
	GraduatedPairs     uint64   `json:"graduated_pairs"`
	OpenOrders         uint64   `json:"open_orders"`
}

// state is the committed engine state.
type state struct {
	config   Config
	registry *registry.Registry
	markets  map[string]*market
	ledger   *ledger.Ledger

	orders     map[uint64]orderbook.Order
	userOrders map[string][]uint64

	recentTrades []Trade
	userTrades   map[string][]Trade
	userTradeCnt map[string]uint64
	users        map[string]struct{}

	nextOrderID uint64
	nextTradeID uint64
	tokenSeq    uint64
	stats       Stats

	// Block of the last committed message.
	lastHeight uint64
	lastTime   time.Time
}

// checkBlock rejects a message from a block older than the last committed
// one. Messages of the same block are accepted in any number.
func (st *state) checkBlock(env Envelope) error {
	if env.BlockHeight < st.lastHeight {
		return newError(KindInvalidMessage, "block_height %d is below last committed %d", env.BlockHeight, st.lastHeight)
	}
	if env.BlockTime.Before(st.lastTime) {
		return newError(KindInvalidMessage, "block_time %s is before last committed %s",
			env.BlockTime.Format(time.RFC3339), st.lastTime.Format(time.RFC3339))
	}
	return nil
}

func newState(cfg Config) *state {
	return &state{
		config:       cfg,
		registry:     registry.New(),
		markets:      make(map[string]*market),
		ledger:       ledger.New(),
		orders:       make(map[uint64]orderbook.Order),
		userOrders:   make(map[string][]uint64),
		userTrades:   make(map[string][]Trade),
		userTradeCnt: make(map[string]uint64),
		users:        make(map[string]struct{}),
		nextOrderID:  1,
		nextTradeID:  1,
		stats: Stats{
			TotalVolume:        math.ZeroInt(),
			TotalFeesCollected: math.ZeroInt(),
		},
	}
}

// tx stages the writes of one message. Nothing reaches state before commit.
type tx struct {
	st  *state
	env Envelope

	config  *Config
	markets map[string]*market
	created *market
	orders  map[uint64]orderbook.Order
	placed  []uint64
	trades  []Trade
	batch   *ledger.Batch
	events  []events.Event
	spent   map[string]math.Int

	nextOrderID uint64
	nextTradeID uint64
	feesBase    math.Int
	volumeBase  math.Int
	trader      bool
}

func (st *state) begin(env Envelope) *tx {
	return &tx{
		st:          st,
		env:         env,
		markets:     make(map[string]*market),
		orders:      make(map[uint64]orderbook.Order),
		batch:       st.ledger.Begin(),
		spent:       make(map[string]math.Int),
		nextOrderID: st.nextOrderID,
		nextTradeID: st.nextTradeID,
		feesBase:    math.ZeroInt(),
		volumeBase:  math.ZeroInt(),
	}
}

func (t *tx) cfg() Config {
	if t.config != nil {
		return *t.config
	}
	return t.st.config
}

// market returns the staged copy of a pair, cloning it on first use.
func (t *tx) market(token string) (*market, error) {
	if m, ok := t.markets[token]; ok {
		return m, nil
	}
	m, ok := t.st.markets[token]
	if !ok {
		return nil, newError(KindPairNotFound, "token %s", token)
	}
	cp := m.clone()
	t.markets[token] = cp
	return cp, nil
}

// order returns the latest version of an order record.
func (t *tx) order(id uint64) (orderbook.Order, bool) {
	if o, ok := t.orders[id]; ok {
		return o, true
	}
	o, ok := t.st.orders[id]
	return o, ok
}

func (t *tx) putOrder(o orderbook.Order) {
	t.orders[o.ID] = o
}

func (t *tx) allocOrderID() uint64 {
	id := t.nextOrderID
	t.nextOrderID++
	t.placed = append(t.placed, id)
	return id
}

func (t *tx) addTrade(tr Trade) Trade {
	tr.ID = t.nextTradeID
	t.nextTradeID++
	tr.Timestamp = t.env.BlockTime
	tr.Height = t.env.BlockHeight
	tr.Executed = true
	t.trades = append(t.trades, tr)
	t.volumeBase = t.volumeBase.Add(tr.QuoteAmount)
	t.trader = true
	return tr
}

// take consumes amount of denom from the attached funds.
func (t *tx) take(denom string, amount math.Int) error {
	used, ok := t.spent[denom]
	if !ok {
		used = math.ZeroInt()
	}
	available := t.env.Funds.AmountOf(denom).Sub(used)
	if available.LT(amount) {
		return newError(KindInsufficientFunds, "need %s%s, attached %s", amount, denom, available)
	}
	t.spent[denom] = used.Add(amount)
	return nil
}

// refundUnused credits the sender with every attached coin not taken.
func (t *tx) refundUnused() error {
	for _, denom := range t.env.Funds.Denoms() {
		left := t.env.Funds.AmountOf(denom)
		if used, ok := t.spent[denom]; ok {
			left = left.Sub(used)
		}
		if err := t.batch.Credit(t.env.Sender, denom, left, ledger.ReasonRefund); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) emit(e events.Event) {
	t.events = append(t.events, e)
}

// activeOrders counts the owner's active orders including staged changes.
func (t *tx) activeOrders(owner string) int {
	n := 0
	seen := make(map[uint64]struct{})
	for _, id := range t.st.userOrders[owner] {
		seen[id] = struct{}{}
		if o, ok := t.order(id); ok && o.Status.Active() {
			n++
		}
	}
	for id, o := range t.orders {
		if _, ok := seen[id]; !ok && o.Owner == owner && o.Status.Active() {
			n++
		}
	}
	return n
}

// register adds a created token to the registry. It is the last step that
// can reject a message; Register changes nothing when it fails.
func (t *tx) register() error {
	if t.created == nil {
		return nil
	}
	return t.st.registry.Register(t.created.token, t.created.pair)
}

// commit applies every staged write. It must not fail.
func (t *tx) commit() {
	st := t.st
	if t.config != nil {
		st.config = *t.config
	}
	if t.created != nil {
		st.markets[t.created.token.Address] = t.created
		st.tokenSeq++
		st.stats.TotalPairs++
	}
	for token, m := range t.markets {
		if m.pool.Graduated() && !st.markets[token].pool.Graduated() {
			st.registry.MarkGraduated(token)
			m.token.Graduated = true
			st.stats.GraduatedPairs++
		}
		st.markets[token] = m
	}

	for _, id := range t.placed {
		o := t.orders[id]
		st.userOrders[o.Owner] = append(st.userOrders[o.Owner], id)
		st.stats.TotalOrders++
	}
	for id, o := range t.orders {
		if prev, ok := st.orders[id]; ok && prev.Status.Active() && !o.Status.Active() {
			st.stats.OpenOrders--
		} else if !ok && o.Status.Active() {
			st.stats.OpenOrders++
		}
		st.orders[id] = o
	}

	for _, tr := range t.trades {
		st.recentTrades = append(st.recentTrades, tr)
		for _, user := range tradeParties(tr) {
			list := append(st.userTrades[user], tr)
			if len(list) > MaxTradesPerUser {
				list = list[len(list)-MaxTradesPerUser:]
			}
			st.userTrades[user] = list
			st.userTradeCnt[user]++
		}
	}
	if n := len(st.recentTrades); n > maxRecentTrades {
		st.recentTrades = append([]Trade(nil), st.recentTrades[n-maxRecentTrades:]...)
	}
	st.stats.TotalTrades += uint64(len(t.trades))
	st.stats.TotalVolume = st.stats.TotalVolume.Add(t.volumeBase)
	st.stats.TotalFeesCollected = st.stats.TotalFeesCollected.Add(t.feesBase)

	if t.trader {
		if _, ok := st.users[t.env.Sender]; !ok {
			st.users[t.env.Sender] = struct{}{}
			st.stats.TotalUsers++
		}
	}

	t.batch.Commit()
	st.nextOrderID = t.nextOrderID
	st.nextTradeID = t.nextTradeID
	st.lastHeight = t.env.BlockHeight
	st.lastTime = t.env.BlockTime
}

// tradeParties returns the distinct accounts on a trade. Curve swaps have the
// pool token address as counterparty, which is not a user.
func tradeParties(tr Trade) []string {
	if tr.Source == SourceCurve {
		if tr.Side == types.SideBuy {
			return []string{tr.Buyer}
		}
		return []string{tr.Seller}
	}
	out := []string{tr.Buyer}
	if tr.Seller != tr.Buyer {
		out = append(out, tr.Seller)
	}
	return out
}
