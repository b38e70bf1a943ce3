// =============================
// File: internal/launchpad/queries.go
// =============================
package launchpad

import (
	"context"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/orderbook"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 30
)

// QueryMsg is externally tagged like ExecuteMsg.
type QueryMsg struct {
	GetPool           *GetPoolQuery         `json:"get_pool,omitempty"`
	GetOrderBook      *GetOrderBookQuery    `json:"get_order_book,omitempty"`
	GetUserOrders     *GetUserOrdersQuery   `json:"get_user_orders,omitempty"`
	GetConfig         *struct{}             `json:"get_config,omitempty"`
	GetOrder          *GetOrderQuery        `json:"get_order,omitempty"`
	GetTokenInfo      *TokenQuery           `json:"get_token_info,omitempty"`
	GetCurrentPrice   *TokenQuery           `json:"get_current_price,omitempty"`
	GetRecentTrades   *GetRecentTradesQuery `json:"get_recent_trades,omitempty"`
	GetUserTrades     *GetUserTradesQuery   `json:"get_user_trades,omitempty"`
	GetUserTradeCount *AddressQuery         `json:"get_user_trade_count,omitempty"`
	GetTokenPair      *PairQuery            `json:"get_token_pair,omitempty"`
	ListTokenPairs    *ListTokenPairsQuery  `json:"list_token_pairs,omitempty"`
	GetSystemStats    *struct{}             `json:"get_system_stats,omitempty"`
	GetBalance        *GetBalanceQuery      `json:"get_balance,omitempty"`
	SimulateSwap      *SimulateSwapQuery    `json:"simulate_swap,omitempty"`
}

type GetPoolQuery struct {
	TokenAddress string `json:"token_address"`
}

type GetOrderBookQuery struct {
	PairID string `json:"pair_id"`
	Depth  int    `json:"depth,omitempty"`
}

type GetUserOrdersQuery struct {
	Address    string            `json:"address"`
	PairID     string            `json:"pair_id,omitempty"`
	Status     types.OrderStatus `json:"status,omitempty"`
	StartAfter uint64            `json:"start_after,omitempty"`
	Limit      *uint32           `json:"limit,omitempty"`
}

type GetOrderQuery struct {
	OrderID uint64 `json:"order_id"`
}

type TokenQuery struct {
	TokenAddress string `json:"token_address"`
}

type AddressQuery struct {
	Address string `json:"address"`
}

type PairQuery struct {
	PairID string `json:"pair_id"`
}

type GetRecentTradesQuery struct {
	// StartFrom is the newest trade id to include.
	StartFrom uint64  `json:"start_from,omitempty"`
	Limit     *uint32 `json:"limit,omitempty"`
}

type GetUserTradesQuery struct {
	Address    string  `json:"address"`
	PairID     string  `json:"pair_id,omitempty"`
	StartAfter uint64  `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type ListTokenPairsQuery struct {
	StartAfter string  `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type GetBalanceQuery struct {
	Address string `json:"address"`
	Denom   string `json:"denom,omitempty"`
}

type SimulateSwapQuery struct {
	TokenAddress string     `json:"token_address"`
	Amount       math.Int   `json:"amount"`
	OrderType    types.Side `json:"order_type"`
}

// Name returns the single variant that is set.
func (q QueryMsg) Name() (string, error) {
	set := map[string]bool{
		"get_pool":             q.GetPool != nil,
		"get_order_book":       q.GetOrderBook != nil,
		"get_user_orders":      q.GetUserOrders != nil,
		"get_config":           q.GetConfig != nil,
		"get_order":            q.GetOrder != nil,
		"get_token_info":       q.GetTokenInfo != nil,
		"get_current_price":    q.GetCurrentPrice != nil,
		"get_recent_trades":    q.GetRecentTrades != nil,
		"get_user_trades":      q.GetUserTrades != nil,
		"get_user_trade_count": q.GetUserTradeCount != nil,
		"get_token_pair":       q.GetTokenPair != nil,
		"list_token_pairs":     q.ListTokenPairs != nil,
		"get_system_stats":     q.GetSystemStats != nil,
		"get_balance":          q.GetBalance != nil,
		"simulate_swap":        q.SimulateSwap != nil,
	}
	name, n := "", 0
	for k, ok := range set {
		if ok {
			name = k
			n++
		}
	}
	if n != 1 {
		return "", newError(KindInvalidMessage, "expected exactly one query variant, got %d", n)
	}
	return name, nil
}

type PoolResponse struct {
	Pool      *curve.Pool `json:"pool"`
	Migration *Migration  `json:"migration,omitempty"`
}

type OrderBookResponse struct {
	PairID         string                 `json:"pair_id"`
	Bids           []orderbook.PriceLevel `json:"bids"`
	Asks           []orderbook.PriceLevel `json:"asks"`
	LastPrice      math.LegacyDec         `json:"last_price"`
	BaseVolume24h  math.Int               `json:"base_volume_24h"`
	QuoteVolume24h math.Int               `json:"quote_volume_24h"`
}

type OrdersResponse struct {
	Orders []orderbook.Order `json:"orders"`
}

type TokenInfoResponse struct {
	Token registry.TokenInfo `json:"token"`
	Pair  registry.TokenPair `json:"pair"`
}

type CurrentPriceResponse struct {
	TokenAddress string         `json:"token_address"`
	PairID       string         `json:"pair_id"`
	Price        math.LegacyDec `json:"price"`
	Phase        curve.Phase    `json:"phase"`
}

type TradesResponse struct {
	Trades []Trade `json:"trades"`
}

type TradeCountResponse struct {
	Address string `json:"address"`
	Count   uint64 `json:"count"`
}

type PairsResponse struct {
	Pairs []registry.TokenPair `json:"pairs"`
}

type BalanceResponse struct {
	Address  string      `json:"address"`
	Balances types.Coins `json:"balances"`
}

// Query answers read-only requests against committed state.
func (e *Engine) Query(ctx context.Context, q QueryMsg) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := q.Name(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := e.st

	switch {
	case q.GetPool != nil:
		m, err := st.market(q.GetPool.TokenAddress)
		if err != nil {
			return nil, err
		}
		resp := PoolResponse{Pool: m.pool.Clone()}
		if m.migration != nil {
			mig := *m.migration
			resp.Migration = &mig
		}
		return resp, nil

	case q.GetOrderBook != nil:
		m, err := st.marketByPair(q.GetOrderBook.PairID)
		if err != nil {
			return nil, err
		}
		snap := m.book.Snapshot(q.GetOrderBook.Depth)
		return OrderBookResponse{
			PairID:         snap.PairID,
			Bids:           snap.Bids,
			Asks:           snap.Asks,
			LastPrice:      m.stats.LastPrice,
			BaseVolume24h:  m.stats.BaseVolume24h,
			QuoteVolume24h: m.stats.QuoteVolume24h,
		}, nil

	case q.GetUserOrders != nil:
		return st.userOrderList(*q.GetUserOrders), nil

	case q.GetConfig != nil:
		return st.config, nil

	case q.GetOrder != nil:
		o, ok := st.orders[q.GetOrder.OrderID]
		if !ok {
			return nil, newError(KindOrderNotFound, "order %d", q.GetOrder.OrderID)
		}
		return o, nil

	case q.GetTokenInfo != nil:
		m, err := st.market(q.GetTokenInfo.TokenAddress)
		if err != nil {
			return nil, err
		}
		info, err := st.registry.Token(m.token.Address)
		if err != nil {
			return nil, classify(err)
		}
		return TokenInfoResponse{Token: info, Pair: m.pair}, nil

	case q.GetCurrentPrice != nil:
		m, err := st.market(q.GetCurrentPrice.TokenAddress)
		if err != nil {
			return nil, err
		}
		price := m.pool.SpotPrice()
		if m.pool.Graduated() {
			price = m.pool.LastPrice
			if !m.stats.LastPrice.IsNil() && m.stats.LastPrice.IsPositive() {
				price = m.stats.LastPrice
			}
		}
		return CurrentPriceResponse{
			TokenAddress: m.token.Address,
			PairID:       m.pair.PairID,
			Price:        price,
			Phase:        m.pool.Phase,
		}, nil

	case q.GetRecentTrades != nil:
		return TradesResponse{Trades: recentTrades(st.recentTrades, *q.GetRecentTrades)}, nil

	case q.GetUserTrades != nil:
		return TradesResponse{Trades: userTrades(st.userTrades[q.GetUserTrades.Address], *q.GetUserTrades)}, nil

	case q.GetUserTradeCount != nil:
		addr := q.GetUserTradeCount.Address
		return TradeCountResponse{Address: addr, Count: st.userTradeCnt[addr]}, nil

	case q.GetTokenPair != nil:
		pair, err := st.registry.Pair(q.GetTokenPair.PairID)
		if err != nil {
			return nil, classify(err)
		}
		return pair, nil

	case q.ListTokenPairs != nil:
		pairs := st.registry.Pairs(q.ListTokenPairs.StartAfter, pageLimit(q.ListTokenPairs.Limit))
		return PairsResponse{Pairs: pairs}, nil

	case q.GetSystemStats != nil:
		return st.stats, nil

	case q.GetBalance != nil:
		addr := q.GetBalance.Address
		if denom := q.GetBalance.Denom; denom != "" {
			return BalanceResponse{Address: addr, Balances: types.Coins{types.NewCoin(denom, st.ledger.Balance(addr, denom))}}, nil
		}
		return BalanceResponse{Address: addr, Balances: st.ledger.Balances(addr)}, nil

	default:
		m, err := st.market(q.SimulateSwap.TokenAddress)
		if err != nil {
			return nil, err
		}
		_, sim, err := simulate(st.config, m, q.SimulateSwap.OrderType, q.SimulateSwap.Amount)
		if err != nil {
			return nil, err
		}
		return sim, nil
	}
}

func (st *state) market(token string) (*market, error) {
	m, ok := st.markets[token]
	if !ok {
		return nil, newError(KindPairNotFound, "token %s", token)
	}
	return m, nil
}

func (st *state) marketByPair(pairID string) (*market, error) {
	token, err := st.registry.TokenByPair(pairID)
	if err != nil {
		return nil, classify(err)
	}
	return st.market(token)
}

// pageLimit applies the default and the cap to an optional limit.
func pageLimit(limit *uint32) int {
	if limit == nil || *limit == 0 {
		return DefaultPageLimit
	}
	if *limit > MaxPageLimit {
		return MaxPageLimit
	}
	return int(*limit)
}

// userOrderList returns the owner's orders newest first. Without a limit
// every match is returned.
func (st *state) userOrderList(q GetUserOrdersQuery) OrdersResponse {
	ids := st.userOrders[q.Address]
	limit := 0
	if q.Limit != nil {
		limit = pageLimit(q.Limit)
	}
	out := make([]orderbook.Order, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		o := st.orders[ids[i]]
		if q.StartAfter != 0 && o.ID >= q.StartAfter {
			continue
		}
		if q.PairID != "" && o.PairID != q.PairID {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return OrdersResponse{Orders: out}
}

func recentTrades(trades []Trade, q GetRecentTradesQuery) []Trade {
	limit := pageLimit(q.Limit)
	out := make([]Trade, 0, limit)
	for i := len(trades) - 1; i >= 0 && len(out) < limit; i-- {
		if q.StartFrom != 0 && trades[i].ID > q.StartFrom {
			continue
		}
		out = append(out, trades[i])
	}
	return out
}

func userTrades(trades []Trade, q GetUserTradesQuery) []Trade {
	limit := pageLimit(q.Limit)
	out := make([]Trade, 0, limit)
	for i := len(trades) - 1; i >= 0 && len(out) < limit; i-- {
		tr := trades[i]
		if q.StartAfter != 0 && tr.ID >= q.StartAfter {
			continue
		}
		if q.PairID != "" && tr.PairID != q.PairID {
			continue
		}
		out = append(out, tr)
	}
	return out
}
