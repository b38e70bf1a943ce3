// =============================
// File: internal/launchpad/swap.go
// =============================
package launchpad

import (
	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/fees"
	"github.com/rovshanmuradov/woofpad/internal/events"
	"github.com/rovshanmuradov/woofpad/internal/ledger"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

// SwapSimulation is a curve quote with the taker fee applied.
type SwapSimulation struct {
	TokenAddress string         `json:"token_address"`
	PairID       string         `json:"pair_id"`
	Side         types.Side     `json:"side"`
	Amount       math.Int       `json:"amount"`
	// Value is the base cost of a buy or the base proceeds of a sell.
	Value        math.Int       `json:"value"`
	Fee          types.Coin     `json:"fee"`
	Net          types.Coin     `json:"net"`
	AvgPrice     math.LegacyDec `json:"avg_price"`
	NextPrice    math.LegacyDec `json:"next_price"`
}

// simulate prices a swap on m without touching it.
func simulate(cfg Config, m *market, side types.Side, amount math.Int) (curve.Quote, SwapSimulation, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return curve.Quote{}, SwapSimulation{}, newError(KindAmountZero, "swap amount")
	}
	if err := checkAmount("swap amount", amount); err != nil {
		return curve.Quote{}, SwapSimulation{}, err
	}
	if !side.Valid() {
		return curve.Quote{}, SwapSimulation{}, newError(KindInvalidMessage, "order_type %q", side)
	}
	q, err := m.pool.Quote(side, amount)
	if err != nil {
		return curve.Quote{}, SwapSimulation{}, classify(err)
	}

	sim := SwapSimulation{
		TokenAddress: m.token.Address,
		PairID:       m.pair.PairID,
		Side:         side,
		Amount:       amount,
		Value:        q.Value,
		AvgPrice:     q.AvgPrice,
		NextPrice:    q.NextPrice,
	}
	// The swapper pays the taker fee out of what they receive.
	if side == types.SideBuy {
		net, fee := cfg.Fees().Charge(fees.Taker, amount)
		sim.Net, sim.Fee = types.NewCoin(m.denom(), net), types.NewCoin(m.denom(), fee)
	} else {
		net, fee := cfg.Fees().Charge(fees.Taker, q.Value)
		sim.Net, sim.Fee = types.NewCoin(cfg.BaseTokenDenom, net), types.NewCoin(cfg.BaseTokenDenom, fee)
	}
	return q, sim, nil
}

func (e *Engine) swap(t *tx, msg *SwapMsg, resp *Response) error {
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return newError(KindAmountZero, "swap amount")
	}
	if err := checkAmount("min_return", msg.MinReturn); err != nil {
		return err
	}
	m, err := t.market(msg.TokenAddress)
	if err != nil {
		return err
	}
	if msg.PairID != "" && msg.PairID != m.pair.PairID {
		return newError(KindPairNotFound, "pair %s does not trade token %s", msg.PairID, msg.TokenAddress)
	}
	cfg := t.cfg()
	q, sim, err := simulate(cfg, m, msg.OrderType, msg.Amount)
	if err != nil {
		return err
	}
	if !msg.MinReturn.IsNil() && sim.Net.Amount.LT(msg.MinReturn) {
		return newError(KindSlippageExceeded, "net %s below min_return %s", sim.Net, msg.MinReturn)
	}

	tr := Trade{
		PairID:      m.pair.PairID,
		Side:        msg.OrderType,
		Price:       q.AvgPrice,
		Amount:      msg.Amount,
		QuoteAmount: q.Value,
		MakerFee:    types.NewCoin(sim.Fee.Denom, math.ZeroInt()),
		TakerFee:    sim.Fee,
		Source:      SourceCurve,
	}
	if msg.OrderType == types.SideBuy {
		if err := t.take(cfg.BaseTokenDenom, q.Value); err != nil {
			return err
		}
		tr.Buyer, tr.Seller = t.env.Sender, m.token.Address
	} else {
		if err := t.take(m.denom(), msg.Amount); err != nil {
			return err
		}
		tr.Buyer, tr.Seller = m.token.Address, t.env.Sender
		m.pool.AddFees(sim.Fee.Amount)
		t.feesBase = t.feesBase.Add(sim.Fee.Amount)
	}
	if err := t.batch.Credit(t.env.Sender, sim.Net.Denom, sim.Net.Amount, ledger.ReasonSwap); err != nil {
		return err
	}
	if err := t.batch.Credit(cfg.FeeCollector, sim.Fee.Denom, sim.Fee.Amount, ledger.ReasonFee); err != nil {
		return err
	}
	m.pool.Apply(q, t.env.BlockTime)

	tr = t.addTrade(tr)
	t.emit(tradeEvent(tr))
	resp.Pool = m.pool.Clone()
	resp.Attributes = map[string]string{
		"pair_id":    m.pair.PairID,
		"side":       msg.OrderType.String(),
		"value":      q.Value.String(),
		"net":        sim.Net.String(),
		"fee":        sim.Fee.String(),
		"last_price": m.pool.LastPrice.String(),
	}
	return nil
}

func tradeEvent(tr Trade) events.TradeExecutedEvent {
	return events.TradeExecutedEvent{
		BaseEvent:    events.NewBase(events.TradeExecuted, tr.Timestamp, tr.Height),
		TradeID:      tr.ID,
		PairID:       tr.PairID,
		Source:       string(tr.Source),
		Side:         tr.Side.String(),
		Price:        tr.Price.String(),
		Amount:       tr.Amount.String(),
		QuoteAmount:  tr.QuoteAmount.String(),
		Buyer:        tr.Buyer,
		Seller:       tr.Seller,
		OrderID:      tr.OrderID,
		MakerOrderID: tr.MakerOrderID,
	}
}
