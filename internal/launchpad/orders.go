// =============================
// File: internal/launchpad/orders.go
// =============================
package launchpad

import (
	"strconv"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/fees"
	"github.com/rovshanmuradov/woofpad/internal/dex/orderbook"
	"github.com/rovshanmuradov/woofpad/internal/events"
	"github.com/rovshanmuradov/woofpad/internal/ledger"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

func (e *Engine) placeLimitOrder(t *tx, msg *PlaceLimitOrderMsg, resp *Response) error {
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return newError(KindAmountZero, "order amount")
	}
	if msg.Price.IsNil() || !msg.Price.IsPositive() {
		return newError(KindInvalidConfig, "order price must be positive")
	}
	if err := checkAmount("order amount", msg.Amount); err != nil {
		return err
	}
	if err := checkPrice(msg.Price); err != nil {
		return err
	}
	if !msg.IsBuy.Valid() {
		return newError(KindInvalidMessage, "is_buy %q", msg.IsBuy)
	}
	m, err := t.market(msg.TokenAddress)
	if err != nil {
		return err
	}
	if n := t.activeOrders(t.env.Sender); n >= MaxActiveOrdersPerUser {
		return newError(KindOrderLimit, "%s has %d active orders", t.env.Sender, n)
	}

	cfg := t.cfg()
	escrow := msg.Amount
	escrowDenom := m.denom()
	if msg.IsBuy == types.SideBuy {
		escrow = curve.MulDecCeil(msg.Amount, msg.Price)
		escrowDenom = cfg.BaseTokenDenom
	}
	if err := t.take(escrowDenom, escrow); err != nil {
		return err
	}

	order := &orderbook.Order{
		ID:              t.allocOrderID(),
		PairID:          m.pair.PairID,
		Owner:           t.env.Sender,
		Side:            msg.IsBuy,
		Price:           msg.Price,
		AmountTotal:     msg.Amount,
		AmountRemaining: msg.Amount,
		EscrowRemaining: escrow,
		CreatedAt:       t.env.BlockTime,
		CreatedHeight:   t.env.BlockHeight,
		Status:          types.StatusResting,
	}
	bought := math.LegacyZeroDec()
	for _, fill := range m.book.Match(order) {
		if err := e.settleFill(t, m, cfg, order, fill, &bought); err != nil {
			return err
		}
		t.putOrder(*fill.Maker)
	}
	if order.Side == types.SideBuy && order.Status == types.StatusFilled && order.EscrowRemaining.IsPositive() {
		// Price improvement against cheaper asks.
		if err := t.batch.Credit(order.Owner, cfg.BaseTokenDenom, order.EscrowRemaining, ledger.ReasonRefund); err != nil {
			return err
		}
		order.EscrowRemaining = math.ZeroInt()
	}
	if order.AmountRemaining.IsPositive() {
		if err := m.book.Insert(order); err != nil {
			return wrapError(KindInvalidMessage, err, "rest order %d", order.ID)
		}
	}
	t.putOrder(*order)
	t.trader = true

	placed := *order
	resp.Order = &placed
	resp.Attributes = map[string]string{
		"order_id": strconv.FormatUint(order.ID, 10),
		"pair_id":  order.PairID,
		"status":   string(order.Status),
		"escrow":   types.NewCoin(escrowDenom, escrow).String(),
	}
	t.emit(events.OrderPlacedEvent{
		BaseEvent:       events.NewBase(events.OrderPlaced, t.env.BlockTime, t.env.BlockHeight),
		OrderID:         order.ID,
		PairID:          order.PairID,
		Owner:           order.Owner,
		Side:            order.Side.String(),
		Price:           order.Price.String(),
		Amount:          order.AmountTotal.String(),
		AmountRemaining: order.AmountRemaining.String(),
		Status:          string(order.Status),
	})
	return nil
}

type credit struct {
	to     string
	denom  string
	amount math.Int
	reason ledger.Reason
}

// settleFill pays out one match. The buyer receives tokens and the seller
// receives base, each less the fee of their role.
func (e *Engine) settleFill(t *tx, m *market, cfg Config, taker *orderbook.Order, fill orderbook.Fill, bought *math.LegacyDec) error {
	buy, sell := taker, fill.Maker
	buyRole, sellRole := fees.Taker, fees.Maker
	if taker.Side == types.SideSell {
		buy, sell = fill.Maker, taker
		buyRole, sellRole = fees.Maker, fees.Taker
	}

	quote := fillQuote(taker, fill, bought)
	schedule := cfg.Fees()
	tokenNet, tokenFee := schedule.Charge(buyRole, fill.Amount)
	baseNet, baseFee := schedule.Charge(sellRole, quote)

	buy.EscrowRemaining = buy.EscrowRemaining.Sub(quote)
	sell.EscrowRemaining = sell.EscrowRemaining.Sub(fill.Amount)

	credits := []credit{
		{buy.Owner, m.denom(), tokenNet, ledger.ReasonFill},
		{sell.Owner, cfg.BaseTokenDenom, baseNet, ledger.ReasonFill},
		{cfg.FeeCollector, m.denom(), tokenFee, ledger.ReasonFee},
		{cfg.FeeCollector, cfg.BaseTokenDenom, baseFee, ledger.ReasonFee},
	}
	// A filled buy maker gets back the escrow rounding left over. The taker
	// side is refunded once all of its fills are settled.
	if buy != taker && buy.Status == types.StatusFilled {
		credits = append(credits, credit{buy.Owner, cfg.BaseTokenDenom, buy.EscrowRemaining, ledger.ReasonRefund})
		buy.EscrowRemaining = math.ZeroInt()
	}
	for _, c := range credits {
		if err := t.batch.Credit(c.to, c.denom, c.amount, c.reason); err != nil {
			return err
		}
	}

	makerFee, takerFee := types.NewCoin(m.denom(), tokenFee), types.NewCoin(cfg.BaseTokenDenom, baseFee)
	if taker.Side == types.SideBuy {
		makerFee, takerFee = takerFee, makerFee
	}
	m.pool.AddFees(baseFee)
	t.feesBase = t.feesBase.Add(baseFee)
	m.stats.record(fill.Price, quote, fill.Amount, t.env.BlockTime)

	tr := t.addTrade(Trade{
		PairID:       m.pair.PairID,
		OrderID:      taker.ID,
		MakerOrderID: fill.Maker.ID,
		Side:         taker.Side,
		Price:        fill.Price,
		Amount:       fill.Amount,
		QuoteAmount:  quote,
		Buyer:        buy.Owner,
		Seller:       sell.Owner,
		MakerFee:     makerFee,
		TakerFee:     takerFee,
		Source:       SourceBook,
	})
	t.emit(tradeEvent(tr))
	return nil
}

// fillQuote is the base paid for a fill. It is floored on a running total
// rather than per fill, so splitting a trade into small fills does not round
// the seller's proceeds away. A resting bid pays floor(filled*price) over its
// whole life. A buy taker pays floor of the exact value of all its fills in
// this message, tracked in bought.
func fillQuote(taker *orderbook.Order, fill orderbook.Fill, bought *math.LegacyDec) math.Int {
	if taker.Side == types.SideSell {
		after := fill.Maker.AmountTotal.Sub(fill.Maker.AmountRemaining)
		before := after.Sub(fill.Amount)
		return curve.MulDecFloor(after, fill.Price).Sub(curve.MulDecFloor(before, fill.Price))
	}
	before := bought.TruncateInt()
	*bought = bought.Add(fill.Price.MulInt(fill.Amount))
	return bought.TruncateInt().Sub(before)
}

func (e *Engine) cancelOrder(t *tx, msg *CancelOrderMsg, resp *Response) error {
	o, ok := t.order(msg.OrderID)
	if !ok || o.PairID != msg.PairID {
		return newError(KindOrderNotFound, "order %d on %s", msg.OrderID, msg.PairID)
	}
	if o.Owner != t.env.Sender {
		return newError(KindNotOwner, "order %d", o.ID)
	}
	if !o.Status.Active() {
		return newError(KindAlreadyFilled, "order %d is %s", o.ID, o.Status)
	}
	token, err := t.st.registry.TokenByPair(o.PairID)
	if err != nil {
		return err
	}
	m, err := t.market(token)
	if err != nil {
		return err
	}

	m.book.Remove(o.ID)
	denom := m.denom()
	if o.Side == types.SideBuy {
		denom = t.cfg().BaseTokenDenom
	}
	refund := types.NewCoin(denom, o.EscrowRemaining)
	if err := t.batch.Credit(o.Owner, refund.Denom, refund.Amount, ledger.ReasonRefund); err != nil {
		return err
	}
	o.EscrowRemaining = math.ZeroInt()
	o.Status = types.StatusCancelled
	t.putOrder(o)

	resp.Order = &o
	resp.Attributes = map[string]string{
		"order_id": strconv.FormatUint(o.ID, 10),
		"refund":   refund.String(),
	}
	t.emit(events.OrderCancelledEvent{
		BaseEvent: events.NewBase(events.OrderCancelled, t.env.BlockTime, t.env.BlockHeight),
		OrderID:   o.ID,
		PairID:    o.PairID,
		Owner:     o.Owner,
		Refunded:  refund.String(),
	})
	return nil
}
