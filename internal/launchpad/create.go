// =============================
// File: internal/launchpad/create.go
// =============================
package launchpad

import (
	"context"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/orderbook"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/events"
)

func (e *Engine) createToken(ctx context.Context, t *tx, msg *CreateTokenMsg, resp *Response) error {
	if err := registry.ValidateMetadata(msg.Name, msg.Symbol, msg.Decimals); err != nil {
		return wrapError(KindInvalidConfig, err, "token metadata")
	}
	if msg.MaxPriceImpact <= 0 {
		return newError(KindInvalidConfig, "max_price_impact must be positive, got %d", msg.MaxPriceImpact)
	}
	cfg := t.cfg()
	pairID := registry.PairID(msg.Symbol, cfg.BaseTokenDenom)
	params := curve.Params{
		PairID:         pairID,
		CurveSlope:     msg.CurveSlope,
		MaxPriceImpact: uint64(msg.MaxPriceImpact),
		CurveSupply:    cfg.BondingCurveSupply,
		LPSupply:       cfg.LPSupply,
	}
	if err := params.Validate(); err != nil {
		return wrapError(KindInvalidConfig, err, "curve params")
	}
	if !cfg.BondingCurveSupply.Add(cfg.LPSupply).Equal(cfg.QuoteTokenTotalSupply) {
		return newError(KindInvalidConfig, "supply split does not add up to %s", cfg.QuoteTokenTotalSupply)
	}
	if err := t.st.registry.CheckAvailable(msg.Name, msg.Symbol, pairID); err != nil {
		return err
	}

	// Minting is the only external side effect, so it runs after every
	// check that can reject the message.
	minted, err := e.factory.Mint(ctx, registry.MintRequest{
		Creator:     t.env.Sender,
		Sequence:    t.st.tokenSeq,
		Name:        msg.Name,
		Symbol:      msg.Symbol,
		Decimals:    msg.Decimals,
		URI:         msg.URI,
		TotalSupply: cfg.QuoteTokenTotalSupply,
		Recipient:   cfg.TokenFactory,
	})
	if err != nil {
		return wrapError(KindFactoryFailed, err, "mint %s", msg.Symbol)
	}
	if _, err := t.st.registry.Token(minted.Address); err == nil {
		return newError(KindTokenExists, "address %s already registered", minted.Address)
	}
	denom := minted.Denom
	if denom == "" {
		denom = minted.Address
	}

	params.TokenAddress = minted.Address
	pool, err := curve.NewPool(params)
	if err != nil {
		return wrapError(KindInvalidConfig, err, "curve params")
	}
	info := registry.TokenInfo{
		Address:        minted.Address,
		Name:           msg.Name,
		Symbol:         msg.Symbol,
		Decimals:       msg.Decimals,
		URI:            msg.URI,
		Creator:        t.env.Sender,
		TotalSupply:    cfg.QuoteTokenTotalSupply,
		InitialPrice:   curve.BasePrice(),
		MaxPriceImpact: params.MaxPriceImpact,
		CreatedAt:      t.env.BlockTime,
		CreatedHeight:  t.env.BlockHeight,
	}
	pair := registry.TokenPair{
		PairID:        pairID,
		BaseToken:     cfg.BaseTokenDenom,
		QuoteToken:    denom,
		BaseDecimals:  registry.BaseDecimals,
		QuoteDecimals: msg.Decimals,
		Enabled:       true,
	}
	t.created = &market{
		token: info,
		pair:  pair,
		pool:  pool,
		book:  orderbook.NewBook(pairID),
		stats: newBookStats(),
	}

	resp.Token = &info
	resp.Pool = pool.Clone()
	resp.Attributes = map[string]string{
		"token_address": info.Address,
		"pair_id":       pairID,
		"denom":         denom,
	}
	t.emit(events.TokenCreatedEvent{
		BaseEvent:    events.NewBase(events.TokenCreated, t.env.BlockTime, t.env.BlockHeight),
		TokenAddress: info.Address,
		PairID:       pairID,
		Name:         info.Name,
		Symbol:       info.Symbol,
		Creator:      info.Creator,
		CurveSlope:   msg.CurveSlope.String(),
	})
	return nil
}
