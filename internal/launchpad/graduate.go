// =============================
// File: internal/launchpad/graduate.go
// =============================
package launchpad

import (
	"context"

	"github.com/rovshanmuradov/woofpad/internal/dex/amm"
	"github.com/rovshanmuradov/woofpad/internal/events"
	"github.com/rovshanmuradov/woofpad/internal/ledger"
)

func (e *Engine) graduate(ctx context.Context, t *tx, msg *GraduateMsg, resp *Response) error {
	cfg := t.cfg()
	if t.env.Sender != cfg.Owner {
		return newError(KindUnauthorized, "graduate is admin only")
	}
	m, err := t.market(msg.TokenAddress)
	if err != nil {
		return err
	}
	base, quote, err := m.pool.Graduate()
	if err != nil {
		return err
	}

	mig := &Migration{
		TokenAddress: m.token.Address,
		PairID:       m.pair.PairID,
		AMMAddress:   cfg.SecondaryAMMAddress,
		LPAmount:     m.pool.LPSupply,
		BaseAmount:   base,
		QuoteAmount:  quote,
		Height:       t.env.BlockHeight,
		Time:         t.env.BlockTime,
	}
	tokens := mig.LPAmount.Add(mig.QuoteAmount)
	if err := t.batch.Credit(mig.AMMAddress, cfg.BaseTokenDenom, base, ledger.ReasonMigration); err != nil {
		return err
	}
	if err := t.batch.Credit(mig.AMMAddress, m.denom(), tokens, ledger.ReasonMigration); err != nil {
		return err
	}
	m.migration = mig

	// AddLiquidity runs last; nothing after it can fail.
	err = e.secondary.AddLiquidity(ctx, amm.Liquidity{
		AMMAddress:   mig.AMMAddress,
		TokenAddress: mig.TokenAddress,
		PairID:       mig.PairID,
		BaseDenom:    cfg.BaseTokenDenom,
		TokenAmount:  tokens,
		BaseAmount:   base,
		Height:       mig.Height,
	})
	if err != nil {
		return wrapError(KindMigrationFailed, err, "add liquidity for %s", mig.PairID)
	}

	resp.Pool = m.pool.Clone()
	resp.Migration = mig
	resp.Attributes = map[string]string{
		"pair_id":      mig.PairID,
		"amm_address":  mig.AMMAddress,
		"base_amount":  base.String(),
		"token_amount": tokens.String(),
	}
	t.emit(events.PairGraduatedEvent{
		BaseEvent:    events.NewBase(events.PairGraduated, t.env.BlockTime, t.env.BlockHeight),
		TokenAddress: mig.TokenAddress,
		PairID:       mig.PairID,
		AMMAddress:   mig.AMMAddress,
		LPAmount:     mig.LPAmount.String(),
		BaseAmount:   base.String(),
		QuoteAmount:  quote.String(),
	})
	return nil
}
