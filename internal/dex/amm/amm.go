// =============================
// File: internal/dex/amm/amm.go
// =============================
package amm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/types"
)

var (
	ErrPoolExists   = errors.New("amm pool already seeded")
	ErrPoolNotFound = errors.New("amm pool not found")
	ErrEmptyReserve = errors.New("amm reserves must be positive")
)

// Liquidity is what a graduating pair hands to the secondary venue.
type Liquidity struct {
	AMMAddress   string   `json:"amm_address"`
	TokenAddress string   `json:"token_address"`
	PairID       string   `json:"pair_id"`
	BaseDenom    string   `json:"base_denom"`
	TokenAmount  math.Int `json:"token_amount"`
	BaseAmount   math.Int `json:"base_amount"`
	Height       uint64   `json:"height"`
}

// SecondaryAMM receives migrated liquidity. An error aborts graduation.
type SecondaryAMM interface {
	AddLiquidity(ctx context.Context, liq Liquidity) error
}

// Pool is a constant product pool seeded by a graduation.
type Pool struct {
	TokenAddress string   `json:"token_address"`
	PairID       string   `json:"pair_id"`
	ReserveToken math.Int `json:"reserve_token"`
	ReserveBase  math.Int `json:"reserve_base"`
	FeeBps       uint64   `json:"fee_bps"`
}

// Venue is an in-process constant product AMM.
type Venue struct {
	mu     sync.RWMutex
	pools  map[string]*Pool
	feeBps uint64
	logger *zap.Logger
}

// NewVenue creates a venue charging feeBps on every swap input.
func NewVenue(feeBps uint64, logger *zap.Logger) *Venue {
	return &Venue{
		pools:  make(map[string]*Pool),
		feeBps: feeBps,
		logger: logger.Named("amm"),
	}
}

// AddLiquidity seeds a new pool. A token can graduate only once.
func (v *Venue) AddLiquidity(ctx context.Context, liq Liquidity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if liq.TokenAmount.IsNil() || !liq.TokenAmount.IsPositive() ||
		liq.BaseAmount.IsNil() || !liq.BaseAmount.IsPositive() {
		return fmt.Errorf("%w: token %s base %s", ErrEmptyReserve, liq.TokenAmount, liq.BaseAmount)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.pools[liq.TokenAddress]; ok {
		return fmt.Errorf("%w: %s", ErrPoolExists, liq.TokenAddress)
	}
	v.pools[liq.TokenAddress] = &Pool{
		TokenAddress: liq.TokenAddress,
		PairID:       liq.PairID,
		ReserveToken: liq.TokenAmount,
		ReserveBase:  liq.BaseAmount,
		FeeBps:       v.feeBps,
	}

	v.logger.Info("Liquidity migrated",
		zap.String("token", liq.TokenAddress),
		zap.String("pair_id", liq.PairID),
		zap.String("token_amount", liq.TokenAmount.String()),
		zap.String("base_amount", liq.BaseAmount.String()),
		zap.Uint64("height", liq.Height))
	return nil
}

// Pool returns a copy of the pool for token.
func (v *Venue) Pool(token string) (Pool, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.pools[token]
	if !ok {
		return Pool{}, false
	}
	return *p, true
}

// Quote returns the output of swapping amountIn on the token's pool. Buy
// spends base for tokens, Sell spends tokens for base.
func (v *Venue) Quote(token string, side types.Side, amountIn math.Int) (math.Int, error) {
	p, ok := v.Pool(token)
	if !ok {
		return math.Int{}, fmt.Errorf("%w: %s", ErrPoolNotFound, token)
	}
	if side == types.SideBuy {
		return CalculateOutput(p.ReserveBase, p.ReserveToken, amountIn, p.FeeBps), nil
	}
	return CalculateOutput(p.ReserveToken, p.ReserveBase, amountIn, p.FeeBps), nil
}

// CalculateOutput applies the constant product formula with the fee taken
// from the input: out = y * a' / (x + a'), a' = a * (10000 - fee) / 10000.
func CalculateOutput(reserveIn, reserveOut, amountIn math.Int, feeBps uint64) math.Int {
	if amountIn.IsNil() || !amountIn.IsPositive() || reserveIn.IsZero() || reserveOut.IsZero() {
		return math.ZeroInt()
	}
	if feeBps > 10_000 {
		feeBps = 10_000
	}
	// out < reserveOut, so only the intermediates need more than 256 bits.
	effective := new(big.Int).Mul(amountIn.BigInt(), new(big.Int).SetUint64(10_000-feeBps))
	numerator := new(big.Int).Mul(reserveOut.BigInt(), effective)
	denominator := new(big.Int).Mul(reserveIn.BigInt(), big.NewInt(10_000))
	denominator.Add(denominator, effective)
	return math.NewIntFromBigInt(numerator.Quo(numerator, denominator))
}
