// ==============================================
// File: internal/dex/curve/pool.go
// ==============================================
package curve

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/types"
)

var (
	ErrCurveClosed           = errors.New("bonding curve is closed")
	ErrZeroAmount            = errors.New("amount must be positive")
	ErrInsufficientLiquidity = errors.New("insufficient curve liquidity")
	ErrPriceImpact           = errors.New("price impact exceeds limit")
	ErrAlreadyGraduated      = errors.New("pool already graduated")
	ErrThresholdNotMet       = errors.New("curve supply not sold out")
)

// Phase is the trading phase of a pair. Graduated is terminal.
type Phase string

const (
	PhaseBonding   Phase = "Bonding"
	PhaseGraduated Phase = "Graduated"
)

// Pool is the curve state of one launched token.
type Pool struct {
	TokenAddress   string   `json:"token_address"`
	PairID         string   `json:"pair_id"`
	CurveSlope     math.Int `json:"curve_slope"`
	MaxPriceImpact uint64   `json:"max_price_impact"`

	// Supply split captured when the token was created.
	CurveSupply math.Int `json:"bonding_curve_supply"`
	LPSupply    math.Int `json:"lp_supply"`

	CurveSupplySold    math.Int       `json:"curve_supply_sold"`
	ReserveBase        math.Int       `json:"reserve_base"`
	ReserveQuote       math.Int       `json:"reserve_quote"`
	LastPrice          math.LegacyDec `json:"last_price"`
	BaseVolume24h      math.Int       `json:"base_volume_24h"`
	QuoteVolume24h     math.Int       `json:"quote_volume_24h"`
	TotalTrades        uint64         `json:"total_trades"`
	TotalFeesCollected math.Int       `json:"total_fees_collected"`
	Phase              Phase          `json:"phase"`

	Volume VolumeWindow `json:"-"`
}

// Params are the per-token curve settings chosen at creation.
type Params struct {
	TokenAddress   string
	PairID         string
	CurveSlope     math.Int
	MaxPriceImpact uint64
	CurveSupply    math.Int
	LPSupply       math.Int
}

// Validate checks the creation parameters.
func (p Params) Validate() error {
	if p.CurveSlope.IsNil() || !p.CurveSlope.IsPositive() {
		return fmt.Errorf("curve_slope must be positive")
	}
	if p.CurveSlope.GT(MaxCurveSlope) {
		return fmt.Errorf("curve_slope exceeds %s", MaxCurveSlope)
	}
	if p.MaxPriceImpact == 0 {
		return fmt.Errorf("max_price_impact must be positive")
	}
	if p.MaxPriceImpact > MaxBasisPoints {
		return fmt.Errorf("max_price_impact exceeds %d bps", MaxBasisPoints)
	}
	if p.CurveSupply.IsNil() || !p.CurveSupply.IsPositive() {
		return fmt.Errorf("bonding curve supply must be positive")
	}
	if p.LPSupply.IsNil() || p.LPSupply.IsNegative() {
		return fmt.Errorf("lp supply must not be negative")
	}
	if p.CurveSupply.GT(MaxSupply) || p.LPSupply.GT(MaxSupply) {
		return fmt.Errorf("supply exceeds %s", MaxSupply)
	}
	return nil
}

// NewPool allocates a fresh pool in the Bonding phase.
func NewPool(p Params) (*Pool, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		TokenAddress:       p.TokenAddress,
		PairID:             p.PairID,
		CurveSlope:         p.CurveSlope,
		MaxPriceImpact:     p.MaxPriceImpact,
		CurveSupply:        p.CurveSupply,
		LPSupply:           p.LPSupply,
		CurveSupplySold:    math.ZeroInt(),
		ReserveBase:        math.ZeroInt(),
		ReserveQuote:       math.ZeroInt(),
		LastPrice:          BasePrice(),
		BaseVolume24h:      math.ZeroInt(),
		QuoteVolume24h:     math.ZeroInt(),
		TotalFeesCollected: math.ZeroInt(),
		Phase:              PhaseBonding,
	}, nil
}

// Graduated reports whether curve trading is closed for good.
func (p *Pool) Graduated() bool {
	return p.Phase == PhaseGraduated
}

// Remaining is the curve allocation not yet sold.
func (p *Pool) Remaining() math.Int {
	return p.CurveSupply.Sub(p.CurveSupplySold)
}

// SpotPrice is the current marginal curve price.
func (p *Pool) SpotPrice() math.LegacyDec {
	return SpotPrice(p.CurveSlope, p.CurveSupplySold)
}

// Clone returns a deep copy. math.Int and LegacyDec are immutable values.
func (p *Pool) Clone() *Pool {
	cp := *p
	cp.Volume = p.Volume.Clone()
	return &cp
}

// Quote is a priced, not yet applied, curve trade.
type Quote struct {
	Side      types.Side     `json:"side"`
	Amount    math.Int       `json:"amount"`
	Value     math.Int       `json:"value"`
	AvgPrice  math.LegacyDec `json:"avg_price"`
	NextSold  math.Int       `json:"next_supply_sold"`
	// NextPrice becomes last_price once the quote is applied.
	NextPrice math.LegacyDec `json:"next_price"`
}

// Quote prices a trade of amount tokens. It never mutates the pool.
func (p *Pool) Quote(side types.Side, amount math.Int) (Quote, error) {
	if p.Graduated() {
		return Quote{}, ErrCurveClosed
	}
	if amount.IsNil() || !amount.IsPositive() {
		return Quote{}, ErrZeroAmount
	}

	q := Quote{Side: side, Amount: amount}
	switch side {
	case types.SideBuy:
		if p.CurveSupplySold.Add(amount).GT(p.CurveSupply) {
			return Quote{}, fmt.Errorf("%w: buy %s exceeds remaining %s", ErrInsufficientLiquidity, amount, p.Remaining())
		}
		q.Value = BuyCost(p.CurveSlope, p.CurveSupplySold, amount)
		q.AvgPrice = AveragePrice(p.CurveSlope, p.CurveSupplySold, amount)
		q.NextSold = p.CurveSupplySold.Add(amount)
	case types.SideSell:
		if amount.GT(p.CurveSupplySold) {
			return Quote{}, fmt.Errorf("%w: sell %s exceeds sold %s", ErrInsufficientLiquidity, amount, p.CurveSupplySold)
		}
		q.Value = SellProceeds(p.CurveSlope, p.CurveSupplySold, amount)
		q.AvgPrice = AveragePrice(p.CurveSlope, p.CurveSupplySold.Sub(amount), amount)
		q.NextSold = p.CurveSupplySold.Sub(amount)
		if q.Value.GT(p.ReserveBase) {
			return Quote{}, fmt.Errorf("%w: proceeds %s exceed base reserve %s", ErrInsufficientLiquidity, q.Value, p.ReserveBase)
		}
	default:
		return Quote{}, fmt.Errorf("invalid side %s", side)
	}

	if !WithinImpact(q.AvgPrice, p.LastPrice, p.MaxPriceImpact) {
		return Quote{}, fmt.Errorf("%w: avg %s vs last %s (max %d bps)", ErrPriceImpact, q.AvgPrice, p.LastPrice, p.MaxPriceImpact)
	}
	q.NextPrice = SpotPrice(p.CurveSlope, q.NextSold)
	return q, nil
}

// Apply commits a quote produced by Quote on this same pool state.
func (p *Pool) Apply(q Quote, at time.Time) {
	switch q.Side {
	case types.SideBuy:
		p.ReserveBase = p.ReserveBase.Add(q.Value)
		// Tokens sold back to the curve are handed out again first.
		p.ReserveQuote = p.ReserveQuote.Sub(math.MinInt(p.ReserveQuote, q.Amount))
	case types.SideSell:
		p.ReserveBase = p.ReserveBase.Sub(q.Value)
		p.ReserveQuote = p.ReserveQuote.Add(q.Amount)
	}
	p.CurveSupplySold = q.NextSold
	p.LastPrice = q.NextPrice
	p.recordTrade(q.Value, q.Amount, at)
}

// recordTrade adds a curve fill to the rolling volume.
func (p *Pool) recordTrade(base, quote math.Int, at time.Time) {
	p.Volume.Add(at, base, quote)
	p.BaseVolume24h, p.QuoteVolume24h = p.Volume.Totals(at)
	p.TotalTrades++
}

// AddFees accounts base-denominated fees raised on this pair.
func (p *Pool) AddFees(base math.Int) {
	p.TotalFeesCollected = p.TotalFeesCollected.Add(base)
}

// Graduate closes the curve and hands back the reserves to migrate.
func (p *Pool) Graduate() (base, quote math.Int, err error) {
	if p.Graduated() {
		return math.Int{}, math.Int{}, ErrAlreadyGraduated
	}
	if !p.CurveSupplySold.Equal(p.CurveSupply) {
		return math.Int{}, math.Int{}, fmt.Errorf("%w: sold %s of %s", ErrThresholdNotMet, p.CurveSupplySold, p.CurveSupply)
	}
	base, quote = p.ReserveBase, p.ReserveQuote
	p.ReserveBase = math.ZeroInt()
	p.ReserveQuote = math.ZeroInt()
	p.Phase = PhaseGraduated
	return base, quote, nil
}

// MarshalJSON adds the derived graduated flag.
func (p Pool) MarshalJSON() ([]byte, error) {
	type plain Pool
	return json.Marshal(struct {
		plain
		Graduated bool `json:"graduated"`
	}{plain: plain(p), Graduated: p.Phase == PhaseGraduated})
}
