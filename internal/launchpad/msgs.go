// =============================
// File: internal/launchpad/msgs.go
// =============================
package launchpad

import (
	"time"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/orderbook"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/ledger"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

// Action names, as used in responses, logs and metrics.
const (
	ActionCreateToken     = "create_token"
	ActionSwap            = "swap"
	ActionPlaceLimitOrder = "place_limit_order"
	ActionCancelOrder     = "cancel_order"
	ActionGraduate        = "graduate"
	ActionUpdateConfig    = "update_config"
)

// Envelope is a signed message as delivered by the host.
type Envelope struct {
	Sender      string      `json:"sender"`
	BlockHeight uint64      `json:"block_height"`
	BlockTime   time.Time   `json:"block_time"`
	Funds       types.Coins `json:"funds,omitempty"`
	Msg         ExecuteMsg  `json:"msg"`
}

// ExecuteMsg is externally tagged: exactly one field is set, e.g.
// {"swap": {...}}.
type ExecuteMsg struct {
	CreateToken     *CreateTokenMsg     `json:"create_token,omitempty"`
	Swap            *SwapMsg            `json:"swap,omitempty"`
	PlaceLimitOrder *PlaceLimitOrderMsg `json:"place_limit_order,omitempty"`
	CancelOrder     *CancelOrderMsg     `json:"cancel_order,omitempty"`
	Graduate        *GraduateMsg        `json:"graduate,omitempty"`
	UpdateConfig    *ConfigUpdate       `json:"update_config,omitempty"`
}

// Action returns the name of the single variant that is set.
func (m ExecuteMsg) Action() (string, error) {
	var actions []string
	if m.CreateToken != nil {
		actions = append(actions, ActionCreateToken)
	}
	if m.Swap != nil {
		actions = append(actions, ActionSwap)
	}
	if m.PlaceLimitOrder != nil {
		actions = append(actions, ActionPlaceLimitOrder)
	}
	if m.CancelOrder != nil {
		actions = append(actions, ActionCancelOrder)
	}
	if m.Graduate != nil {
		actions = append(actions, ActionGraduate)
	}
	if m.UpdateConfig != nil {
		actions = append(actions, ActionUpdateConfig)
	}
	if len(actions) != 1 {
		return "", newError(KindInvalidMessage, "expected exactly one message variant, got %d", len(actions))
	}
	return actions[0], nil
}

type CreateTokenMsg struct {
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Decimals       uint8    `json:"decimals"`
	URI            string   `json:"uri"`
	// MaxPriceImpact is signed so a negative value reaches validation.
	MaxPriceImpact int64    `json:"max_price_impact"`
	CurveSlope     math.Int `json:"curve_slope"`
}

type SwapMsg struct {
	PairID       string     `json:"pair_id"`
	TokenAddress string     `json:"token_address"`
	Amount       math.Int   `json:"amount"`
	MinReturn    math.Int   `json:"min_return"`
	OrderType    types.Side `json:"order_type"`
}

type PlaceLimitOrderMsg struct {
	TokenAddress string         `json:"token_address"`
	Amount       math.Int       `json:"amount"`
	Price        math.LegacyDec `json:"price"`
	// IsBuy carries the side; it still accepts a bool from older clients.
	IsBuy        types.Side     `json:"is_buy"`
}

type CancelOrderMsg struct {
	OrderID uint64 `json:"order_id"`
	PairID  string `json:"pair_id"`
}

type GraduateMsg struct {
	TokenAddress string `json:"token_address"`
}

// TradeSource tells curve swaps and book fills apart.
type TradeSource string

const (
	SourceCurve TradeSource = "curve"
	SourceBook  TradeSource = "book"
)

// Trade is an executed fill. Immutable once recorded.
type Trade struct {
	ID           uint64         `json:"id"`
	PairID       string         `json:"pair_id"`
	OrderID      uint64         `json:"order_id"`
	MakerOrderID uint64         `json:"maker_order_id,omitempty"`
	Side         types.Side     `json:"side"`
	Price        math.LegacyDec `json:"price"`
	Amount       math.Int       `json:"amount"`
	QuoteAmount  math.Int       `json:"quote_amount"`
	Buyer        string         `json:"buyer"`
	Seller       string         `json:"seller"`
	MakerFee     types.Coin     `json:"maker_fee_amount"`
	TakerFee     types.Coin     `json:"taker_fee_amount"`
	Source       TradeSource    `json:"source"`
	Timestamp    time.Time      `json:"timestamp"`
	Height       uint64         `json:"height"`
	Executed     bool           `json:"executed"`
}

// Migration records the liquidity handed to the secondary AMM.
type Migration struct {
	TokenAddress string    `json:"token_address"`
	PairID       string    `json:"pair_id"`
	AMMAddress   string    `json:"amm_address"`
	LPAmount     math.Int  `json:"lp_amount"`
	BaseAmount   math.Int  `json:"base_amount"`
	QuoteAmount  math.Int  `json:"quote_amount"`
	Height       uint64    `json:"height"`
	Time         time.Time `json:"time"`
}

// Response is the result of a committed message.
type Response struct {
	Action     string              `json:"action"`
	Trades     []Trade             `json:"trades"`
	Order      *orderbook.Order    `json:"order,omitempty"`
	Pool       *curve.Pool         `json:"pool,omitempty"`
	Token      *registry.TokenInfo `json:"token,omitempty"`
	Migration  *Migration          `json:"migration,omitempty"`
	Config     *Config             `json:"config,omitempty"`
	Transfers  []ledger.Transfer   `json:"transfers"`
	Attributes map[string]string   `json:"attributes,omitempty"`
}
