// internal/dex/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"cosmossdk.io/math"
)

var (
	ErrTokenExists   = errors.New("token already registered")
	ErrTokenNotFound = errors.New("token not found")
	ErrPairNotFound  = errors.New("pair not found")
)

// BaseDecimals is the precision of the native base denom.
const BaseDecimals = 6

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

// TokenInfo describes a launched token.
type TokenInfo struct {
	Address        string         `json:"address"`
	Name           string         `json:"name"`
	Symbol         string         `json:"symbol"`
	Decimals       uint8          `json:"decimals"`
	URI            string         `json:"uri"`
	Creator        string         `json:"creator"`
	TotalSupply    math.Int       `json:"total_supply"`
	InitialPrice   math.LegacyDec `json:"initial_price"`
	MaxPriceImpact uint64         `json:"max_price_impact"`
	Graduated      bool           `json:"graduated"`
	CreatedAt      time.Time      `json:"created_at"`
	CreatedHeight  uint64         `json:"created_height"`
}

// TokenPair is the tradable (token, base denom) combination.
type TokenPair struct {
	PairID        string `json:"pair_id"`
	BaseToken     string `json:"base_token"`
	QuoteToken    string `json:"quote_token"`
	BaseDecimals  uint8  `json:"base_decimals"`
	QuoteDecimals uint8  `json:"quote_decimals"`
	Enabled       bool   `json:"enabled"`
}

// PairID derives the pair identifier, e.g. WOOF + uhuahua -> WOOF/huahua.
func PairID(symbol, baseDenom string) string {
	return symbol + "/" + strings.TrimPrefix(baseDenom, "u")
}

// ValidateMetadata checks the user supplied token fields.
func ValidateMetadata(name, symbol string, decimals uint8) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("token name is required")
	}
	if len(name) > 64 {
		return errors.New("token name longer than 64 characters")
	}
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("symbol %q must be 1-12 alphanumeric characters", symbol)
	}
	if decimals > 18 {
		return fmt.Errorf("decimals %d above 18", decimals)
	}
	return nil
}

func nameKey(name, symbol string) string {
	return strings.ToLower(name) + "\x00" + strings.ToLower(symbol)
}

// Registry indexes launched tokens by address, pair and name+symbol.
// It is not safe for concurrent use; the engine serializes access.
type Registry struct {
	tokens map[string]TokenInfo
	pairs  map[string]TokenPair
	byPair map[string]string
	names  map[string]string
}

func New() *Registry {
	return &Registry{
		tokens: make(map[string]TokenInfo),
		pairs:  make(map[string]TokenPair),
		byPair: make(map[string]string),
		names:  make(map[string]string),
	}
}

// CheckAvailable fails if the name+symbol or the derived pair is taken.
func (r *Registry) CheckAvailable(name, symbol, pairID string) error {
	if addr, ok := r.names[nameKey(name, symbol)]; ok {
		return fmt.Errorf("%w: %s/%s at %s", ErrTokenExists, name, symbol, addr)
	}
	if addr, ok := r.byPair[pairID]; ok {
		return fmt.Errorf("%w: pair %s at %s", ErrTokenExists, pairID, addr)
	}
	return nil
}

// Register adds a token and its pair.
func (r *Registry) Register(info TokenInfo, pair TokenPair) error {
	if err := r.CheckAvailable(info.Name, info.Symbol, pair.PairID); err != nil {
		return err
	}
	if _, ok := r.tokens[info.Address]; ok {
		return fmt.Errorf("%w: address %s", ErrTokenExists, info.Address)
	}
	r.tokens[info.Address] = info
	r.pairs[pair.PairID] = pair
	r.byPair[pair.PairID] = info.Address
	r.names[nameKey(info.Name, info.Symbol)] = info.Address
	return nil
}

// Token looks a token up by address.
func (r *Registry) Token(address string) (TokenInfo, error) {
	info, ok := r.tokens[address]
	if !ok {
		return TokenInfo{}, fmt.Errorf("%w: %s", ErrTokenNotFound, address)
	}
	return info, nil
}

// Pair looks a pair up by id.
func (r *Registry) Pair(pairID string) (TokenPair, error) {
	pair, ok := r.pairs[pairID]
	if !ok {
		return TokenPair{}, fmt.Errorf("%w: %s", ErrPairNotFound, pairID)
	}
	return pair, nil
}

// TokenByPair resolves the token address trading on pairID.
func (r *Registry) TokenByPair(pairID string) (string, error) {
	addr, ok := r.byPair[pairID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPairNotFound, pairID)
	}
	return addr, nil
}

// MarkGraduated flips the informational flag on TokenInfo.
func (r *Registry) MarkGraduated(address string) {
	if info, ok := r.tokens[address]; ok {
		info.Graduated = true
		r.tokens[address] = info
	}
}

// Pairs lists pairs ascending by id, strictly after startAfter.
func (r *Registry) Pairs(startAfter string, limit int) []TokenPair {
	ids := make([]string, 0, len(r.pairs))
	for id := range r.pairs {
		if id > startAfter {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]TokenPair, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.pairs[id])
	}
	return out
}

// Len is the number of registered tokens.
func (r *Registry) Len() int { return len(r.tokens) }
