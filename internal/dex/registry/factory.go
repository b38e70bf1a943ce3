// internal/dex/registry/factory.go
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

// MintRequest asks the token factory to issue a new fungible token.
type MintRequest struct {
	Creator     string
	Sequence    uint64
	Name        string
	Symbol      string
	Decimals    uint8
	URI         string
	TotalSupply math.Int
	// Recipient receives the whole minted supply, normally the engine.
	Recipient string
}

// MintedToken is the handle returned by the factory.
type MintedToken struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

// Factory issues token denoms. The engine only depends on this contract.
type Factory interface {
	Mint(ctx context.Context, req MintRequest) (MintedToken, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, req MintRequest) (MintedToken, error)

func (f FactoryFunc) Mint(ctx context.Context, req MintRequest) (MintedToken, error) {
	return f(ctx, req)
}

// LocalFactory mints in process with deterministic addresses, so replaying the
// same messages yields the same token addresses.
type LocalFactory struct {
	prefix string

	mu     sync.RWMutex
	minted map[string]MintRequest
}

// NewLocalFactory creates a factory whose addresses start with prefix.
func NewLocalFactory(prefix string) *LocalFactory {
	if prefix == "" {
		prefix = "woof"
	}
	return &LocalFactory{prefix: prefix, minted: make(map[string]MintRequest)}
}

// DeriveAddress hashes creator, sequence, name and symbol into an address.
func DeriveAddress(prefix string, req MintRequest) string {
	salt := fmt.Sprintf("%s_token_%d", prefix, req.Sequence)
	sum := sha256.Sum256([]byte(salt + "\x00" + req.Creator + "\x00" + req.Name + "\x00" + req.Symbol))
	return prefix + "1" + hex.EncodeToString(sum[:20])
}

func (f *LocalFactory) Mint(ctx context.Context, req MintRequest) (MintedToken, error) {
	if err := ctx.Err(); err != nil {
		return MintedToken{}, err
	}
	if req.TotalSupply.IsNil() || !req.TotalSupply.IsPositive() {
		return MintedToken{}, fmt.Errorf("total supply must be positive")
	}
	addr := DeriveAddress(f.prefix, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.minted[addr]; ok {
		return MintedToken{}, fmt.Errorf("token %s already minted", addr)
	}
	f.minted[addr] = req
	return MintedToken{Address: addr, Denom: addr}, nil
}

// Minted returns the request a token was minted with.
func (f *LocalFactory) Minted(address string) (MintRequest, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	req, ok := f.minted[address]
	return req, ok
}
