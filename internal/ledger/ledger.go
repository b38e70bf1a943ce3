// internal/ledger/ledger.go
package ledger

import (
	"fmt"
	"sort"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/types"
)

// Reason tags why funds left the engine.
type Reason string

const (
	ReasonSwap      Reason = "swap"
	ReasonFill      Reason = "fill"
	ReasonFee       Reason = "fee"
	ReasonRefund    Reason = "refund"
	ReasonMigration Reason = "migration"
)

// Transfer is one payout from the engine to an account.
type Transfer struct {
	To     string   `json:"to"`
	Denom  string   `json:"denom"`
	Amount math.Int `json:"amount"`
	Reason Reason   `json:"reason"`
}

type key struct {
	addr  string
	denom string
}

// Ledger holds the balances credited by the engine. Writes only happen
// through a committed Batch.
type Ledger struct {
	balances map[key]math.Int
}

func New() *Ledger {
	return &Ledger{balances: make(map[key]math.Int)}
}

// Balance returns the credited amount of denom for addr.
func (l *Ledger) Balance(addr, denom string) math.Int {
	if v, ok := l.balances[key{addr, denom}]; ok {
		return v
	}
	return math.ZeroInt()
}

// Balances lists every non-zero balance of addr sorted by denom.
func (l *Ledger) Balances(addr string) types.Coins {
	var out types.Coins
	for k, v := range l.balances {
		if k.addr == addr && v.IsPositive() {
			out = append(out, types.NewCoin(k.denom, v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}

// Begin opens a batch staged on top of the ledger.
func (l *Ledger) Begin() *Batch {
	return &Batch{parent: l, deltas: make(map[key]math.Int)}
}

// Batch stages credits for one message.
type Batch struct {
	parent    *Ledger
	deltas    map[key]math.Int
	transfers []Transfer
}

// Credit pays amount of denom to addr. Zero amounts are dropped.
func (b *Batch) Credit(to, denom string, amount math.Int, reason Reason) error {
	if amount.IsNil() || amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return fmt.Errorf("negative credit %s%s to %s", amount, denom, to)
	}
	if to == "" || denom == "" {
		return fmt.Errorf("credit of %s needs an account and a denom", amount)
	}
	k := key{to, denom}
	if cur, ok := b.deltas[k]; ok {
		b.deltas[k] = cur.Add(amount)
	} else {
		b.deltas[k] = amount
	}
	b.transfers = append(b.transfers, Transfer{To: to, Denom: denom, Amount: amount, Reason: reason})
	return nil
}

// Balance is the committed balance plus what this batch staged.
func (b *Batch) Balance(addr, denom string) math.Int {
	v := b.parent.Balance(addr, denom)
	if d, ok := b.deltas[key{addr, denom}]; ok {
		v = v.Add(d)
	}
	return v
}

// Transfers returns the staged payouts in the order they were made.
func (b *Batch) Transfers() []Transfer {
	return append([]Transfer(nil), b.transfers...)
}

// Total sums the staged credits of denom for a reason.
func (b *Batch) Total(denom string, reason Reason) math.Int {
	total := math.ZeroInt()
	for _, t := range b.transfers {
		if t.Denom == denom && t.Reason == reason {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Commit writes the staged credits to the ledger. It cannot fail.
func (b *Batch) Commit() {
	for k, d := range b.deltas {
		b.parent.balances[k] = b.parent.Balance(k.addr, k.denom).Add(d)
	}
	b.deltas = nil
}
