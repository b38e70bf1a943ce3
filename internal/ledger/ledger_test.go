package ledger

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchStagesUntilCommit(t *testing.T) {
	l := New()
	b := l.Begin()
	require.NoError(t, b.Credit("alice", "uhuahua", math.NewInt(10), ReasonSwap))
	require.NoError(t, b.Credit("alice", "uhuahua", math.NewInt(5), ReasonRefund))
	require.NoError(t, b.Credit("alice", "token", math.ZeroInt(), ReasonFill))

	assert.True(t, l.Balance("alice", "uhuahua").IsZero())
	assert.Equal(t, "15", b.Balance("alice", "uhuahua").String())
	assert.Len(t, b.Transfers(), 2)
	assert.Equal(t, "5", b.Total("uhuahua", ReasonRefund).String())

	b.Commit()
	assert.Equal(t, "15", l.Balance("alice", "uhuahua").String())

	coins := l.Balances("alice")
	require.Len(t, coins, 1)
	assert.Equal(t, "uhuahua", coins[0].Denom)
}

func TestDiscardedBatchLeavesNoTrace(t *testing.T) {
	l := New()
	b := l.Begin()
	require.NoError(t, b.Credit("bob", "uhuahua", math.NewInt(7), ReasonFee))
	// never committed
	_ = b
	assert.True(t, l.Balance("bob", "uhuahua").IsZero())
	assert.Empty(t, l.Balances("bob"))
}

func TestCreditRejectsBadInput(t *testing.T) {
	b := New().Begin()
	assert.Error(t, b.Credit("bob", "uhuahua", math.NewInt(-1), ReasonFee))
	assert.Error(t, b.Credit("", "uhuahua", math.NewInt(1), ReasonFee))
	assert.Error(t, b.Credit("bob", "", math.NewInt(1), ReasonFee))
	assert.Empty(t, b.Transfers())
}
