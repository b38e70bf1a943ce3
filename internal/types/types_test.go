package types

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Side
	}{
		{"tagged buy", `"Buy"`, SideBuy},
		{"tagged sell", `"Sell"`, SideSell},
		{"lowercase", `"sell"`, SideSell},
		{"legacy true", `true`, SideBuy},
		{"legacy false", `false`, SideSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Side
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.want, s)
		})
	}

	var s Side
	assert.Error(t, json.Unmarshal([]byte(`"Hold"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`3`), &s))

	out, err := json.Marshal(SideSell)
	require.NoError(t, err)
	assert.Equal(t, `"Sell"`, string(out))

	_, err = json.Marshal(Side(0))
	assert.Error(t, err)
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
	assert.False(t, Side(0).Valid())
}

func TestOrderStatusActive(t *testing.T) {
	assert.True(t, StatusResting.Active())
	assert.True(t, StatusPartiallyFilled.Active())
	assert.False(t, StatusFilled.Active())
	assert.False(t, StatusCancelled.Active())
	assert.False(t, OrderStatus("Open").Valid())
}

func TestCoinsAmountOf(t *testing.T) {
	coins := Coins{
		NewCoin("uhuahua", math.NewInt(10)),
		NewCoin("token1", math.NewInt(3)),
		NewCoin("uhuahua", math.NewInt(5)),
	}
	assert.Equal(t, "15", coins.AmountOf("uhuahua").String())
	assert.True(t, coins.AmountOf("missing").IsZero())
	assert.Equal(t, []string{"uhuahua", "token1"}, coins.Denoms())
}

func TestCalculateMinReturn(t *testing.T) {
	got, err := CalculateMinReturn(math.NewInt(1000), SlippageConfig{Type: SlippagePercent, Value: "1.5"})
	require.NoError(t, err)
	assert.Equal(t, "985", got.String())

	got, err = CalculateMinReturn(math.NewInt(1000), SlippageConfig{Type: SlippageFixed, Value: "900"})
	require.NoError(t, err)
	assert.Equal(t, "900", got.String())

	got, err = CalculateMinReturn(math.NewInt(1000), SlippageConfig{Type: SlippageNone})
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = CalculateMinReturn(math.NewInt(1000), SlippageConfig{Type: SlippagePercent, Value: "150"})
	assert.Error(t, err)
}
