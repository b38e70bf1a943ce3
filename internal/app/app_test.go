package app

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/client"
	"github.com/rovshanmuradov/woofpad/internal/config"
	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

const testConfig = `
server:
  addr: "127.0.0.1:0"
  shutdown_timeout: 2s
genesis:
  owner: woof1admin
  token_factory: woof1factory
  fee_collector: woof1fees
  secondary_amm_address: woof1amm
`

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func TestNewRejectsBadGenesis(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Genesis.Owner = ""
	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestRunServesAndShutsDown(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Journal.File = filepath.Join(t.TempDir(), "trades.csv")
	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunListener(ctx, l) }()

	c := client.New("http://"+l.Addr().String(), client.WithInitialInterval(10*time.Millisecond))
	require.NoError(t, c.Health(context.Background()))

	resp, err := c.Execute(context.Background(), launchpad.Envelope{
		Sender:      "woof1alice",
		BlockHeight: 1,
		BlockTime:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Msg: launchpad.ExecuteMsg{CreateToken: &launchpad.CreateTokenMsg{
			Name:           "Woof",
			Symbol:         "WOOF",
			Decimals:       6,
			MaxPriceImpact: 10,
			CurveSlope:     math.NewInt(500),
		}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Token)

	_, err = c.Execute(context.Background(), launchpad.Envelope{
		Sender:      "woof1bob",
		BlockHeight: 2,
		BlockTime:   time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC),
		Msg: launchpad.ExecuteMsg{Swap: &launchpad.SwapMsg{
			TokenAddress: resp.Token.Address,
			Amount:       math.NewInt(1_000),
			OrderType:    types.SideBuy,
		}},
	})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), err)
	assert.Equal(t, "InsufficientFunds", apiErr.Kind)

	var stats launchpad.Stats
	require.NoError(t, c.Get(context.Background(), "/api/v1/stats", &stats))
	assert.Equal(t, uint64(1), stats.TotalPairs)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}

	journal, err := os.ReadFile(cfg.Journal.File)
	require.NoError(t, err)
	assert.Contains(t, string(journal), "trade_id,time,height")
}

func TestShutdownOrder(t *testing.T) {
	s := NewShutdown(zap.NewNop())
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		s.Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestShutdownCollectsErrors(t *testing.T) {
	s := NewShutdown(zap.NewNop())
	boom := errors.New("boom")
	s.Add("ok", func(context.Context) error { return nil })
	s.Add("bad", func(context.Context) error { return boom })

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
}

func TestShutdownTimeout(t *testing.T) {
	s := NewShutdown(zap.NewNop())
	release := make(chan struct{})
	defer close(release)
	s.Add("stuck", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stuck: shutdown timeout")
}
