package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/events"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func trade(id uint64) events.TradeExecutedEvent {
	return events.TradeExecutedEvent{
		BaseEvent:   events.NewBase(events.TradeExecuted, at, 7),
		TradeID:     id,
		PairID:      "WOOF/huahua",
		Source:      "curve",
		Side:        "Buy",
		Price:       "0.000100000250000000",
		Amount:      "1000000",
		QuoteAmount: "101",
		Buyer:       "woof1bob",
		Seller:      "woof1tok",
		OrderID:     id,
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestJournalWritesTrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "trades.csv")
	j, err := Open(path, time.Hour, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, j.Handle(context.Background(), trade(1)))
	ev := trade(2)
	ev.MakerOrderID = 9
	require.NoError(t, j.Handle(context.Background(), &ev))
	// Other events are ignored.
	require.NoError(t, j.Handle(context.Background(), events.OrderCancelledEvent{
		BaseEvent: events.NewBase(events.OrderCancelled, at, 8),
	}))
	require.NoError(t, j.Close(context.Background()))

	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"1", "2024-05-01T12:00:00Z", "7", "WOOF/huahua", "curve", "Buy",
		"0.000100000250000000", "1000000", "101", "woof1bob", "woof1tok", "1", ""}, rows[1])
	assert.Equal(t, "9", rows[2][12])
}

func TestJournalAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	for i := uint64(1); i <= 2; i++ {
		j, err := Open(path, time.Hour, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, j.Handle(context.Background(), trade(i)))
		require.NoError(t, j.Close(context.Background()))
	}
	rows := readAll(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "trade_id", rows[0][0])
}

func TestJournalConcurrentHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := Open(path, 5*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			assert.NoError(t, j.Handle(context.Background(), trade(id)))
		}(uint64(i + 1))
	}
	wg.Wait()
	records, _ := j.Stats()
	assert.Equal(t, uint64(50), records)
	require.NoError(t, j.Close(context.Background()))
	assert.Len(t, readAll(t, path), 51)
}

func TestOpenRejectsZeroInterval(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.csv"), 0, zap.NewNop())
	assert.Error(t, err)
}
