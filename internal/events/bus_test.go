package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tradeEvent(id uint64) *TradeExecutedEvent {
	return &TradeExecutedEvent{
		BaseEvent: NewBase(TradeExecuted, time.Unix(1714564800, 0).UTC(), 7),
		TradeID:   id,
		PairID:    "WOOF/huahua",
	}
}

func TestPublishDeliversAsync(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer bus.Shutdown(context.Background())

	got := make(chan Event, 1)
	bus.SubscribeFunc(TradeExecuted, func(_ context.Context, e Event) error {
		got <- e
		return nil
	})

	require.NoError(t, bus.Publish(tradeEvent(1)))

	select {
	case e := <-got:
		assert.Equal(t, TradeExecuted, e.Type())
		assert.Equal(t, uint64(1), e.(*TradeExecutedEvent).TradeID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, uint64(1), bus.Stats().Published)
}

func TestPublishSyncCollectsErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeFunc(OrderPlaced, func(context.Context, Event) error { return boom })

	err := bus.PublishSync(context.Background(), &OrderPlacedEvent{BaseEvent: NewBase(OrderPlaced, time.Now(), 1)})
	assert.ErrorIs(t, err, boom)

	// no handlers for this type
	assert.NoError(t, bus.PublishSync(context.Background(), tradeEvent(2)))
}

func TestSubscribeAllAndUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer bus.Shutdown(context.Background())

	var mu sync.Mutex
	var seen []EventType
	sub := bus.SubscribeAll(HandlerFunc(func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type())
		return nil
	}))
	assert.Equal(t, len(AllTypes), bus.Stats().EventTypes)

	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(3)))
	require.NoError(t, bus.PublishSync(context.Background(), &ConfigUpdatedEvent{BaseEvent: NewBase(ConfigUpdated, time.Now(), 2)}))

	sub.Unsubscribe()
	assert.Equal(t, 0, bus.Stats().EventTypes)
	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(4)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{TradeExecuted, ConfigUpdated}, seen)
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.ErrorIs(t, bus.Publish(tradeEvent(5)), ErrBusClosed)
}

func TestDiscardPublisher(t *testing.T) {
	assert.NoError(t, Discard.Publish(tradeEvent(6)))
}
