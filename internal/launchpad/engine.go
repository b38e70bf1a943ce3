// =============================
// File: internal/launchpad/engine.go
// =============================
package launchpad

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/dex/amm"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
	"github.com/rovshanmuradov/woofpad/internal/events"
)

// Recorder receives engine metrics. The metrics collector implements it.
type Recorder interface {
	ObserveMessage(action string, kind string, took time.Duration)
	AddTrades(source string, n int)
	SetOpenOrders(n uint64)
	SetGraduatedPairs(n uint64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMessage(string, string, time.Duration) {}
func (nopRecorder) AddTrades(string, int)                        {}
func (nopRecorder) SetOpenOrders(uint64)                         {}
func (nopRecorder) SetGraduatedPairs(uint64)                     {}

// Option customises an Engine.
type Option func(*Engine)

// WithFactory sets the token factory collaborator.
func WithFactory(f registry.Factory) Option {
	return func(e *Engine) { e.factory = f }
}

// WithSecondaryAMM sets the venue that receives graduated liquidity.
func WithSecondaryAMM(s amm.SecondaryAMM) Option {
	return func(e *Engine) { e.secondary = s }
}

// WithPublisher sets where committed events go.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is the launch venue state machine. Execute is serialized by a
// write lock; queries share a read lock on committed state.
type Engine struct {
	mu sync.RWMutex
	st *state

	factory   registry.Factory
	secondary amm.SecondaryAMM
	publisher events.Publisher
	recorder  Recorder
	logger    *zap.Logger
}

// New creates an engine from the genesis config.
func New(genesis Config, opts ...Option) (*Engine, error) {
	if err := genesis.Validate(); err != nil {
		return nil, wrapError(KindInvalidConfig, err, "genesis config")
	}
	e := &Engine{
		st:        newState(genesis),
		publisher: events.Discard,
		recorder:  nopRecorder{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("engine")
	if e.factory == nil {
		e.factory = registry.NewLocalFactory("woof")
	}
	if e.secondary == nil {
		e.secondary = amm.NewVenue(0, e.logger)
	}
	return e, nil
}

// Execute validates and applies one message atomically. On error nothing
// changes.
func (e *Engine) Execute(ctx context.Context, env Envelope) (*Response, error) {
	start := time.Now()
	action, err := env.Msg.Action()
	if err != nil {
		e.recorder.ObserveMessage("unknown", string(KindInvalidMessage), time.Since(start))
		return nil, err
	}

	resp, committed, openOrders, graduated, err := e.apply(ctx, action, env)

	took := time.Since(start)
	if err != nil {
		kind, _ := KindOf(err)
		e.recorder.ObserveMessage(action, string(kind), took)
		e.logger.Debug("Message rejected",
			zap.String("action", action),
			zap.String("sender", env.Sender),
			zap.Uint64("height", env.BlockHeight),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, err
	}

	e.recorder.ObserveMessage(action, "ok", took)
	e.recorder.SetOpenOrders(openOrders)
	e.recorder.SetGraduatedPairs(graduated)
	for _, source := range []TradeSource{SourceCurve, SourceBook} {
		if n := countSource(resp.Trades, source); n > 0 {
			e.recorder.AddTrades(string(source), n)
		}
	}
	e.logger.Info("Message executed",
		zap.String("action", action),
		zap.String("sender", env.Sender),
		zap.Uint64("height", env.BlockHeight),
		zap.Int("trades", len(resp.Trades)),
		zap.Int("transfers", len(resp.Transfers)),
		zap.Duration("took", took))

	for _, ev := range committed {
		if err := e.publisher.Publish(ev); err != nil {
			e.logger.Warn("Event not published",
				zap.String("event_type", string(ev.Type())),
				zap.Error(err))
		}
	}
	return resp, nil
}

// apply runs one message under the write lock. A panic inside the message
// is reported as an error and its staged writes are dropped.
func (e *Engine) apply(ctx context.Context, action string, env Envelope) (resp *Response, committed []events.Event, openOrders, graduated uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Message aborted",
				zap.String("action", action),
				zap.String("sender", env.Sender),
				zap.Any("panic", r))
			resp, committed = nil, nil
			err = newError(KindInvalidMessage, "%s aborted: %v", action, r)
		}
	}()

	resp, committed, err = e.execute(ctx, action, env)
	return resp, committed, e.st.stats.OpenOrders, e.st.stats.GraduatedPairs, err
}

func (e *Engine) execute(ctx context.Context, action string, env Envelope) (*Response, []events.Event, error) {
	if err := validateEnvelope(env); err != nil {
		return nil, nil, err
	}
	if err := e.st.checkBlock(env); err != nil {
		return nil, nil, err
	}
	t := e.st.begin(env)
	if action != ActionUpdateConfig && !t.cfg().Enabled {
		return nil, nil, newError(KindTradingDisabled, "%s while disabled", action)
	}

	resp := &Response{Action: action}
	var err error
	switch action {
	case ActionCreateToken:
		err = e.createToken(ctx, t, env.Msg.CreateToken, resp)
	case ActionSwap:
		err = e.swap(t, env.Msg.Swap, resp)
	case ActionPlaceLimitOrder:
		err = e.placeLimitOrder(t, env.Msg.PlaceLimitOrder, resp)
	case ActionCancelOrder:
		err = e.cancelOrder(t, env.Msg.CancelOrder, resp)
	case ActionGraduate:
		err = e.graduate(ctx, t, env.Msg.Graduate, resp)
	case ActionUpdateConfig:
		err = e.updateConfig(t, env.Msg.UpdateConfig, resp)
	}
	if err == nil {
		err = t.refundUnused()
	}
	if err != nil {
		return nil, nil, classify(err)
	}

	if err := t.register(); err != nil {
		return nil, nil, classify(err)
	}
	resp.Trades = append([]Trade{}, t.trades...)
	resp.Transfers = t.batch.Transfers()
	t.commit()
	return resp, t.events, nil
}

func validateEnvelope(env Envelope) error {
	if env.Sender == "" {
		return newError(KindInvalidMessage, "sender is required")
	}
	if env.BlockTime.IsZero() {
		return newError(KindInvalidMessage, "block_time is required")
	}
	if len(env.Funds) > maxFundsEntries {
		return newError(KindInvalidMessage, "%d funds entries, at most %d", len(env.Funds), maxFundsEntries)
	}
	for _, c := range env.Funds {
		if c.Denom == "" || c.Amount.IsNil() || c.Amount.IsNegative() {
			return newError(KindInvalidMessage, "invalid funds entry %q", c.Denom)
		}
		if err := checkAmount("funds "+c.Denom, c.Amount); err != nil {
			return err
		}
	}
	return nil
}

func countSource(trades []Trade, source TradeSource) int {
	n := 0
	for _, tr := range trades {
		if tr.Source == source {
			n++
		}
	}
	return n
}
