// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Launch events
	TokenCreated  EventType = "token.created"
	PairGraduated EventType = "pair.graduated"
	ConfigUpdated EventType = "config.updated"

	// Trading events
	TradeExecuted  EventType = "trade.executed"
	OrderPlaced    EventType = "order.placed"
	OrderCancelled EventType = "order.cancelled"
)

// AllTypes lists every event type the engine publishes.
var AllTypes = []EventType{
	TokenCreated,
	PairGraduated,
	ConfigUpdated,
	TradeExecuted,
	OrderPlaced,
	OrderCancelled,
}

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"time"`
	Height    uint64    `json:"height"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns the block time the event was committed at.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase builds the common part of an event.
func NewBase(t EventType, at time.Time, height uint64) BaseEvent {
	return BaseEvent{EventType: t, EventTime: at, Height: height}
}

// TokenCreatedEvent is emitted when a token and its curve pool are created.
type TokenCreatedEvent struct {
	BaseEvent
	TokenAddress string `json:"token_address"`
	PairID       string `json:"pair_id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Creator      string `json:"creator"`
	CurveSlope   string `json:"curve_slope"`
}

// TradeExecutedEvent is emitted for every curve swap and book fill.
type TradeExecutedEvent struct {
	BaseEvent
	TradeID      uint64 `json:"trade_id"`
	PairID       string `json:"pair_id"`
	Source       string `json:"source"`
	Side         string `json:"side"`
	Price        string `json:"price"`
	Amount       string `json:"amount"`
	QuoteAmount  string `json:"quote_amount"`
	Buyer        string `json:"buyer"`
	Seller       string `json:"seller"`
	OrderID      uint64 `json:"order_id"`
	MakerOrderID uint64 `json:"maker_order_id,omitempty"`
}

// OrderPlacedEvent is emitted when a limit order is accepted.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID         uint64 `json:"order_id"`
	PairID          string `json:"pair_id"`
	Owner           string `json:"owner"`
	Side            string `json:"side"`
	Price           string `json:"price"`
	Amount          string `json:"amount"`
	AmountRemaining string `json:"amount_remaining"`
	Status          string `json:"status"`
}

// OrderCancelledEvent is emitted when an owner cancels an order.
type OrderCancelledEvent struct {
	BaseEvent
	OrderID  uint64 `json:"order_id"`
	PairID   string `json:"pair_id"`
	Owner    string `json:"owner"`
	Refunded string `json:"refunded"`
}

// PairGraduatedEvent is emitted when a pair leaves the curve.
type PairGraduatedEvent struct {
	BaseEvent
	TokenAddress string `json:"token_address"`
	PairID       string `json:"pair_id"`
	AMMAddress   string `json:"amm_address"`
	LPAmount     string `json:"lp_amount"`
	BaseAmount   string `json:"base_amount"`
	QuoteAmount  string `json:"quote_amount"`
}

// ConfigUpdatedEvent is emitted after an admin config change.
type ConfigUpdatedEvent struct {
	BaseEvent
	Admin   string `json:"admin"`
	Enabled bool   `json:"enabled"`
}
