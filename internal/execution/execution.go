// Package execution handles order submission against the brokerage.
package execution

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tradeframe-go/internal/broker"
	"tradeframe-go/internal/market"
	"tradeframe-go/internal/metrics"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy indicates a long entry or add.
	Buy Side = "BUY"
	// Sell indicates a long reduction or exit.
	Sell Side = "SELL"
)

// SideFor maps a signal action onto an order side; hold maps to nothing.
func SideFor(action market.Action) (Side, bool) {
	switch action {
	case market.Buy:
		return Buy, true
	case market.Sell:
		return Sell, true
	default:
		return "", false
	}
}

// Action converts the side back to the shared signal vocabulary.
func (s Side) Action() market.Action {
	if s == Sell {
		return market.Sell
	}
	return market.Buy
}

// Order represents a placement request the executor can process.
type Order struct {
	Symbol string
	Side   Side
	Qty    int
	Price  float64 // reference price for notional checks; fills are market
	Reason string
}

// Fill records an execution for ledgers and recorders.
type Fill struct {
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Qty        float64   `json:"qty"`
	Price      float64   `json:"price"`
	Commission float64   `json:"commission"`
	Realized   float64   `json:"realized"`
	Ts         time.Time `json:"ts"`
}

// Executor submits orders to a venue.
type Executor interface {
	Submit(order Order) error
}

// BrokerExecutor routes orders to the brokerage as day market orders.
type BrokerExecutor struct {
	trader broker.Trader
	log    zerolog.Logger
}

// NewBrokerExecutor wraps a broker.Trader for live submission.
func NewBrokerExecutor(trader broker.Trader, log zerolog.Logger) *BrokerExecutor {
	return &BrokerExecutor{trader: trader, log: log}
}

// Submit places the order and surfaces SDK errors unchanged; no retries.
func (e *BrokerExecutor) Submit(order Order) error {
	if order.Qty <= 0 {
		return fmt.Errorf("order quantity must be positive, got %d", order.Qty)
	}
	id, err := e.trader.PlaceMarketOrder(order.Symbol, order.Side.Action(), order.Qty)
	if err != nil {
		return err
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	e.log.Info().Str("sym", order.Symbol).Str("side", string(order.Side)).Int("qty", order.Qty).Str("order_id", id).Str("reason", order.Reason).Msg("submit order")
	return nil
}

// LogExecutor logs the would-be order instead of submitting it; dry runs and
// tests use it.
type LogExecutor struct{ log zerolog.Logger }

// NewLogExecutor wraps a zerolog logger.
func NewLogExecutor(log zerolog.Logger) *LogExecutor { return &LogExecutor{log: log} }

// Submit records the order in the log only.
func (e *LogExecutor) Submit(order Order) error {
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	e.log.Info().Str("sym", order.Symbol).Str("side", string(order.Side)).Int("qty", order.Qty).Float64("px", order.Price).Str("reason", order.Reason).Msg("submit order (dry run)")
	return nil
}
