// Package backtest replays historical bars through a strategy against a
// simulated cash and position ledger.
package backtest

import (
	"errors"
	"sync"

	"tradeframe-go/internal/execution"
)

const epsilon = 1e-9

type positionState struct {
	Qty     float64
	AvgCost float64
}

// Account tracks simulated cash, realized PnL, and per-symbol positions.
// Commission is charged on both sides of a trade in basis points of notional.
type Account struct {
	mu                   sync.Mutex
	startingCash         float64
	cash                 float64
	realizedPnL          float64
	commissionPaid       float64
	commissionBps        float64
	maxPositionPerSymbol float64
	positions            map[string]positionState
}

// PositionSnapshot exposes a read-only view of a single symbol position.
type PositionSnapshot struct {
	Qty         float64
	AvgCost     float64
	MarketValue float64
	Unrealized  float64
}

// Snapshot represents a view of the account state marked to market using the
// provided prices.
type Snapshot struct {
	Cash           float64
	RealizedPnL    float64
	CommissionPaid float64
	Equity         float64
	Positions      map[string]PositionSnapshot
}

// NewAccount constructs an account with starting cash, commission in basis
// points, and an optional per-symbol position cap (zero disables it).
func NewAccount(startingCash, commissionBps, maxPositionPerSymbol float64) *Account {
	return &Account{
		startingCash:         startingCash,
		cash:                 startingCash,
		commissionBps:        commissionBps,
		maxPositionPerSymbol: maxPositionPerSymbol,
		positions:            make(map[string]positionState),
	}
}

// StartingCash returns the initial bankroll used to compute returns.
func (a *Account) StartingCash() float64 { return a.startingCash }

// MarketFill executes a simulated market order at the provided price,
// mutating balances if successful, and returns the realized PnL of the fill
// (zero for buys).
func (a *Account) MarketFill(symbol string, side execution.Side, qty, price float64) (float64, error) {
	if qty <= 0 {
		return 0, errors.New("quantity must be positive")
	}
	if price <= 0 {
		return 0, errors.New("price must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.positions[symbol]
	notional := qty * price
	commission := notional * a.commissionBps / 10000

	switch side {
	case execution.Buy:
		if notional+commission > a.cash+epsilon {
			return 0, errors.New("insufficient cash for buy")
		}
		newQty := state.Qty + qty
		if a.maxPositionPerSymbol > 0 && newQty > a.maxPositionPerSymbol+epsilon {
			return 0, errors.New("position limit exceeded")
		}
		newAvg := price
		if newQty > 0 {
			newAvg = ((state.AvgCost * state.Qty) + notional) / newQty
		}
		a.cash -= notional + commission
		a.commissionPaid += commission
		a.positions[symbol] = positionState{Qty: newQty, AvgCost: newAvg}
		return 0, nil

	case execution.Sell:
		if state.Qty <= 0 || state.Qty+epsilon < qty {
			return 0, errors.New("insufficient position to sell")
		}
		realized := (price-state.AvgCost)*qty - commission
		a.realizedPnL += realized
		a.cash += notional - commission
		a.commissionPaid += commission
		newQty := state.Qty - qty
		if newQty <= epsilon {
			delete(a.positions, symbol)
		} else {
			a.positions[symbol] = positionState{Qty: newQty, AvgCost: state.AvgCost}
		}
		return realized, nil

	default:
		return 0, errors.New("unknown order side")
	}
}

// Snapshot returns a copy of balances marked using the supplied prices.
func (a *Account) Snapshot(prices map[string]float64) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	positions := make(map[string]PositionSnapshot, len(a.positions))
	equity := a.cash
	for sym, pos := range a.positions {
		mark := prices[sym]
		marketValue := pos.Qty * mark
		unrealized := (mark - pos.AvgCost) * pos.Qty
		if mark == 0 {
			marketValue = 0
			unrealized = 0
		}
		positions[sym] = PositionSnapshot{
			Qty:         pos.Qty,
			AvgCost:     pos.AvgCost,
			MarketValue: marketValue,
			Unrealized:  unrealized,
		}
		equity += marketValue
	}

	return Snapshot{
		Cash:           a.cash,
		RealizedPnL:    a.realizedPnL,
		CommissionPaid: a.commissionPaid,
		Equity:         equity,
		Positions:      positions,
	}
}

// AvailableCash reports free cash that can be deployed into new longs.
func (a *Account) AvailableCash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// Position returns the current position size for the supplied symbol.
func (a *Account) Position(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[symbol].Qty
}

// RealizedPnL returns total closed-trade profit and loss net of commission.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL
}
