// Package broker wraps the brokerage SDK behind small interfaces so adapters
// and tests do not depend on Alpaca types directly.
package broker

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeframe-go/internal/market"
)

// Account is a trimmed view of the brokerage account state.
type Account struct {
	ID              string
	AccountNumber   string
	Status          string
	Currency        string
	Cash            decimal.Decimal
	Equity          decimal.Decimal
	PortfolioValue  decimal.Decimal
	BuyingPower     decimal.Decimal
	PatternDayTrader bool
	TradingBlocked  bool
	DaytradeCount   int64
}

// Trader is the order/account surface the live adapter needs.
type Trader interface {
	Account() (Account, error)
	// Position returns the held quantity for the symbol, zero when flat.
	Position(symbol string) (float64, error)
	// PlaceMarketOrder submits a day market order and returns the order ID.
	PlaceMarketOrder(symbol string, action market.Action, qty int) (string, error)
}

// BarSource fetches historical bars for backtests and live window seeding.
type BarSource interface {
	Bars(symbol string, start, end time.Time) ([]market.Bar, error)
}
