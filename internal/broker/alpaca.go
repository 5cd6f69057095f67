package broker

import (
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tradeframe-go/internal/config"
	"tradeframe-go/internal/market"
)

// Alpaca implements Trader and BarSource on top of alpaca-trade-api-go.
type Alpaca struct {
	trading *alpaca.Client
	data    *marketdata.Client
	log     zerolog.Logger
}

// NewAlpaca builds trading and market-data clients from credentials; the
// trading endpoint follows the configured paper/live mode.
func NewAlpaca(cfg config.Alpaca, log zerolog.Logger) *Alpaca {
	return &Alpaca{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.SecretKey,
			BaseURL:   cfg.BaseURL(),
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.SecretKey,
		}),
		log: log,
	}
}

// Account fetches the brokerage account and maps it to the local view.
func (a *Alpaca) Account() (Account, error) {
	acct, err := a.trading.GetAccount()
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return Account{
		ID:               acct.ID,
		AccountNumber:    acct.AccountNumber,
		Status:           string(acct.Status),
		Currency:         acct.Currency,
		Cash:             acct.Cash,
		Equity:           acct.Equity,
		PortfolioValue:   acct.PortfolioValue,
		BuyingPower:      acct.BuyingPower,
		PatternDayTrader: acct.PatternDayTrader,
		TradingBlocked:   acct.TradingBlocked,
		DaytradeCount:    acct.DaytradeCount,
	}, nil
}

// Position returns the held quantity for the symbol. The SDK errors when no
// position is open; any lookup failure reads as flat, which is what the
// long-only execution path expects.
func (a *Alpaca) Position(symbol string) (float64, error) {
	pos, err := a.trading.GetPosition(strings.ToUpper(symbol))
	if err != nil {
		return 0, nil
	}
	qty, _ := pos.Qty.Float64()
	return qty, nil
}

// PlaceMarketOrder submits a day market order sized per the signal quantity.
func (a *Alpaca) PlaceMarketOrder(symbol string, action market.Action, qty int) (string, error) {
	var side alpaca.Side
	switch action {
	case market.Buy:
		side = alpaca.Buy
	case market.Sell:
		side = alpaca.Sell
	default:
		return "", fmt.Errorf("action %q is not orderable", action)
	}

	amount := decimal.NewFromInt(int64(qty))
	order, err := a.trading.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      strings.ToUpper(symbol),
		Qty:         &amount,
		Side:        side,
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	})
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	a.log.Info().Str("symbol", symbol).Str("side", string(side)).Int("qty", qty).Str("order_id", order.ID).Msg("order placed")
	return order.ID, nil
}

// Bars fetches daily bars for the symbol over [start, end].
func (a *Alpaca) Bars(symbol string, start, end time.Time) ([]market.Bar, error) {
	bars, err := a.data.GetBars(strings.ToUpper(symbol), marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	out := make([]market.Bar, len(bars))
	for i, b := range bars {
		out[i] = market.Bar{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		}
	}
	return out, nil
}
