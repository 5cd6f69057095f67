package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"tradeframe-go/internal/execution"
	"tradeframe-go/internal/market"
	"tradeframe-go/internal/metrics"
	"tradeframe-go/internal/strategy"
)

// Config sizes the simulated account and the per-callback bar window.
type Config struct {
	Symbol               string
	StartingCash         float64
	CommissionBps        float64
	LookbackBars         int
	MaxPositionPerSymbol float64
}

// Result summarizes a finished replay.
type Result struct {
	InitialValue   float64
	FinalValue     float64
	ReturnPct      float64
	MaxDrawdownPct float64
	SharpeRatio    float64
	TotalTrades    int
	WonTrades      int
	Fills          []execution.Fill
}

// WinRatePct reports won trades over total closed trades, zero when none closed.
func (r *Result) WinRatePct() float64 {
	if r.TotalTrades == 0 {
		return 0
	}
	return float64(r.WonTrades) / float64(r.TotalTrades) * 100
}

// Log writes the report the way the CLI presents it.
func (r *Result) Log(log zerolog.Logger) {
	log.Info().
		Float64("initial_value", r.InitialValue).
		Float64("final_value", r.FinalValue).
		Float64("return_pct", r.ReturnPct).
		Float64("max_drawdown_pct", r.MaxDrawdownPct).
		Float64("sharpe_ratio", r.SharpeRatio).
		Int("total_trades", r.TotalTrades).
		Int("won_trades", r.WonTrades).
		Float64("win_rate_pct", r.WinRatePct()).
		Msg("backtest complete")
}

// Backtester feeds historical bars to a strategy in chronological order, one
// callback per bar, against a simulated account. Execution is long-only: buys
// happen only when flat, sells are clamped to the held quantity, and fills
// land at the bar close.
type Backtester struct {
	log       zerolog.Logger
	strat     strategy.Strategy
	cfg       Config
	account   *Account
	ledger    *Ledger
	recorders []FillRecorder
}

// New builds a backtester; extra recorders (e.g. a JSONL fill log) receive
// every fill alongside the in-memory ledger.
func New(strat strategy.Strategy, cfg Config, log zerolog.Logger, recorders ...FillRecorder) *Backtester {
	if cfg.LookbackBars <= 0 {
		cfg.LookbackBars = 100
	}
	if cfg.StartingCash <= 0 {
		cfg.StartingCash = 10000
	}
	return &Backtester{
		log:       log,
		strat:     strat,
		cfg:       cfg,
		account:   NewAccount(cfg.StartingCash, cfg.CommissionBps, cfg.MaxPositionPerSymbol),
		ledger:    NewLedger(64),
		recorders: recorders,
	}
}

// Account exposes the simulated ledger, mostly for tests and reporting.
func (b *Backtester) Account() *Account { return b.account }

// Run replays the bars and returns the result report. Bars must be in
// chronological order; an out-of-order input is an error, not a reorder.
func (b *Backtester) Run(bars []market.Bar) (*Result, error) {
	if len(bars) == 0 {
		return nil, errors.New("no bars to replay")
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return nil, fmt.Errorf("bars out of order at index %d (%s !> %s)",
				i, bars[i].Timestamp, bars[i-1].Timestamp)
		}
	}

	b.strat.Initialize()
	b.log.Info().Str("strategy", b.strat.Name()).Float64("starting_cash", b.cfg.StartingCash).Int("bars", len(bars)).Msg("backtest started")

	symbol := b.cfg.Symbol
	peak := b.cfg.StartingCash
	var maxDrawdown float64
	totalTrades, wonTrades := 0, 0
	equities := make([]float64, 0, len(bars))

	for i := range bars {
		start := i + 1 - b.cfg.LookbackBars
		if start < 0 {
			start = 0
		}
		window := market.Window(bars[start : i+1])

		sig := b.strat.OnData(window)
		metrics.SignalsTotal.WithLabelValues(b.strat.Name(), string(sig.Action)).Inc()

		price := bars[i].Close
		if sig.Actionable() {
			switch sig.Action {
			case market.Buy:
				// Long-only replay enters only from flat.
				if b.account.Position(symbol) == 0 {
					if _, err := b.account.MarketFill(symbol, execution.Buy, float64(sig.Quantity), price); err != nil {
						b.log.Debug().Err(err).Str("reason", sig.Reason).Msg("buy skipped")
					} else {
						b.record(execution.Fill{Symbol: symbol, Side: execution.Buy, Qty: float64(sig.Quantity), Price: price, Ts: bars[i].Timestamp})
					}
				}
			case market.Sell:
				pos := b.account.Position(symbol)
				if pos > 0 {
					qty := float64(sig.Quantity)
					if qty > pos {
						qty = pos
					}
					realized, err := b.account.MarketFill(symbol, execution.Sell, qty, price)
					if err != nil {
						b.log.Debug().Err(err).Str("reason", sig.Reason).Msg("sell skipped")
					} else {
						totalTrades++
						if realized > 0 {
							wonTrades++
						}
						b.record(execution.Fill{Symbol: symbol, Side: execution.Sell, Qty: qty, Price: price, Realized: realized, Ts: bars[i].Timestamp})
					}
				}
			}
		}

		equity := b.account.Snapshot(map[string]float64{symbol: price}).Equity
		equities = append(equities, equity)
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak * 100; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	finalValue := b.account.Snapshot(map[string]float64{symbol: bars[len(bars)-1].Close}).Equity
	return &Result{
		InitialValue:   b.cfg.StartingCash,
		FinalValue:     finalValue,
		ReturnPct:      (finalValue - b.cfg.StartingCash) / b.cfg.StartingCash * 100,
		MaxDrawdownPct: maxDrawdown,
		SharpeRatio:    sharpeRatio(equities),
		TotalTrades:    totalTrades,
		WonTrades:      wonTrades,
		Fills:          b.ledger.Snapshot(),
	}, nil
}

// sharpeRatio annualizes the mean over the sample stddev of per-bar equity
// returns, assuming daily bars. Zero when the series is too short or has no
// variance.
func sharpeRatio(equities []float64) float64 {
	if len(equities) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(equities)-1)
	for i := 1; i < len(equities); i++ {
		if equities[i-1] == 0 {
			return 0
		}
		returns = append(returns, equities[i]/equities[i-1]-1)
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	variance := ss / float64(len(returns)-1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(252)
}

func (b *Backtester) record(fill execution.Fill) {
	b.ledger.Record(fill)
	for _, rec := range b.recorders {
		rec.Record(fill)
	}
}
