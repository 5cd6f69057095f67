// Package live drives a strategy against the brokerage, one callback per
// polled bar.
package live

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tradeframe-go/internal/broker"
	"tradeframe-go/internal/execution"
	"tradeframe-go/internal/market"
	"tradeframe-go/internal/metrics"
	"tradeframe-go/internal/risk"
	"tradeframe-go/internal/strategy"
)

// Trader consumes bars from a feed channel, maintains the rolling window, and
// translates signals into market orders. Everything runs on the caller's
// goroutine; there is no concurrent order submission.
type Trader struct {
	log       zerolog.Logger
	strat     strategy.Strategy
	symbol    string
	broker    broker.Trader
	exec      execution.Executor
	limits    risk.Limits
	maxWindow int
	window    market.Window
	now       func() time.Time
	cutoff    time.Time
}

// New builds a trader. maxWindow bounds the bar window handed to the
// strategy; values below one fall back to 100 bars.
func New(strat strategy.Strategy, symbol string, b broker.Trader, exec execution.Executor, limits risk.Limits, maxWindow int, log zerolog.Logger) *Trader {
	if maxWindow <= 0 {
		maxWindow = 100
	}
	return &Trader{
		log:       log,
		strat:     strat,
		symbol:    symbol,
		broker:    b,
		exec:      exec,
		limits:    limits,
		maxWindow: maxWindow,
		now:       time.Now,
	}
}

// Run initializes the strategy exactly once, then processes bars until the
// context is canceled or the channel closes. Bars timestamped before startup
// are history replayed by the feed: they prime strategy state but never
// route orders.
func (t *Trader) Run(ctx context.Context, bars <-chan market.Bar) error {
	t.cutoff = t.now()
	t.strat.Initialize()
	t.log.Info().Str("strategy", t.strat.Name()).Str("symbol", t.symbol).Msg("live trading started")

	for {
		select {
		case <-ctx.Done():
			t.log.Info().Msg("live trading stopped")
			return ctx.Err()
		case bar, ok := <-bars:
			if !ok {
				return nil
			}
			t.onBar(bar)
		}
	}
}

func (t *Trader) onBar(bar market.Bar) {
	t.window = append(t.window, bar)
	if len(t.window) > t.maxWindow {
		t.window = t.window[len(t.window)-t.maxWindow:]
	}

	sig := t.strat.OnData(t.window)
	metrics.SignalsTotal.WithLabelValues(t.strat.Name(), string(sig.Action)).Inc()

	if bar.Timestamp.Before(t.cutoff) {
		if sig.Actionable() {
			t.log.Debug().Time("ts", bar.Timestamp).Str("action", string(sig.Action)).Msg("stale signal from warmup bar, not routed")
		}
		return
	}
	t.execute(sig, bar)
}

// execute applies long-only semantics: buys are rejected while short, sells
// are clamped to the held quantity, and hold or zero-quantity signals are
// logged and skipped.
func (t *Trader) execute(sig market.Signal, bar market.Bar) {
	if !sig.Actionable() {
		t.log.Debug().Str("reason", sig.Reason).Msg("no action taken")
		return
	}
	side, ok := execution.SideFor(sig.Action)
	if !ok {
		return
	}

	pos, err := t.broker.Position(t.symbol)
	if err != nil {
		t.log.Error().Err(err).Msg("position lookup failed")
		return
	}

	qty := sig.Quantity
	switch sig.Action {
	case market.Buy:
		if pos < 0 {
			t.log.Warn().Float64("position", pos).Msg("cannot buy while short")
			return
		}
		if !t.limits.Allow(float64(qty) * bar.Close) {
			t.log.Warn().Int("qty", qty).Float64("px", bar.Close).Msg("order notional over limit")
			return
		}
		if !t.limits.AllowPosition(pos, float64(qty)) {
			t.log.Warn().Float64("position", pos).Int("qty", qty).Msg("position cap reached")
			return
		}
	case market.Sell:
		if pos <= 0 {
			t.log.Warn().Float64("position", pos).Msg("cannot sell without a long position")
			return
		}
		if float64(qty) > pos {
			qty = int(pos)
		}
		if qty <= 0 {
			return
		}
	}

	order := execution.Order{Symbol: t.symbol, Side: side, Qty: qty, Price: bar.Close, Reason: sig.Reason}
	if err := t.exec.Submit(order); err != nil {
		t.log.Error().Err(err).Str("side", string(side)).Int("qty", qty).Msg("order submission failed")
	}
}
