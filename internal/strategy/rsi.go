package strategy

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-ta/indicators"

	"tradeframe-go/internal/market"
)

// RSI trades oversold/overbought crossovers of the relative strength index:
// buy when RSI crosses below the oversold level, sell when it crosses above
// the overbought level.
type RSI struct {
	Base
	lastRSI float64
	primed  bool
}

// NewRSI builds the strategy merging user params over its defaults.
func NewRSI(params map[string]float64) *RSI {
	defaults := map[string]float64{
		"rsi_period":    14,
		"oversold":      30,
		"overbought":    70,
		"position_size": 10,
	}
	return &RSI{Base: NewBase("rsi", defaults, params)}
}

// Initialize resets retained crossover state.
func (s *RSI) Initialize() {
	s.lastRSI = 0
	s.primed = false
}

// OnData computes RSI over the window closes and emits a crossover signal.
func (s *RSI) OnData(w market.Window) market.Signal {
	period := s.IntParam("rsi_period")
	if w.Len() < period+1 {
		return market.HoldSignal("insufficient history for RSI")
	}

	series := indicators.RSI(w.Closes(), period)
	if len(series) == 0 {
		return market.HoldSignal("RSI calculation failed")
	}
	current := series[len(series)-1]
	if math.IsNaN(current) {
		return market.HoldSignal("RSI is NaN")
	}

	last, _ := w.Last()
	sig := market.HoldSignal(fmt.Sprintf("RSI: %.2f, Price: $%.2f", current, last.Close))

	oversold := s.Param("oversold")
	overbought := s.Param("overbought")
	size := s.IntParam("position_size")

	// Crossovers need a prior reading; the first bar only primes state.
	if s.primed {
		switch {
		case current < oversold && s.lastRSI >= oversold:
			sig = market.NewSignal(market.Buy, size,
				fmt.Sprintf("RSI oversold crossover: %.2f < %.0f", current, oversold))
		case current > overbought && s.lastRSI <= overbought:
			sig = market.NewSignal(market.Sell, size,
				fmt.Sprintf("RSI overbought crossover: %.2f > %.0f", current, overbought))
		}
	}

	s.lastRSI = current
	s.primed = true
	return sig
}
