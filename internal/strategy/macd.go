package strategy

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-ta/indicators"

	"tradeframe-go/internal/market"
)

// MACDCrossover trades crossings of the MACD line over its signal line.
type MACDCrossover struct {
	Base
	lastMACD   float64
	lastSignal float64
	primed     bool
}

// NewMACDCrossover builds the strategy merging user params over its defaults.
func NewMACDCrossover(params map[string]float64) *MACDCrossover {
	defaults := map[string]float64{
		"macd_fast":     12,
		"macd_slow":     26,
		"macd_signal":   9,
		"position_size": 10,
	}
	return &MACDCrossover{Base: NewBase("macd_crossover", defaults, params)}
}

// Initialize resets retained crossover state.
func (s *MACDCrossover) Initialize() {
	s.lastMACD = 0
	s.lastSignal = 0
	s.primed = false
}

// OnData computes MACD over the window closes and emits a crossover signal.
func (s *MACDCrossover) OnData(w market.Window) market.Signal {
	slow := s.IntParam("macd_slow")
	signalPeriod := s.IntParam("macd_signal")
	// MACD needs the slow EMA plus the signal EMA to warm up.
	if w.Len() < slow+signalPeriod {
		return market.HoldSignal("insufficient history for MACD")
	}

	macdSeries, signalSeries, _ := indicators.MACD(w.Closes(), s.IntParam("macd_fast"), slow, signalPeriod)
	if len(macdSeries) == 0 || len(signalSeries) == 0 {
		return market.HoldSignal("MACD calculation failed")
	}

	curMACD := macdSeries[len(macdSeries)-1]
	curSignal := signalSeries[len(signalSeries)-1]
	if math.IsNaN(curMACD) || math.IsNaN(curSignal) {
		return market.HoldSignal("MACD or signal is NaN")
	}

	sig := market.HoldSignal(fmt.Sprintf("MACD: %.5f, Signal: %.5f", curMACD, curSignal))
	size := s.IntParam("position_size")

	if s.primed {
		switch {
		case s.lastMACD <= s.lastSignal && curMACD > curSignal:
			sig = market.NewSignal(market.Buy, size,
				fmt.Sprintf("MACD bullish crossover: %.5f > %.5f", curMACD, curSignal))
		case s.lastMACD >= s.lastSignal && curMACD < curSignal:
			sig = market.NewSignal(market.Sell, size,
				fmt.Sprintf("MACD bearish crossover: %.5f < %.5f", curMACD, curSignal))
		}
	}

	s.lastMACD = curMACD
	s.lastSignal = curSignal
	s.primed = true
	return sig
}
