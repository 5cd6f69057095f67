package strategy

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-ta/indicators"

	"tradeframe-go/internal/market"
)

// MAType selects the moving average flavour used by MACrossover.
type MAType string

const (
	MATypeSMA MAType = "sma"
	MATypeEMA MAType = "ema"
)

// MACrossover trades golden/death crosses of a fast moving average over a
// slow one.
type MACrossover struct {
	Base
	maType   MAType
	lastFast float64
	lastSlow float64
	primed   bool
}

// NewMACrossover builds the strategy merging user params over its defaults.
func NewMACrossover(params map[string]float64, maType MAType) *MACrossover {
	defaults := map[string]float64{
		"fast_period":   10,
		"slow_period":   30,
		"position_size": 10,
	}
	if maType != MATypeEMA {
		maType = MATypeSMA
	}
	name := fmt.Sprintf("%s_crossover", maType)
	return &MACrossover{Base: NewBase(name, defaults, params), maType: maType}
}

// Initialize resets retained crossover state.
func (s *MACrossover) Initialize() {
	s.lastFast = 0
	s.lastSlow = 0
	s.primed = false
}

// OnData computes the two averages and emits a signal on a cross.
func (s *MACrossover) OnData(w market.Window) market.Signal {
	slow := s.IntParam("slow_period")
	fast := s.IntParam("fast_period")
	if w.Len() < slow+1 {
		return market.HoldSignal("insufficient history for MA calculation")
	}

	closes := w.Closes()
	var fastSeries, slowSeries []float64
	if s.maType == MATypeEMA {
		fastSeries = indicators.EMA(closes, fast)
		slowSeries = indicators.EMA(closes, slow)
	} else {
		fastSeries = indicators.SMA(closes, fast)
		slowSeries = indicators.SMA(closes, slow)
	}
	if len(fastSeries) == 0 || len(slowSeries) == 0 {
		return market.HoldSignal("MA calculation failed")
	}

	curFast := fastSeries[len(fastSeries)-1]
	curSlow := slowSeries[len(slowSeries)-1]
	if math.IsNaN(curFast) || math.IsNaN(curSlow) {
		return market.HoldSignal("MA is NaN")
	}

	last, _ := w.Last()
	sig := market.HoldSignal(fmt.Sprintf("Fast MA: %.2f, Slow MA: %.2f, Price: $%.2f", curFast, curSlow, last.Close))
	size := s.IntParam("position_size")

	if s.primed {
		switch {
		case s.lastFast <= s.lastSlow && curFast > curSlow:
			sig = market.NewSignal(market.Buy, size,
				fmt.Sprintf("Golden cross: Fast MA (%.2f) > Slow MA (%.2f)", curFast, curSlow))
		case s.lastFast >= s.lastSlow && curFast < curSlow:
			sig = market.NewSignal(market.Sell, size,
				fmt.Sprintf("Death cross: Fast MA (%.2f) < Slow MA (%.2f)", curFast, curSlow))
		}
	}

	s.lastFast = curFast
	s.lastSlow = curSlow
	s.primed = true
	return sig
}
