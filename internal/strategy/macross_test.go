package strategy

import (
	"testing"
	"time"

	"tradeframe-go/internal/market"
)

func windowFrom(closes []float64) market.Window {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	w := make(market.Window, len(closes))
	for i, c := range closes {
		w[i] = market.Bar{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return w
}

// replay feeds growing windows to the strategy, one call per bar, the way the
// adapters do, and returns every produced signal.
func replay(s Strategy, closes []float64) []market.Signal {
	s.Initialize()
	bars := windowFrom(closes)
	out := make([]market.Signal, 0, len(bars))
	for i := range bars {
		out = append(out, s.OnData(bars[:i+1]))
	}
	return out
}

func TestMACrossoverShortWindowHolds(t *testing.T) {
	s := NewMACrossover(map[string]float64{"fast_period": 2, "slow_period": 3}, MATypeSMA)
	s.Initialize()
	sig := s.OnData(windowFrom([]float64{10, 11, 12}))
	if sig.Action != market.Hold || sig.Quantity != 0 {
		t.Fatalf("expected hold on short window, got %+v", sig)
	}
}

func TestMACrossoverGoldenCross(t *testing.T) {
	s := NewMACrossover(map[string]float64{"fast_period": 2, "slow_period": 3, "position_size": 5}, MATypeSMA)
	// Bar 4 primes with fast(7.5) < slow(8); bar 5 flips them.
	sigs := replay(s, []float64{10, 9, 8, 7, 12})
	last := sigs[len(sigs)-1]
	if last.Action != market.Buy {
		t.Fatalf("expected buy on golden cross, got %+v", last)
	}
	if last.Quantity != 5 {
		t.Fatalf("expected position size 5, got %d", last.Quantity)
	}
}

func TestMACrossoverDeathCross(t *testing.T) {
	s := NewMACrossover(map[string]float64{"fast_period": 2, "slow_period": 3}, MATypeSMA)
	sigs := replay(s, []float64{10, 11, 12, 13, 8})
	last := sigs[len(sigs)-1]
	if last.Action != market.Sell {
		t.Fatalf("expected sell on death cross, got %+v", last)
	}
}

func TestMACrossoverNoSignalOnFirstEvaluation(t *testing.T) {
	s := NewMACrossover(map[string]float64{"fast_period": 2, "slow_period": 3}, MATypeSMA)
	s.Initialize()
	// First valid window has no prior reading, so no cross can be detected.
	sig := s.OnData(windowFrom([]float64{10, 9, 8, 12}))
	if sig.Action != market.Hold {
		t.Fatalf("expected hold before state is primed, got %+v", sig)
	}
}

func TestMACrossoverInitializeResetsState(t *testing.T) {
	s := NewMACrossover(map[string]float64{"fast_period": 2, "slow_period": 3}, MATypeSMA)
	sigs := replay(s, []float64{10, 9, 8, 7, 12})
	if sigs[len(sigs)-1].Action != market.Buy {
		t.Fatalf("setup failed, expected buy")
	}

	s.Initialize()
	sig := s.OnData(windowFrom([]float64{10, 9, 8, 7, 12}))
	if sig.Action != market.Hold {
		t.Fatalf("expected hold after re-initialize, got %+v", sig)
	}
}

func TestMACrossoverQuantityNeverNegative(t *testing.T) {
	s := NewMACrossover(map[string]float64{"fast_period": 2, "slow_period": 3, "position_size": -3}, MATypeEMA)
	for _, sig := range replay(s, []float64{10, 9, 8, 7, 12, 11, 14, 9, 8, 15}) {
		if sig.Quantity < 0 {
			t.Fatalf("quantity must be non-negative, got %+v", sig)
		}
	}
}
