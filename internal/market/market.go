// Package market standardizes payloads shared between data feeds, strategies, and trading adapters.
package market

import "time"

// Bar models one OHLCV record for a fixed time interval.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Window is an ordered sequence of bars up to "now". Adapters own the backing
// slice and lend it to a strategy for the duration of one callback.
type Window []Bar

// Len reports how many bars the window holds.
func (w Window) Len() int { return len(w) }

// Closes extracts the close series in chronological order.
func (w Window) Closes() []float64 {
	out := make([]float64, len(w))
	for i := range w {
		out[i] = w[i].Close
	}
	return out
}

// Last returns the most recent bar, or false when the window is empty.
func (w Window) Last() (Bar, bool) {
	if len(w) == 0 {
		return Bar{}, false
	}
	return w[len(w)-1], true
}

// Action enumerates the decisions a strategy can express for the current bar.
type Action string

const (
	// Buy requests a long entry or add.
	Buy Action = "buy"
	// Sell requests a reduction or exit of a long position.
	Sell Action = "sell"
	// Hold requests no trade.
	Hold Action = "hold"
)

// Signal expresses a strategy's decision for the current bar. Quantity is
// never negative; a hold signal carries quantity zero.
type Signal struct {
	Action   Action `json:"action"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// NewSignal builds a signal, clamping negative quantities to zero.
func NewSignal(action Action, quantity int, reason string) Signal {
	if quantity < 0 {
		quantity = 0
	}
	return Signal{Action: action, Quantity: quantity, Reason: reason}
}

// HoldSignal builds a no-trade signal carrying the supplied reason.
func HoldSignal(reason string) Signal {
	return Signal{Action: Hold, Quantity: 0, Reason: reason}
}

// Actionable reports whether the signal should reach an executor.
func (s Signal) Actionable() bool {
	return (s.Action == Buy || s.Action == Sell) && s.Quantity > 0
}
