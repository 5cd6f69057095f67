// Package risk holds the guard-rails consulted before live order submission.
package risk

// Limits caps per-order notional and per-symbol position size. Zero values
// disable the corresponding check.
type Limits struct {
	MaxNotionalPerTrade  float64
	MaxPositionPerSymbol float64
}

// Allow reports whether an order of the given notional may be submitted.
func (l Limits) Allow(notional float64) bool {
	return l.MaxNotionalPerTrade <= 0 || notional <= l.MaxNotionalPerTrade
}

// AllowPosition reports whether the position after the order stays under the
// per-symbol cap.
func (l Limits) AllowPosition(current, added float64) bool {
	return l.MaxPositionPerSymbol <= 0 || current+added <= l.MaxPositionPerSymbol
}
