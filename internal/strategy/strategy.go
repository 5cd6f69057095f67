// Package strategy contains the trading signal contract and its implementations.
package strategy

import (
	"strings"

	"tradeframe-go/internal/market"
)

// Strategy defines behaviour shared by strategy implementations. Initialize is
// called exactly once before the first OnData call. OnData receives a window of
// bars up to "now" and must return exactly one signal; when the window is too
// short for the strategy's indicators it returns hold.
type Strategy interface {
	Initialize()
	OnData(w market.Window) market.Signal
	Name() string
	Params() map[string]float64
}

// Base carries the parameter map shared by the bundled strategies. The map is
// merged once at construction and never mutated afterwards.
type Base struct {
	name   string
	params map[string]float64
}

// NewBase merges defaults with user overrides into an immutable parameter set.
func NewBase(name string, defaults, overrides map[string]float64) Base {
	merged := make(map[string]float64, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return Base{name: name, params: merged}
}

// Name returns the strategy identifier used in logs and metrics.
func (b Base) Name() string { return b.name }

// Params returns a copy of the parameter map.
func (b Base) Params() map[string]float64 {
	out := make(map[string]float64, len(b.params))
	for k, v := range b.params {
		out[k] = v
	}
	return out
}

// Param looks up a single parameter value.
func (b Base) Param(key string) float64 { return b.params[key] }

// IntParam looks up a parameter and truncates it to int.
func (b Base) IntParam(key string) int { return int(b.params[key]) }

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params map[string]float64) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "rsi":
		return NewRSI(params)
	case "ma", "ma_crossover", "sma", "sma_crossover":
		return NewMACrossover(params, MATypeSMA)
	case "ema", "ema_crossover":
		return NewMACrossover(params, MATypeEMA)
	case "macd", "macd_crossover":
		return NewMACDCrossover(params)
	default:
		return NewRSI(params)
	}
}
