// Package feed hosts pluggable bar sources for the live adapter.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tradeframe-go/internal/broker"
	"tradeframe-go/internal/market"
	"tradeframe-go/internal/metrics"
)

const (
	// ProviderStub emits deterministic synthetic bars (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderAlpaca polls the Alpaca market-data REST API for daily bars.
	ProviderAlpaca = "alpaca"
	// ProviderAlpacaStream consumes the Alpaca websocket bar stream.
	ProviderAlpacaStream = "alpaca_stream"
)

const (
	defaultPollInterval = time.Minute
	defaultLookbackDays = 30
	defaultStreamURL    = "wss://stream.data.alpaca.markets/v2/iex"
)

// Feed pushes bars for one symbol onto a channel until its context is
// canceled. The provider decides where the bars come from.
type Feed struct {
	provider     string
	symbol       string
	log          zerolog.Logger
	pollInterval time.Duration
	lookbackDays int
	source       broker.BarSource
	streamURL    string
	apiKey       string
	apiSecret    string
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithPollInterval overrides the polling cadence for REST and stub providers.
func WithPollInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithLookbackDays sets how much history the first REST poll replays.
func WithLookbackDays(days int) Option {
	return func(f *Feed) {
		if days > 0 {
			f.lookbackDays = days
		}
	}
}

// WithBarSource injects the historical bar client the REST provider polls.
func WithBarSource(source broker.BarSource) Option {
	return func(f *Feed) { f.source = source }
}

// WithCredentials injects the key pair used by the stream handshake.
func WithCredentials(key, secret string) Option {
	return func(f *Feed) { f.apiKey, f.apiSecret = key, secret }
}

// WithStreamURL overrides the websocket endpoint; tests point it at a local server.
func WithStreamURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.streamURL = url
		}
	}
}

// New constructs a feed backed by the requested provider.
func New(provider, symbol string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:     strings.ToLower(provider),
		symbol:       strings.ToUpper(strings.TrimSpace(symbol)),
		log:          log,
		pollInterval: defaultPollInterval,
		lookbackDays: defaultLookbackDays,
		streamURL:    defaultStreamURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Symbol returns the tracked symbol.
func (f *Feed) Symbol() string { return f.symbol }

// Run pushes bars onto the provided channel until the context is canceled.
func (f *Feed) Run(ctx context.Context, out chan<- market.Bar) error {
	if f.symbol == "" {
		return fmt.Errorf("feed requires a symbol")
	}
	switch f.provider {
	case ProviderAlpaca:
		return f.runPoll(ctx, out)
	case ProviderAlpacaStream:
		return f.runStream(ctx, out)
	case ProviderStub:
		return f.runStub(ctx, out)
	default:
		return fmt.Errorf("unknown feed provider %q", f.provider)
	}
}

// runStub walks a synthetic price upward one bar per interval.
func (f *Feed) runStub(ctx context.Context, out chan<- market.Bar) error {
	interval := f.pollInterval
	if interval > 500*time.Millisecond {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	px := 100.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			open := px
			px += 0.25
			bar := market.Bar{
				Timestamp: ts,
				Open:      open,
				High:      px,
				Low:       open,
				Close:     px,
				Volume:    1000,
			}
			select {
			case out <- bar:
				metrics.BarsTotal.WithLabelValues(f.symbol).Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// runPoll replays the lookback history on the first poll, then emits only
// newly closed bars on subsequent polls.
func (f *Feed) runPoll(ctx context.Context, out chan<- market.Bar) error {
	if f.source == nil {
		return fmt.Errorf("alpaca provider requires a bar source")
	}

	var lastTs time.Time
	emit := func() error {
		end := time.Now()
		start := end.AddDate(0, 0, -f.lookbackDays)
		bars, err := f.source.Bars(f.symbol, start, end)
		if err != nil {
			return err
		}
		for _, bar := range bars {
			if !bar.Timestamp.After(lastTs) {
				continue
			}
			select {
			case out <- bar:
				lastTs = bar.Timestamp
				metrics.BarsTotal.WithLabelValues(f.symbol).Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}

	if err := emit(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.log.Warn().Err(err).Msg("initial bar poll failed")
	}

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := emit(); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				f.log.Warn().Err(err).Msg("bar poll failed")
			}
		}
	}
}
