package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradeframe-go/internal/market"
)

type fakeBarSource struct {
	mu    sync.Mutex
	bars  []market.Bar
	calls int
}

func (f *fakeBarSource) Bars(symbol string, start, end time.Time) ([]market.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := make([]market.Bar, len(f.bars))
	copy(out, f.bars)
	return out, nil
}

func (f *fakeBarSource) add(bar market.Bar) {
	f.mu.Lock()
	f.bars = append(f.bars, bar)
	f.mu.Unlock()
}

func dailyBars(n int, start time.Time) []market.Bar {
	bars := make([]market.Bar, n)
	for i := range bars {
		px := 100 + float64(i)
		bars[i] = market.Bar{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      px, High: px + 1, Low: px - 1, Close: px + 0.5,
			Volume: 10000,
		}
	}
	return bars
}

func TestStubFeedEmitsBars(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := New(ProviderStub, "AAPL", zerolog.Nop(), WithPollInterval(20*time.Millisecond))
	bars := make(chan market.Bar, 1)

	go func() { _ = f.Run(ctx, bars) }()

	select {
	case bar := <-bars:
		if bar.Close <= bar.Open-1 {
			t.Fatalf("unexpected stub bar: %+v", bar)
		}
		cancel()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bar")
	}
}

func TestPollFeedReplaysHistoryThenOnlyNewBars(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeBarSource{bars: dailyBars(5, start)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := New(ProviderAlpaca, "aapl", zerolog.Nop(),
		WithBarSource(source),
		WithPollInterval(30*time.Millisecond),
		WithLookbackDays(30),
	)
	if f.Symbol() != "AAPL" {
		t.Fatalf("expected symbol upcased, got %s", f.Symbol())
	}

	out := make(chan market.Bar, 16)
	go func() { _ = f.Run(ctx, out) }()

	var got []market.Bar
	for len(got) < 5 {
		select {
		case bar := <-out:
			got = append(got, bar)
		case <-ctx.Done():
			t.Fatalf("timed out replaying history, got %d bars", len(got))
		}
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatalf("bars out of order at %d: %+v", i, got)
		}
	}

	// No new bars: the next polls must stay silent.
	select {
	case bar := <-out:
		t.Fatalf("unexpected duplicate bar: %+v", bar)
	case <-time.After(150 * time.Millisecond):
	}

	// A newly closed bar shows up exactly once.
	source.add(market.Bar{Timestamp: start.Add(6 * 24 * time.Hour), Open: 110, High: 111, Low: 109, Close: 110.5, Volume: 9000})
	select {
	case bar := <-out:
		if bar.Close != 110.5 {
			t.Fatalf("unexpected new bar: %+v", bar)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for new bar")
	}
}

func TestPollFeedRequiresSource(t *testing.T) {
	f := New(ProviderAlpaca, "AAPL", zerolog.Nop())
	err := f.Run(context.Background(), make(chan market.Bar))
	if err == nil {
		t.Fatal("expected error without a bar source")
	}
}

func TestRunUnknownProvider(t *testing.T) {
	f := New("bogus", "AAPL", zerolog.Nop())
	if err := f.Run(context.Background(), make(chan market.Bar)); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRunRequiresSymbol(t *testing.T) {
	f := New(ProviderStub, "  ", zerolog.Nop())
	if err := f.Run(context.Background(), make(chan market.Bar)); err == nil {
		t.Fatal("expected error without symbol")
	}
}

func TestStubFeedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := New(ProviderStub, "AAPL", zerolog.Nop(), WithPollInterval(10*time.Millisecond))

	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx, make(chan market.Bar, 128)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}
