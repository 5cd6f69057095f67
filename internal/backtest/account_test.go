package backtest

import (
	"math"
	"testing"

	"tradeframe-go/internal/execution"
)

func TestMarketFillBuySellPnL(t *testing.T) {
	account := NewAccount(10000, 0, 100)

	if _, err := account.MarketFill("AAPL", execution.Buy, 20, 150); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if _, err := account.MarketFill("AAPL", execution.Buy, 10, 180); err != nil {
		t.Fatalf("unexpected second buy error: %v", err)
	}

	snap := account.Snapshot(map[string]float64{"AAPL": 190})
	pos := snap.Positions["AAPL"]
	if pos.Qty != 30 {
		t.Fatalf("expected qty 30, got %.4f", pos.Qty)
	}
	if pos.AvgCost != 160 {
		t.Fatalf("expected avg cost 160, got %.4f", pos.AvgCost)
	}

	realized, err := account.MarketFill("AAPL", execution.Sell, 10, 200)
	if err != nil {
		t.Fatalf("unexpected sell error: %v", err)
	}
	if realized != 400 {
		t.Fatalf("expected realized 400, got %.2f", realized)
	}

	snap = account.Snapshot(map[string]float64{"AAPL": 195})
	if math.Abs(snap.Cash+snap.Positions["AAPL"].MarketValue-snap.Equity) > 1e-6 {
		t.Fatalf("equity did not balance")
	}
}

func TestMarketFillCommission(t *testing.T) {
	// 10 bps on a 10000 notional is 10 each side.
	account := NewAccount(20000, 10, 0)
	if _, err := account.MarketFill("AAPL", execution.Buy, 100, 100); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if got := account.AvailableCash(); math.Abs(got-9990) > 1e-9 {
		t.Fatalf("expected cash 9990 after commission, got %.4f", got)
	}

	realized, err := account.MarketFill("AAPL", execution.Sell, 100, 100)
	if err != nil {
		t.Fatalf("unexpected sell error: %v", err)
	}
	if math.Abs(realized+10) > 1e-9 {
		t.Fatalf("flat round trip should lose the sell commission, got %.4f", realized)
	}
	snap := account.Snapshot(nil)
	if math.Abs(snap.CommissionPaid-20) > 1e-9 {
		t.Fatalf("expected 20 commission paid, got %.4f", snap.CommissionPaid)
	}
}

func TestMarketFillInsufficientCash(t *testing.T) {
	account := NewAccount(100, 0, 0)
	if _, err := account.MarketFill("AAPL", execution.Buy, 10, 50); err == nil {
		t.Fatalf("expected cash error")
	}
}

func TestMarketFillPositionLimit(t *testing.T) {
	account := NewAccount(100000, 0, 10)
	if _, err := account.MarketFill("AAPL", execution.Buy, 11, 10); err == nil {
		t.Fatalf("expected position limit error")
	}
}

func TestMarketFillInsufficientPosition(t *testing.T) {
	account := NewAccount(1000, 0, 0)
	if _, err := account.MarketFill("AAPL", execution.Sell, 1, 100); err == nil {
		t.Fatalf("expected insufficient position error")
	}
}

func TestMarketFillRejectsBadInputs(t *testing.T) {
	account := NewAccount(1000, 0, 0)
	if _, err := account.MarketFill("AAPL", execution.Buy, 0, 100); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := account.MarketFill("AAPL", execution.Buy, 1, 0); err == nil {
		t.Fatalf("expected error for zero price")
	}
}
