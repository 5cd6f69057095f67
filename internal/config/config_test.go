package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "tradeframe-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.Trading.Symbol != "AAPL" {
		t.Fatalf("unexpected symbol: %s", cfg.Trading.Symbol)
	}
	if cfg.Trading.LookbackDays != 45 {
		t.Fatalf("unexpected lookback days: %d", cfg.Trading.LookbackDays)
	}
	if cfg.Trading.PollIntervalMins != 15 {
		t.Fatalf("unexpected poll interval: %d", cfg.Trading.PollIntervalMins)
	}
	if cfg.Strategy.Mode != "rsi" {
		t.Fatalf("unexpected strategy mode: %s", cfg.Strategy.Mode)
	}
	if cfg.Strategy.Params["rsi_period"] != 14 {
		t.Fatalf("unexpected rsi_period: %.2f", cfg.Strategy.Params["rsi_period"])
	}
	if cfg.Backtest.StartingCash != 25000 {
		t.Fatalf("unexpected starting cash: %.2f", cfg.Backtest.StartingCash)
	}
	if cfg.Backtest.CommissionBps != 10 {
		t.Fatalf("unexpected commission: %.2f", cfg.Backtest.CommissionBps)
	}
	if cfg.Risk.MaxNotionalPerTrade != 5000 {
		t.Fatalf("unexpected max notional: %.2f", cfg.Risk.MaxNotionalPerTrade)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("ALPACA_SECRET_KEY", "env-secret")
	t.Setenv("ALPACA_TRADING_MODE", "live")

	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Alpaca.APIKey != "env-key" || cfg.Alpaca.SecretKey != "env-secret" {
		t.Fatalf("environment should override file credentials, got %+v", cfg.Alpaca)
	}
	if cfg.Alpaca.IsPaper() {
		t.Fatalf("expected live mode after override")
	}
	if cfg.Alpaca.BaseURL() != "https://api.alpaca.markets" {
		t.Fatalf("unexpected live base URL: %s", cfg.Alpaca.BaseURL())
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ALPACA_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}

	cfg.Alpaca.APIKey = "k"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ALPACA_SECRET_KEY") {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	cfg.Alpaca.SecretKey = "s"
	cfg.Alpaca.Mode = "demo"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ALPACA_TRADING_MODE") {
		t.Fatalf("expected bad mode error, got %v", err)
	}

	cfg.Alpaca.Mode = ModePaper
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.Alpaca.BaseURL() != "https://paper-api.alpaca.markets" {
		t.Fatalf("unexpected paper base URL: %s", cfg.Alpaca.BaseURL())
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if cfg.Alpaca.Mode != ModePaper {
		t.Fatalf("expected paper default, got %s", cfg.Alpaca.Mode)
	}
	if cfg.Trading.LookbackDays != 30 || cfg.Trading.PollIntervalMins != 60 {
		t.Fatalf("unexpected trading defaults: %+v", cfg.Trading)
	}
	if cfg.Backtest.StartingCash != 10000 || cfg.Backtest.LookbackBars != 100 {
		t.Fatalf("unexpected backtest defaults: %+v", cfg.Backtest)
	}
}
