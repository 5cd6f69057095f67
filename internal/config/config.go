// Package config exposes strongly typed application configuration structs
// loaded from YAML with environment overrides for Alpaca credentials.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ModePaper routes orders at the paper-trading endpoint.
	ModePaper = "paper"
	// ModeLive routes orders at the real-money endpoint.
	ModeLive = "live"

	paperBaseURL = "https://paper-api.alpaca.markets"
	liveBaseURL  = "https://api.alpaca.markets"
)

// App captures process-wide runtime settings such as name, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Alpaca holds brokerage credentials and the trading mode. The environment
// variables ALPACA_API_KEY, ALPACA_SECRET_KEY, and ALPACA_TRADING_MODE take
// precedence over file values.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
	Mode      string `yaml:"trading_mode"`
}

// IsPaper reports whether orders should target the paper endpoint.
func (a Alpaca) IsPaper() bool { return a.Mode != ModeLive }

// BaseURL resolves the trading API endpoint for the configured mode.
func (a Alpaca) BaseURL() string {
	if a.IsPaper() {
		return paperBaseURL
	}
	return liveBaseURL
}

// Trading describes what the live adapter trades and how often it polls.
type Trading struct {
	Symbol           string `yaml:"symbol"`
	Feed             string `yaml:"feed"` // alpaca | alpaca_stream | stub
	LookbackDays     int    `yaml:"lookback_days"`
	PollIntervalMins int    `yaml:"poll_interval_mins"`
}

// Strategy specifies which strategy is active along with its parameter map.
type Strategy struct {
	Mode   string             `yaml:"mode"`
	Params map[string]float64 `yaml:"params"`
}

// Backtest captures replay settings such as starting cash and commission.
type Backtest struct {
	StartingCash  float64 `yaml:"starting_cash"`
	CommissionBps float64 `yaml:"commission_bps"`
	LookbackBars  int     `yaml:"lookback_bars"`
	DataPath      string  `yaml:"data_path"`  // optional CSV input for offline runs
	FillsPath     string  `yaml:"fills_path"` // optional JSONL fill log
}

// Risk encodes guard-rails for how much size the live adapter may take on.
type Risk struct {
	MaxNotionalPerTrade  float64 `yaml:"max_notional_per_trade"`
	MaxPositionPerSymbol float64 `yaml:"max_position_per_symbol"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Trading  Trading  `yaml:"trading"`
	Strategy Strategy `yaml:"strategy"`
	Backtest Backtest `yaml:"backtest"`
	Risk     Risk     `yaml:"risk"`
}

// Load reads a YAML file, merges a .env file if one exists, applies
// environment overrides, and fills defaults. Credentials are not validated
// here; call Validate before building clients.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		c.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		c.Alpaca.SecretKey = v
	}
	if v := os.Getenv("ALPACA_TRADING_MODE"); v != "" {
		c.Alpaca.Mode = v
	}
}

func (c *Config) applyDefaults() {
	if c.Alpaca.Mode == "" {
		c.Alpaca.Mode = ModePaper
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Trading.LookbackDays <= 0 {
		c.Trading.LookbackDays = 30
	}
	if c.Trading.PollIntervalMins <= 0 {
		c.Trading.PollIntervalMins = 60
	}
	if c.Backtest.StartingCash <= 0 {
		c.Backtest.StartingCash = 10000
	}
	if c.Backtest.LookbackBars <= 0 {
		c.Backtest.LookbackBars = 100
	}
}

// Validate fails fast on missing credentials or an unknown trading mode.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" {
		return errors.New("ALPACA_API_KEY not set")
	}
	if c.Alpaca.SecretKey == "" {
		return errors.New("ALPACA_SECRET_KEY not set")
	}
	if c.Alpaca.Mode != ModePaper && c.Alpaca.Mode != ModeLive {
		return fmt.Errorf("ALPACA_TRADING_MODE must be %q or %q, got %q", ModePaper, ModeLive, c.Alpaca.Mode)
	}
	return nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
