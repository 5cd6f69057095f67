package main

import (
	"flag"

	"tradeframe-go/internal/broker"
	"tradeframe-go/internal/config"
	"tradeframe-go/internal/util"
)

// Prints a snapshot of the brokerage account, useful for checking that the
// credentials and trading mode are wired correctly.
func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the YAML config")
	flag.Parse()

	log := util.NewLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	acct, err := broker.NewAlpaca(cfg.Alpaca, log).Account()
	if err != nil {
		log.Fatal().Err(err).Msg("fetch account")
	}

	log.Info().
		Str("mode", cfg.Alpaca.Mode).
		Str("account_number", acct.AccountNumber).
		Str("status", acct.Status).
		Str("currency", acct.Currency).
		Str("cash", acct.Cash.String()).
		Str("portfolio_value", acct.PortfolioValue.String()).
		Str("equity", acct.Equity.String()).
		Str("buying_power", acct.BuyingPower.String()).
		Bool("pattern_day_trader", acct.PatternDayTrader).
		Bool("trading_blocked", acct.TradingBlocked).
		Int64("daytrade_count", acct.DaytradeCount).
		Msg("account snapshot")
}
