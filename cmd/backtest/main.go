package main

import (
	"flag"
	"time"

	"tradeframe-go/internal/backtest"
	"tradeframe-go/internal/broker"
	"tradeframe-go/internal/config"
	"tradeframe-go/internal/feed"
	"tradeframe-go/internal/market"
	"tradeframe-go/internal/strategy"
	"tradeframe-go/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the YAML config")
	flag.Parse()

	log := util.NewLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = util.NewLogger(cfg.App.LogLevel)

	if cfg.Trading.Symbol == "" {
		log.Fatal().Msg("trading.symbol is required")
	}

	var bars []market.Bar
	if cfg.Backtest.DataPath != "" {
		bars, err = feed.LoadCSV(cfg.Backtest.DataPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Backtest.DataPath).Msg("load bars")
		}
	} else {
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid config")
		}
		end := time.Now()
		start := end.AddDate(0, 0, -cfg.Trading.LookbackDays)
		bars, err = broker.NewAlpaca(cfg.Alpaca, log).Bars(cfg.Trading.Symbol, start, end)
		if err != nil {
			log.Fatal().Err(err).Msg("fetch bars")
		}
	}
	log.Info().Int("bars", len(bars)).Str("symbol", cfg.Trading.Symbol).Msg("bars loaded")

	var recorders []backtest.FillRecorder
	if cfg.Backtest.FillsPath != "" {
		rec, err := backtest.NewJSONLRecorder(cfg.Backtest.FillsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Backtest.FillsPath).Msg("open fill log")
		}
		defer rec.Close()
		recorders = append(recorders, rec)
	}

	strat := strategy.Build(cfg.Strategy.Mode, cfg.Strategy.Params)
	bt := backtest.New(strat, backtest.Config{
		Symbol:               cfg.Trading.Symbol,
		StartingCash:         cfg.Backtest.StartingCash,
		CommissionBps:        cfg.Backtest.CommissionBps,
		LookbackBars:         cfg.Backtest.LookbackBars,
		MaxPositionPerSymbol: cfg.Risk.MaxPositionPerSymbol,
	}, log, recorders...)

	res, err := bt.Run(bars)
	if err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}
	res.Log(log)
}
