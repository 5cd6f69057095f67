package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"tradeframe-go/internal/broker"
	"tradeframe-go/internal/config"
	"tradeframe-go/internal/execution"
	"tradeframe-go/internal/feed"
	"tradeframe-go/internal/live"
	"tradeframe-go/internal/market"
	"tradeframe-go/internal/metrics"
	"tradeframe-go/internal/risk"
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

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.Trading.Symbol == "" {
		log.Fatal().Msg("trading.symbol is required")
	}

	if !cfg.Alpaca.IsPaper() && !confirmLive(cfg.Trading.Symbol) {
		log.Info().Msg("live run aborted")
		return
	}

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	brokerage := broker.NewAlpaca(cfg.Alpaca, log)

	f := feed.New(cfg.Trading.Feed, cfg.Trading.Symbol, log,
		feed.WithBarSource(brokerage),
		feed.WithPollInterval(time.Duration(cfg.Trading.PollIntervalMins)*time.Minute),
		feed.WithLookbackDays(cfg.Trading.LookbackDays),
		feed.WithCredentials(cfg.Alpaca.APIKey, cfg.Alpaca.SecretKey),
	)

	bars := make(chan market.Bar, 256)
	go func() {
		if err := f.Run(ctx, bars); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	strat := strategy.Build(cfg.Strategy.Mode, cfg.Strategy.Params)
	limits := risk.Limits{
		MaxNotionalPerTrade:  cfg.Risk.MaxNotionalPerTrade,
		MaxPositionPerSymbol: cfg.Risk.MaxPositionPerSymbol,
	}
	exec := execution.NewBrokerExecutor(brokerage, log)

	trader := live.New(strat, f.Symbol(), brokerage, exec, limits, cfg.Backtest.LookbackBars, log)

	log.Info().Str("mode", cfg.Alpaca.Mode).Str("feed", cfg.Trading.Feed).Msg("engine started")
	if err := trader.Run(ctx, bars); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("trader stopped")
	}
	log.Info().Msg("shutting down")
}

// confirmLive requires an explicit "yes" on stdin before touching a
// real-money account.
func confirmLive(symbol string) bool {
	fmt.Printf("WARNING: trading mode is LIVE. Orders for %s will use real money.\n", symbol)
	fmt.Print("Type 'yes' to continue: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(line)) == "yes"
}
