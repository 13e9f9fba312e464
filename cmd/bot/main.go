package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reversalbot/internal/broker"
	"reversalbot/internal/config"
	"reversalbot/internal/engine"
	"reversalbot/internal/md"
	"reversalbot/internal/risk"
	"reversalbot/internal/scheduler"
	"reversalbot/internal/server"
	"reversalbot/internal/state"
	"reversalbot/internal/strategy"
	"reversalbot/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("config error")
	}
	log := util.NewLogger(cfg.LogLevel)
	if cfg.WindowDays*strategy.LookbackYear/365 <= strategy.LookbackYear {
		log.Warn().Int("window_days", cfg.WindowDays).Msg("history window may be shorter than the yearly lookback; yearly return can be undefined")
	}

	var journal *engine.DecisionLogger
	if cfg.DecisionsPath != "" {
		journal, err = engine.NewDecisionLogger(cfg.DecisionsPath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("decision logger error")
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close decision logger")
			}
		}()
	}

	schedule, err := scheduler.NewSchedule(cfg.Schedule.Days, cfg.Schedule.At, cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("schedule error")
	}

	brokerClient := broker.New(cfg.APIKey, cfg.APISecret, cfg.PaperBaseURL, cfg.OrdersPerSecond, log)
	bars := md.New(cfg.APIKey, cfg.APISecret, cfg.Feed, log)
	exitRule := strategy.NewExitRule(cfg.TakeProfitPct, cfg.StopLossPct)
	eng := engine.New(bars, exitRule, cfg.WindowDays, cfg.FetchWorkers, log)
	executor := engine.NewExecutor(brokerClient, risk.Gate{Log: log}, engine.ExecutorOptions{
		BuyQty:     cfg.BuyQty,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
		DryRun:     cfg.Mode == config.ModeDryRun,
		KillSwitch: cfg.KillSwitch,
	}, log)
	store := state.NewStore()
	cycle := engine.NewCycle(brokerClient, eng, executor, cfg.Symbols, journal, store, log)

	sched := scheduler.New(schedule, func(ctx context.Context) error {
		_, err := cycle.Run(ctx)
		return err
	}, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.StatusAddr != "" {
		srv := server.Serve(cfg.StatusAddr, store, sched.Running, log)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info().Str("mode", string(cfg.Mode)).Int("universe", len(cfg.Symbols)).Str("days", cfg.Schedule.Days).
		Str("at", cfg.Schedule.At).Str("timezone", cfg.Schedule.Timezone).Msg("starting bot")

	if cfg.RunOnce {
		if _, err := cycle.Run(ctx); err != nil {
			log.Error().Err(err).Msg("cycle failed")
			os.Exit(1)
		}
		return
	}

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("scheduler stopped")
	}
	log.Info().Msg("bot shutdown complete")
}
