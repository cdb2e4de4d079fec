package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Heightsdesign/stockwatch/internal/config"
	"github.com/Heightsdesign/stockwatch/internal/dispatcher"
	"github.com/Heightsdesign/stockwatch/internal/logging"
	"github.com/Heightsdesign/stockwatch/internal/marketdata"
	"github.com/Heightsdesign/stockwatch/internal/metrics"
	"github.com/Heightsdesign/stockwatch/internal/notifier"
	"github.com/Heightsdesign/stockwatch/internal/store"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, flush := logging.Init(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer flush()
	logger.Info("stockwatch starting", zap.String("config", cfgPath))

	// Alert store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		logger.Fatal("open alert store", zap.Error(err))
	}
	defer st.Close()

	// Market data
	fetcher := marketdata.NewYahooFetcher(cfg.Proxy)
	logger.Info("data source ready", zap.String("provider", fetcher.Name()))

	// Notifier
	var nt notifier.Notifier
	if cfg.Notifier == "telegram" {
		nt = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		nt = notifier.ConsoleNotifier{}
	}
	logger.Info("notifier ready", zap.String("channel", nt.Name()))

	// Metrics and health
	m := metrics.New()
	health := metrics.NewHealthStatus()
	msrv := metrics.NewServer(cfg.Metrics.Addr, health)
	msrv.Start()
	logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disp := dispatcher.New(st, fetcher, nt, m, health, logger)

	// Evaluation cycle on a seconds-precision cron schedule. Recover keeps
	// a panicking job from killing the scheduler goroutine.
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.Schedule.CycleCron, func() {
		if err := disp.RunCycle(ctx); err != nil && ctx.Err() == nil {
			logger.Error("evaluation cycle failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("register cycle schedule", zap.Error(err))
	}
	c.Start()
	logger.Info("scheduler started", zap.String("cron", cfg.Schedule.CycleCron))

	if os.Getenv("RUN_ON_START") == "true" {
		go func() {
			if err := disp.RunCycle(ctx); err != nil {
				logger.Error("startup cycle failed", zap.Error(err))
			}
		}()
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("cycle did not finish before shutdown deadline")
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	msrv.Stop(shutdownCtx)
	logger.Info("stockwatch stopped")
}
