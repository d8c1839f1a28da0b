package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobpilot/internal/apply"
	"jobpilot/internal/config"
	"jobpilot/internal/letter"
	"jobpilot/internal/logger"
	"jobpilot/internal/match"
	"jobpilot/internal/notify"
	"jobpilot/internal/pipeline"
	"jobpilot/internal/quota"
	"jobpilot/internal/scheduler"
	"jobpilot/internal/source"
	"jobpilot/internal/source/adzuna"
	"jobpilot/internal/source/headhunter"
	"jobpilot/internal/storage/postgres"
	"jobpilot/internal/storage/redis"
	"jobpilot/internal/textgen"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting job pilot",
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("run_interval", cfg.RunInterval),
		zap.Bool("run_once", cfg.RunOnce),
	)

	log.Info("connecting to PostgreSQL...")
	store, err := postgres.New(cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer store.Close()

	log.Info("connecting to Redis...")
	cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()

	aggregator := source.NewAggregator(cfg.SourceTimeout, log,
		headhunter.New(cfg.HHAPIBaseURL, cfg.SourceTimeout, log),
		adzuna.New(cfg.AdzunaBaseURL, cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.SourceTimeout, log),
	)
	aggregator.SetRateLimiter(cache)

	gateway := apply.NewGateway(cfg.ApplyGatewayURL, cfg.SourceTimeout, log)

	registry := apply.NewRegistry(apply.NewGenericHandler(gateway, log))
	registry.Register("linkedin", apply.NewLinkedInHandler(gateway, log))
	registry.Register("indeed", apply.NewIndeedHandler(gateway, log))
	registry.Register("glassdoor", apply.NewGlassdoorHandler(gateway, log))

	submitter := apply.NewSubmitter(registry, cfg.PacingMin, cfg.PacingMax, log)

	completer := textgen.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, log)

	runner := pipeline.NewRunner(
		store,
		store,
		cache,
		aggregator,
		match.NewFilter(store, log),
		quota.NewManager(store, log),
		letter.NewGenerator(completer, log),
		submitter,
		cfg,
		log,
	)

	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegram(cfg.TelegramToken, log)
		if err != nil {
			log.Warn("telegram notifier unavailable", zap.Error(err))
		} else {
			runner.SetNotifier(notifier)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	sched := scheduler.New(runner, cfg.RunInterval, log)
	sched.SetCleaner(store)

	if cfg.RunOnce {
		if _, err := sched.RunNow(ctx); err != nil {
			log.Error("run failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := sched.Start(ctx); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	log.Info("job pilot is running...")

	<-ctx.Done()

	log.Info("shutting down gracefully...")
	sched.Stop()
	log.Info("job pilot stopped")
}
