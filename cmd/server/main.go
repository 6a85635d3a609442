package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"topmarketingjobs/internal/api/httpapi"
	"topmarketingjobs/internal/api/webhook"
	"topmarketingjobs/internal/bot"
	"topmarketingjobs/internal/bot/scheduler"
	"topmarketingjobs/internal/config"
	"topmarketingjobs/internal/logger"
	"topmarketingjobs/internal/metrics"
	"topmarketingjobs/internal/search"
	"topmarketingjobs/internal/storage/postgres"
	"topmarketingjobs/internal/storage/redis"

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

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting TopMarketingJobs server",
		zap.String("log_level", cfg.LogLevel),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Int("page_size", cfg.PageSize),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
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

	m := metrics.New()

	hook := webhook.New(cfg.ZapierWebhookURL, cfg.WebhookTimeout, log, m)
	if !hook.Enabled() {
		log.Info("zapier webhook disabled")
	}

	verifier, err := httpapi.NewVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatal("failed to create token verifier", zap.Error(err))
	}

	jobs := search.NewSearcher(search.Jobs, store.Jobs(), search.FormatJob, cfg.PageSize)
	candidates := search.NewSearcher(search.Candidates, store.Candidates(), search.FormatCandidate, cfg.PageSize)
	companies := search.NewSearcher(search.Companies, store.Companies(), search.FormatCompany, cfg.PageSize)

	server := httpapi.New(httpapi.Deps{
		Jobs:        jobs,
		Candidates:  candidates,
		Companies:   companies,
		Store:       store,
		Realtime:    cache,
		Limiter:     cache,
		Webhook:     hook,
		Verifier:    verifier,
		Metrics:     m,
		Logger:      log,
		Health: map[string]httpapi.Pinger{
			"postgres": store,
			"redis":    cache,
		},
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	var wg sync.WaitGroup

	if cfg.BotEnabled() {
		log.Info("initializing Telegram bot...")
		tgBot, err := bot.New(cfg, store, cache, jobs, hook, log)
		if err != nil {
			log.Fatal("failed to create bot", zap.Error(err))
		}

		checker := scheduler.New(tgBot.GetBot(), store, jobs, m, cfg, log)

		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := tgBot.Start(ctx); err != nil {
				log.Error("bot stopped with error", zap.Error(err))
			}
		}()
		go func() {
			defer wg.Done()
			if err := checker.Start(ctx); err != nil {
				log.Error("alert checker stopped with error", zap.Error(err))
				cancel()
			}
		}()
	} else {
		log.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	if err := server.Run(ctx, cfg.HTTPAddr); err != nil {
		log.Error("http server stopped with error", zap.Error(err))
		cancel()
	}

	log.Info("shutting down gracefully...")

	wg.Wait()
	hook.Wait()

	log.Info("server stopped")
}
