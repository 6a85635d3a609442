package bot

import (
	"context"
	"fmt"
	"time"

	"topmarketingjobs/internal/api/webhook"
	"topmarketingjobs/internal/bot/handlers"
	"topmarketingjobs/internal/bot/middleware"
	"topmarketingjobs/internal/config"
	"topmarketingjobs/internal/storage/postgres"
	"topmarketingjobs/internal/storage/redis"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const sessionPruneInterval = time.Hour

// Bot represents Telegram bot
type Bot struct {
	bot      *tele.Bot
	store    *postgres.Store
	cache    *redis.Cache
	jobs     handlers.JobSearcher
	sessions *handlers.Sessions
	webhook  webhook.Sender
	config   *config.Config
	logger   *zap.Logger
}

func New(
	cfg *config.Config,
	store *postgres.Store,
	cache *redis.Cache,
	jobs handlers.JobSearcher,
	hook webhook.Sender,
	logger *zap.Logger,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("telebot error", zap.Error(err))
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		store:    store,
		cache:    cache,
		jobs:     jobs,
		sessions: handlers.NewSessions(jobs.Search, b, logger),
		webhook:  hook,
		config:   cfg,
		logger:   logger,
	}

	bot.setupMiddleware()

	bot.registerHandlers()

	logger.Info("bot initialized successfully")

	return bot, nil
}

func (b *Bot) setupMiddleware() {
	b.bot.Use(middleware.Recovery(b.logger))

	b.bot.Use(middleware.Logger(b.logger))

	b.bot.Use(middleware.RateLimit(b.cache, b.logger))
}

func (b *Bot) registerHandlers() {
	ctx := &handlers.Context{
		Store:    b.store,
		Cache:    b.cache,
		Jobs:     b.jobs,
		Sessions: b.sessions,
		Webhook:  b.webhook,
		Config:   b.config,
		Logger:   b.logger,
	}

	b.bot.Handle("/start", handlers.HandleStart(ctx))
	b.bot.Handle("/help", handlers.HandleHelp(ctx))
	b.bot.Handle("/jobs", handlers.HandleJobs(ctx))
	b.bot.Handle("/alert", handlers.HandleAlert(ctx))
	b.bot.Handle("/stop", handlers.HandleStop(ctx))

	b.bot.Handle(tele.OnText, handlers.HandleText(ctx))

	b.bot.Handle(tele.OnCallback, handlers.HandleCallback(ctx))

	b.logger.Info("handlers registered")
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting bot...")

	go b.bot.Start()

	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping bot...")
			b.bot.Stop()
			return nil
		case <-ticker.C:
			if n := b.sessions.Prune(redis.SearchStateTTL); n > 0 {
				b.logger.Debug("idle search sessions pruned", zap.Int("count", n))
			}
		}
	}
}

func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
