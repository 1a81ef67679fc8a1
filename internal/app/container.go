package app

import (
	"context"
	"fmt"

	"github.com/kapu/turn-queue-bot-go/internal/adapter"
	"github.com/kapu/turn-queue-bot-go/internal/bot"
	"github.com/kapu/turn-queue-bot-go/internal/config"
	"github.com/kapu/turn-queue-bot-go/internal/constants"
	"github.com/kapu/turn-queue-bot-go/internal/outbox"
	"github.com/kapu/turn-queue-bot-go/internal/store"
	"github.com/kapu/turn-queue-bot-go/internal/telegram"
	"github.com/kapu/turn-queue-bot-go/internal/util"
	"go.uber.org/zap"
)

// Container bundles assembled services for constructing the Bot.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	interpreter *bot.Interpreter
	source      bot.EventSource
	outbox      *outbox.Outbox
	closers     []func()
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.interpreter == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.interpreter, c.source, c.outbox, c.Logger)
}

// Close releases backend connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build connects the membership store and the Telegram client and wires them
// into an interpreter and outbox.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	membership, closeStore, err := BuildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeStore)

	client, err := telegram.NewClient(telegram.Config{
		Token: cfg.Telegram.Token,
		Debug: cfg.Telegram.Debug,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	out := outbox.New(client, outbox.Config{
		Workers:     cfg.Outbox.Workers,
		BufferSize:  cfg.Outbox.BufferSize,
		SendTimeout: constants.OutboxConfig.SendTimeout,
	}, logger)

	interpreter := bot.NewInterpreter(bot.Dependencies{
		Store:  membership,
		Outbox: out,
		Labels: labelsFromConfig(cfg.Bot),
		Roster: client,
		Logger: logger,
	})

	return &Container{
		Config:      cfg,
		Logger:      logger,
		interpreter: interpreter,
		source:      telegram.NewSource(client, cfg.Telegram.PollTimeout, logger),
		outbox:      out,
		closers:     closers,
	}, nil
}

// BuildStore opens the configured backend and wraps it in a circuit breaker
// whose probe is the backend's ping.
func BuildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	var (
		backend store.Store
		pinger  store.Pinger
		closeFn = func() {}
	)

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		rs, err := store.NewRedisStore(store.RedisConfig{
			URL:      cfg.Redis.URL,
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		backend, pinger = rs, rs
		closeFn = func() { _ = rs.Close() }

	case config.StoreBackendPostgres:
		db, err := store.OpenPostgres(store.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		ps, err := store.NewPostgresStore(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate postgres store: %w", err)
		}
		backend, pinger = ps, ps
		closeFn = func() { _ = ps.Close() }

	case config.StoreBackendMemory:
		ms := store.NewMemoryStore()
		logger.Warn("Using in-memory membership store, the index is lost on restart")
		backend, pinger = ms, ms

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	breakerCfg := util.CircuitBreakerConfig{
		FailureThreshold:    cfg.Store.BreakerThreshold,
		ResetTimeout:        constants.BreakerConfig.ResetTimeout,
		HealthCheckInterval: constants.BreakerConfig.HealthCheckInterval,
		HealthCheckTimeout:  constants.BreakerConfig.HealthCheckTimeout,
	}
	breaker := util.NewCircuitBreaker(breakerCfg, pinger.Ping, logger)

	logger.Info("Membership store ready", zap.String("backend", cfg.Store.Backend))
	return store.NewGuarded(backend, breaker), closeFn, nil
}

func labelsFromConfig(b config.BotConfig) adapter.Labels {
	return adapter.Labels{
		StartCommand: b.StartCommand,
		TurnLabel:    b.TurnLabel,
		ConfirmLabel: b.ConfirmLabel,
		CancelLabel:  b.CancelLabel,
		ConfirmData:  b.ConfirmData,
		CancelData:   b.CancelData,
		Greeting:     b.Greeting,
		Prompt:       b.Prompt,
		Welcome:      b.Welcome,
		Farewell:     b.Farewell,
		Ack:          b.Ack,
	}
}
