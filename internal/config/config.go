package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kapu/turn-queue-bot-go/internal/constants"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
)

const (
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

type Config struct {
	Telegram TelegramConfig
	Store    StoreConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Outbox   OutboxConfig
	Logging  LoggingConfig
	Bot      BotConfig
}

type TelegramConfig struct {
	Token       string
	PollTimeout int
	Debug       bool
}

type StoreConfig struct {
	Backend          string
	BreakerThreshold int
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type OutboxConfig struct {
	Workers    int
	BufferSize int
}

type LoggingConfig struct {
	Level string
	File  string
}

// BotConfig holds the user-facing labels and callback tags.
type BotConfig struct {
	StartCommand string
	TurnLabel    string
	ConfirmLabel string
	CancelLabel  string
	ConfirmData  string
	CancelData   string
	Greeting     string
	Prompt       string
	Welcome      string
	Farewell     string
	Ack          string
}

// Load reads the environment (and .env when present) and validates the result.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FromEnv reads the environment without validating it.
func FromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			PollTimeout: getEnvInt("TELEGRAM_POLL_TIMEOUT", constants.LoopConfig.PollTimeout),
			Debug:       getEnvBool("TELEGRAM_DEBUG", false),
		},
		Store: StoreConfig{
			Backend:          strings.ToLower(getEnv("STORE_BACKEND", StoreBackendRedis)),
			BreakerThreshold: getEnvInt("STORE_BREAKER_THRESHOLD", constants.BreakerConfig.FailureThreshold),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "turnqueue"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "turnqueue"),
		},
		Outbox: OutboxConfig{
			Workers:    getEnvInt("OUTBOX_WORKERS", constants.OutboxConfig.Workers),
			BufferSize: getEnvInt("OUTBOX_BUFFER", constants.OutboxConfig.BufferSize),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Bot: BotConfig{
			StartCommand: getEnv("BOT_START_COMMAND", constants.Texts.StartCommand),
			TurnLabel:    getEnv("BOT_TURN_LABEL", constants.Texts.TurnLabel),
			ConfirmLabel: getEnv("BOT_CONFIRM_LABEL", constants.Texts.ConfirmLabel),
			CancelLabel:  getEnv("BOT_CANCEL_LABEL", constants.Texts.CancelLabel),
			ConfirmData:  getEnv("BOT_CONFIRM_DATA", constants.CallbackData.Confirm),
			CancelData:   getEnv("BOT_CANCEL_DATA", constants.CallbackData.Cancel),
			Greeting:     getEnv("BOT_GREETING", constants.Texts.Greeting),
			Prompt:       getEnv("BOT_PROMPT", constants.Texts.Prompt),
			Welcome:      getEnv("BOT_WELCOME", constants.Texts.Welcome),
			Farewell:     getEnv("BOT_FAREWELL", constants.Texts.Farewell),
			Ack:          getEnv("BOT_ACK", constants.Texts.Ack),
		},
	}
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.NewValidationError("TELEGRAM_BOT_TOKEN is required", "TELEGRAM_BOT_TOKEN", "")
	}
	switch c.Store.Backend {
	case StoreBackendRedis, StoreBackendPostgres, StoreBackendMemory:
	default:
		return errors.NewValidationError("STORE_BACKEND must be redis, postgres or memory", "STORE_BACKEND", c.Store.Backend)
	}
	if c.Bot.ConfirmData == c.Bot.CancelData {
		return errors.NewValidationError("BOT_CONFIRM_DATA and BOT_CANCEL_DATA must differ", "BOT_CANCEL_DATA", c.Bot.CancelData)
	}
	if len(c.Bot.ConfirmData) > 64 || len(c.Bot.CancelData) > 64 {
		return errors.NewValidationError("callback data is limited to 64 bytes", "BOT_CONFIRM_DATA", c.Bot.ConfirmData)
	}
	if c.Outbox.Workers < 1 {
		return errors.NewValidationError("OUTBOX_WORKERS must be positive", "OUTBOX_WORKERS", c.Outbox.Workers)
	}
	if c.Outbox.BufferSize < 1 {
		return errors.NewValidationError("OUTBOX_BUFFER must be positive", "OUTBOX_BUFFER", c.Outbox.BufferSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
