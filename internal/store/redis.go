package store

import (
	"context"
	"fmt"

	"github.com/kapu/turn-queue-bot-go/internal/constants"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) options() (*redis.Options, error) {
	var opts *redis.Options
	if c.URL != "" {
		parsed, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			Password: c.Password,
			DB:       c.DB,
		}
	}

	opts.MaxRetries = constants.RedisConfig.MaxRetries
	opts.DialTimeout = constants.RedisConfig.DialTimeout
	opts.ReadTimeout = constants.RedisConfig.ReadTimeout
	opts.WriteTimeout = constants.RedisConfig.WriteTimeout
	opts.PoolSize = constants.RedisConfig.PoolSize
	return opts, nil
}

// RedisStore keeps one SET per member under MembershipKey.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects and pings Redis before returning.
func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewStoreError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
	)

	return NewRedisStoreFromClient(client, logger), nil
}

func NewRedisStoreFromClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

func (s *RedisStore) Record(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	key := MembershipKey(member)
	if err := s.client.SAdd(ctx, key, chat.String()).Err(); err != nil {
		s.logger.Error("Membership sadd failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("sadd failed", "sadd", key, err)
	}
	return nil
}

func (s *RedisStore) Forget(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	key := MembershipKey(member)
	if err := s.client.SRem(ctx, key, chat.String()).Err(); err != nil {
		s.logger.Error("Membership srem failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("srem failed", "srem", key, err)
	}
	return nil
}

func (s *RedisStore) ListChats(ctx context.Context, member domain.MemberID) ([]domain.ChatID, error) {
	key := MembershipKey(member)
	values, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		s.logger.Error("Membership smembers failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewStoreError("smembers failed", "smembers", key, err)
	}

	chats := make([]domain.ChatID, 0, len(values))
	for _, v := range values {
		chat, err := domain.ParseChatID(v)
		if err != nil {
			s.logger.Warn("Skipping malformed chat id in membership set",
				zap.String("key", key),
				zap.String("value", v),
			)
			continue
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

// ForEachMember calls fn for every member that has a chat set. Keys under the
// prefix that do not parse as a member ID are skipped.
func (s *RedisStore) ForEachMember(ctx context.Context, fn func(member domain.MemberID) error) error {
	iter := s.client.Scan(ctx, 0, constants.MembershipKeyPrefix+"*", constants.RedisConfig.ScanCount).Iterator()
	for iter.Next(ctx) {
		member, ok := MemberFromKey(iter.Val())
		if !ok {
			s.logger.Warn("Skipping unrecognized membership key", zap.String("key", iter.Val()))
			continue
		}
		if err := fn(member); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return errors.NewStoreError("scan failed", "scan", constants.MembershipKeyPrefix+"*", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	s.logger.Info("Redis disconnected")
	return nil
}
