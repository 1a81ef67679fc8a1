package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const membershipSchema = `CREATE TABLE IF NOT EXISTS chat_memberships (
	member_id BIGINT NOT NULL,
	chat_id   BIGINT NOT NULL,
	PRIMARY KEY (member_id, chat_id)
)`

const (
	recordSQL    = `INSERT INTO chat_memberships (member_id, chat_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	forgetSQL    = `DELETE FROM chat_memberships WHERE member_id = $1 AND chat_id = $2`
	listChatsSQL = `SELECT chat_id FROM chat_memberships WHERE member_id = $1 ORDER BY chat_id`
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// OpenPostgres opens and pings a connection pool.
func OpenPostgres(cfg PostgresConfig, logger *zap.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)
	return db, nil
}

// PostgresStore keeps the index as (member_id, chat_id) rows.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates the membership table if needed.
func NewPostgresStore(ctx context.Context, db *sql.DB, logger *zap.Logger) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, membershipSchema); err != nil {
		return nil, errors.NewStoreError("failed to migrate membership table", "migrate", "chat_memberships", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) Record(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	if _, err := s.db.ExecContext(ctx, recordSQL, int64(member), int64(chat)); err != nil {
		key := MembershipKey(member)
		s.logger.Error("Membership insert failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("insert failed", "insert", key, err)
	}
	return nil
}

func (s *PostgresStore) Forget(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	if _, err := s.db.ExecContext(ctx, forgetSQL, int64(member), int64(chat)); err != nil {
		key := MembershipKey(member)
		s.logger.Error("Membership delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("delete failed", "delete", key, err)
	}
	return nil
}

func (s *PostgresStore) ListChats(ctx context.Context, member domain.MemberID) ([]domain.ChatID, error) {
	key := MembershipKey(member)
	rows, err := s.db.QueryContext(ctx, listChatsSQL, int64(member))
	if err != nil {
		s.logger.Error("Membership select failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewStoreError("select failed", "select", key, err)
	}
	defer rows.Close()

	chats := make([]domain.ChatID, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewStoreError("scan failed", "select", key, err)
		}
		chats = append(chats, domain.ChatID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("select failed", "select", key, err)
	}
	return chats, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
