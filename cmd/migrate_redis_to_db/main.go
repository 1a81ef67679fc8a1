package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/store"
	"github.com/kapu/turn-queue-bot-go/internal/util"
	"go.uber.org/zap"
)

// CLI flags
var (
	dryRun   = flag.Bool("dry-run", false, "Count memberships without writing to PostgreSQL")
	redisURL = flag.String("redis-url", "redis://127.0.0.1:6379/0", "Source Redis URL")
	dbHost   = flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort   = flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser   = flag.String("db-user", "turnqueue", "PostgreSQL user")
	dbPass   = flag.String("db-pass", "", "PostgreSQL password")
	dbName   = flag.String("db-name", "turnqueue", "PostgreSQL database")
	timeout  = flag.Duration("timeout", 10*time.Minute, "Overall migration timeout")
	verbose  = flag.Bool("verbose", false, "Log every migrated member")
)

func main() {
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	logger.Info("Redis to PostgreSQL membership migration",
		zap.Bool("dry_run", *dryRun),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	src, err := store.NewRedisStore(store.RedisConfig{URL: *redisURL}, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer src.Close()

	var dst store.Store = store.NewMemoryStore()
	if !*dryRun {
		db, err := store.OpenPostgres(store.PostgresConfig{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Password: *dbPass,
			Database: *dbName,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}

		pg, err := store.NewPostgresStore(ctx, db, logger)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("prepare postgres: %w", err)
		}
		defer pg.Close()
		dst = pg
	}

	stats, err := store.Migrate(ctx, src, dst, *dryRun, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Members: %d\nMemberships: %d\n", stats.Members, stats.Memberships)
	return nil
}
