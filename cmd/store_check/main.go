package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/app"
	"github.com/kapu/turn-queue-bot-go/internal/config"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/util"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	probeMember = flag.Int64("member", -1, "Member ID used for the probe entry")
	probeChat   = flag.Int64("chat", -1, "Chat ID used for the probe entry")
)

// store_check runs Record, ListChats and Forget against the backend selected
// by STORE_BACKEND and leaves the index as it found it.
func main() {
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := util.NewLogger(cfg.Logging.Level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Store check failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Store check passed", zap.String("backend", cfg.Store.Backend))
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, closeFn, err := app.BuildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	member, chat := domain.MemberID(*probeMember), domain.ChatID(*probeChat)

	if err := st.Record(ctx, member, chat); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	chats, err := st.ListChats(ctx, member)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	if !lo.Contains(chats, chat) {
		return fmt.Errorf("recorded chat %s missing from %v", chat, chats)
	}
	logger.Info("Record and list ok", zap.Int("chats", len(chats)))

	if err := st.Forget(ctx, member, chat); err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	chats, err = st.ListChats(ctx, member)
	if err != nil {
		return fmt.Errorf("list chats after forget: %w", err)
	}
	if lo.Contains(chats, chat) {
		return fmt.Errorf("forgotten chat %s still listed", chat)
	}
	logger.Info("Forget ok")
	return nil
}
