package bot

import (
	"context"
	"fmt"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/store"
	"go.uber.org/zap"
)

// Roster lists the members of a chat that the platform lets the bot see.
type Roster interface {
	ChatMembers(ctx context.Context, chat domain.ChatID) ([]domain.Member, error)
}

// ChatSync records a chat's visible roster when the bot joins it. Without a
// roster it only logs the attempt.
type ChatSync struct {
	store  store.Store
	roster Roster
	logger *zap.Logger
}

func NewChatSync(st store.Store, roster Roster, logger *zap.Logger) *ChatSync {
	return &ChatSync{store: st, roster: roster, logger: logger}
}

func (s *ChatSync) Sync(ctx context.Context, chat domain.ChatID) error {
	s.logger.Info("Getting users from chat", zap.Int64("chat", int64(chat)))

	if s.roster == nil {
		return nil
	}

	members, err := s.roster.ChatMembers(ctx, chat)
	if err != nil {
		// The roster is best effort; the index fills in from observed events.
		s.logger.Warn("Failed to list chat members", zap.Int64("chat", int64(chat)), zap.Error(err))
		return nil
	}

	recorded := 0
	for _, m := range members {
		if m.IsBot {
			continue
		}
		if err := s.store.Record(ctx, m.ID, chat); err != nil {
			return fmt.Errorf("record member %s in chat %s: %w", m.ID, chat, err)
		}
		recorded++
	}

	s.logger.Info("Chat roster synced",
		zap.Int64("chat", int64(chat)),
		zap.Int("recorded", recorded),
	)
	return nil
}
