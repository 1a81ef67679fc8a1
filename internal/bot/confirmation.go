package bot

import (
	"context"
	"fmt"

	"github.com/kapu/turn-queue-bot-go/internal/adapter"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/outbox"
	"github.com/kapu/turn-queue-bot-go/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Confirmation resolves a turn prompt once the operator answers it. A prompt
// is just the message carrying the inline buttons; nothing is kept between
// the "request turn" message and the callback.
type Confirmation struct {
	store     store.Store
	out       outbox.Dispatcher
	formatter *adapter.ResponseFormatter
	logger    *zap.Logger
}

func NewConfirmation(st store.Store, out outbox.Dispatcher, formatter *adapter.ResponseFormatter, logger *zap.Logger) *Confirmation {
	return &Confirmation{
		store:     st,
		out:       out,
		formatter: formatter,
		logger:    logger,
	}
}

// Resolve applies the decision. Confirm issues one removal per known chat of
// the member, acknowledges in the originating chat and deletes the prompt.
// Cancel only deletes the prompt. The member's index entry is left as is.
func (c *Confirmation) Resolve(ctx context.Context, pending domain.PendingConfirmation, decision adapter.Decision) error {
	if pending.Prompt.IsZero() {
		c.logger.Debug("Callback without prompt message, skipping",
			zap.Int64("member", int64(pending.Member.ID)),
			zap.String("decision", string(decision)),
		)
		return nil
	}

	switch decision {
	case adapter.DecisionConfirm:
		return c.confirm(ctx, pending)
	case adapter.DecisionCancel:
		c.out.Dispatch(domain.DeleteMessage{Ref: pending.Prompt})
		return nil
	default:
		return nil
	}
}

func (c *Confirmation) confirm(ctx context.Context, pending domain.PendingConfirmation) error {
	member := pending.Member.ID

	c.logger.Warn("Removing member from known chats",
		zap.Int64("member", int64(member)),
		zap.Int64("requested_from", int64(pending.Prompt.Chat)),
	)

	chats, err := c.store.ListChats(ctx, member)
	if err != nil {
		return fmt.Errorf("list chats of member %s: %w", member, err)
	}

	c.logger.Info("Chats found for member",
		zap.Int64("member", int64(member)),
		zap.Int64s("chats", chatIDs(chats)),
	)

	for _, chat := range chats {
		c.out.Dispatch(domain.RemoveMember{Chat: chat, Member: member})
	}
	c.out.Dispatch(c.formatter.Ack(pending.Prompt.Chat))
	c.out.Dispatch(domain.DeleteMessage{Ref: pending.Prompt})
	return nil
}

func chatIDs(chats []domain.ChatID) []int64 {
	return lo.Map(chats, func(c domain.ChatID, _ int) int64 { return int64(c) })
}
