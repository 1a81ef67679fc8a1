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

// Interpreter turns one inbound event into index mutations and outbound
// actions.
type Interpreter struct {
	store        store.Store
	out          outbox.Dispatcher
	adapter      *adapter.MessageAdapter
	formatter    *adapter.ResponseFormatter
	confirmation *Confirmation
	sync         *ChatSync
	logger       *zap.Logger
}

type Dependencies struct {
	Store  store.Store
	Outbox outbox.Dispatcher
	Labels adapter.Labels
	Roster Roster // optional
	Logger *zap.Logger
}

func NewInterpreter(deps Dependencies) *Interpreter {
	formatter := adapter.NewResponseFormatter(deps.Labels)
	return &Interpreter{
		store:        deps.Store,
		out:          deps.Outbox,
		adapter:      adapter.NewMessageAdapter(deps.Labels),
		formatter:    formatter,
		confirmation: NewConfirmation(deps.Store, deps.Outbox, formatter, deps.Logger),
		sync:         NewChatSync(deps.Store, deps.Roster, deps.Logger),
		logger:       deps.Logger,
	}
}

// Handle processes ev. A returned error means the event was abandoned
// part-way, typically because the store is unreachable.
func (in *Interpreter) Handle(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.TextMessage:
		return in.handleText(ctx, e)
	case domain.NewChatMembers:
		return in.handleNewMembers(ctx, e)
	case domain.LeftChatMember:
		return in.handleLeftMember(ctx, e)
	case domain.CallbackQuery:
		return in.handleCallback(ctx, e)
	case domain.BotMembershipChanged:
		return in.handleBotMembership(ctx, e)
	case domain.Ignored:
		in.logger.Debug("Ignoring update", zap.String("reason", e.Reason))
		return nil
	default:
		in.logger.Debug("Ignoring unknown event", zap.String("type", fmt.Sprintf("%T", ev)))
		return nil
	}
}

func (in *Interpreter) handleText(ctx context.Context, e domain.TextMessage) error {
	if e.Chat.ID != 0 {
		switch in.adapter.ClassifyText(e.Text) {
		case adapter.IntentStart:
			in.out.Dispatch(in.formatter.Greeting(e.Chat.ID))
		case adapter.IntentRequestTurn:
			in.out.Dispatch(in.formatter.Prompt(e.Chat.ID))
		}
	}

	chat, ok := in.resolve(e.Chat, e.Kind())
	if !ok {
		return nil
	}
	if err := in.store.Record(ctx, e.Sender.ID, chat); err != nil {
		return fmt.Errorf("record sender %s in chat %s: %w", e.Sender.ID, chat, err)
	}
	return nil
}

func (in *Interpreter) handleNewMembers(ctx context.Context, e domain.NewChatMembers) error {
	chat, ok := in.resolve(e.Chat, e.Kind())
	if !ok {
		return nil
	}

	in.logger.Info("Users were added to chat",
		zap.Int64s("members", lo.Map(e.Members, func(m domain.Member, _ int) int64 { return int64(m.ID) })),
		zap.Int64("chat", int64(chat)),
	)

	for _, m := range e.Members {
		if err := in.store.Record(ctx, m.ID, chat); err != nil {
			return fmt.Errorf("record new member %s in chat %s: %w", m.ID, chat, err)
		}
	}

	in.out.Dispatch(in.formatter.Welcome(chat, e.Members))
	return nil
}

func (in *Interpreter) handleLeftMember(ctx context.Context, e domain.LeftChatMember) error {
	chat, ok := in.resolve(e.Chat, e.Kind())
	if !ok {
		return nil
	}

	in.logger.Info("User was deleted from chat",
		zap.Int64("member", int64(e.Member.ID)),
		zap.Int64("chat", int64(chat)),
	)

	if err := in.store.Forget(ctx, e.Member.ID, chat); err != nil {
		return fmt.Errorf("forget member %s in chat %s: %w", e.Member.ID, chat, err)
	}

	in.out.Dispatch(in.formatter.Farewell(chat))
	return nil
}

func (in *Interpreter) handleCallback(ctx context.Context, e domain.CallbackQuery) error {
	decision := in.adapter.ClassifyCallback(e.Data)
	if decision == adapter.DecisionUnknown {
		in.logger.Debug("Ignoring unknown callback data", zap.String("data", e.Data))
		return nil
	}
	return in.confirmation.Resolve(ctx, domain.NewPendingConfirmation(e), decision)
}

func (in *Interpreter) handleBotMembership(ctx context.Context, e domain.BotMembershipChanged) error {
	switch {
	case e.NewStatus.IsActive():
		chat, ok := in.resolve(e.Chat, e.Kind())
		if !ok {
			return nil
		}
		in.logger.Info("Bot added to chat",
			zap.Int64("chat", int64(chat)),
			zap.String("status", e.NewStatus.String()),
		)
		return in.sync.Sync(ctx, chat)
	case e.NewStatus.IsGone():
		// Forgetting every membership tied to the chat would need a reverse
		// index; until then the stale entries only cost a failed removal.
		in.logger.Info("Bot removed from chat",
			zap.Int64("chat", int64(e.Chat.ID)),
			zap.String("status", e.NewStatus.String()),
		)
		return nil
	default:
		in.logger.Debug("Ignoring bot status change", zap.String("status", e.NewStatus.String()))
		return nil
	}
}

func (in *Interpreter) resolve(ref domain.ChatRef, kind domain.EventKind) (domain.ChatID, bool) {
	chat, ok := ref.Resolve()
	if !ok {
		in.logger.Debug("Unresolvable chat reference, skipping",
			zap.String("event", kind.String()),
			zap.Int64("chat", int64(ref.ID)),
			zap.String("type", string(ref.Type)),
		)
	}
	return chat, ok
}
