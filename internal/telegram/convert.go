package telegram

import (
	stderrors "errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/samber/lo"
)

// ErrMalformedUpdate marks an update missing fields the Bot API always sets.
var ErrMalformedUpdate = stderrors.New("malformed update")

// allowedUpdates are the update kinds requested from getUpdates.
var allowedUpdates = []string{
	"message",
	"callback_query",
	"my_chat_member",
}

// toEvent maps one update onto a domain event. Kinds the bot does not act on
// become domain.Ignored.
func toEvent(u tgbotapi.Update) (domain.Event, error) {
	switch {
	case u.CallbackQuery != nil:
		return callbackEvent(u.UpdateID, u.CallbackQuery)
	case u.MyChatMember != nil:
		return domain.BotMembershipChanged{
			Chat:      toChatRef(&u.MyChatMember.Chat),
			OldStatus: domain.MemberStatus(u.MyChatMember.OldChatMember.Status),
			NewStatus: domain.MemberStatus(u.MyChatMember.NewChatMember.Status),
		}, nil
	case u.Message != nil:
		return messageEvent(u.UpdateID, u.Message)
	default:
		return domain.Ignored{Reason: "unsupported update"}, nil
	}
}

func messageEvent(updateID int, m *tgbotapi.Message) (domain.Event, error) {
	if m.Chat == nil {
		return nil, fmt.Errorf("update %d: message %d without chat: %w", updateID, m.MessageID, ErrMalformedUpdate)
	}
	chat := toChatRef(m.Chat)

	switch {
	case len(m.NewChatMembers) > 0:
		return domain.NewChatMembers{
			Chat: chat,
			Members: lo.Map(m.NewChatMembers, func(u tgbotapi.User, _ int) domain.Member {
				return toMember(&u)
			}),
		}, nil
	case m.LeftChatMember != nil:
		return domain.LeftChatMember{Chat: chat, Member: toMember(m.LeftChatMember)}, nil
	case m.From == nil:
		return domain.Ignored{Reason: "message without sender"}, nil
	case m.Text == "":
		return domain.Ignored{Reason: "message without text"}, nil
	default:
		return domain.TextMessage{
			Chat:    chat,
			Sender:  toMember(m.From),
			Message: domain.MessageRef{Chat: domain.ChatID(m.Chat.ID), ID: m.MessageID},
			Text:    m.Text,
		}, nil
	}
}

func callbackEvent(updateID int, q *tgbotapi.CallbackQuery) (domain.Event, error) {
	if q.From == nil {
		return nil, fmt.Errorf("update %d: callback %q without sender: %w", updateID, q.ID, ErrMalformedUpdate)
	}

	ev := domain.CallbackQuery{
		ID:   q.ID,
		From: toMember(q.From),
		Data: q.Data,
	}
	// Message is absent for buttons on inline-mode messages.
	if q.Message != nil && q.Message.Chat != nil {
		ev.Chat = toChatRef(q.Message.Chat)
		ev.Message = domain.MessageRef{Chat: domain.ChatID(q.Message.Chat.ID), ID: q.Message.MessageID}
	}
	return ev, nil
}

func toChatRef(c *tgbotapi.Chat) domain.ChatRef {
	return domain.ChatRef{
		ID:       domain.ChatID(c.ID),
		Type:     domain.ChatType(c.Type),
		Username: c.UserName,
	}
}

func toMember(u *tgbotapi.User) domain.Member {
	return domain.Member{
		ID:        domain.MemberID(u.ID),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
		IsBot:     u.IsBot,
	}
}
