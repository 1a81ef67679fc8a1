// Package telegram connects the bot to the Telegram Bot API.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// botAPI is the subset of *tgbotapi.BotAPI the client uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Config struct {
	Token string
	Debug bool
}

type Client struct {
	api    botAPI
	logger *zap.Logger
}

// NewClient authenticates against the Bot API with cfg.Token.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := tgbotapi.SetLogger(NewBotLogger(logger)); err != nil {
		logger.Warn("Failed to route Telegram library logs", zap.Error(err))
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, errors.NewTransportError("failed to authorize bot", "getMe", err)
	}
	api.Debug = cfg.Debug

	logger.Info("Authorized on Telegram",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return newClient(api, logger), nil
}

func newClient(api botAPI, logger *zap.Logger) *Client {
	return &Client{api: api, logger: logger}
}

func (c *Client) SendText(ctx context.Context, msg domain.SendText) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := tgbotapi.NewMessage(int64(msg.Chat), msg.Text)
	if markup := keyboardMarkup(msg.Keyboard); markup != nil {
		out.ReplyMarkup = markup
	}

	if _, err := c.api.Send(out); err != nil {
		return errors.NewTransportError("failed to send message", "sendMessage", err)
	}
	return nil
}

func (c *Client) DeleteMessage(ctx context.Context, ref domain.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(int64(ref.Chat), ref.ID)); err != nil {
		return errors.NewTransportError("failed to delete message", "deleteMessage", err)
	}
	return nil
}

// RemoveMember bans member from chat.
func (c *Client) RemoveMember(ctx context.Context, chat domain.ChatID, member domain.MemberID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: int64(chat),
			UserID: int64(member),
		},
	}
	if _, err := c.api.Request(req); err != nil {
		return errors.NewTransportError("failed to remove member", "banChatMember", err)
	}
	return nil
}

// ChatMembers returns the chat's administrators, the only members the Bot API
// enumerates.
func (c *Client) ChatMembers(ctx context.Context, chat domain.ChatID) ([]domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	admins, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: int64(chat)},
	})
	if err != nil {
		return nil, errors.NewTransportError("failed to list chat administrators", "getChatAdministrators", err)
	}

	return lo.FilterMap(admins, func(m tgbotapi.ChatMember, _ int) (domain.Member, bool) {
		if m.User == nil {
			return domain.Member{}, false
		}
		return toMember(m.User), true
	}), nil
}

func keyboardMarkup(kb *domain.Keyboard) any {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	switch kb.Kind {
	case domain.KeyboardInline:
		rows := lo.Map(kb.Rows, func(row []domain.Button, _ int) []tgbotapi.InlineKeyboardButton {
			return tgbotapi.NewInlineKeyboardRow(lo.Map(row, func(b domain.Button, _ int) tgbotapi.InlineKeyboardButton {
				return tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data)
			})...)
		})
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	default:
		rows := lo.Map(kb.Rows, func(row []domain.Button, _ int) []tgbotapi.KeyboardButton {
			return tgbotapi.NewKeyboardButtonRow(lo.Map(row, func(b domain.Button, _ int) tgbotapi.KeyboardButton {
				return tgbotapi.NewKeyboardButton(b.Text)
			})...)
		})
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		return markup
	}
}
