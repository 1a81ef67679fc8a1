package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/samber/lo"
)

// Labels are the user-facing strings and callback tags of the bot.
type Labels struct {
	StartCommand string
	TurnLabel    string
	ConfirmLabel string
	CancelLabel  string
	ConfirmData  string
	CancelData   string
	Greeting     string
	Prompt       string
	Welcome      string // may contain one %s for the joined names
	Farewell     string
	Ack          string
}

// ResponseFormatter builds outbound texts and keyboards.
type ResponseFormatter struct {
	labels Labels
}

func NewResponseFormatter(labels Labels) *ResponseFormatter {
	return &ResponseFormatter{labels: labels}
}

func (f *ResponseFormatter) Labels() Labels {
	return f.labels
}

// TurnKeyboard is the persistent one-button keyboard offering "request turn".
func (f *ResponseFormatter) TurnKeyboard() *domain.Keyboard {
	return domain.NewReplyKeyboard(f.labels.TurnLabel)
}

// ConfirmKeyboard carries the confirm and cancel callback buttons.
func (f *ResponseFormatter) ConfirmKeyboard() *domain.Keyboard {
	return domain.NewInlineKeyboard(
		domain.Button{Text: f.labels.ConfirmLabel, Data: f.labels.ConfirmData},
		domain.Button{Text: f.labels.CancelLabel, Data: f.labels.CancelData},
	)
}

func (f *ResponseFormatter) Greeting(chat domain.ChatID) domain.SendText {
	return domain.SendText{Chat: chat, Text: f.labels.Greeting, Keyboard: f.TurnKeyboard()}
}

func (f *ResponseFormatter) Prompt(chat domain.ChatID) domain.SendText {
	return domain.SendText{Chat: chat, Text: f.labels.Prompt, Keyboard: f.ConfirmKeyboard()}
}

func (f *ResponseFormatter) Welcome(chat domain.ChatID, members []domain.Member) domain.SendText {
	return domain.SendText{Chat: chat, Text: f.FormatWelcome(members), Keyboard: f.TurnKeyboard()}
}

func (f *ResponseFormatter) Farewell(chat domain.ChatID) domain.SendText {
	return domain.SendText{Chat: chat, Text: f.labels.Farewell}
}

func (f *ResponseFormatter) Ack(chat domain.ChatID) domain.SendText {
	return domain.SendText{Chat: chat, Text: f.labels.Ack}
}

// FormatWelcome names every added member, comma separated.
func (f *ResponseFormatter) FormatWelcome(members []domain.Member) string {
	names := strings.Join(lo.Map(members, func(m domain.Member, _ int) string {
		return m.DisplayName()
	}), ", ")

	if strings.Contains(f.labels.Welcome, "%s") {
		return fmt.Sprintf(f.labels.Welcome, names)
	}
	return strings.TrimSpace(f.labels.Welcome + " " + names)
}
