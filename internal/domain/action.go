package domain

import "fmt"

// Action is an outbound command for the messaging platform. Actions are fire
// and forget; nothing waits on their outcome.
type Action interface {
	Name() string
	isAction()
}

type SendText struct {
	Chat     ChatID
	Text     string
	Keyboard *Keyboard
}

type DeleteMessage struct {
	Ref MessageRef
}

type RemoveMember struct {
	Chat   ChatID
	Member MemberID
}

func (SendText) Name() string      { return "send_text" }
func (DeleteMessage) Name() string { return "delete_message" }
func (RemoveMember) Name() string  { return "remove_member" }

func (SendText) isAction()      {}
func (DeleteMessage) isAction() {}
func (RemoveMember) isAction()  {}

func (a SendText) String() string {
	return fmt.Sprintf("send_text(chat=%s)", a.Chat)
}

func (a DeleteMessage) String() string {
	return fmt.Sprintf("delete_message(chat=%s, message=%d)", a.Ref.Chat, a.Ref.ID)
}

func (a RemoveMember) String() string {
	return fmt.Sprintf("remove_member(chat=%s, member=%s)", a.Chat, a.Member)
}

type KeyboardKind string

const (
	// KeyboardReply is a persistent keyboard under the input field.
	KeyboardReply KeyboardKind = "reply"
	// KeyboardInline is attached to the message and answers with callback data.
	KeyboardInline KeyboardKind = "inline"
)

type Button struct {
	Text string
	Data string
}

type Keyboard struct {
	Kind KeyboardKind
	Rows [][]Button
}

func NewReplyKeyboard(labels ...string) *Keyboard {
	row := make([]Button, 0, len(labels))
	for _, label := range labels {
		row = append(row, Button{Text: label})
	}
	return &Keyboard{Kind: KeyboardReply, Rows: [][]Button{row}}
}

// NewInlineKeyboard puts each button on its own row.
func NewInlineKeyboard(buttons ...Button) *Keyboard {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	return &Keyboard{Kind: KeyboardInline, Rows: rows}
}
