package adapter

import (
	"strings"
)

// TextIntent is what a plain text message asks the bot to do.
type TextIntent string

const (
	IntentStart       TextIntent = "start"
	IntentRequestTurn TextIntent = "request_turn"
	IntentObserve     TextIntent = "observe"
)

// Decision is the operator's answer to a turn prompt.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionCancel  Decision = "cancel"
	DecisionUnknown Decision = "unknown"
)

// MessageAdapter maps raw text and callback data onto bot intents.
type MessageAdapter struct {
	startCommand string
	turnLabel    string
	confirmData  string
	cancelData   string
}

func NewMessageAdapter(labels Labels) *MessageAdapter {
	return &MessageAdapter{
		startCommand: labels.StartCommand,
		turnLabel:    labels.TurnLabel,
		confirmData:  labels.ConfirmData,
		cancelData:   labels.CancelData,
	}
}

func (ma *MessageAdapter) ClassifyText(text string) TextIntent {
	text = strings.TrimSpace(text)
	switch {
	case ma.isStartCommand(text):
		return IntentStart
	case text != "" && text == ma.turnLabel:
		return IntentRequestTurn
	default:
		return IntentObserve
	}
}

func (ma *MessageAdapter) ClassifyCallback(data string) Decision {
	switch data {
	case ma.confirmData:
		return DecisionConfirm
	case ma.cancelData:
		return DecisionCancel
	default:
		return DecisionUnknown
	}
}

// isStartCommand accepts the bare command and the /cmd@botname form.
func (ma *MessageAdapter) isStartCommand(text string) bool {
	if text == "" || ma.startCommand == "" {
		return false
	}
	command, _, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return command == ma.startCommand
}
