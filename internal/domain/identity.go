package domain

import (
	"strconv"
	"strings"
)

// MemberID identifies a platform user.
type MemberID int64

func (m MemberID) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// ChatID identifies a group chat.
type ChatID int64

func (c ChatID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// ParseChatID parses the decimal form produced by ChatID.String.
func ParseChatID(s string) (ChatID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ChatID(id), nil
}

// ParseMemberID parses the decimal form produced by MemberID.String.
func ParseMemberID(s string) (MemberID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return MemberID(id), nil
}

type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// ChatRef is the chat reference carried by an inbound event. Not every
// reference names a concrete group chat.
type ChatRef struct {
	ID       ChatID
	Type     ChatType
	Username string
}

// Resolve returns the concrete group chat behind the reference. Private chats
// and username-only references do not resolve.
func (r ChatRef) Resolve() (ChatID, bool) {
	if r.ID == 0 || r.Type == ChatTypePrivate {
		return 0, false
	}
	return r.ID, true
}

// MessageRef points at a single message inside a chat.
type MessageRef struct {
	Chat ChatID
	ID   int
}

func (r MessageRef) IsZero() bool {
	return r.ID == 0
}

type Member struct {
	ID        MemberID
	FirstName string
	LastName  string
	Username  string
	IsBot     bool
}

func (m Member) DisplayName() string {
	if m.FirstName != "" {
		return m.FirstName
	}
	if m.Username != "" {
		return "@" + m.Username
	}
	return m.ID.String()
}
