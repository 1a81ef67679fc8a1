package domain

// Event is one normalized inbound update. The set of implementations is
// closed; consumers switch on the concrete type.
type Event interface {
	Kind() EventKind
	isEvent()
}

type EventKind string

const (
	KindTextMessage          EventKind = "text_message"
	KindNewChatMembers       EventKind = "new_chat_members"
	KindLeftChatMember       EventKind = "left_chat_member"
	KindCallbackQuery        EventKind = "callback_query"
	KindBotMembershipChanged EventKind = "bot_membership_changed"
	KindIgnored              EventKind = "ignored"
)

func (k EventKind) String() string {
	return string(k)
}

type TextMessage struct {
	Chat    ChatRef
	Sender  Member
	Message MessageRef
	Text    string
}

type NewChatMembers struct {
	Chat    ChatRef
	Members []Member
}

type LeftChatMember struct {
	Chat   ChatRef
	Member Member
}

// CallbackQuery is an inline button press. Message is zero when the platform
// did not attach the originating message.
type CallbackQuery struct {
	ID      string
	From    Member
	Chat    ChatRef
	Message MessageRef
	Data    string
}

type BotMembershipChanged struct {
	Chat      ChatRef
	OldStatus MemberStatus
	NewStatus MemberStatus
}

// Ignored stands for every update kind the bot does not act on.
type Ignored struct {
	Reason string
}

func (TextMessage) Kind() EventKind          { return KindTextMessage }
func (NewChatMembers) Kind() EventKind       { return KindNewChatMembers }
func (LeftChatMember) Kind() EventKind       { return KindLeftChatMember }
func (CallbackQuery) Kind() EventKind        { return KindCallbackQuery }
func (BotMembershipChanged) Kind() EventKind { return KindBotMembershipChanged }
func (Ignored) Kind() EventKind              { return KindIgnored }

func (TextMessage) isEvent()          {}
func (NewChatMembers) isEvent()       {}
func (LeftChatMember) isEvent()       {}
func (CallbackQuery) isEvent()        {}
func (BotMembershipChanged) isEvent() {}
func (Ignored) isEvent()              {}

// MemberStatus is a chat member's standing as reported by the platform.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

func (s MemberStatus) String() string {
	return string(s)
}

// IsActive reports whether the status grants full presence in the chat.
func (s MemberStatus) IsActive() bool {
	switch s {
	case StatusMember, StatusCreator, StatusAdministrator:
		return true
	default:
		return false
	}
}

// IsGone reports whether the status means the member is no longer in the chat.
func (s MemberStatus) IsGone() bool {
	switch s {
	case StatusLeft, StatusKicked:
		return true
	default:
		return false
	}
}

// PendingConfirmation carries what a confirm/cancel press needs: who asked and
// which prompt to clean up.
type PendingConfirmation struct {
	Member Member
	Prompt MessageRef
}

func NewPendingConfirmation(q CallbackQuery) PendingConfirmation {
	return PendingConfirmation{
		Member: q.From,
		Prompt: q.Message,
	}
}
