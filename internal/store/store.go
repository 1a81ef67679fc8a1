// Package store keeps the membership index: for every member, the set of
// group chats they are known to be in.
package store

import (
	"context"
	"strings"

	"github.com/kapu/turn-queue-bot-go/internal/constants"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
)

// Store is the membership index. All operations are idempotent and atomic per
// member key.
type Store interface {
	Record(ctx context.Context, member domain.MemberID, chat domain.ChatID) error
	Forget(ctx context.Context, member domain.MemberID, chat domain.ChatID) error
	ListChats(ctx context.Context, member domain.MemberID) ([]domain.ChatID, error)
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MembershipKey returns the key holding member's chat set.
func MembershipKey(member domain.MemberID) string {
	return constants.MembershipKeyPrefix + member.String()
}

// MemberFromKey reverses MembershipKey.
func MemberFromKey(key string) (domain.MemberID, bool) {
	rest, ok := strings.CutPrefix(key, constants.MembershipKeyPrefix)
	if !ok {
		return 0, false
	}
	member, err := domain.ParseMemberID(rest)
	if err != nil {
		return 0, false
	}
	return member, true
}
