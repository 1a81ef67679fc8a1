package store

import (
	"context"
	"testing"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRecordForgetSequence(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	steps := []struct {
		record bool
		chat   domain.ChatID
		want   []domain.ChatID
	}{
		{true, 100, []domain.ChatID{100}},
		{true, 100, []domain.ChatID{100}},
		{true, 200, []domain.ChatID{100, 200}},
		{false, 100, []domain.ChatID{200}},
		{false, 100, []domain.ChatID{200}},
		{false, 200, []domain.ChatID{}},
	}

	for _, step := range steps {
		if step.record {
			require.NoError(t, s.Record(ctx, 42, step.chat))
		} else {
			require.NoError(t, s.Forget(ctx, 42, step.chat))
		}
		chats, err := s.ListChats(ctx, 42)
		require.NoError(t, err)
		require.Equal(t, step.want, chats)
	}
}

func TestMemoryStoreMembersAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, 1, 100))
	require.NoError(t, s.Record(ctx, 2, 200))
	require.NoError(t, s.Forget(ctx, 3, 100))

	chats, err := s.ListChats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []domain.ChatID{100}, chats)
}

func TestMembershipKey(t *testing.T) {
	require.Equal(t, "chats_42", MembershipKey(42))
}
