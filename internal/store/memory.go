package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
)

// MemoryStore is an in-process Store. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[domain.MemberID]map[domain.ChatID]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chats: make(map[domain.MemberID]map[domain.ChatID]struct{})}
}

func (s *MemoryStore) Record(_ context.Context, member domain.MemberID, chat domain.ChatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.chats[member]
	if !ok {
		set = make(map[domain.ChatID]struct{})
		s.chats[member] = set
	}
	set[chat] = struct{}{}
	return nil
}

func (s *MemoryStore) Forget(_ context.Context, member domain.MemberID, chat domain.ChatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats[member], chat)
	return nil
}

// ListChats returns the member's chats in ascending order.
func (s *MemoryStore) ListChats(_ context.Context, member domain.MemberID) ([]domain.ChatID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.ChatID, 0, len(s.chats[member]))
	for chat := range s.chats[member] {
		res = append(res, chat)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
