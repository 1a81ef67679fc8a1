package bot

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/kapu/turn-queue-bot-go/internal/adapter"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/store"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
	"go.uber.org/zap"
)

type storeCall struct {
	op     string
	member domain.MemberID
	chat   domain.ChatID
}

// spyStore wraps a MemoryStore and records every call.
type spyStore struct {
	*store.MemoryStore
	calls []storeCall
	err   error
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: store.NewMemoryStore()}
}

func (s *spyStore) Record(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	s.calls = append(s.calls, storeCall{"record", member, chat})
	if s.err != nil {
		return s.err
	}
	return s.MemoryStore.Record(ctx, member, chat)
}

func (s *spyStore) Forget(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	s.calls = append(s.calls, storeCall{"forget", member, chat})
	if s.err != nil {
		return s.err
	}
	return s.MemoryStore.Forget(ctx, member, chat)
}

func (s *spyStore) ListChats(ctx context.Context, member domain.MemberID) ([]domain.ChatID, error) {
	s.calls = append(s.calls, storeCall{"list", member, 0})
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.ListChats(ctx, member)
}

func (s *spyStore) mutations() []storeCall {
	var res []storeCall
	for _, c := range s.calls {
		if c.op != "list" {
			res = append(res, c)
		}
	}
	return res
}

func unavailable() error {
	return errors.NewStoreError("sadd failed", "sadd", "chats_42", stderrors.New("connection refused"))
}

type fakeDispatcher struct {
	mu      sync.Mutex
	actions []domain.Action
}

func (d *fakeDispatcher) Dispatch(action domain.Action) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
}

func (d *fakeDispatcher) sends() []domain.SendText {
	var res []domain.SendText
	for _, a := range d.actions {
		if s, ok := a.(domain.SendText); ok {
			res = append(res, s)
		}
	}
	return res
}

func (d *fakeDispatcher) removals() []domain.RemoveMember {
	var res []domain.RemoveMember
	for _, a := range d.actions {
		if r, ok := a.(domain.RemoveMember); ok {
			res = append(res, r)
		}
	}
	return res
}

func (d *fakeDispatcher) deletions() []domain.MessageRef {
	var res []domain.MessageRef
	for _, a := range d.actions {
		if r, ok := a.(domain.DeleteMessage); ok {
			res = append(res, r.Ref)
		}
	}
	return res
}

// fakeOutbox adds the lifecycle methods Bot needs.
type fakeOutbox struct {
	fakeDispatcher
	started bool
	closed  bool
}

func (o *fakeOutbox) Start(context.Context) { o.started = true }

func (o *fakeOutbox) Close(context.Context) error {
	o.closed = true
	return nil
}

type fakeRoster struct {
	members []domain.Member
	err     error
	calls   []domain.ChatID
}

func (r *fakeRoster) ChatMembers(_ context.Context, chat domain.ChatID) ([]domain.Member, error) {
	r.calls = append(r.calls, chat)
	return r.members, r.err
}

type chanSource struct {
	ch chan domain.Event
}

func (s chanSource) Events(context.Context) <-chan domain.Event {
	return s.ch
}

func testLabels() adapter.Labels {
	return adapter.Labels{
		StartCommand: "/start",
		TurnLabel:    "My turn",
		ConfirmLabel: "Yes",
		CancelLabel:  "No",
		ConfirmData:  "apply_buff",
		CancelData:   "delete_request",
		Greeting:     "Hi!",
		Prompt:       "Is it your turn already?",
		Welcome:      "Welcome to the group, %s!",
		Farewell:     "Bye!",
		Ack:          "Good luck!",
	}
}

func newTestInterpreter(st store.Store, roster Roster) (*Interpreter, *fakeDispatcher) {
	d := &fakeDispatcher{}
	in := NewInterpreter(Dependencies{
		Store:  st,
		Outbox: d,
		Labels: testLabels(),
		Roster: roster,
		Logger: zap.NewNop(),
	})
	return in, d
}

func group(id domain.ChatID) domain.ChatRef {
	return domain.ChatRef{ID: id, Type: domain.ChatTypeSupergroup}
}
