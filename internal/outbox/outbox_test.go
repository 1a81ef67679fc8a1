package outbox

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMessenger struct {
	mu      sync.Mutex
	sent    []domain.SendText
	deleted []domain.MessageRef
	removed []domain.RemoveMember
	err     error
	block   chan struct{}
}

func (m *recordingMessenger) SendText(_ context.Context, msg domain.SendText) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMessenger) DeleteMessage(_ context.Context, ref domain.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref)
	return m.err
}

func (m *recordingMessenger) RemoveMember(_ context.Context, chat domain.ChatID, member domain.MemberID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, domain.RemoveMember{Chat: chat, Member: member})
	return m.err
}

func TestOutboxDeliversEveryActionKind(t *testing.T) {
	m := &recordingMessenger{}
	o := New(m, Config{Workers: 2, BufferSize: 8}, zap.NewNop())
	o.Start(context.Background())

	o.Dispatch(domain.SendText{Chat: 100, Text: "Hi!"})
	o.Dispatch(domain.DeleteMessage{Ref: domain.MessageRef{Chat: 100, ID: 7}})
	o.Dispatch(domain.RemoveMember{Chat: 100, Member: 42})

	require.NoError(t, o.Close(context.Background()))

	require.Equal(t, []domain.SendText{{Chat: 100, Text: "Hi!"}}, m.sent)
	require.Equal(t, []domain.MessageRef{{Chat: 100, ID: 7}}, m.deleted)
	require.Equal(t, []domain.RemoveMember{{Chat: 100, Member: 42}}, m.removed)
}

func TestOutboxDispatchDoesNotBlockWhenFull(t *testing.T) {
	m := &recordingMessenger{block: make(chan struct{})}
	o := New(m, Config{Workers: 1, BufferSize: 1}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			o.Dispatch(domain.SendText{Chat: 100, Text: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(m.block)
	require.NoError(t, o.Close(context.Background()))
	require.Len(t, m.sent, 1)
}

func TestOutboxSwallowsSendErrors(t *testing.T) {
	m := &recordingMessenger{err: stderrors.New("chat not found")}
	o := New(m, Config{Workers: 1, BufferSize: 4}, zap.NewNop())
	o.Start(context.Background())

	o.Dispatch(domain.RemoveMember{Chat: 100, Member: 42})
	o.Dispatch(domain.SendText{Chat: 100, Text: "after failure"})

	require.NoError(t, o.Close(context.Background()))
	require.Len(t, m.removed, 1)
	require.Len(t, m.sent, 1)
}

func TestOutboxDropsAfterClose(t *testing.T) {
	m := &recordingMessenger{}
	o := New(m, Config{Workers: 1, BufferSize: 4}, zap.NewNop())
	o.Start(context.Background())

	require.NoError(t, o.Close(context.Background()))
	require.NoError(t, o.Close(context.Background()))
	o.Dispatch(domain.SendText{Chat: 100, Text: "late"})

	require.Empty(t, m.sent)
}

func TestOutboxCloseRespectsDeadline(t *testing.T) {
	m := &recordingMessenger{block: make(chan struct{})}
	defer close(m.block)
	o := New(m, Config{Workers: 1, BufferSize: 4}, zap.NewNop())
	o.Start(context.Background())
	o.Dispatch(domain.SendText{Chat: 100, Text: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, o.Close(ctx), context.DeadlineExceeded)
}
