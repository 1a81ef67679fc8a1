package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/util"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakyStore struct {
	*MemoryStore
	err   error
	calls int
}

func (f *flakyStore) Record(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	f.calls++
	if f.err != nil {
		return errors.NewStoreError("sadd failed", "sadd", MembershipKey(member), f.err)
	}
	return f.MemoryStore.Record(ctx, member, chat)
}

func TestGuardedFailsFastAfterThreshold(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(), err: stderrors.New("down")}
	breaker := util.NewCircuitBreaker(util.CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
	}, nil, zap.NewNop())
	g := NewGuarded(inner, breaker)
	ctx := context.Background()

	require.Error(t, g.Record(ctx, 1, 100))
	require.Error(t, g.Record(ctx, 1, 100))
	require.Equal(t, 2, inner.calls)

	err := g.Record(ctx, 1, 100)
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.True(t, errors.IsStoreError(err))
	require.Equal(t, 2, inner.calls)
}

func TestGuardedPassesThroughWhenHealthy(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore()}
	breaker := util.NewCircuitBreaker(util.CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour}, nil, zap.NewNop())
	g := NewGuarded(inner, breaker)
	ctx := context.Background()

	require.NoError(t, g.Record(ctx, 1, 100))
	require.NoError(t, g.Forget(ctx, 1, 200))
	chats, err := g.ListChats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []domain.ChatID{100}, chats)
	require.Equal(t, util.CircuitStateClosed, breaker.State())
}

func TestGuardedIgnoresCallerCancellation(t *testing.T) {
	rs, _ := newTestRedisStore(t)
	breaker := util.NewCircuitBreaker(util.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour}, rs.Ping, zap.NewNop())
	g := NewGuarded(rs, breaker)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_ = g.Record(cancelled, 42, 100)
	}
	require.Equal(t, util.CircuitStateClosed, breaker.State())

	require.NoError(t, g.Record(context.Background(), 42, 100))
	chats, err := g.ListChats(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, []domain.ChatID{100}, chats)
}

func TestGuardedCancelledTrialFreesSlot(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(), err: stderrors.New("down")}
	breaker := util.NewCircuitBreaker(util.CircuitBreakerConfig{FailureThreshold: 1}, nil, zap.NewNop())
	g := NewGuarded(inner, breaker)
	ctx := context.Background()

	require.Error(t, g.Record(ctx, 1, 100))
	require.Equal(t, util.CircuitStateOpen, breaker.State())

	inner.err = context.Canceled
	require.ErrorIs(t, g.Record(ctx, 1, 100), context.Canceled)
	require.Equal(t, util.CircuitStateHalfOpen, breaker.State())

	inner.err = nil
	require.NoError(t, g.Record(ctx, 1, 100))
	require.Equal(t, util.CircuitStateClosed, breaker.State())
}
