package store

import (
	"context"
	stderrors "errors"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/util"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
)

// ErrCircuitOpen is the cause of StoreErrors returned while the breaker is open.
var ErrCircuitOpen = stderrors.New("membership store circuit open")

// Guarded routes every call through a circuit breaker so a dead backend costs
// one failed call per reset window instead of one per event.
type Guarded struct {
	inner   Store
	breaker *util.CircuitBreaker
}

func NewGuarded(inner Store, breaker *util.CircuitBreaker) *Guarded {
	return &Guarded{inner: inner, breaker: breaker}
}

func (g *Guarded) Record(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	if !g.breaker.Allow(ctx) {
		return errors.NewStoreError("store unavailable", "sadd", MembershipKey(member), ErrCircuitOpen)
	}
	return g.observe(ctx, g.inner.Record(ctx, member, chat))
}

func (g *Guarded) Forget(ctx context.Context, member domain.MemberID, chat domain.ChatID) error {
	if !g.breaker.Allow(ctx) {
		return errors.NewStoreError("store unavailable", "srem", MembershipKey(member), ErrCircuitOpen)
	}
	return g.observe(ctx, g.inner.Forget(ctx, member, chat))
}

func (g *Guarded) ListChats(ctx context.Context, member domain.MemberID) ([]domain.ChatID, error) {
	if !g.breaker.Allow(ctx) {
		return nil, errors.NewStoreError("store unavailable", "smembers", MembershipKey(member), ErrCircuitOpen)
	}
	chats, err := g.inner.ListChats(ctx, member)
	return chats, g.observe(ctx, err)
}

// observe feeds the outcome to the breaker. Calls cut short by their own
// context say nothing about the backend and only hand back the trial slot.
func (g *Guarded) observe(ctx context.Context, err error) error {
	switch {
	case err == nil:
		g.breaker.RecordSuccess()
		return nil
	case ctx.Err() != nil, stderrors.Is(err, context.Canceled):
		g.breaker.Release()
		return err
	default:
		g.breaker.RecordFailure()
		return err
	}
}
