package util

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestBreaker(check HealthCheckFunc) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold:    2,
		ResetTimeout:        30 * time.Second,
		HealthCheckInterval: 10 * time.Second,
	}, check, zap.NewNop())
	cb.now = clock.Now
	return cb, clock
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(nil)
	ctx := context.Background()

	cb.RecordFailure()
	require.True(t, cb.Allow(ctx))
	cb.RecordFailure()
	require.Equal(t, CircuitStateOpen, cb.State())
	require.False(t, cb.Allow(ctx))
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb, _ := newTestBreaker(nil)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	require.Equal(t, CircuitStateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb, clock := newTestBreaker(nil)
	ctx := context.Background()

	cb.RecordFailure()
	cb.RecordFailure()
	clock.t = clock.t.Add(31 * time.Second)

	require.True(t, cb.Allow(ctx))
	require.Equal(t, CircuitStateHalfOpen, cb.State())

	cb.RecordFailure()
	require.Equal(t, CircuitStateOpen, cb.State())
	require.False(t, cb.Allow(ctx))

	clock.t = clock.t.Add(31 * time.Second)
	require.True(t, cb.Allow(ctx))
	cb.RecordSuccess()
	require.Equal(t, CircuitStateClosed, cb.State())
}

func TestCircuitBreakerHealthCheckGatesRecovery(t *testing.T) {
	healthy := false
	cb, clock := newTestBreaker(func(context.Context) error {
		if healthy {
			return nil
		}
		return stderrors.New("still down")
	})
	ctx := context.Background()

	cb.RecordFailure()
	cb.RecordFailure()
	clock.t = clock.t.Add(31 * time.Second)

	require.False(t, cb.Allow(ctx))
	require.Equal(t, CircuitStateOpen, cb.State())

	healthy = true
	clock.t = clock.t.Add(5 * time.Second)
	require.False(t, cb.Allow(ctx), "next check waits for the health check interval")

	clock.t = clock.t.Add(6 * time.Second)
	require.True(t, cb.Allow(ctx))
	require.Equal(t, CircuitStateHalfOpen, cb.State())
}

func TestCircuitBreakerHalfOpenAllowsSingleTrial(t *testing.T) {
	cb, clock := newTestBreaker(nil)
	ctx := context.Background()

	cb.RecordFailure()
	cb.RecordFailure()
	clock.t = clock.t.Add(31 * time.Second)

	require.True(t, cb.Allow(ctx))
	require.False(t, cb.Allow(ctx), "trial already in flight")
	require.False(t, cb.Allow(ctx))
	require.Equal(t, CircuitStateHalfOpen, cb.State())

	cb.Release()
	require.True(t, cb.Allow(ctx))

	cb.RecordSuccess()
	require.Equal(t, CircuitStateClosed, cb.State())
	require.True(t, cb.Allow(ctx))
	require.True(t, cb.Allow(ctx))
}
