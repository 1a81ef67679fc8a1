package util

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// HealthCheckFunc probes the guarded dependency while the circuit is open.
type HealthCheckFunc func(ctx context.Context) error

type CircuitBreakerConfig struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}

// CircuitBreaker fails calls fast after a run of consecutive failures. Once
// the reset timeout passes, the next call runs the health check (if any) and,
// on success, lets a single trial call through in HALF_OPEN. Further calls
// are refused until that trial is recorded or released.
type CircuitBreaker struct {
	cfg           CircuitBreakerConfig
	state         CircuitState
	failureCount  int
	nextRetryTime time.Time
	trialInFlight bool
	healthCheckFn HealthCheckFunc
	now           func() time.Time
	logger        *zap.Logger
	mu            sync.Mutex
}

func NewCircuitBreaker(cfg CircuitBreakerConfig, healthCheckFn HealthCheckFunc, logger *zap.Logger) *CircuitBreaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 1
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = cfg.ResetTimeout
	}
	return &CircuitBreaker{
		cfg:           cfg,
		state:         CircuitStateClosed,
		healthCheckFn: healthCheckFn,
		now:           time.Now,
		logger:        logger,
	}
}

// Allow reports whether a call may proceed. A true result in HALF_OPEN hands
// out the trial; the caller must follow up with RecordSuccess, RecordFailure
// or Release.
func (cb *CircuitBreaker) Allow(ctx context.Context) bool {
	cb.mu.Lock()
	switch cb.state {
	case CircuitStateClosed:
		cb.mu.Unlock()
		return true
	case CircuitStateHalfOpen:
		ok := cb.takeTrial()
		cb.mu.Unlock()
		return ok
	}
	if cb.now().Before(cb.nextRetryTime) || ctx.Err() != nil {
		cb.mu.Unlock()
		return false
	}
	check := cb.healthCheckFn
	cb.mu.Unlock()

	if check != nil {
		checkCtx := ctx
		if cb.cfg.HealthCheckTimeout > 0 {
			var cancel context.CancelFunc
			checkCtx, cancel = context.WithTimeout(ctx, cb.cfg.HealthCheckTimeout)
			defer cancel()
		}
		if err := check(checkCtx); err != nil {
			cb.mu.Lock()
			cb.nextRetryTime = cb.now().Add(cb.cfg.HealthCheckInterval)
			cb.mu.Unlock()
			cb.logger.Warn("Circuit Breaker: Health check FAILED, delaying next check", zap.Error(err))
			return false
		}
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitStateOpen {
		cb.transitionTo(CircuitStateHalfOpen)
	}
	if cb.state == CircuitStateHalfOpen {
		return cb.takeTrial()
	}
	return true
}

// Release returns an unfinished trial without judging the dependency, for
// calls abandoned by their caller.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trialInFlight = false
}

// RecordSuccess records a successful call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit Breaker: Dependency recovered")
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

// RecordFailure records a failed call
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	switch {
	case cb.state == CircuitStateHalfOpen:
		cb.logger.Error("Circuit Breaker: Trial call failed, reopening circuit")
		cb.open()
	case cb.state == CircuitStateClosed && cb.failureCount >= cb.cfg.FailureThreshold:
		cb.logger.Error("Circuit Breaker: Threshold reached, opening circuit",
			zap.Int("threshold", cb.cfg.FailureThreshold),
		)
		cb.open()
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// must be called with lock held
func (cb *CircuitBreaker) takeTrial() bool {
	if cb.trialInFlight {
		return false
	}
	cb.trialInFlight = true
	return true
}

// must be called with lock held
func (cb *CircuitBreaker) open() {
	cb.nextRetryTime = cb.now().Add(cb.cfg.ResetTimeout)
	cb.transitionTo(CircuitStateOpen)
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	cb.trialInFlight = false

	nextRetry := "n/a"
	if newState == CircuitStateOpen {
		nextRetry = cb.nextRetryTime.Format(time.RFC3339)
	}

	cb.logger.Info("Circuit Breaker: State transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
		zap.String("next_retry", nextRetry),
	)
}
