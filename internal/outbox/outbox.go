// Package outbox delivers outbound actions to the messaging platform without
// blocking the event loop.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Messenger performs outbound actions against the platform.
type Messenger interface {
	SendText(ctx context.Context, msg domain.SendText) error
	DeleteMessage(ctx context.Context, ref domain.MessageRef) error
	RemoveMember(ctx context.Context, chat domain.ChatID, member domain.MemberID) error
}

// Dispatcher accepts actions and returns immediately.
type Dispatcher interface {
	Dispatch(action domain.Action)
}

type Config struct {
	Workers     int
	BufferSize  int
	SendTimeout time.Duration
}

// Outbox queues actions on a buffered channel and drains them through a
// bounded worker pool. Delivery is best effort: a full queue drops the action
// and failed sends are only logged.
type Outbox struct {
	messenger Messenger
	logger    *zap.Logger
	cfg       Config

	queue     chan domain.Action
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	startOnce sync.Once
}

func New(messenger Messenger, cfg Config, logger *zap.Logger) *Outbox {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	return &Outbox{
		messenger: messenger,
		logger:    logger,
		cfg:       cfg,
		queue:     make(chan domain.Action, cfg.BufferSize),
		done:      make(chan struct{}),
	}
}

// Dispatch enqueues action. It never blocks.
func (o *Outbox) Dispatch(action domain.Action) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		o.logger.Warn("Outbox closed, dropping action", zap.String("action", action.Name()))
		return
	}

	select {
	case o.queue <- action:
	default:
		o.logger.Warn("Outbox full, dropping action",
			zap.String("action", action.Name()),
			zap.Int("buffer", o.cfg.BufferSize),
		)
	}
}

// Start launches the drain loop. Sends keep running after ctx is cancelled
// until Close flushes the queue; ctx only bounds each individual send.
func (o *Outbox) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		go o.run(context.WithoutCancel(ctx))
	})
}

func (o *Outbox) run(ctx context.Context) {
	defer close(o.done)

	p := pool.New().WithMaxGoroutines(o.cfg.Workers)
	for action := range o.queue {
		p.Go(func() {
			o.deliver(ctx, action)
		})
	}
	p.Wait()
}

// Close stops intake, sends whatever is queued and waits for in-flight sends
// or for ctx to expire.
func (o *Outbox) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	o.startOnce.Do(func() {
		go o.run(context.Background())
	})

	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("outbox flush interrupted: %w", ctx.Err())
	}
}

func (o *Outbox) deliver(ctx context.Context, action domain.Action) {
	if o.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.SendTimeout)
		defer cancel()
	}

	var err error
	switch a := action.(type) {
	case domain.SendText:
		err = o.messenger.SendText(ctx, a)
	case domain.DeleteMessage:
		err = o.messenger.DeleteMessage(ctx, a.Ref)
	case domain.RemoveMember:
		err = o.messenger.RemoveMember(ctx, a.Chat, a.Member)
	default:
		o.logger.Warn("Unknown outbound action", zap.String("action", fmt.Sprintf("%T", action)))
		return
	}

	if err != nil {
		o.logger.Warn("Outbound action failed",
			zap.String("action", action.Name()),
			zap.Any("detail", action),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("Outbound action delivered", zap.String("action", action.Name()))
}
