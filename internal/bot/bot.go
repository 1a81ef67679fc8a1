package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kapu/turn-queue-bot-go/internal/constants"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/internal/outbox"
	boterrors "github.com/kapu/turn-queue-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// EventSource produces normalized inbound events until ctx ends, then closes
// the channel.
type EventSource interface {
	Events(ctx context.Context) <-chan domain.Event
}

// Outbox is the dispatcher side the bot owns the lifecycle of.
type Outbox interface {
	outbox.Dispatcher
	Start(ctx context.Context)
	Close(ctx context.Context) error
}

// Bot runs the single event loop.
type Bot struct {
	interpreter  *Interpreter
	source       EventSource
	outbox       Outbox
	logger       *zap.Logger
	eventTimeout time.Duration
}

func NewBot(interpreter *Interpreter, source EventSource, out Outbox, logger *zap.Logger) (*Bot, error) {
	if interpreter == nil {
		return nil, fmt.Errorf("interpreter must not be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("event source must not be nil")
	}
	if out == nil {
		return nil, fmt.Errorf("outbox must not be nil")
	}
	return &Bot{
		interpreter:  interpreter,
		source:       source,
		outbox:       out,
		logger:       logger,
		eventTimeout: constants.LoopConfig.EventTimeout,
	}, nil
}

// Start starts outbound delivery and blocks consuming events.
func (b *Bot) Start(ctx context.Context) error {
	b.outbox.Start(ctx)
	b.logger.Info("Event loop started")
	return b.Run(ctx, b.source.Events(ctx))
}

// Run handles events one at a time. It returns nil once events is closed and
// ctx.Err() when ctx is cancelled first. Failed events are logged and dropped.
func (b *Bot) Run(ctx context.Context, events <-chan domain.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				b.logger.Info("Event stream closed")
				return nil
			}
			b.process(ctx, ev)
		}
	}
}

func (b *Bot) process(ctx context.Context, ev domain.Event) {
	eventCtx := ctx
	if b.eventTimeout > 0 {
		var cancel context.CancelFunc
		eventCtx, cancel = context.WithTimeout(ctx, b.eventTimeout)
		defer cancel()
	}

	err := b.interpreter.Handle(eventCtx, ev)
	switch {
	case err == nil:
		return
	case boterrors.IsStoreError(err):
		b.logger.Error("Store unavailable, event dropped",
			zap.String("event", ev.Kind().String()),
			zap.Error(err),
		)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b.logger.Warn("Event handling timed out, event dropped",
			zap.String("event", ev.Kind().String()),
			zap.Error(err),
		)
	default:
		b.logger.Warn("Event handling failed, event dropped",
			zap.String("event", ev.Kind().String()),
			zap.Error(err),
		)
	}
}

// Shutdown flushes pending outbound actions.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.logger.Info("Flushing outbound actions")
	return b.outbox.Close(ctx)
}
