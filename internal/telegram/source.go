package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"go.uber.org/zap"
)

// Source long-polls getUpdates and emits domain events.
type Source struct {
	api         botAPI
	pollTimeout int
	logger      *zap.Logger
}

// NewSource polls through client's connection. pollTimeout is in seconds.
func NewSource(client *Client, pollTimeout int, logger *zap.Logger) *Source {
	return &Source{api: client.api, pollTimeout: pollTimeout, logger: logger}
}

// Events starts polling. The returned channel is closed once ctx ends or the
// library stops delivering updates.
func (s *Source) Events(ctx context.Context) <-chan domain.Event {
	cfg := updateConfig(s.pollTimeout)
	updates := s.api.GetUpdatesChan(cfg)
	out := make(chan domain.Event)

	s.logger.Info("Polling for updates",
		zap.Int("timeout_sec", s.pollTimeout),
		zap.Strings("allowed", cfg.AllowedUpdates),
	)

	go func() {
		defer close(out)
		defer s.logger.Info("Update polling stopped")

		for {
			select {
			case <-ctx.Done():
				s.api.StopReceivingUpdates()
				return
			case u, ok := <-updates:
				if !ok {
					return
				}

				ev, err := toEvent(u)
				if err != nil {
					s.logger.Warn("Skipping undecodable update",
						zap.Int("update_id", u.UpdateID),
						zap.Error(err),
					)
					continue
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					s.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	return out
}

func updateConfig(pollTimeout int) tgbotapi.UpdateConfig {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	cfg.AllowedUpdates = allowedUpdates
	return cfg
}
