package store

import (
	"context"
	"fmt"

	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"go.uber.org/zap"
)

// MemberSource is a store that can enumerate its members.
type MemberSource interface {
	Store
	ForEachMember(ctx context.Context, fn func(member domain.MemberID) error) error
}

type MigrationStats struct {
	Members     int
	Memberships int
}

// Migrate copies every (member, chat) pair from src into dst. Record is
// idempotent, so an interrupted run can be repeated. With dryRun set nothing
// is written and the stats describe what would be copied.
func Migrate(ctx context.Context, src MemberSource, dst Store, dryRun bool, logger *zap.Logger) (MigrationStats, error) {
	var stats MigrationStats

	err := src.ForEachMember(ctx, func(member domain.MemberID) error {
		chats, err := src.ListChats(ctx, member)
		if err != nil {
			return fmt.Errorf("read chats of member %s: %w", member, err)
		}
		if len(chats) == 0 {
			return nil
		}

		stats.Members++
		for _, chat := range chats {
			if !dryRun {
				if err := dst.Record(ctx, member, chat); err != nil {
					return fmt.Errorf("copy member %s chat %s: %w", member, chat, err)
				}
			}
			stats.Memberships++
		}

		logger.Debug("Member migrated",
			zap.Int64("member", int64(member)),
			zap.Int("chats", len(chats)),
			zap.Bool("dry_run", dryRun),
		)
		return nil
	})
	if err != nil {
		return stats, err
	}

	logger.Info("Membership migration finished",
		zap.Int("members", stats.Members),
		zap.Int("memberships", stats.Memberships),
		zap.Bool("dry_run", dryRun),
	)
	return stats, nil
}
