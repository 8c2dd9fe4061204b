package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// ActivityFeed records dashboard actions for the recent-activity widget.
// Recording is best-effort: a feed write failure is logged and swallowed so
// it can never fail the action that produced it.
type ActivityFeed struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

func NewActivityFeed(repo ports.ActivityRepository, log zerolog.Logger) *ActivityFeed {
	return &ActivityFeed{repo: repo, log: log}
}

func (f *ActivityFeed) Record(ctx context.Context, actor, role, action, resource, resourceID string) {
	entry := &domain.ActivityEntry{
		Actor:      actor,
		Role:       role,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Timestamp:  time.Now().UTC(),
	}
	if err := f.repo.Insert(ctx, entry); err != nil {
		f.log.Warn().Err(err).Str("action", action).Str("resource", resource).Msg("failed to record activity")
	}
}

func (f *ActivityFeed) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return f.repo.Recent(ctx, limit)
}
