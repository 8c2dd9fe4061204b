package ports

import (
	"context"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

// ActivityRepository persists the recent-activity feed.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

// ActivityService records dashboard actions and serves the feed. Record is
// best-effort: feed failures never fail the action that triggered them.
type ActivityService interface {
	Record(ctx context.Context, actor, role, action, resource, resourceID string)
	Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}
