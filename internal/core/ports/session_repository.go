package ports

import (
	"context"
	"time"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

// SessionRepository persists authenticated principals keyed by their opaque
// session ID. Read returns (nil, nil) when the record is missing or
// malformed; storage corruption must never surface as an error to guards.
type SessionRepository interface {
	Read(ctx context.Context, sessionID string) (*domain.Principal, error)
	Write(ctx context.Context, sessionID string, p *domain.Principal, ttl time.Duration) error
	Clear(ctx context.Context, sessionID, deviceID string, keepRemembered bool) error

	// Remember stores the last-used username for a device so the login
	// form can pre-fill it. Remembered returns "" when nothing is stored.
	Remember(ctx context.Context, deviceID, username string) error
	Remembered(ctx context.Context, deviceID string) (string, error)
}
