package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

const rememberTTL = 30 * 24 * time.Hour

// SessionRepository is the durable session scope. Key layout:
//
//	dash:session:<id>  principal JSON blob
//	dash:flag:<id>     legacy boolean logged-in marker
//	dash:remember:<device>  last-used username for the login form
type SessionRepository struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewSessionRepository(client *redis.Client, log zerolog.Logger) *SessionRepository {
	return &SessionRepository{client: client, log: log}
}

// Read returns (nil, nil) for missing sessions. A blob that fails to decode
// is treated the same as missing; corrupt storage must not break guards.
func (r *SessionRepository) Read(ctx context.Context, sessionID string) (*domain.Principal, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var p domain.Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("malformed session blob, treating as absent")
		return nil, nil
	}
	return &p, nil
}

// Write overwrites the principal blob and the logged-in flag in one
// pipelined round trip.
func (r *SessionRepository) Write(ctx context.Context, sessionID string, p *domain.Principal, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID), raw, ttl)
	pipe.Set(ctx, flagKey(sessionID), "1", ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session keys; the remembered username survives only
// when keepRemembered is set.
func (r *SessionRepository) Clear(ctx context.Context, sessionID, deviceID string, keepRemembered bool) error {
	keys := []string{sessionKey(sessionID), flagKey(sessionID)}
	if !keepRemembered && deviceID != "" {
		keys = append(keys, rememberKey(deviceID))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Remember(ctx context.Context, deviceID, username string) error {
	return r.client.Set(ctx, rememberKey(deviceID), username, rememberTTL).Err()
}

func (r *SessionRepository) Remembered(ctx context.Context, deviceID string) (string, error) {
	v, err := r.client.Get(ctx, rememberKey(deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("read remembered username: %w", err)
	}
	return v, nil
}

func sessionKey(id string) string  { return "dash:session:" + id }
func flagKey(id string) string     { return "dash:flag:" + id }
func rememberKey(id string) string { return "dash:remember:" + id }
