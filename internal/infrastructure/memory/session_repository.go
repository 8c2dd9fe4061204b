// Package memory holds the in-process session scope: a map-backed repository
// used as the fast mirror in front of Redis, and standalone in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

type entry struct {
	principal domain.Principal
	expires   time.Time
}

// SessionRepository implements ports.SessionRepository over a mutex-guarded
// map. Expiry is checked lazily on read.
type SessionRepository struct {
	mu         sync.RWMutex
	sessions   map[string]entry
	remembered map[string]string
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions:   make(map[string]entry),
		remembered: make(map[string]string),
	}
}

func (r *SessionRepository) Read(_ context.Context, sessionID string) (*domain.Principal, error) {
	r.mu.RLock()
	e, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok || time.Now().After(e.expires) {
		return nil, nil
	}
	p := e.principal
	return &p, nil
}

func (r *SessionRepository) Write(_ context.Context, sessionID string, p *domain.Principal, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = entry{principal: *p, expires: time.Now().Add(ttl)}
	return nil
}

func (r *SessionRepository) Clear(_ context.Context, sessionID, deviceID string, keepRemembered bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	if !keepRemembered && deviceID != "" {
		delete(r.remembered, deviceID)
	}
	return nil
}

func (r *SessionRepository) Remember(_ context.Context, deviceID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remembered[deviceID] = username
	return nil
}

func (r *SessionRepository) Remembered(_ context.Context, deviceID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.remembered[deviceID], nil
}

// Mirror pairs the in-process scope with the durable one: writes land in
// both, reads try the fast scope first and fall back to durable, refreshing
// the fast scope on a hit. The durable store is authoritative.
type Mirror struct {
	fast    *SessionRepository
	durable ports.SessionRepository
	ttl     time.Duration
}

func NewMirror(fast *SessionRepository, durable ports.SessionRepository, ttl time.Duration) *Mirror {
	return &Mirror{fast: fast, durable: durable, ttl: ttl}
}

func (m *Mirror) Read(ctx context.Context, sessionID string) (*domain.Principal, error) {
	if p, _ := m.fast.Read(ctx, sessionID); p != nil {
		return p, nil
	}
	p, err := m.durable.Read(ctx, sessionID)
	if err != nil || p == nil {
		return p, err
	}
	_ = m.fast.Write(ctx, sessionID, p, m.ttl)
	return p, nil
}

func (m *Mirror) Write(ctx context.Context, sessionID string, p *domain.Principal, ttl time.Duration) error {
	if err := m.durable.Write(ctx, sessionID, p, ttl); err != nil {
		return err
	}
	return m.fast.Write(ctx, sessionID, p, ttl)
}

func (m *Mirror) Clear(ctx context.Context, sessionID, deviceID string, keepRemembered bool) error {
	if err := m.durable.Clear(ctx, sessionID, deviceID, keepRemembered); err != nil {
		return err
	}
	return m.fast.Clear(ctx, sessionID, deviceID, keepRemembered)
}

func (m *Mirror) Remember(ctx context.Context, deviceID, username string) error {
	if err := m.durable.Remember(ctx, deviceID, username); err != nil {
		return err
	}
	return m.fast.Remember(ctx, deviceID, username)
}

func (m *Mirror) Remembered(ctx context.Context, deviceID string) (string, error) {
	if u, _ := m.fast.Remembered(ctx, deviceID); u != "" {
		return u, nil
	}
	return m.durable.Remembered(ctx, deviceID)
}
