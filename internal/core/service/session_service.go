package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// SessionEventKind labels a session change broadcast to subscribers.
type SessionEventKind string

const (
	SessionWritten SessionEventKind = "written"
	SessionCleared SessionEventKind = "cleared"
)

// SessionEvent is delivered to every subscriber on session write and clear,
// so in-process consumers (e.g. a profile widget cache) can re-read state.
// This is a same-process signal, not a cross-instance broadcast.
type SessionEvent struct {
	Kind      SessionEventKind
	Principal *domain.Principal
}

const subscriberBuffer = 8

// SessionService wraps the session repository and fans session changes out
// to subscribers. Writes happen only at login/logout boundaries; reads
// happen on every guarded request.
type SessionService struct {
	repo ports.SessionRepository
	ttl  time.Duration
	log  zerolog.Logger

	mu     sync.Mutex
	subs   map[int]chan SessionEvent
	nextID int
}

func NewSessionService(repo ports.SessionRepository, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		repo: repo,
		ttl:  ttl,
		log:  log,
		subs: make(map[int]chan SessionEvent),
	}
}

// Read returns the stored principal, or nil when the session is absent or
// the stored record is unusable for access decisions.
func (s *SessionService) Read(ctx context.Context, sessionID string) (*domain.Principal, error) {
	p, err := s.repo.Read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !p.Valid() {
		return nil, nil
	}
	return p, nil
}

// Write persists the principal and notifies subscribers.
func (s *SessionService) Write(ctx context.Context, sessionID string, p *domain.Principal) error {
	if err := s.repo.Write(ctx, sessionID, p, s.ttl); err != nil {
		return err
	}
	s.broadcast(SessionEvent{Kind: SessionWritten, Principal: p})
	return nil
}

// Clear removes the session and notifies subscribers. The remembered
// username survives only when keepRemembered is set.
func (s *SessionService) Clear(ctx context.Context, sessionID, deviceID string, keepRemembered bool) error {
	p, _ := s.repo.Read(ctx, sessionID)
	if err := s.repo.Clear(ctx, sessionID, deviceID, keepRemembered); err != nil {
		return err
	}
	s.broadcast(SessionEvent{Kind: SessionCleared, Principal: p})
	return nil
}

// Remember stores the last-used username for a device.
func (s *SessionService) Remember(ctx context.Context, deviceID, username string) error {
	return s.repo.Remember(ctx, deviceID, username)
}

// Remembered returns the username remembered for a device, or "".
func (s *SessionService) Remembered(ctx context.Context, deviceID string) (string, error) {
	return s.repo.Remembered(ctx, deviceID)
}

// Subscribe registers a listener for session events. The returned cancel
// function must be called to release the subscription; it is idempotent.
func (s *SessionService) Subscribe() (<-chan SessionEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan SessionEvent, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// broadcast delivers the event without blocking: a subscriber that has
// fallen subscriberBuffer events behind misses this one.
func (s *SessionService) broadcast(ev SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn().Int("subscriber", id).Msg("session event dropped for slow subscriber")
		}
	}
}
