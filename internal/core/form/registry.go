package form

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

const (
	defaultTTL    = 15 * time.Minute
	sweepInterval = 30 * time.Second
)

// Registry tracks open form instances keyed by an opaque form ID. Forms left
// untouched past the TTL are closed by the janitor, which cancels their
// pending navigation and abandons any in-flight submission.
type Registry struct {
	mu    sync.Mutex
	forms map[string]*Controller
	ttl   time.Duration
	log   zerolog.Logger
}

// NewRegistry creates a Registry. If ttl <= 0, defaultTTL is used.
func NewRegistry(ttl time.Duration, log zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Registry{
		forms: make(map[string]*Controller),
		ttl:   ttl,
		log:   log,
	}
}

// Open builds a Controller from cfg, assigns it a fresh form ID, and tracks it.
func (r *Registry) Open(cfg Config) *Controller {
	cfg.ID = newFormID()
	c := New(cfg)

	r.mu.Lock()
	r.forms[c.ID()] = c
	r.mu.Unlock()

	return c
}

// Get returns the tracked form, or ErrFormExpired when it is unknown
// (never opened, closed, or reaped).
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.forms[id]
	if !ok {
		return nil, domain.ErrFormExpired
	}
	return c, nil
}

// Close tears down the form and stops tracking it.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	c, ok := r.forms[id]
	delete(r.forms, id)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Count returns the number of open forms.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Start launches the janitor goroutine. It stops when ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	go r.runJanitor(ctx)
}

func (r *Registry) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep closes and drops every form idle past the TTL.
func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Controller
	for id, c := range r.forms {
		if c.Touched().Before(cutoff) {
			expired = append(expired, c)
			delete(r.forms, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
		r.log.Debug().Str("form_id", c.ID()).Msg("expired idle form")
	}
}

// newFormID returns a unique form instance ID in the format FRM-XXXXXXXX.
func newFormID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("FRM-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("FRM-%08X", b)
}
