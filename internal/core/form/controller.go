// Package form implements the submission lifecycle shared by the dashboard's
// create and edit pages: field state with per-field normalization, validation,
// a phase machine guarding against double submission, and delayed navigation
// scheduled after terminal outcomes.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

// Phase is the submission lifecycle state of a form instance.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// validTransitions defines the allowed phase machine transitions.
var validTransitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseValidating, PhaseFailed},
	PhaseValidating: {PhaseSubmitting, PhaseFailed},
	PhaseSubmitting: {PhaseSucceeded, PhaseFailed},
	PhaseFailed:     {PhaseValidating},
}

// CanTransitionTo reports whether a transition from p to next is valid.
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range validTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SubmitFunc performs the remote create or update for the form's payload.
type SubmitFunc func(ctx context.Context, fields map[string]string) error

// FetchFunc loads an existing record's fields for edit pre-population.
type FetchFunc func(ctx context.Context, id string) (map[string]string, error)

const (
	defaultNavigateDelay = 1500 * time.Millisecond
	defaultNotFoundDelay = 2 * time.Second
)

// Config assembles a Controller.
type Config struct {
	ID        string
	Resource  string // user-facing resource name, e.g. "user"
	ListRoute string // navigation target after success or a missing record
	Rules     []Rule
	Submit    SubmitFunc
	Fetch     FetchFunc
	Notifier  Notifier
	// NavigateDelay is how long after a successful submit the list-route
	// navigation fires. NotFoundDelay is the same for a missing edit target.
	NavigateDelay time.Duration
	NotFoundDelay time.Duration
	Logger        zerolog.Logger
}

// Controller owns one form instance for the duration of one page visit.
// All exported methods are safe for concurrent use; the phase flag is the
// sole guard serializing submissions per instance.
type Controller struct {
	mu sync.Mutex

	id        string
	resource  string
	listRoute string
	rules     []Rule
	submit    SubmitFunc
	fetch     FetchFunc
	notifier  Notifier
	navDelay  time.Duration
	nfDelay   time.Duration
	log       zerolog.Logger

	fields   map[string]string
	phase    Phase
	lastErr  error
	redirect string
	touched  time.Time
	closed   bool

	navTimer  *time.Timer
	lifecycle context.Context
	cancel    context.CancelFunc
}

// New builds a Controller in PhaseIdle with empty fields.
func New(cfg Config) *Controller {
	if cfg.NavigateDelay <= 0 {
		cfg.NavigateDelay = defaultNavigateDelay
	}
	if cfg.NotFoundDelay <= 0 {
		cfg.NotFoundDelay = defaultNotFoundDelay
	}
	if cfg.Notifier == nil {
		cfg.Notifier = &NoticeLog{}
	}

	lifecycle, cancel := context.WithCancel(context.Background())

	fields := make(map[string]string, len(cfg.Rules))
	for _, r := range cfg.Rules {
		fields[r.Name] = ""
	}

	return &Controller{
		id:        cfg.ID,
		resource:  cfg.Resource,
		listRoute: cfg.ListRoute,
		rules:     cfg.Rules,
		submit:    cfg.Submit,
		fetch:     cfg.Fetch,
		notifier:  cfg.Notifier,
		navDelay:  cfg.NavigateDelay,
		nfDelay:   cfg.NotFoundDelay,
		log:       cfg.Logger,
		fields:    fields,
		phase:     PhaseIdle,
		touched:   time.Now(),
		lifecycle: lifecycle,
		cancel:    cancel,
	}
}

// ID returns the form instance identifier.
func (c *Controller) ID() string { return c.id }

// SetField applies the field's normalization rule and stores the value.
// A raw value the rule rejects is dropped wholesale and the previous value
// kept; rejection is silent, not an error. Unknown fields are ignored.
func (c *Controller) SetField(name, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrFormExpired
	}
	c.touched = time.Now()

	rule, ok := c.rule(name)
	if !ok {
		return nil
	}
	if !rule.Kind.accepts(raw) {
		return nil
	}
	c.fields[name] = raw
	return nil
}

// Fields returns a copy of the current field values.
func (c *Controller) Fields() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the error recorded by the last failed transition, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Notices returns the notifications emitted so far, when the controller's
// notifier retains them. Controllers wired to a fire-and-forget notifier
// return nil.
func (c *Controller) Notices() []Notice {
	if l, ok := c.notifier.(*NoticeLog); ok {
		return l.Notices()
	}
	return nil
}

// Redirect returns the navigation target once a scheduled delayed navigation
// has fired, or "" while none is pending or fired.
func (c *Controller) Redirect() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirect
}

// Touched returns the time of the last interaction, for registry expiry.
func (c *Controller) Touched() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Validate checks every rule and returns all violations. The caller surfaces
// only the first message (the UI shows one toast at a time), but the full
// list is produced so logs carry the complete picture.
func (c *Controller) Validate() []FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateFields(c.rules, c.fields)
}

// Load pre-populates the form from an existing record for edit flows.
// A missing record moves the form to PhaseFailed and schedules navigation
// back to the list route; the caller is never left on a broken form.
func (c *Controller) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrFormExpired
	}
	if c.fetch == nil {
		c.mu.Unlock()
		return nil
	}
	c.touched = time.Now()
	c.mu.Unlock()

	cctx, cancel := c.boundContext(ctx)
	defer cancel()

	fields, err := c.fetch(cctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrFormExpired
	}

	if err != nil {
		c.phase = PhaseFailed
		c.lastErr = err
		c.notifier.Notify(LevelError, failureMessage(c.resource, err))
		if errors.Is(err, domain.ErrNotFound) {
			c.scheduleNavigationLocked(c.listRoute, c.nfDelay)
		}
		return err
	}

	for name, value := range fields {
		if _, ok := c.rule(name); ok {
			c.fields[name] = value
		}
	}
	return nil
}

// Submit runs validation and, when it passes, performs the remote call.
// At most one submission is in flight per instance: a Submit issued while
// another is running returns ErrSubmitInFlight without any side effect.
// Validation failures never reach the network.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrFormExpired
	}
	if c.phase == PhaseSubmitting {
		c.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	if c.phase == PhaseSucceeded {
		c.mu.Unlock()
		return nil
	}
	c.touched = time.Now()
	c.phase = PhaseValidating

	if violations := validateFields(c.rules, c.fields); len(violations) > 0 {
		c.phase = PhaseFailed
		c.lastErr = domain.ErrValidation
		first := violations[0].Message
		c.mu.Unlock()
		c.notifier.Notify(LevelError, first)
		return domain.ErrValidation
	}

	c.phase = PhaseSubmitting
	payload := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		payload[k] = v
	}
	c.mu.Unlock()

	cctx, cancel := c.boundContext(ctx)
	defer cancel()

	err := c.submit(cctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// The form was torn down while the call was in flight; the late
		// result must not resurrect it.
		return domain.ErrFormExpired
	}

	if err != nil {
		c.phase = PhaseFailed
		c.lastErr = err
		c.notifier.Notify(LevelError, failureMessage(c.resource, err))
		c.log.Warn().Err(err).Str("form_id", c.id).Str("resource", c.resource).Msg("submission failed")
		return err
	}

	c.phase = PhaseSucceeded
	c.lastErr = nil
	c.notifier.Notify(LevelSuccess, c.resource+" saved")
	c.scheduleNavigationLocked(c.listRoute, c.navDelay)
	c.log.Info().Str("form_id", c.id).Str("resource", c.resource).Msg("submission succeeded")
	return nil
}

// Close tears the form down: the lifecycle context is cancelled so in-flight
// remote calls are abandoned, and any pending delayed navigation is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	if c.navTimer != nil {
		c.navTimer.Stop()
		c.navTimer = nil
	}
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) rule(name string) (Rule, bool) {
	for _, r := range c.rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// scheduleNavigationLocked arms the delayed-navigation timer. Must be called
// with c.mu held. A newer schedule replaces an older pending one.
func (c *Controller) scheduleNavigationLocked(route string, delay time.Duration) {
	if c.navTimer != nil {
		c.navTimer.Stop()
	}
	c.navTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		c.redirect = route
	})
}

// boundContext derives a context cancelled by either the caller's context or
// the form's lifecycle, so closing the form aborts in-flight remote calls.
func (c *Controller) boundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifecycle, cancel)
	return cctx, func() {
		stop()
		cancel()
	}
}

// failureMessage maps a classified submission error to the single
// user-facing notification text.
func failureMessage(resource string, err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return resource + " already exists"
	case errors.Is(err, domain.ErrNotFound):
		return resource + " not found"
	case errors.Is(err, domain.ErrAuth):
		return "session expired, please log in again"
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, domain.ErrNetwork):
		return "network error, please try again"
	default:
		return "something went wrong, please try again"
	}
}
