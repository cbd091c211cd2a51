package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fico-simulator/internal/models"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// Registry holds live sessions keyed by ID. Operations on one session are
// serialized; different sessions proceed independently.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry

	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
	scheduler *cron.Cron
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock overrides the time source used for idle tracking.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the registry's logger.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry. A non-positive ttl selects
// DefaultSessionTTL.
func NewRegistry(ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	r := &Registry{
		entries: make(map[uuid.UUID]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a new session and returns its ID and initial view. Goals that
// fail validation are still simulated; the problems are logged.
func (r *Registry) Create(goal models.Goal, profile *models.CreditProfile, startingScore int, opts ...Option) (uuid.UUID, View) {
	if err := models.ValidateGoal(&goal); err != nil {
		r.logger.Warn("Simulating goal that failed validation",
			zap.String("goal_id", goal.ID),
			zap.String("title", goal.Title),
			zap.Int("impact_total", goal.TotalImpact()),
			zap.Error(err),
		)
	}

	id := uuid.New()
	session := NewSession(goal, profile, startingScore, opts...)

	r.mu.Lock()
	r.entries[id] = &entry{session: session, lastUsed: r.now()}
	r.mu.Unlock()

	r.logger.Info("Simulation session created",
		zap.String("session_id", id.String()),
		zap.String("goal_id", goal.ID),
		zap.Int("steps", len(goal.ActionPlan)),
		zap.Int("starting_score", startingScore),
	)

	view := session.View()
	view.ID = id
	return id, view
}

// Get returns the current view of a session.
func (r *Registry) Get(id uuid.UUID) (View, error) {
	return r.Do(id, nil)
}

// Do runs fn against the session while holding its lock and returns the
// resulting view. A nil fn only reads. If fn fails the view reflects
// whatever state fn left behind.
func (r *Registry) Do(id uuid.UUID, fn func(*Session) error) (View, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return View{}, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastUsed = r.now()

	var err error
	if fn != nil {
		err = fn(e.session)
	}

	view := e.session.View()
	view.ID = id
	return view, err
}

// Delete removes a session.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	delete(r.entries, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			// In use right now, so not idle.
			continue
		}
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()

		if idle {
			delete(r.entries, id)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Info("Evicted idle simulation sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", len(r.entries)),
		)
	}
	return removed
}

// StartSweeper runs Sweep on a cron schedule (for example "@every 5m") until
// Stop is called.
func (r *Registry) StartSweeper(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	r.mu.Lock()
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
	r.scheduler = c
	r.mu.Unlock()

	c.Start()
	r.logger.Info("Session sweeper started",
		zap.String("schedule", schedule),
		zap.Duration("ttl", r.ttl),
	)
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish or ctx to
// expire.
func (r *Registry) Stop(ctx context.Context) {
	r.mu.Lock()
	c := r.scheduler
	r.scheduler = nil
	r.mu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
