package verification

import (
	"sync"
	"time"

	"github.com/dmitrymomot/authscreens/pkg/timers"
)

// Registry keeps one controller per browser session and flow.
// Controllers idle for longer than the idle timeout are closed and dropped.
type Registry struct {
	clock timers.Clock
	scope *timers.Scope
	idle  time.Duration

	mu    sync.Mutex
	items map[registryKey]*registryEntry
}

type registryKey struct {
	session string
	flow    string
}

type registryEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// DefaultIdleTimeout drops flows nobody touched for this long.
const DefaultIdleTimeout = 15 * time.Minute

// NewRegistry creates a registry. A nil clock uses the real clock and a
// non-positive idle uses DefaultIdleTimeout.
func NewRegistry(clock timers.Clock, idle time.Duration) *Registry {
	if clock == nil {
		clock = timers.RealClock()
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	r := &Registry{
		clock: clock,
		scope: timers.NewScope(clock),
		idle:  idle,
		items: make(map[registryKey]*registryEntry),
	}
	r.scope.Every(idle/2, r.sweep)
	return r
}

// Get returns the live controller for session and flow.
func (r *Registry) Get(session, flow string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[registryKey{session, flow}]
	if !ok || e.ctrl.Closed() {
		return nil, false
	}
	e.lastSeen = r.clock.Now()
	return e.ctrl, true
}

// Open returns the live controller for session and flow when it verifies
// email, or replaces it with one built by create.
func (r *Registry) Open(session, flow, email string, create func(email string) *Controller) *Controller {
	key := registryKey{session, flow}

	r.mu.Lock()
	e, ok := r.items[key]
	if ok && !e.ctrl.Closed() && e.ctrl.Email() == email {
		e.lastSeen = r.clock.Now()
		r.mu.Unlock()
		return e.ctrl
	}
	ctrl := create(email)
	r.items[key] = &registryEntry{ctrl: ctrl, lastSeen: r.clock.Now()}
	r.mu.Unlock()

	if ok {
		e.ctrl.Close()
	}
	return ctrl
}

// Remove closes and drops the controller for session and flow.
func (r *Registry) Remove(session, flow string) {
	key := registryKey{session, flow}

	r.mu.Lock()
	e, ok := r.items[key]
	delete(r.items, key)
	r.mu.Unlock()

	if ok {
		e.ctrl.Close()
	}
}

// Len returns the number of tracked controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Close closes every controller and stops the idle sweep.
func (r *Registry) Close() {
	r.scope.Close()

	r.mu.Lock()
	items := r.items
	r.items = make(map[registryKey]*registryEntry)
	r.mu.Unlock()

	for _, e := range items {
		e.ctrl.Close()
	}
}

func (r *Registry) sweep() {
	cutoff := r.clock.Now().Add(-r.idle)

	var stale []*Controller
	r.mu.Lock()
	for key, e := range r.items {
		if e.ctrl.Closed() || e.lastSeen.Before(cutoff) {
			stale = append(stale, e.ctrl)
			delete(r.items, key)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
}
