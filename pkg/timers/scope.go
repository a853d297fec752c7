package timers

import (
	"sync"
	"time"
)

// Scope owns a set of timers and cancels all of them on Close.
// Safe for concurrent use.
type Scope struct {
	clock Clock

	mu        sync.Mutex
	next      uint64
	active    map[uint64]Timer
	debounced map[string]Handle
	closed    bool
}

// NewScope creates a scope on clock. A nil clock uses the real clock.
func NewScope(clock Clock) *Scope {
	if clock == nil {
		clock = RealClock()
	}
	return &Scope{
		clock:     clock,
		active:    make(map[uint64]Timer),
		debounced: make(map[string]Handle),
	}
}

// Clock returns the clock the scope schedules on.
func (s *Scope) Clock() Clock {
	return s.clock
}

// Handle identifies a timer created by a Scope.
type Handle struct {
	scope *Scope
	id    uint64
}

// Stop cancels the timer. Stopping a fired or zero Handle is a no-op.
func (h Handle) Stop() {
	if h.scope == nil {
		return
	}
	h.scope.cancel(h.id)
}

// Active reports whether the timer is still scheduled.
func (h Handle) Active() bool {
	if h.scope == nil {
		return false
	}
	h.scope.mu.Lock()
	defer h.scope.mu.Unlock()
	_, ok := h.scope.active[h.id]
	return ok && !h.scope.closed
}

// After runs fn once after d unless the handle is stopped or the scope closed.
func (s *Scope) After(d time.Duration, fn func()) Handle {
	id := s.reserve()
	s.arm(id, d, func() {
		s.release(id)
		fn()
	})
	return Handle{scope: s, id: id}
}

// Every runs fn every d until the handle is stopped or the scope closed.
func (s *Scope) Every(d time.Duration, fn func()) Handle {
	id := s.reserve()
	var tick func()
	tick = func() {
		fn()
		s.arm(id, d, tick)
	}
	s.arm(id, d, tick)
	return Handle{scope: s, id: id}
}

// Debounce schedules fn after d and cancels any pending call for the same key.
func (s *Scope) Debounce(key string, d time.Duration, fn func()) Handle {
	s.mu.Lock()
	prev, ok := s.debounced[key]
	s.mu.Unlock()
	if ok {
		prev.Stop()
	}

	var h Handle
	h = s.After(d, func() {
		s.mu.Lock()
		if cur, ok := s.debounced[key]; ok && cur == h {
			delete(s.debounced, key)
		}
		s.mu.Unlock()
		fn()
	})

	s.mu.Lock()
	if !s.closed {
		s.debounced[key] = h
	}
	s.mu.Unlock()
	return h
}

// Alive reports whether the scope has not been closed.
func (s *Scope) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Close stops every pending timer. Callbacks racing with Close do not run.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := make([]Timer, 0, len(s.active))
	for id, t := range s.active {
		if t != nil {
			pending = append(pending, t)
		}
		delete(s.active, id)
	}
	clear(s.debounced)
	s.mu.Unlock()

	for _, t := range pending {
		t.Stop()
	}
}

func (s *Scope) reserve() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	if !s.closed {
		s.active[s.next] = nil
	}
	return s.next
}

// arm schedules cb for the reserved id. The liveness check runs on the
// timer goroutine so a stopped id or closed scope suppresses the callback.
func (s *Scope) arm(id uint64, d time.Duration, cb func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[id]; !ok || s.closed {
		return
	}
	s.active[id] = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		_, ok := s.active[id]
		alive := ok && !s.closed
		s.mu.Unlock()
		if alive {
			cb()
		}
	})
}

func (s *Scope) release(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
}

func (s *Scope) cancel(id uint64) {
	s.mu.Lock()
	t, ok := s.active[id]
	delete(s.active, id)
	s.mu.Unlock()
	if ok && t != nil {
		t.Stop()
	}
}
