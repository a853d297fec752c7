package timers

import (
	"sync"
	"time"
)

// Transient holds a value that clears itself after a TTL.
type Transient[T any] struct {
	scope *Scope

	mu     sync.RWMutex
	value  T
	set    bool
	gen    uint64
	expiry Handle
}

// NewTransient creates an empty transient value whose expiry timers live in scope.
func NewTransient[T any](scope *Scope) *Transient[T] {
	return &Transient[T]{scope: scope}
}

// Set stores v. A positive ttl clears it after ttl; zero keeps it until replaced.
func (t *Transient[T]) Set(v T, ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expiry.Stop()
	t.gen++
	t.value = v
	t.set = true
	t.expiry = Handle{}

	if ttl > 0 {
		gen := t.gen
		t.expiry = t.scope.After(ttl, func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if t.gen == gen {
				t.reset()
			}
		})
	}
}

// Get returns the current value and whether one is set.
func (t *Transient[T]) Get() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value, t.set
}

// Clear drops the value immediately.
func (t *Transient[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expiry.Stop()
	t.gen++
	t.reset()
}

func (t *Transient[T]) reset() {
	var zero T
	t.value = zero
	t.set = false
	t.expiry = Handle{}
}
