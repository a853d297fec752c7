package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle including creation, authentication,
// retrieval and teardown.
type Manager[Data any] struct {
	store         Store[Data]
	ttl           time.Duration
	touchInterval time.Duration
}

// NewManager creates a session manager backed by store.
func NewManager[Data any](store Store[Data], opts ...Option) *Manager[Data] {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[Data]{
		store:         store,
		ttl:           cfg.TTL,
		touchInterval: cfg.TouchInterval,
	}
}

// NewManagerFromConfig creates a session manager from environment configuration.
func NewManagerFromConfig[Data any](store Store[Data], cfg Config) *Manager[Data] {
	return NewManager(store, WithTTL(cfg.TTL), WithTouchInterval(cfg.TouchInterval))
}

// New creates an anonymous session. It is persisted by Store once modified.
func (m *Manager[Data]) New(_ context.Context, params NewSessionParams) (Session[Data], error) {
	return New[Data](params, m.ttl)
}

// GetByID retrieves a session by ID and validates expiration.
func (m *Manager[Data]) GetByID(ctx context.Context, id uuid.UUID) (Session[Data], error) {
	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		return Session[Data]{}, err
	}
	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}
	return *sess, nil
}

// GetByToken retrieves a session by token and validates expiration.
func (m *Manager[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	sess, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session[Data]{}, err
	}
	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}
	return *sess, nil
}

// Authenticate initializes the signed-in state after a successful login.
// The session expires no later than the token's exp claim, when present.
// The returned session has a rotated token and is already persisted.
func (m *Manager[Data]) Authenticate(ctx context.Context, sess Session[Data], authToken, email string) (Session[Data], error) {
	exp, _ := TokenExpiry(authToken)
	if !exp.IsZero() && !exp.After(time.Now()) {
		return Session[Data]{}, ErrExpired
	}
	if err := sess.Authenticate(authToken, email, exp); err != nil {
		return Session[Data]{}, err
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, errors.Join(ErrSaveSession, err)
	}
	sess.isModified = false
	return sess, nil
}

// Logout tears the signed-in state down: the stored session is removed and a
// fresh anonymous session is returned for the same client.
func (m *Manager[Data]) Logout(ctx context.Context, sess Session[Data]) (Session[Data], error) {
	if err := m.Delete(ctx, sess.ID); err != nil {
		return Session[Data]{}, err
	}
	return m.New(ctx, NewSessionParams{IP: sess.IP, UserAgent: sess.UserAgent})
}

// Delete removes a session from the store. Missing sessions are not an error.
func (m *Manager[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}

// Store handles all session persistence based on session state.
// When a session is deleted, returns ErrNotAuthenticated to signal the transport for cookie cleanup.
func (m *Manager[Data]) Store(ctx context.Context, sess Session[Data]) error {
	if sess.IsDeleted() {
		if err := m.Delete(ctx, sess.ID); err != nil {
			return err
		}
		return ErrNotAuthenticated
	}

	sess.Touch(m.ttl, m.touchInterval)

	if sess.IsModified() {
		if err := m.store.Save(ctx, &sess); err != nil {
			return errors.Join(ErrSaveSession, err)
		}
	}

	return nil
}

// CleanupExpired removes all expired sessions from the store and returns how many were removed.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

// TTL returns the session time-to-live duration.
func (m *Manager[Data]) TTL() time.Duration {
	return m.ttl
}
