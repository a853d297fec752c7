package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authscreens/core/session"
)

// SessionStore implements session.Store on Redis.
type SessionStore[Data any] struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a session store on client.
func NewSessionStore[Data any](client redis.UniversalClient, opts ...StoreOption) *SessionStore[Data] {
	o := applyStoreOptions(opts)
	return &SessionStore[Data]{client: client, prefix: o.prefix}
}

func (s *SessionStore[Data]) idKey(id uuid.UUID) string {
	return s.prefix + "session:id:" + id.String()
}

func (s *SessionStore[Data]) tokenKey(token string) string {
	return s.prefix + "session:token:" + token
}

// GetByID loads a session by ID.
func (s *SessionStore[Data]) GetByID(ctx context.Context, id uuid.UUID) (*session.Session[Data], error) {
	raw, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess session.Session[Data]
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// GetByToken resolves the token index, then loads the session.
func (s *SessionStore[Data]) GetByToken(ctx context.Context, token string) (*session.Session[Data], error) {
	raw, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("get session token: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session token index: %w", err)
	}

	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A rotated token may still be indexed until its key expires.
	if sess.Token != token {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

// Save writes the session and its token index with the session's remaining lifetime.
// The previous token index is removed when the token was rotated.
func (s *SessionStore[Data]) Save(ctx context.Context, sess *session.Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return session.ErrExpired
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	prev, err := s.GetByID(ctx, sess.ID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != nil && prev.Token != sess.Token {
			pipe.Del(ctx, s.tokenKey(prev.Token))
		}
		pipe.Set(ctx, s.idKey(sess.ID), raw, ttl)
		pipe.Set(ctx, s.tokenKey(sess.Token), sess.ID.String(), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session and its token index.
func (s *SessionStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, s.idKey(id), s.tokenKey(sess.Token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires session keys itself.
func (s *SessionStore[Data]) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}
