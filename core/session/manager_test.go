package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/session"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (*session.Session[testData], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) GetByToken(ctx context.Context, token string) (*session.Session[testData], error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, sess *session.Session[testData]) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(session.NewMemoryStore[testData]())
		assert.Equal(t, 24*time.Hour, mgr.TTL())
	})

	t.Run("from config", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManagerFromConfig(session.NewMemoryStore[testData](), session.Config{TTL: time.Hour})
		assert.Equal(t, time.Hour, mgr.TTL())
	})
}

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore[testData]()
	mgr := session.NewManager(store, session.WithTTL(time.Hour))

	anon, err := mgr.New(ctx, session.NewSessionParams{IP: "10.0.0.1"})
	require.NoError(t, err)
	require.NoError(t, mgr.Store(ctx, anon))
	assert.Equal(t, 1, store.Len())

	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	authed, err := mgr.Authenticate(ctx, anon, signedToken(t, exp), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, anon.ID, authed.ID)
	assert.NotEqual(t, anon.Token, authed.Token)
	assert.True(t, exp.Equal(authed.ExpiresAt))
	assert.False(t, authed.IsModified())

	_, err = mgr.GetByToken(ctx, anon.Token)
	assert.ErrorIs(t, err, session.ErrNotFound, "old token must be unusable after rotation")

	loaded, err := mgr.GetByToken(ctx, authed.Token)
	require.NoError(t, err)
	assert.True(t, loaded.IsAuthenticated())
	assert.Equal(t, "a@b.com", loaded.Email)

	fresh, err := mgr.Logout(ctx, loaded)
	require.NoError(t, err)
	assert.False(t, fresh.IsAuthenticated())
	assert.NotEqual(t, loaded.ID, fresh.ID)
	assert.Equal(t, "10.0.0.1", fresh.IP)
	assert.Equal(t, 0, store.Len())

	_, err = mgr.GetByID(ctx, loaded.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_Authenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("opaque token keeps ttl", func(t *testing.T) {
		t.Parallel()

		mgr := session.NewManager(session.NewMemoryStore[testData](), session.WithTTL(time.Hour))
		sess := newSession(t, time.Hour)

		authed, err := mgr.Authenticate(ctx, sess, "opaque", "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, sess.ExpiresAt, authed.ExpiresAt)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr := session.NewManager[testData](store)

		_, err := mgr.Authenticate(ctx, newSession(t, time.Hour), signedToken(t, time.Now().Add(-time.Minute)), "a@b.com")
		assert.ErrorIs(t, err, session.ErrExpired)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("Save", mock.Anything, mock.Anything).Return(errors.New("down"))
		mgr := session.NewManager[testData](store)

		_, err := mgr.Authenticate(ctx, newSession(t, time.Hour), "opaque", "a@b.com")
		assert.ErrorIs(t, err, session.ErrSaveSession)
	})
}

func TestManager_GetByToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("expired session", func(t *testing.T) {
		t.Parallel()

		expired := newSession(t, -time.Hour)
		store := &mockStore{}
		store.On("GetByToken", ctx, expired.Token).Return(&expired, nil)

		_, err := session.NewManager[testData](store).GetByToken(ctx, expired.Token)
		assert.ErrorIs(t, err, session.ErrExpired)
	})

	t.Run("store error passes through", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("GetByToken", ctx, "x").Return(nil, session.ErrNotFound)

		_, err := session.NewManager[testData](store).GetByToken(ctx, "x")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestManager_Store(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("deleted session signals not authenticated", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t, time.Hour)
		sess.Logout()

		store := &mockStore{}
		store.On("Delete", ctx, sess.ID).Return(session.ErrNotFound)

		err := session.NewManager[testData](store).Store(ctx, sess)
		assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	})

	t.Run("delete failure", func(t *testing.T) {
		t.Parallel()

		sess := newSession(t, time.Hour)
		sess.Logout()

		store := &mockStore{}
		store.On("Delete", ctx, sess.ID).Return(errors.New("boom"))

		err := session.NewManager[testData](store).Store(ctx, sess)
		assert.ErrorIs(t, err, session.ErrDeleteSession)
	})

	t.Run("unmodified session is not written", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore[testData]()
		mgr := session.NewManager(store)
		sess := newSession(t, time.Hour)
		require.NoError(t, mgr.Store(ctx, sess))

		loaded, err := mgr.GetByID(ctx, sess.ID)
		require.NoError(t, err)
		assert.False(t, loaded.IsModified())

		spy := &mockStore{}
		require.NoError(t, session.NewManager[testData](spy).Store(ctx, loaded))
		spy.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore[testData]()
	mgr := session.NewManager(store)

	live := newSession(t, time.Hour)
	dead := newSession(t, -time.Hour)
	require.NoError(t, store.Save(ctx, &live))
	require.NoError(t, store.Save(ctx, &dead))

	n, err := mgr.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.Len())
}
