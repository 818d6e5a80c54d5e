package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/couchsession/core/kv"
	"github.com/dmitrymomot/couchsession/core/session"
)

// mockStore implements session.Store interface for testing
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, id string) (*session.Session[testData], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session[testData]), args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, sess *session.Session[testData]) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) FindByPrincipal(ctx context.Context, principal string) (map[string]session.Session[testData], error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]session.Session[testData]), args.Error(1)
}

func (m *mockStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newMemoryManager(t *testing.T, opts ...session.Option) (*session.Manager[testData], memoryFixture) {
	t.Helper()
	cfg := session.NewConfig(opts...)
	f := newMemoryFixture(t, cfg)
	mgr, err := session.NewManager[testData](f.store, cfg, session.WithClock(f.clock.Now))
	require.NoError(t, err)
	return mgr, f
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	t.Run("creates manager with default configuration", func(t *testing.T) {
		t.Parallel()

		mgr, err := session.NewManager[testData](&mockStore{}, session.DefaultConfig())

		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, mgr.Timeout())
		assert.Equal(t, session.DefaultConfig(), mgr.Config())
	})

	t.Run("fails without store", func(t *testing.T) {
		t.Parallel()

		mgr, err := session.NewManager[testData](nil, session.DefaultConfig())

		assert.ErrorIs(t, err, session.ErrNoStore)
		assert.Nil(t, mgr)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()

		mgr, err := session.NewManager[testData](&mockStore{}, session.NewConfig(session.WithTimeoutInSeconds(-1)))

		assert.ErrorIs(t, err, session.ErrInvalidConfigurationValue)
		assert.Nil(t, mgr)
	})

	t.Run("copies configuration", func(t *testing.T) {
		t.Parallel()

		cfg := session.DefaultConfig()
		mgr, err := session.NewManager[testData](&mockStore{}, cfg)
		require.NoError(t, err)

		cfg.SetTimeoutInSeconds(10)
		cfg.SetPrincipalSessionsEnabled(true)

		assert.Equal(t, 1800, mgr.Config().TimeoutInSeconds)
		assert.False(t, mgr.Config().PrincipalSessionsEnabled)
	})
}

func TestManager_Create(t *testing.T) {
	t.Parallel()

	mgr, f := newMemoryManager(t, session.WithTimeoutInSeconds(15))

	sess := mgr.Create(context.Background())

	assert.Equal(t, 15*time.Second, sess.MaxInactiveInterval)
	assert.Equal(t, f.clock.Now(), sess.CreationTime)
	assert.True(t, sess.IsNew())
	assert.Equal(t, 0, f.client.Len())
}

func TestManager_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns saved session", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t)
		ctx := context.Background()

		sess := mgr.Create(ctx)
		sess.SetData(testData{Theme: "light"})
		sess, err := mgr.Save(ctx, sess)
		require.NoError(t, err)

		got, err := mgr.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "light", got.Data.Theme)
	})

	t.Run("returns ErrNotFound when session doesn't exist", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t)

		_, err := mgr.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("touches after interval", func(t *testing.T) {
		t.Parallel()

		mgr, f := newMemoryManager(t, session.WithTouchInterval(time.Minute))
		ctx := context.Background()

		sess, err := mgr.Save(ctx, mgr.Create(ctx))
		require.NoError(t, err)

		f.clock.Advance(30 * time.Second)
		got, err := mgr.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, got.LastAccessedTime.Equal(epoch))

		f.clock.Advance(time.Minute)
		got, err = mgr.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, got.LastAccessedTime.Equal(epoch.Add(90*time.Second)))

		stored, err := f.store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, stored.LastAccessedTime.Equal(epoch.Add(90*time.Second)))
	})

	t.Run("touch keeps session alive past original timeout", func(t *testing.T) {
		t.Parallel()

		mgr, f := newMemoryManager(t, session.WithTimeoutInSeconds(60), session.WithTouchInterval(0))
		ctx := context.Background()

		sess, err := mgr.Save(ctx, mgr.Create(ctx))
		require.NoError(t, err)

		for range 3 {
			f.clock.Advance(45 * time.Second)
			_, err := mgr.Get(ctx, sess.ID)
			require.NoError(t, err)
		}
	})

	t.Run("returns ErrExpired and deletes expired session", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		expired := session.New[testData](time.Minute, time.Now().Add(-time.Hour))
		store.On("Get", ctx, expired.ID).Return(&expired, nil)
		store.On("Delete", ctx, expired.ID).Return(nil)

		_, err = mgr.Get(ctx, expired.ID)

		assert.ErrorIs(t, err, session.ErrExpired)
		store.AssertExpectations(t)
	})

	t.Run("propagates other store errors", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		storeErr := errors.New("database connection error")
		store.On("Get", ctx, "some-id").Return(nil, storeErr)

		_, err = mgr.Get(ctx, "some-id")

		assert.ErrorIs(t, err, storeErr)
		store.AssertExpectations(t)
	})
}

func TestManager_Save(t *testing.T) {
	t.Parallel()

	t.Run("skips unmodified session", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		sess := mgr.Create(ctx)
		store.On("Save", ctx, mock.Anything).Return(nil).Once()

		sess, err = mgr.Save(ctx, sess)
		require.NoError(t, err)
		assert.False(t, sess.IsModified())

		_, err = mgr.Save(ctx, sess)
		require.NoError(t, err)
		store.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("propagates store error", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		store.On("Save", ctx, mock.Anything).Return(session.ErrSaveSession)

		_, err = mgr.Save(ctx, mgr.Create(ctx))
		assert.ErrorIs(t, err, session.ErrSaveSession)
	})
}

func TestManager_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("rotates ID and records principal", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t)
		ctx := context.Background()

		anon, err := mgr.Save(ctx, mgr.Create(ctx))
		require.NoError(t, err)

		auth, err := mgr.Authenticate(ctx, anon, "alice")
		require.NoError(t, err)

		assert.NotEqual(t, anon.ID, auth.ID)
		assert.Equal(t, "alice", auth.Principal)

		_, err = mgr.Get(ctx, anon.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)

		got, err := mgr.Get(ctx, auth.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAuthenticated())
	})

	t.Run("requires principal", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t)
		ctx := context.Background()

		_, err := mgr.Authenticate(ctx, mgr.Create(ctx), "")
		assert.ErrorIs(t, err, session.ErrMissingPrincipal)
	})
}

func TestManager_Logout(t *testing.T) {
	t.Parallel()

	mgr, _ := newMemoryManager(t)
	ctx := context.Background()

	sess, err := mgr.Authenticate(ctx, mgr.Create(ctx), "alice")
	require.NoError(t, err)

	anon, err := mgr.Logout(ctx, sess)
	require.NoError(t, err)

	assert.NotEqual(t, sess.ID, anon.ID)
	assert.False(t, anon.IsAuthenticated())
	assert.True(t, anon.IsNew())

	_, err = mgr.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	t.Run("ignores ErrNotFound", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		store.On("Delete", ctx, "gone").Return(session.ErrNotFound)

		assert.NoError(t, mgr.Delete(ctx, "gone"))
	})

	t.Run("propagates other errors", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		store.On("Delete", ctx, "id").Return(session.ErrDeleteSession)

		assert.ErrorIs(t, mgr.Delete(ctx, "id"), session.ErrDeleteSession)
	})
}

func TestManager_PrincipalSessions(t *testing.T) {
	t.Parallel()

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t)
		ctx := context.Background()

		_, err := mgr.FindByPrincipal(ctx, "alice")
		assert.ErrorIs(t, err, session.ErrPrincipalSessionsDisabled)

		_, err = mgr.DeleteByPrincipal(ctx, "alice")
		assert.ErrorIs(t, err, session.ErrPrincipalSessionsDisabled)
	})

	t.Run("requires principal", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t, session.WithPrincipalSessionsEnabled(true))

		_, err := mgr.FindByPrincipal(context.Background(), "")
		assert.ErrorIs(t, err, session.ErrMissingPrincipal)
	})

	t.Run("find and delete by principal", func(t *testing.T) {
		t.Parallel()

		mgr, _ := newMemoryManager(t, session.WithPrincipalSessionsEnabled(true))
		ctx := context.Background()

		var ids []string
		for range 3 {
			sess, err := mgr.Authenticate(ctx, mgr.Create(ctx), "alice")
			require.NoError(t, err)
			ids = append(ids, sess.ID)
		}
		bob, err := mgr.Authenticate(ctx, mgr.Create(ctx), "bob")
		require.NoError(t, err)

		found, err := mgr.FindByPrincipal(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, found, 3)
		for _, id := range ids {
			assert.Contains(t, found, id)
		}

		n, err := mgr.DeleteByPrincipal(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		found, err = mgr.FindByPrincipal(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, found)

		_, err = mgr.Get(ctx, bob.ID)
		assert.NoError(t, err)
	})

	t.Run("expired sessions are not listed", func(t *testing.T) {
		t.Parallel()

		mgr, f := newMemoryManager(t,
			session.WithPrincipalSessionsEnabled(true),
			session.WithTimeoutInSeconds(60),
		)
		ctx := context.Background()

		old, err := mgr.Authenticate(ctx, mgr.Create(ctx), "alice")
		require.NoError(t, err)

		f.clock.Advance(45 * time.Second)
		fresh, err := mgr.Authenticate(ctx, mgr.Create(ctx), "alice")
		require.NoError(t, err)

		f.clock.Advance(30 * time.Second)

		found, err := mgr.FindByPrincipal(ctx, "alice")
		require.NoError(t, err)
		assert.NotContains(t, found, old.ID)
		assert.Contains(t, found, fresh.ID)
	})
}

func TestManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	mgr, f := newMemoryManager(t, session.WithTimeoutInSeconds(60))
	ctx := context.Background()

	for range 2 {
		_, err := mgr.Save(ctx, mgr.Create(ctx))
		require.NoError(t, err)
	}
	f.clock.Advance(2 * time.Minute)

	n, err := mgr.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestManager_CleanupExpiredInstrumented(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	mem := kv.NewMemory(kv.WithMemoryClock(clock.Now))
	client := kv.Instrumented(mem, "memory", kv.NewMetrics(prometheus.NewRegistry()))

	cfg := session.NewConfig(session.WithTimeoutInSeconds(60))
	store := session.NewKVStore[testData](client, cfg, session.WithStoreClock(clock.Now))
	mgr, err := session.NewManager[testData](store, cfg, session.WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = mgr.Save(ctx, mgr.Create(ctx))
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	n, err := mgr.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, mem.Len())
}

func TestManager_Access(t *testing.T) {
	t.Parallel()

	mgr, f := newMemoryManager(t, session.WithTouchInterval(time.Minute))
	ctx := context.Background()

	sess, err := mgr.Save(ctx, mgr.Create(ctx))
	require.NoError(t, err)

	f.clock.Advance(30 * time.Second)
	got, touched, err := mgr.Access(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, touched)
	assert.True(t, got.LastAccessedTime.Equal(epoch))

	f.clock.Advance(time.Minute)
	got, touched, err = mgr.Access(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, touched)
	assert.True(t, got.LastAccessedTime.Equal(epoch.Add(90*time.Second)))
	assert.False(t, got.IsModified())

	_, touched, err = mgr.Access(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.False(t, touched)
}

func TestManager_Peek(t *testing.T) {
	t.Parallel()

	t.Run("does not touch", func(t *testing.T) {
		t.Parallel()

		mgr, f := newMemoryManager(t, session.WithTouchInterval(0))
		ctx := context.Background()

		sess, err := mgr.Save(ctx, mgr.Create(ctx))
		require.NoError(t, err)
		f.clock.Advance(10 * time.Second)

		got, err := mgr.Peek(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, got.LastAccessedTime.Equal(epoch))

		stored, err := f.store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, stored.LastAccessedTime.Equal(epoch))
	})

	t.Run("keeps expired session", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		mgr, err := session.NewManager[testData](store, session.DefaultConfig())
		require.NoError(t, err)
		ctx := context.Background()

		expired := session.New[testData](time.Minute, time.Now().Add(-time.Hour))
		store.On("Get", ctx, expired.ID).Return(&expired, nil)

		got, err := mgr.Peek(ctx, expired.ID)
		assert.ErrorIs(t, err, session.ErrExpired)
		assert.Equal(t, expired.ID, got.ID)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
