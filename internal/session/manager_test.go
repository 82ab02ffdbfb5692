package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth is a scripted AuthAPI
type fakeAuth struct {
	mu sync.Mutex

	loginResp *models.AuthResponse
	loginErr  error
	logins    []string

	registerErr error
	registered  []models.RegisterRequest

	refreshResp   *models.AuthResponse
	refreshErr    error
	refreshGate   chan struct{}
	refreshCalls  int32
	refreshedWith []string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, email)
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, req)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return json.RawMessage(`{"id":"u-1"}`), nil
}

func (f *fakeAuth) RefreshToken(_ context.Context, refreshToken string) (*models.AuthResponse, error) {
	atomic.AddInt32(&f.refreshCalls, 1)
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshedWith = append(f.refreshedWith, refreshToken)
	return f.refreshResp, f.refreshErr
}

// failingStore fails every operation
type failingStore struct{}

var errDiskOnFire = errors.New("disk on fire")

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errDiskOnFire
}

func (failingStore) Set(context.Context, string, string) error {
	return errDiskOnFire
}

func (failingStore) Delete(context.Context, string) error {
	return errDiskOnFire
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newAuthenticatedManager(t *testing.T, auth AuthAPI, access, refresh string) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, AccessTokenKey, access))
	require.NoError(t, store.Set(ctx, RefreshTokenKey, refresh))

	mgr := NewManager(store, auth, newTestLogger())
	require.True(t, mgr.Load(ctx).Authenticated())
	return mgr, store
}

func assertStoreEmpty(t *testing.T, store SecureStore) {
	t.Helper()
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		_, err := store.Get(context.Background(), key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestManager_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores persisted session", func(t *testing.T) {
		mgr, _ := newAuthenticatedManager(t, &fakeAuth{}, "A1", "R1")
		snap := mgr.Snapshot()
		assert.Equal(t, StatusAuthenticated, snap.Status)
		assert.Equal(t, "A1", snap.AccessToken)
		assert.Equal(t, "R1", snap.RefreshToken)
	})

	t.Run("Half a session is logged out", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, AccessTokenKey, "A1"))

		mgr := NewManager(store, &fakeAuth{}, newTestLogger())
		assert.Equal(t, StatusUnknown, mgr.Snapshot().Status)
		assert.Equal(t, StatusUnauthenticated, mgr.Load(ctx).Status)
	})

	t.Run("Read failure is logged out", func(t *testing.T) {
		mgr := NewManager(failingStore{}, &fakeAuth{}, newTestLogger())
		snap := mgr.Load(ctx)
		assert.Equal(t, StatusUnauthenticated, snap.Status)
		assert.Empty(t, snap.AccessToken)
	})
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists both tokens", func(t *testing.T) {
		store := NewMemoryStore()
		auth := &fakeAuth{loginResp: &models.AuthResponse{AccessToken: "A1", RefreshToken: "R1"}}
		mgr := NewManager(store, auth, newTestLogger())
		mgr.Load(ctx)

		resp, err := mgr.Login(ctx, "a@b.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "A1", resp.AccessToken)
		assert.True(t, mgr.Snapshot().Authenticated())

		access, err := store.Get(ctx, AccessTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "A1", access)
		refresh, err := store.Get(ctx, RefreshTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "R1", refresh)
	})

	missing := []struct {
		name string
		resp *models.AuthResponse
	}{
		{"Missing access token", &models.AuthResponse{RefreshToken: "R1"}},
		{"Missing refresh token", &models.AuthResponse{AccessToken: "A1"}},
		{"Empty body", &models.AuthResponse{}},
	}
	for _, tt := range missing {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			mgr := NewManager(store, &fakeAuth{loginResp: tt.resp}, newTestLogger())
			mgr.Load(ctx)

			_, err := mgr.Login(ctx, "a@b.com", "pw")
			assert.ErrorIs(t, err, ErrMissingTokens)
			assert.False(t, mgr.Snapshot().Authenticated())
			assert.Equal(t, StatusUnauthenticated, mgr.Snapshot().Status)
			assertStoreEmpty(t, store)
		})
	}

	t.Run("Backend error", func(t *testing.T) {
		boom := errors.New("invalid credentials")
		mgr := NewManager(NewMemoryStore(), &fakeAuth{loginErr: boom}, newTestLogger())
		mgr.Load(ctx)

		_, err := mgr.Login(ctx, "a@b.com", "pw")
		assert.ErrorIs(t, err, boom)
		assert.False(t, mgr.Snapshot().Authenticated())
	})

	t.Run("Persist failure leaves state untouched", func(t *testing.T) {
		auth := &fakeAuth{loginResp: &models.AuthResponse{AccessToken: "A1", RefreshToken: "R1"}}
		mgr := NewManager(failingStore{}, auth, newTestLogger())
		mgr.Load(ctx)

		_, err := mgr.Login(ctx, "a@b.com", "pw")
		assert.Error(t, err)
		assert.False(t, mgr.Snapshot().Authenticated())
	})
}

func TestManager_Register(t *testing.T) {
	ctx := context.Background()
	req := models.RegisterRequest{
		User: models.RegisterUser{FirstName: " Ann ", LastName: "Lee", Email: " Ann@B.com ", PasswordHash: "pw"},
		Car:  models.RegisterCar{Name: "Golf", LicensePlate: "aa1234bb", CarType: models.CarTypeHatchback},
	}

	t.Run("Registers and logs in", func(t *testing.T) {
		auth := &fakeAuth{loginResp: &models.AuthResponse{AccessToken: "A1", RefreshToken: "R1"}}
		mgr := NewManager(NewMemoryStore(), auth, newTestLogger())

		result, err := mgr.Register(ctx, req)
		require.NoError(t, err)
		assert.True(t, result.Registered)
		assert.Empty(t, result.Warning)
		require.NotNil(t, result.Auth)
		assert.True(t, mgr.Snapshot().Authenticated())

		require.Len(t, auth.registered, 1)
		assert.Equal(t, "ann@b.com", auth.registered[0].User.Email)
		assert.Equal(t, "AA1234BB", auth.registered[0].Car.LicensePlate)
		assert.Equal(t, []string{"ann@b.com"}, auth.logins)
	})

	t.Run("Auto-login failure is a warning", func(t *testing.T) {
		auth := &fakeAuth{loginErr: errors.New("service unavailable")}
		mgr := NewManager(NewMemoryStore(), auth, newTestLogger())
		mgr.Load(ctx)

		result, err := mgr.Register(ctx, req)
		require.NoError(t, err)
		assert.True(t, result.Registered)
		assert.Equal(t, AutoLoginWarning, result.Warning)
		assert.Nil(t, result.Auth)
		assert.False(t, mgr.Snapshot().Authenticated())
	})

	t.Run("Registration failure", func(t *testing.T) {
		boom := errors.New("email taken")
		auth := &fakeAuth{registerErr: boom}
		mgr := NewManager(NewMemoryStore(), auth, newTestLogger())

		result, err := mgr.Register(ctx, req)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, result)
		assert.Empty(t, auth.logins)
	})
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("Clears persisted tokens", func(t *testing.T) {
		mgr, store := newAuthenticatedManager(t, &fakeAuth{}, "A1", "R1")
		mgr.Logout(ctx)
		assert.Equal(t, StatusUnauthenticated, mgr.Snapshot().Status)
		assertStoreEmpty(t, store)
	})

	t.Run("Store failure still resets state", func(t *testing.T) {
		mgr := NewManager(failingStore{}, &fakeAuth{}, newTestLogger())
		mgr.setState(Snapshot{AccessToken: "A1", RefreshToken: "R1", Status: StatusAuthenticated})

		mgr.Logout(ctx)
		snap := mgr.Snapshot()
		assert.Equal(t, StatusUnauthenticated, snap.Status)
		assert.Empty(t, snap.AccessToken)
		assert.Empty(t, snap.RefreshToken)
	})
}

func TestManager_Subscribe(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{loginResp: &models.AuthResponse{AccessToken: "A1", RefreshToken: "R1"}}
	mgr := NewManager(NewMemoryStore(), auth, newTestLogger())

	var seen []Status
	unsubscribe := mgr.Subscribe(func(s Snapshot) {
		seen = append(seen, s.Status)
	})

	mgr.Load(ctx)
	_, err := mgr.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	unsubscribe()
	mgr.Logout(ctx)

	assert.Equal(t, []Status{StatusUnauthenticated, StatusAuthenticated}, seen)
}

func TestManager_Recover(t *testing.T) {
	ctx := context.Background()

	t.Run("Keeps old refresh token when none returned", func(t *testing.T) {
		auth := &fakeAuth{refreshResp: &models.AuthResponse{AccessToken: "A2"}}
		mgr, store := newAuthenticatedManager(t, auth, "A1", "R1")

		token, err := mgr.Recover(ctx, "A1")
		require.NoError(t, err)
		assert.Equal(t, "A2", token)
		assert.Equal(t, []string{"R1"}, auth.refreshedWith)

		snap := mgr.Snapshot()
		assert.Equal(t, "A2", snap.AccessToken)
		assert.Equal(t, "R1", snap.RefreshToken)
		refresh, err := store.Get(ctx, RefreshTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "R1", refresh)
	})

	t.Run("Stores rotated refresh token", func(t *testing.T) {
		auth := &fakeAuth{refreshResp: &models.AuthResponse{AccessToken: "A2", RefreshToken: "R2"}}
		mgr, store := newAuthenticatedManager(t, auth, "A1", "R1")

		_, err := mgr.Recover(ctx, "A1")
		require.NoError(t, err)
		refresh, err := store.Get(ctx, RefreshTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "R2", refresh)
	})

	t.Run("Stale token reuses current session", func(t *testing.T) {
		auth := &fakeAuth{}
		mgr, _ := newAuthenticatedManager(t, auth, "A2", "R1")

		token, err := mgr.Recover(ctx, "A1")
		require.NoError(t, err)
		assert.Equal(t, "A2", token)
		assert.Zero(t, atomic.LoadInt32(&auth.refreshCalls))
	})

	t.Run("Refresh failure clears session", func(t *testing.T) {
		boom := errors.New("refresh token revoked")
		auth := &fakeAuth{refreshErr: boom}
		mgr, store := newAuthenticatedManager(t, auth, "A1", "R1")

		_, err := mgr.Recover(ctx, "A1")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, StatusUnauthenticated, mgr.Snapshot().Status)
		assertStoreEmpty(t, store)
	})

	t.Run("Refresh without access token clears session", func(t *testing.T) {
		auth := &fakeAuth{refreshResp: &models.AuthResponse{RefreshToken: "R2"}}
		mgr, store := newAuthenticatedManager(t, auth, "A1", "R1")

		_, err := mgr.Recover(ctx, "A1")
		assert.ErrorIs(t, err, ErrMissingTokens)
		assertStoreEmpty(t, store)
	})

	t.Run("No refresh token", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, AccessTokenKey, "A1"))
		mgr := NewManager(store, &fakeAuth{}, newTestLogger())
		mgr.Load(ctx)

		_, err := mgr.Recover(ctx, "A1")
		assert.ErrorIs(t, err, ErrNoRefreshToken)
		assertStoreEmpty(t, store)
	})
}
