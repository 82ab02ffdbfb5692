package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// AutoLoginWarning is reported when registration succeeded but the follow-up login did not
const AutoLoginWarning = "registered successfully but auto-login failed; please log in manually"

var (
	// ErrMissingTokens is returned when the backend answers without both tokens
	ErrMissingTokens = errors.New("server did not return both access and refresh tokens")

	// ErrNoRefreshToken is returned when a 401 cannot be recovered because no refresh token is held
	ErrNoRefreshToken = errors.New("no refresh token held")
)

// AuthAPI is the unauthenticated part of the backend the session depends on
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (json.RawMessage, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
}

// RegisterResult describes the outcome of a registration
type RegisterResult struct {
	Registered bool
	Data       json.RawMessage      // Registration payload returned by the backend
	Auth       *models.AuthResponse // Set when auto-login succeeded
	Warning    string               // Set when auto-login failed
}

// Manager owns the authentication session: it persists tokens, exposes
// snapshots to the transport and performs the refresh protocol.
type Manager struct {
	store  SecureStore
	auth   AuthAPI
	logger *logrus.Logger

	mu      sync.RWMutex
	state   Snapshot
	subs    map[int]func(Snapshot)
	nextSub int

	refreshes singleflight.Group
}

// NewManager creates a session manager in the unknown (loading) state
func NewManager(store SecureStore, auth AuthAPI, logger *logrus.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		logger: logger,
		state:  Snapshot{Status: StatusUnknown},
		subs:   make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current session state
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers fn to be called after every state change and returns
// a function that removes the subscription
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setState(next Snapshot) {
	m.mu.Lock()
	m.state = next
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Load restores the persisted session. Read failures are logged and
// treated as logged out.
func (m *Manager) Load(ctx context.Context) Snapshot {
	access, accessErr := m.store.Get(ctx, AccessTokenKey)
	refresh, refreshErr := m.store.Get(ctx, RefreshTokenKey)

	for _, err := range []error{accessErr, refreshErr} {
		if err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.WithError(err).Error("Failed to load persisted tokens")
		}
	}

	if accessErr == nil && refreshErr == nil && access != "" && refresh != "" {
		m.setState(Snapshot{AccessToken: access, RefreshToken: refresh, Status: StatusAuthenticated})
		m.logger.Debug("Persisted session restored")
	} else {
		m.setState(Snapshot{Status: StatusUnauthenticated})
	}

	return m.Snapshot()
}

// Login exchanges credentials for a session. The session state is only
// touched when the backend returns both tokens and both are persisted.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"email": email,
			"error": err.Error(),
		}).Warn("Login failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	if !resp.HasTokens() {
		m.logger.WithField("email", email).Warn("Login response is missing tokens")
		return nil, fmt.Errorf("login: %w", ErrMissingTokens)
	}

	if err := m.persist(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	m.setState(Snapshot{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, Status: StatusAuthenticated})
	m.logger.WithField("email", email).Info("Logged in")

	return resp, nil
}

// Register creates an account and then logs in with the same credentials.
// A failed auto-login still reports the registration as successful.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*RegisterResult, error) {
	req = req.Normalize()

	data, err := m.auth.Register(ctx, req)
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"email": req.User.Email,
			"error": err.Error(),
		}).Warn("Registration failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	result := &RegisterResult{Registered: true, Data: data}

	auth, err := m.Login(ctx, req.User.Email, req.User.PasswordHash)
	if err != nil {
		m.logger.WithField("email", req.User.Email).Warn("Registered but auto-login failed")
		result.Warning = AutoLoginWarning
		return result, nil
	}

	result.Auth = auth
	return result, nil
}

// Logout clears persisted tokens best-effort; the in-memory session is
// reset even when the store fails.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx, "logout")
}

func (m *Manager) clear(ctx context.Context, reason string) {
	defer m.setState(Snapshot{Status: StatusUnauthenticated})

	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.WithFields(logrus.Fields{
				"key":    key,
				"reason": reason,
				"error":  err.Error(),
			}).Warn("Failed to delete persisted token")
		}
	}

	m.logger.WithField("reason", reason).Info("Session cleared")
}

func (m *Manager) persist(ctx context.Context, access, refresh string) error {
	if err := m.store.Set(ctx, AccessTokenKey, access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if refresh == "" {
		return nil
	}
	if err := m.store.Set(ctx, RefreshTokenKey, refresh); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return nil
}

// Recover is called once per request that came back 401 while carrying
// failedAccess. It returns the access token to retry with.
//
// If another request already replaced the token, the current one is returned
// without refreshing again. Concurrent refreshes with the same refresh token
// share one backend call.
func (m *Manager) Recover(ctx context.Context, failedAccess string) (string, error) {
	snap := m.Snapshot()

	if snap.Authenticated() && snap.AccessToken != failedAccess {
		return snap.AccessToken, nil
	}

	if snap.RefreshToken == "" {
		m.clear(ctx, "no refresh token")
		return "", ErrNoRefreshToken
	}

	// The refresh outlives any single caller's cancellation because other
	// callers may be waiting on it.
	refreshCtx := context.WithoutCancel(ctx)
	v, err, shared := m.refreshes.Do(snap.RefreshToken, func() (interface{}, error) {
		// A refresh may have completed between the snapshot and this call
		if cur := m.Snapshot(); cur.Authenticated() && cur.AccessToken != failedAccess {
			return cur.AccessToken, nil
		}
		return m.refresh(refreshCtx, snap.RefreshToken)
	})
	if shared {
		m.logger.Debug("Joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (string, error) {
	m.logger.Info("Access token rejected, refreshing session")

	resp, err := m.auth.RefreshToken(ctx, refreshToken)
	if err == nil && (resp == nil || resp.AccessToken == "") {
		err = ErrMissingTokens
	}
	if err != nil {
		m.logger.WithError(err).Error("Token refresh failed")
		m.clear(ctx, "refresh failed")
		return "", fmt.Errorf("refresh session: %w", err)
	}

	nextRefresh := resp.RefreshToken
	if nextRefresh == "" {
		nextRefresh = refreshToken
	}

	if err := m.persist(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		m.logger.WithError(err).Error("Failed to persist refreshed tokens")
		m.clear(ctx, "refresh persist failed")
		return "", fmt.Errorf("refresh session: %w", err)
	}

	m.setState(Snapshot{AccessToken: resp.AccessToken, RefreshToken: nextRefresh, Status: StatusAuthenticated})
	m.logger.WithField("refresh_rotated", resp.RefreshToken != "").Info("Session refreshed")

	return resp.AccessToken, nil
}
