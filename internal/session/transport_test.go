package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bearerServer answers 200 with body for requests carrying the accepted
// token and 401 otherwise. It records every Authorization header it sees.
type bearerServer struct {
	*httptest.Server

	mu       sync.Mutex
	accepted string
	seen     []string
	bodies   []string
	hits     int32
	rejected int32
}

func newBearerServer(t *testing.T, accepted, body string) *bearerServer {
	t.Helper()
	s := &bearerServer{accepted: accepted}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		payload, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.seen = append(s.seen, r.Header.Get("Authorization"))
		s.bodies = append(s.bodies, string(payload))
		ok := r.Header.Get("Authorization") == "Bearer "+s.accepted
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			atomic.AddInt32(&s.rejected, 1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *bearerServer) headers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

func newSessionClient(mgr *Manager) *http.Client {
	return &http.Client{Transport: NewTransport(nil, mgr, newTestLogger())}
}

func TestTransport_AttachesBearer(t *testing.T) {
	srv := newBearerServer(t, "A1", `{"id":"u-1","email":"a@b.com"}`)
	auth := &fakeAuth{loginResp: &models.AuthResponse{AccessToken: "A1", RefreshToken: "R1"}}
	store := NewMemoryStore()
	mgr := NewManager(store, auth, newTestLogger())
	ctx := context.Background()
	mgr.Load(ctx)

	_, err := mgr.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)

	stored, err := store.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "A1", stored)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/User/GetMyProfile", nil)
	require.NoError(t, err)
	resp, err := newSessionClient(mgr).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Bearer A1"}, srv.headers())
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be modified")
}

func TestTransport_RefreshesAndRetries(t *testing.T) {
	srv := newBearerServer(t, "T2", `{"id":"c-1","name":"Golf","licensePlate":"AA1234BB","carType":"hatchback"}`)
	auth := &fakeAuth{refreshResp: &models.AuthResponse{AccessToken: "T2"}}
	mgr, store := newAuthenticatedManager(t, auth, "T1", "R1")

	resp, err := newSessionClient(mgr).Get(srv.URL + "/api/Car/GetMyCar")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"licensePlate":"AA1234BB"`)

	assert.Equal(t, []string{"Bearer T1", "Bearer T2"}, srv.headers())
	assert.Equal(t, int32(1), atomic.LoadInt32(&auth.refreshCalls))
	assert.Equal(t, []string{"R1"}, auth.refreshedWith)

	access, err := store.Get(context.Background(), AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "T2", access)
	refresh, err := store.Get(context.Background(), RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "R1", refresh)
}

func TestTransport_RetriesAtMostOnce(t *testing.T) {
	srv := newBearerServer(t, "never", `{}`)
	auth := &fakeAuth{refreshResp: &models.AuthResponse{AccessToken: "T2", RefreshToken: "R2"}}
	mgr, _ := newAuthenticatedManager(t, auth, "T1", "R1")

	resp, err := newSessionClient(mgr).Get(srv.URL + "/api/Car/GetMyCar")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&srv.hits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&auth.refreshCalls))
}

func TestTransport_RefreshFailureClearsSession(t *testing.T) {
	srv := newBearerServer(t, "T2", `{}`)
	boom := errors.New("refresh rejected")
	auth := &fakeAuth{refreshErr: boom}
	mgr, store := newAuthenticatedManager(t, auth, "T1", "R1")

	resp, err := newSessionClient(mgr).Get(srv.URL + "/api/Car/GetMyCar")
	if resp != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, StatusUnauthenticated, mgr.Snapshot().Status)
	assertStoreEmpty(t, store)
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.hits))
}

func TestTransport_NoRefreshTokenReturnsOriginal401(t *testing.T) {
	srv := newBearerServer(t, "T2", `{}`)
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, AccessTokenKey, "T1"))
	auth := &fakeAuth{}
	mgr := NewManager(store, auth, newTestLogger())
	mgr.Load(ctx)

	resp, err := newSessionClient(mgr).Get(srv.URL + "/api/User/GetMyProfile")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "token expired")
	assert.Zero(t, atomic.LoadInt32(&auth.refreshCalls))
	assertStoreEmpty(t, store)
}

// onceReader hides the request body behind a type http.NewRequest cannot rewind
type onceReader struct{ io.Reader }

func TestTransport_ReplaysBody(t *testing.T) {
	srv := newBearerServer(t, "T2", `{"ok":true}`)
	auth := &fakeAuth{refreshResp: &models.AuthResponse{AccessToken: "T2"}}
	mgr, _ := newAuthenticatedManager(t, auth, "T1", "R1")
	client := newSessionClient(mgr)

	for name, body := range map[string]io.Reader{
		"Rewindable": strings.NewReader(`{"name":"Golf"}`),
		"Buffered":   onceReader{strings.NewReader(`{"name":"Golf"}`)},
	} {
		t.Run(name, func(t *testing.T) {
			mgr.setState(Snapshot{AccessToken: "T1", RefreshToken: "R1", Status: StatusAuthenticated})
			srv.mu.Lock()
			srv.bodies = nil
			srv.mu.Unlock()

			req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/Car/UpdateMyCar", body)
			require.NoError(t, err)
			resp, err := client.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			srv.mu.Lock()
			defer srv.mu.Unlock()
			assert.Equal(t, []string{`{"name":"Golf"}`, `{"name":"Golf"}`}, srv.bodies)
		})
	}
}

func TestTransport_CoalescesConcurrentRefresh(t *testing.T) {
	const callers = 5

	srv := newBearerServer(t, "T2", `{"ok":true}`)
	auth := &fakeAuth{
		refreshResp: &models.AuthResponse{AccessToken: "T2", RefreshToken: "R2"},
		refreshGate: make(chan struct{}),
	}
	mgr, _ := newAuthenticatedManager(t, auth, "T1", "R1")
	client := newSessionClient(mgr)

	var wg sync.WaitGroup
	statuses := make([]int, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/api/Booking/GetMyBookings")
			if err != nil {
				errs[i] = err
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&srv.rejected) == callers && atomic.LoadInt32(&auth.refreshCalls) >= 1
	}, 5*time.Second, 5*time.Millisecond)
	close(auth.refreshGate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, http.StatusOK, statuses[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&auth.refreshCalls))
	assert.Equal(t, "T2", mgr.Snapshot().AccessToken)
	assert.Equal(t, "R2", mgr.Snapshot().RefreshToken)
}
