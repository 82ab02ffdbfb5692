package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://example.test/api/User/GetMyProfile", nil)
	require.NoError(t, err)

	out := Attach(req, Snapshot{AccessToken: "A1", RefreshToken: "R1", Status: StatusAuthenticated})
	assert.Equal(t, "Bearer A1", out.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Authorization"))

	anon := Attach(req, Snapshot{Status: StatusUnauthenticated})
	assert.Empty(t, anon.Header.Get("Authorization"))
}

func TestSnapshot_AccessExpiresAt(t *testing.T) {
	svc := jwt.NewService("access", "refresh", time.Hour, 24*time.Hour)
	token, err := svc.GenerateAccessToken(uuid.New(), "a@b.com", "client")
	require.NoError(t, err)

	expiry, ok := Snapshot{AccessToken: token}.AccessExpiresAt()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	_, ok = Snapshot{AccessToken: "opaque"}.AccessExpiresAt()
	assert.False(t, ok)
	_, ok = Snapshot{}.AccessExpiresAt()
	assert.False(t, ok)
}

func TestSnapshot_Authenticated(t *testing.T) {
	assert.True(t, Snapshot{AccessToken: "A", RefreshToken: "R", Status: StatusAuthenticated}.Authenticated())
	assert.False(t, Snapshot{AccessToken: "A", Status: StatusAuthenticated}.Authenticated())
	assert.False(t, Snapshot{AccessToken: "A", RefreshToken: "R", Status: StatusUnknown}.Authenticated())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}
