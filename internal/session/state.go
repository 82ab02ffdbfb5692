package session

import (
	"net/http"
	"time"

	"github.com/pomoyka/pomoyka-client/pkg/jwt"
)

// Status is the tri-state authentication flag
type Status int

const (
	StatusUnknown Status = iota // Persisted session not loaded yet
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	Status       Status
}

// Authenticated reports whether the snapshot holds a usable session
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.AccessToken != "" && s.RefreshToken != ""
}

// AccessExpiresAt inspects the access token without verifying it. Opaque
// (non-JWT) tokens report false.
func (s Snapshot) AccessExpiresAt() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}
	expiry, err := jwt.GetTokenExpiry(s.AccessToken)
	if err != nil {
		return time.Time{}, false
	}
	return expiry, true
}

// Attach returns a copy of req carrying the snapshot's bearer token, if any.
// The original request is never modified.
func Attach(req *http.Request, snap Snapshot) *http.Request {
	out := req.Clone(req.Context())
	if snap.AccessToken != "" {
		out.Header.Set("Authorization", "Bearer "+snap.AccessToken)
	}
	return out
}
