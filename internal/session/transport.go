package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Transport attaches the session's bearer token to every request and
// recovers from a 401 by refreshing the session and retrying the request
// exactly once.
type Transport struct {
	Base    http.RoundTripper // Defaults to http.DefaultTransport
	Session *Manager
	Logger  *logrus.Logger
}

// NewTransport wraps base with session handling
func NewTransport(base http.RoundTripper, session *Manager, logger *logrus.Logger) *Transport {
	return &Transport{Base: base, Session: session, Logger: logger}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	snap := t.Session.Snapshot()
	first := Attach(req, snap)
	if getBody != nil && req.GetBody == nil {
		// The original body was consumed while buffering
		if first.Body, err = getBody(); err != nil {
			return nil, err
		}
		first.GetBody = getBody
	}

	resp, err := t.base().RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	t.Logger.WithFields(logrus.Fields{
		"method":      req.Method,
		"path":        req.URL.Path,
		"status_code": resp.StatusCode,
	}).Warn("Request unauthorized, recovering session")

	token, err := t.Session.Recover(req.Context(), snap.AccessToken)
	if err != nil {
		if errors.Is(err, ErrNoRefreshToken) {
			return resp, nil
		}
		discard(resp)
		return nil, err
	}
	discard(resp)

	retry := Attach(req, Snapshot{AccessToken: token})
	if getBody != nil {
		if retry.Body, err = getBody(); err != nil {
			return nil, err
		}
		retry.GetBody = getBody
	}

	t.Logger.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
	}).Debug("Retrying request with refreshed session")

	return t.base().RoundTrip(retry)
}

// replayableBody returns a function producing fresh copies of the request
// body, buffering it once when the request cannot replay it itself.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}

	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func discard(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
